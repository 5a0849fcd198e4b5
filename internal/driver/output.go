package driver

import (
	"vecc/internal/kernelinfo"
)

// CompileOutput is the tagged result of one compilation: a structured
// per-kernel bundle for registered-runtime kinds, or a flat payload.
type CompileOutput interface {
	isCompileOutput()
}

// KernelResult is the metadata-plus-payload record of one kernel.
type KernelResult struct {
	Name   string
	Info   *kernelinfo.KernelInfo
	Binary []byte
}

// RuntimeOutput is the structured bundle produced for OpenCL and ZE kinds.
type RuntimeOutput struct {
	Kernels []KernelResult
}

func (*RuntimeOutput) isCompileOutput() {}

// FlatOutput is the flat payload produced for the CM kind.
type FlatOutput struct {
	Binary []byte
}

func (*FlatOutput) isCompileOutput() {}
