// Package kernelinfo holds per-variable diagnostic records harvested during
// code generation. Downstream tooling reads these records to map register
// usage and memory behaviour back to source variables.
package kernelinfo

// AddressModel describes where a variable lives.
type AddressModel uint8

const (
	AddrGlobal AddressModel = iota
	AddrLocal
)

func (a AddressModel) String() string {
	switch a {
	case AddrGlobal:
		return "global"
	case AddrLocal:
		return "local"
	}
	return "unknown"
}

// MemAccess describes how a variable is accessed in memory.
type MemAccess uint8

const (
	AccessNone MemAccess = iota
	AccessBlocked
	AccessStateful
	AccessStateless
	AccessAtomic
)

func (m MemAccess) String() string {
	switch m {
	case AccessNone:
		return "none"
	case AccessBlocked:
		return "blocked"
	case AccessStateful:
		return "stateful"
	case AccessStateless:
		return "stateless"
	case AccessAtomic:
		return "atomic"
	}
	return "unknown"
}

// BankConflicts aggregates register bank conflict counters for one variable.
type BankConflicts struct {
	Count    int
	SameBank int
	TwoSrc   int
}

// VarInfo is the diagnostic record of a single kernel variable.
type VarInfo struct {
	Line          int
	SrcFilename   string
	Size          int
	Type          int16
	AddrModel     AddressModel
	MemoryAccess  MemAccess
	Spill         bool
	Uniform       bool
	Const         bool
	PromotedToGRF bool
	Conflicts     BankConflicts
}

// KernelInfo is a keyed collection of variable records for one kernel.
// Iteration order follows insertion order.
type KernelInfo struct {
	vars map[int]*VarInfo
	keys []int
}

func New() *KernelInfo {
	return &KernelInfo{vars: make(map[int]*VarInfo)}
}

// Put records info under key, replacing any previous record.
func (k *KernelInfo) Put(key int, v *VarInfo) {
	if _, ok := k.vars[key]; !ok {
		k.keys = append(k.keys, key)
	}
	k.vars[key] = v
}

// Get returns the record for key, or nil.
func (k *KernelInfo) Get(key int) *VarInfo {
	return k.vars[key]
}

// Len reports the number of records.
func (k *KernelInfo) Len() int { return len(k.keys) }

// Each calls fn for every record in insertion order.
func (k *KernelInfo) Each(fn func(key int, v *VarInfo)) {
	for _, key := range k.keys {
		fn(key, k.vars[key])
	}
}
