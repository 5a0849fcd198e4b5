package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseState carries the line cursor and diagnostic sink through one parse.
type parseState struct {
	lines []string
	pos   int
	diag  io.Writer
	errs  int
}

func (p *parseState) errorf(line int, format string, args ...any) error {
	p.errs++
	err := fmt.Errorf(format, args...)
	if p.diag != nil {
		fmt.Fprintf(p.diag, "module:%d: error: %v\n", line+1, err)
	}
	return err
}

// Parse reads the textual module grammar. Syntax diagnostics are printed to
// diag (may be nil) with line positions; the returned error is the first one
// encountered. A successful parse does not imply a structurally valid module;
// callers run Verify separately.
func Parse(src []byte, diag io.Writer) (*Module, error) {
	p := &parseState{
		lines: strings.Split(string(src), "\n"),
		diag:  diag,
	}
	m := &Module{SourceFormat: SourceText}
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		ln := p.pos
		p.pos++
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "module "):
			name, err := parseQuoted(strings.TrimPrefix(line, "module "))
			if err != nil {
				return nil, p.errorf(ln, "module header: %v", err)
			}
			m.Name = name
		case strings.HasPrefix(line, "target triple"):
			val, err := parseTargetLine(line, "target triple")
			if err != nil {
				return nil, p.errorf(ln, "%v", err)
			}
			m.TargetTriple = val
		case strings.HasPrefix(line, "target datalayout"):
			val, err := parseTargetLine(line, "target datalayout")
			if err != nil {
				return nil, p.errorf(ln, "%v", err)
			}
			m.DataLayout = val
		case strings.HasPrefix(line, "specconst "):
			sc, err := parseSpecConst(line)
			if err != nil {
				return nil, p.errorf(ln, "%v", err)
			}
			m.SpecConsts = append(m.SpecConsts, sc)
		case strings.HasPrefix(line, "global "):
			g, err := parseGlobal(line)
			if err != nil {
				return nil, p.errorf(ln, "%v", err)
			}
			m.Globals = append(m.Globals, g)
		case strings.HasPrefix(line, "declare "):
			f, err := parseSignature(strings.TrimPrefix(line, "declare "))
			if err != nil {
				return nil, p.errorf(ln, "%v", err)
			}
			m.Funcs = append(m.Funcs, f)
		case strings.HasPrefix(line, "func ") || strings.HasPrefix(line, "kernel "):
			f, err := p.parseFunc(line, ln)
			if err != nil {
				return nil, err
			}
			m.Funcs = append(m.Funcs, f)
		default:
			return nil, p.errorf(ln, "unexpected top-level construct %q", line)
		}
	}
	return m, nil
}

func parseQuoted(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected quoted string, got %q", s)
	}
	return s[1 : len(s)-1], nil
}

func parseTargetLine(line, prefix string) (string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	rest, ok := strings.CutPrefix(rest, "=")
	if !ok {
		return "", fmt.Errorf("expected '=' in %q", line)
	}
	return parseQuoted(rest)
}

// specconst <id> %name : <type> = <value>
func parseSpecConst(line string) (SpecConst, error) {
	fields := strings.Fields(strings.TrimPrefix(line, "specconst "))
	if len(fields) != 6 || fields[2] != ":" || fields[4] != "=" {
		return SpecConst{}, fmt.Errorf("malformed specconst %q", line)
	}
	id, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return SpecConst{}, fmt.Errorf("bad specconst id %q", fields[0])
	}
	name, ok := strings.CutPrefix(fields[1], "%")
	if !ok {
		return SpecConst{}, fmt.Errorf("specconst name must start with %%: %q", fields[1])
	}
	typ, err := ParseType(fields[3])
	if err != nil || typ.Kind != TypeInt || typ.Lanes != 0 {
		return SpecConst{}, fmt.Errorf("specconst %q needs a scalar integer type", name)
	}
	val, err := strconv.ParseUint(fields[5], 0, 64)
	if err != nil {
		return SpecConst{}, fmt.Errorf("bad specconst value %q", fields[5])
	}
	return SpecConst{ID: uint32(id), Name: name, Bits: typ.Bits, Value: val}, nil
}

// global @name : <type>
func parseGlobal(line string) (Global, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "global "))
	namePart, typePart, ok := strings.Cut(rest, ":")
	if !ok {
		return Global{}, fmt.Errorf("malformed global %q", line)
	}
	name, ok := strings.CutPrefix(strings.TrimSpace(namePart), "@")
	if !ok || name == "" {
		return Global{}, fmt.Errorf("global name must start with @: %q", namePart)
	}
	typ, err := ParseType(typePart)
	if err != nil {
		return Global{}, err
	}
	return Global{Name: name, Type: typ}, nil
}

// @name(<type> %p, ...) -> <type> [attr...]
func parseSignature(s string) (*Func, error) {
	s = strings.TrimSpace(s)
	name, rest, ok := strings.Cut(s, "(")
	if !ok {
		return nil, fmt.Errorf("malformed signature %q", s)
	}
	fname, ok := strings.CutPrefix(strings.TrimSpace(name), "@")
	if !ok || fname == "" {
		return nil, fmt.Errorf("function name must start with @: %q", name)
	}
	paramPart, rest, ok := strings.Cut(rest, ")")
	if !ok {
		return nil, fmt.Errorf("unterminated parameter list in %q", s)
	}
	f := &Func{Name: fname, Ret: Void()}
	for _, raw := range splitList(paramPart) {
		typStr, nameStr, hasName := cutLast(raw, " ")
		if !hasName {
			return nil, fmt.Errorf("malformed parameter %q", raw)
		}
		typ, err := ParseType(typStr)
		if err != nil {
			return nil, err
		}
		pname, ok := strings.CutPrefix(strings.TrimSpace(nameStr), "%")
		if !ok {
			return nil, fmt.Errorf("parameter name must start with %%: %q", nameStr)
		}
		f.Params = append(f.Params, Param{Name: pname, Type: typ})
	}
	rest = strings.TrimSpace(rest)
	if arrow, found := strings.CutPrefix(rest, "->"); found {
		fields := strings.Fields(arrow)
		if len(fields) == 0 {
			return nil, fmt.Errorf("missing return type in %q", s)
		}
		typ, err := ParseType(fields[0])
		if err != nil {
			return nil, err
		}
		f.Ret = typ
		f.Attrs = append(f.Attrs, fields[1:]...)
	} else if rest != "" {
		return nil, fmt.Errorf("unexpected trailing tokens %q", rest)
	}
	return f, nil
}

func (p *parseState) parseFunc(header string, headerLine int) (*Func, error) {
	kernel := strings.HasPrefix(header, "kernel ")
	sig := strings.TrimPrefix(strings.TrimPrefix(header, "kernel "), "func ")
	sig, hasBody := strings.CutSuffix(strings.TrimSpace(sig), "{")
	if !hasBody {
		return nil, p.errorf(headerLine, "function header must end with '{': %q", header)
	}
	f, err := parseSignature(sig)
	if err != nil {
		return nil, p.errorf(headerLine, "%v", err)
	}
	f.Kernel = kernel

	var block *Block
	for p.pos < len(p.lines) {
		line := strings.TrimSpace(p.lines[p.pos])
		ln := p.pos
		p.pos++
		switch {
		case line == "" || strings.HasPrefix(line, ";"):
		case line == "}":
			return f, nil
		case strings.HasSuffix(line, ":") && !strings.Contains(line, " "):
			f.Blocks = append(f.Blocks, Block{Label: strings.TrimSuffix(line, ":")})
			block = &f.Blocks[len(f.Blocks)-1]
		default:
			if block == nil {
				return nil, p.errorf(ln, "instruction outside of a block: %q", line)
			}
			instr, err := parseInstr(line)
			if err != nil {
				return nil, p.errorf(ln, "%v", err)
			}
			block.Instrs = append(block.Instrs, instr)
		}
	}
	return nil, p.errorf(headerLine, "unterminated function %q", f.Name)
}

func parseInstr(line string) (Instr, error) {
	var in Instr
	rest := line
	if strings.HasPrefix(rest, "%") {
		dst, after, ok := strings.Cut(rest, "=")
		if !ok {
			return in, fmt.Errorf("malformed instruction %q", line)
		}
		in.Dst = strings.TrimPrefix(strings.TrimSpace(dst), "%")
		rest = strings.TrimSpace(after)
	}
	opName, after, _ := strings.Cut(rest, " ")
	op, ok := OpcodeByName(opName)
	if !ok {
		return in, fmt.Errorf("unknown opcode %q", opName)
	}
	in.Op = op
	after = strings.TrimSpace(after)

	switch op {
	case OpRet:
		if after != "" {
			arg, err := parseOperand(after)
			if err != nil {
				return in, err
			}
			in.Args = []Operand{arg}
		}
		return in, nil
	case OpBr:
		if after == "" {
			return in, fmt.Errorf("br needs a target label")
		}
		in.Labels = []string{after}
		return in, nil
	case OpBrCond:
		parts := splitList(after)
		if len(parts) != 3 {
			return in, fmt.Errorf("brcond needs condition and two labels")
		}
		cond, err := parseOperand(parts[0])
		if err != nil {
			return in, err
		}
		in.Args = []Operand{cond}
		in.Labels = []string{parts[1], parts[2]}
		return in, nil
	case OpCall:
		typStr, callRest, err := cutType(after)
		if err != nil {
			return in, err
		}
		if callRest == "" {
			return in, fmt.Errorf("malformed call %q", line)
		}
		typ, err := ParseType(typStr)
		if err != nil {
			return in, err
		}
		in.Type = typ
		calleePart, argPart, ok := strings.Cut(callRest, "(")
		if !ok {
			return in, fmt.Errorf("malformed call %q", line)
		}
		callee, ok := strings.CutPrefix(strings.TrimSpace(calleePart), "@")
		if !ok {
			return in, fmt.Errorf("callee must start with @: %q", calleePart)
		}
		in.Callee = callee
		argPart, ok = strings.CutSuffix(strings.TrimSpace(argPart), ")")
		if !ok {
			return in, fmt.Errorf("unterminated call arguments in %q", line)
		}
		for _, raw := range splitList(argPart) {
			arg, err := parseOperand(raw)
			if err != nil {
				return in, err
			}
			in.Args = append(in.Args, arg)
		}
		return in, nil
	}

	// mov/add/sub/mul/load/store: "<type> <operands...>".
	typStr, argstr, err := cutType(after)
	if err != nil {
		return in, err
	}
	if argstr == "" {
		return in, fmt.Errorf("malformed instruction %q", line)
	}
	typ, err := ParseType(typStr)
	if err != nil {
		return in, err
	}
	in.Type = typ
	for _, raw := range splitList(argstr) {
		arg, err := parseOperand(raw)
		if err != nil {
			return in, err
		}
		in.Args = append(in.Args, arg)
	}
	var want int
	switch op {
	case OpMov, OpLoad:
		want = 1
	case OpAdd, OpSub, OpMul, OpStore:
		want = 2
	}
	if len(in.Args) != want {
		return in, fmt.Errorf("%s expects %d operands, got %d", op, want, len(in.Args))
	}
	return in, nil
}

// cutType splits a leading type token from s. Vector types contain spaces,
// so the split happens after the closing '>' instead of at the first blank.
func cutType(s string) (typ, rest string, err error) {
	if strings.HasPrefix(s, "<") {
		idx := strings.IndexByte(s, '>')
		if idx < 0 {
			return "", "", fmt.Errorf("unterminated vector type in %q", s)
		}
		return s[:idx+1], strings.TrimSpace(s[idx+1:]), nil
	}
	before, after, _ := strings.Cut(s, " ")
	return before, strings.TrimSpace(after), nil
}

func parseOperand(s string) (Operand, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "%"):
		return Ref(s[1:]), nil
	case strings.HasPrefix(s, "@"):
		return GlobalRef(s[1:]), nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return Operand{}, fmt.Errorf("bad operand %q", s)
	}
	return Imm(v), nil
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// cutLast splits on the last occurrence of sep.
func cutLast(s, sep string) (before, after string, found bool) {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}
