package ir

// Opcode enumerates the instruction set.
type Opcode uint8

const (
	OpMov Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpLoad
	OpStore
	OpCall
	OpRet
	OpBr
	OpBrCond
)

var opNames = [...]string{
	OpMov:    "mov",
	OpAdd:    "add",
	OpSub:    "sub",
	OpMul:    "mul",
	OpLoad:   "load",
	OpStore:  "store",
	OpCall:   "call",
	OpRet:    "ret",
	OpBr:     "br",
	OpBrCond: "brcond",
}

func (o Opcode) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "invalid"
}

// OpcodeByName returns the opcode for its textual spelling.
func OpcodeByName(name string) (Opcode, bool) {
	for op, n := range opNames {
		if n == name {
			return Opcode(op), true
		}
	}
	return 0, false
}

// Terminator reports whether the opcode ends a block.
func (o Opcode) Terminator() bool {
	return o == OpRet || o == OpBr || o == OpBrCond
}

// OperandKind discriminates instruction operands.
type OperandKind uint8

const (
	OperandRef OperandKind = iota
	OperandConst
	OperandGlobal
)

// Operand is a value reference, module global or immediate constant.
type Operand struct {
	Kind OperandKind
	Ref  string
	Imm  int64
}

func Ref(name string) Operand { return Operand{Kind: OperandRef, Ref: name} }
func GlobalRef(n string) Operand { return Operand{Kind: OperandGlobal, Ref: n} }
func Imm(v int64) Operand { return Operand{Kind: OperandConst, Imm: v} }

func (o Operand) Constant() bool { return o.Kind == OperandConst }

// Instr is one instruction. Dst is empty for value-less instructions.
// Labels holds branch targets: one for br, two (then/else) for brcond.
type Instr struct {
	Op     Opcode
	Dst    string
	Type   Type
	Args   []Operand
	Callee string
	Labels []string
}
