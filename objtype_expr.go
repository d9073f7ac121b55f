package feather

// exprOp identifies one instruction in a compiled expression's postfix
// instruction stream (spec §4.E).
type exprOp int

const (
	opPushInt    exprOp = iota // operand carries an int64 literal
	opPushDouble               // operand carries a float64 literal
	opPushString               // operand carries a string literal
	opPushVar                  // operand carries a variable/dict-sugar name to read and substitute
	opPushCmd                  // operand carries a command-substitution script to evaluate
	opNeg                      // unary -
	opNot                      // unary !
	opBitNot                   // unary ~
	opAdd
	opSub
	opMul
	opDiv
	opMod
	opPow
	opEq
	opNe
	opLt
	opLe
	opGt
	opGe
	opAnd // logical &&, short-circuits
	opOr  // logical ||, short-circuits
	opBitAnd
	opBitOr
	opBitXor
	opShl
	opShr
	opRotl // <<< rotate left, 32-bit wrap
	opRotr // >>> rotate right, 32-bit wrap
	opStrEq
	opStrNe
	opTernary // ?: -- branches carried in thenBranch/elseBranch, not eagerly evaluated
	opConcat  // implicit adjacency, e.g. juxtaposed string/var tokens with no operator
	opCall    // math function call; strVal names it, args carries compiled argument expressions
)

// exprInstr is one compiled instruction: an opcode plus an operand that only
// some opcodes use (literal value, variable name, sub-script, or nested
// branch instructions for short-circuiting/ternary forms).
type exprInstr struct {
	op     exprOp
	intVal int64
	dblVal float64
	strVal string

	// rhs holds the right operand of && / || (evaluated only if needed).
	// For opTernary, thenBranch/elseBranch hold the two arms; the
	// condition is the value already on the stack.
	rhs        []exprInstr
	thenBranch []exprInstr
	elseBranch []exprInstr
	args       [][]exprInstr // opCall argument expressions
}

// ExprType is the compiled internal representation of an `expr`-syntax
// string: a postfix instruction stream ready for the stack machine in
// exprvm.go. Recompiling is skipped whenever the string form is unchanged.
type ExprType struct {
	source string
	instrs []exprInstr
}

func (t *ExprType) Name() string         { return "expression" }
func (t *ExprType) UpdateString() string { return t.source }
func (t *ExprType) Dup() ObjType         { return &ExprType{source: t.source, instrs: t.instrs} }
