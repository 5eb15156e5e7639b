// Package bytecode defines wisp's bytecode format and Chunk container.
//
// A Chunk is the compiler's output and the VM's input: a byte stream of
// opcodes and inline operands, a parallel per-byte source-line map (for
// runtime error reporting), and an embedded constant pool. A chunk is
// written only by the compiler and, once handed to the VM, is read-only.
//
// Architecture:
//
//	code:      []byte        -- OpConstant, 0, OpPrint, OpReturn, ...
//	lines:     []int         -- one entry per byte of code, same length
//	constants: value.Array   -- the literal pool, indexed by a single byte
//
// This mirrors the reference implementation's three parallel dynamic
// arrays (code/lines/constants) one to one; Go's append-based slice growth
// replaces the manual capacity-doubling the C source hand-rolls, but the
// shape — and the invariant len(code) == len(lines) — is unchanged.
package bytecode

import "github.com/kristofer/wisp/internal/value"

// Opcode is a single bytecode instruction's operation code.
type Opcode byte

// The full instruction set wisp's compiler emits and its VM executes.
// Every opcode is exactly one byte; CONSTANT/DEFINE_GLOBAL/GET_GLOBAL carry
// one inline operand byte indexing the chunk's constant pool.
const (
	// OpConstant pushes constants[operand] onto the stack.
	OpConstant Opcode = iota
	// OpNone pushes the None singleton.
	OpNone
	// OpTrue pushes the boolean true.
	OpTrue
	// OpFalse pushes the boolean false.
	OpFalse
	// OpPop discards the top of stack.
	OpPop
	// OpDefineGlobal binds constants[operand] (a name) to the popped top
	// of stack.
	OpDefineGlobal
	// OpGetGlobal pushes the value bound to constants[operand]; a runtime
	// error if the name is undefined.
	OpGetGlobal
	// OpEqual pops two values, pushes their equality as a boolean.
	OpEqual
	// OpGreater pops two numbers, pushes a > b as a boolean.
	OpGreater
	// OpLess pops two numbers, pushes a < b as a boolean.
	OpLess
	// OpAdd pops two values (both numbers, or both strings) and pushes
	// their sum or concatenation.
	OpAdd
	// OpSubtract pops two numbers, pushes their difference.
	OpSubtract
	// OpMultiply pops two numbers, pushes their product.
	OpMultiply
	// OpDivide pops two numbers, pushes their quotient.
	OpDivide
	// OpNot pops a value, pushes the boolean negation of its truthiness.
	OpNot
	// OpNegate pops a number, pushes its arithmetic negation.
	OpNegate
	// OpPrint pops a value, writes its formatted form to stdout.
	OpPrint
	// OpReturn halts execution of the current chunk.
	OpReturn
)

var opcodeNames = map[Opcode]string{
	OpConstant:     "OP_CONSTANT",
	OpNone:         "OP_NONE",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpReturn:       "OP_RETURN",
}

// String names an opcode for disassembly and trace logging.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// hasOperand is the set of opcodes that carry one inline operand byte.
var hasOperand = map[Opcode]bool{
	OpConstant:     true,
	OpDefineGlobal: true,
	OpGetGlobal:    true,
}

// HasOperand reports whether op carries an inline operand byte.
func HasOperand(op Opcode) bool { return hasOperand[op] }

// MaxConstants is the largest number of distinct constants a single chunk
// may hold — the pool is indexed by a single byte operand.
const MaxConstants = 256

// Chunk is a self-contained bytecode artifact.
type Chunk struct {
	code      []byte
	lines     []int
	constants value.Array
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one raw byte (an opcode or an operand) and its source line.
func (c *Chunk) Write(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteOp is Write for an Opcode, saving callers the byte(op) cast.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends value to the constant pool and returns its index.
// Callers are responsible for checking the index against MaxConstants
// before emitting a CONSTANT-family instruction with it — see
// internal/compiler's makeConstant, which is the spec's designated place
// for that check and its associated compile error.
func (c *Chunk) AddConstant(v value.Value) int {
	return c.constants.Write(v)
}

// Code returns the chunk's instruction bytes.
func (c *Chunk) Code() []byte { return c.code }

// Len returns the number of bytes of code written so far.
func (c *Chunk) Len() int { return len(c.code) }

// Line returns the source line recorded for the byte at offset.
func (c *Chunk) Line(offset int) int { return c.lines[offset] }

// ByteAt returns the raw byte at offset.
func (c *Chunk) ByteAt(offset int) byte { return c.code[offset] }

// Constant returns the constant at index i.
func (c *Chunk) Constant(i int) value.Value { return c.constants.Get(i) }

// ConstantsLen returns the number of constants written so far.
func (c *Chunk) ConstantsLen() int { return c.constants.Len() }
