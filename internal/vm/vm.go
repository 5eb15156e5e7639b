// Package vm implements wisp's stack-based bytecode virtual machine.
//
// VM owns the pieces of state that persist across Interpret calls — the
// globals table, the string intern heap — plus the fixed-depth operand
// stack and instruction pointer that belong to whichever Chunk is
// currently executing. One VM is reusable across many Interpret calls (a
// REPL keeps one VM for its whole session); a fresh VM is required only
// when a clean global environment is wanted.
//
// Dispatch is a tight fetch-decode-execute loop: pull one opcode byte via
// ip++, switch on it, mutate the stack, repeat. RETURN exits the loop.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/kristofer/wisp/internal/bytecode"
	"github.com/kristofer/wisp/internal/compiler"
	"github.com/kristofer/wisp/internal/object"
	"github.com/kristofer/wisp/internal/table"
	"github.com/kristofer/wisp/internal/value"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// InterpretResult is the three-way outcome of an Interpret call.
type InterpretResult int

const (
	// InterpretOK means the chunk ran to RETURN with no error.
	InterpretOK InterpretResult = iota
	// InterpretCompileError means compilation failed; the VM never ran.
	InterpretCompileError
	// InterpretRuntimeError means a runtime error occurred mid-execution.
	InterpretRuntimeError
)

// StackMax is the fixed capacity of the operand stack.
const StackMax = 256

// VM is wisp's bytecode interpreter.
type VM struct {
	chunk *bytecode.Chunk
	ip    int

	stack    [StackMax]value.Value
	stackTop int

	globals *table.Table
	heap    *object.Heap

	// Trace, when non-nil, receives one structured entry per dispatched
	// instruction. Disabled (nil) by default; see SetTracer.
	trace *logrus.Logger
}

// New returns a VM with an empty global environment and a fresh string
// heap, ready for repeated Interpret calls.
func New() *VM {
	return &VM{
		globals: table.New(),
		heap:    object.NewHeap(),
	}
}

// SetTracer installs a logrus logger that receives one structured entry
// per dispatched instruction — opcode, operand, and stack depth — in
// place of the reference implementation's raw stdout debug prints. Pass
// nil to disable tracing (the default).
func (vm *VM) SetTracer(logger *logrus.Logger) {
	vm.trace = logger
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
}

func (vm *VM) push(v value.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() value.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// runtimeError prints message followed by a newline to stderr, then a
// single-frame source-line trace using the chunk's line map at ip-1 (the
// byte of the instruction that just failed), and resets the stack so the
// VM remains usable for the next Interpret call.
func (vm *VM) runtimeError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	fmt.Fprintln(os.Stderr)

	line := vm.chunk.Line(vm.ip - 1)
	fmt.Fprintf(os.Stderr, "[line %d] in script\n", line)

	vm.resetStack()
}

func (vm *VM) readByte() byte {
	b := vm.chunk.ByteAt(vm.ip)
	vm.ip++
	return b
}

func (vm *VM) readConstant() value.Value {
	return vm.chunk.Constant(int(vm.readByte()))
}

func (vm *VM) readString() *object.String {
	return vm.readConstant().Obj.(*object.String)
}

func isString(v value.Value) bool {
	if !v.IsObj() {
		return false
	}
	_, ok := v.Obj.(*object.String)
	return ok
}

func (vm *VM) concatenate() {
	b := vm.pop().Obj.(*object.String)
	a := vm.pop().Obj.(*object.String)
	vm.push(value.FromObj(vm.heap.Intern(a.Chars() + b.Chars())))
}

func (vm *VM) logTrace(op bytecode.Opcode) {
	if vm.trace == nil {
		return
	}
	fields := logrus.Fields{
		"ip":    vm.ip - 1,
		"op":    op.String(),
		"depth": vm.stackTop,
	}
	if bytecode.HasOperand(op) {
		fields["operand"] = vm.chunk.ByteAt(vm.ip)
	}
	vm.trace.WithFields(fields).Debug("dispatch")
}

// run executes vm.chunk starting at vm.ip until RETURN or a runtime error.
func (vm *VM) run() InterpretResult {
	for {
		instruction := bytecode.Opcode(vm.readByte())
		vm.logTrace(instruction)

		switch instruction {
		case bytecode.OpConstant:
			vm.push(vm.readConstant())

		case bytecode.OpNone:
			vm.push(value.None)

		case bytecode.OpTrue:
			vm.push(value.Bool(true))

		case bytecode.OpFalse:
			vm.push(value.Bool(false))

		case bytecode.OpPop:
			vm.pop()

		case bytecode.OpGetGlobal:
			name := vm.readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				vm.runtimeError("Undefined variable '%s'.", name.Chars())
				return InterpretRuntimeError
			}
			vm.push(v)

		case bytecode.OpDefineGlobal:
			name := vm.readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()

		case bytecode.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(value.Equal(a, b)))

		case bytecode.OpGreater:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				vm.runtimeError("Operands must be numbers.")
				return InterpretRuntimeError
			}
			b := vm.pop().Num
			a := vm.pop().Num
			vm.push(value.Bool(a > b))

		case bytecode.OpLess:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				vm.runtimeError("Operands must be numbers.")
				return InterpretRuntimeError
			}
			b := vm.pop().Num
			a := vm.pop().Num
			vm.push(value.Bool(a < b))

		case bytecode.OpAdd:
			switch {
			case isString(vm.peek(0)) && isString(vm.peek(1)):
				vm.concatenate()
			case vm.peek(0).IsNumber() && vm.peek(1).IsNumber():
				b := vm.pop().Num
				a := vm.pop().Num
				vm.push(value.Number(a + b))
			default:
				vm.runtimeError("Operands must be two numbers or two strings.")
				return InterpretRuntimeError
			}

		case bytecode.OpSubtract:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				vm.runtimeError("Operands must be numbers.")
				return InterpretRuntimeError
			}
			b := vm.pop().Num
			a := vm.pop().Num
			vm.push(value.Number(a - b))

		case bytecode.OpMultiply:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				vm.runtimeError("Operands must be numbers.")
				return InterpretRuntimeError
			}
			b := vm.pop().Num
			a := vm.pop().Num
			vm.push(value.Number(a * b))

		case bytecode.OpDivide:
			if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
				vm.runtimeError("Operands must be numbers.")
				return InterpretRuntimeError
			}
			b := vm.pop().Num
			a := vm.pop().Num
			vm.push(value.Number(a / b))

		case bytecode.OpNot:
			vm.push(value.Bool(vm.pop().IsFalsey()))

		case bytecode.OpNegate:
			if !vm.peek(0).IsNumber() {
				vm.runtimeError("Operand must be a number.")
				return InterpretRuntimeError
			}
			vm.push(value.Number(-vm.pop().Num))

		case bytecode.OpPrint:
			fmt.Println(value.Format(vm.pop()))

		case bytecode.OpReturn:
			return InterpretOK

		default:
			vm.runtimeError("Unknown opcode %d.", instruction)
			return InterpretRuntimeError
		}
	}
}

// Interpret compiles source and, if compilation succeeds, runs it against
// this VM. A fresh Chunk is created for every call; it is only ever
// reachable from this call's stack frame, so there is nothing to free
// explicitly once Interpret returns — Go's collector reclaims it exactly
// like it would the reference implementation's chunk_free, just without a
// matching explicit deallocation call.
func (vm *VM) Interpret(source string) InterpretResult {
	chunk := bytecode.NewChunk()

	if !compiler.Compile(source, vm.heap, chunk) {
		return InterpretCompileError
	}

	vm.chunk = chunk
	vm.ip = 0

	return vm.run()
}

// Compile compiles source to a Chunk without running it, for the CLI's
// precompile (compile) subcommand. It reports the same false return
// as compiler.Compile on a compile error.
func (vm *VM) Compile(source string) (*bytecode.Chunk, bool) {
	chunk := bytecode.NewChunk()
	ok := compiler.Compile(source, vm.heap, chunk)
	return chunk, ok
}

// LoadChunk reads a chunk previously written by bytecode.Encode, interning
// its string constants into this VM's heap.
func (vm *VM) LoadChunk(r io.Reader) (*bytecode.Chunk, error) {
	chunk, err := bytecode.Decode(r, vm.heap)
	if err != nil {
		return nil, errors.Wrap(err, "load chunk")
	}
	return chunk, nil
}

// InterpretChunk runs a previously compiled or loaded chunk directly,
// bypassing Compile — the counterpart to LoadChunk for the "run a .sg file"
// CLI path.
func (vm *VM) InterpretChunk(chunk *bytecode.Chunk) InterpretResult {
	vm.chunk = chunk
	vm.ip = 0
	return vm.run()
}
