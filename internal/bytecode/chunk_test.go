package bytecode

import (
	"testing"

	"github.com/kristofer/wisp/internal/value"
)

func TestWriteAndByteAt(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpReturn, 1)

	if c.Len() != 1 {
		t.Fatalf("expected len 1, got %d", c.Len())
	}
	if Opcode(c.ByteAt(0)) != OpReturn {
		t.Fatalf("expected OpReturn at offset 0, got %s", Opcode(c.ByteAt(0)))
	}
	if c.Line(0) != 1 {
		t.Fatalf("expected line 1, got %d", c.Line(0))
	}
}

func TestAddConstant(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(value.Number(42))
	if idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	if c.ConstantsLen() != 1 {
		t.Fatalf("expected 1 constant, got %d", c.ConstantsLen())
	}
	if got := c.Constant(0); got.Num != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestOpcodeString(t *testing.T) {
	if OpAdd.String() != "OP_ADD" {
		t.Fatalf("expected OP_ADD, got %s", OpAdd.String())
	}
	if Opcode(255).String() != "OP_UNKNOWN" {
		t.Fatalf("expected OP_UNKNOWN for an invalid opcode, got %s", Opcode(255).String())
	}
}

func TestHasOperand(t *testing.T) {
	for _, op := range []Opcode{OpConstant, OpDefineGlobal, OpGetGlobal} {
		if !HasOperand(op) {
			t.Errorf("expected %s to carry an operand", op)
		}
	}
	for _, op := range []Opcode{OpReturn, OpPop, OpAdd} {
		if HasOperand(op) {
			t.Errorf("expected %s to carry no operand", op)
		}
	}
}
