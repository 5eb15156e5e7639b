package disasm

import (
	"strings"
	"testing"

	"github.com/kristofer/wisp/internal/bytecode"
	"github.com/kristofer/wisp/internal/value"
)

func TestInstructionNoOperand(t *testing.T) {
	c := bytecode.NewChunk()
	c.WriteOp(bytecode.OpReturn, 3)

	var sb strings.Builder
	next := Instruction(&sb, c, 0)

	if next != 1 {
		t.Fatalf("expected next offset 1, got %d", next)
	}
	if !strings.Contains(sb.String(), "OP_RETURN") {
		t.Fatalf("expected mnemonic in output, got %q", sb.String())
	}
	if !strings.Contains(sb.String(), "   3 ") {
		t.Fatalf("expected line number 3 in output, got %q", sb.String())
	}
}

func TestInstructionWithOperandPrintsConstant(t *testing.T) {
	c := bytecode.NewChunk()
	idx := c.AddConstant(value.Number(42))
	c.WriteOp(bytecode.OpConstant, 1)
	c.Write(byte(idx), 1)

	var sb strings.Builder
	next := Instruction(&sb, c, 0)

	if next != 2 {
		t.Fatalf("expected next offset 2, got %d", next)
	}
	if !strings.Contains(sb.String(), "OP_CONSTANT") || !strings.Contains(sb.String(), "42") {
		t.Fatalf("expected constant value in output, got %q", sb.String())
	}
}

func TestInstructionSameLineOmitsNumber(t *testing.T) {
	c := bytecode.NewChunk()
	c.WriteOp(bytecode.OpPop, 5)
	c.WriteOp(bytecode.OpReturn, 5)

	var sb strings.Builder
	Instruction(&sb, c, 0)
	offsetBefore := sb.Len()
	Instruction(&sb, c, 1)

	second := sb.String()[offsetBefore:]
	if !strings.Contains(second, "|") {
		t.Fatalf("expected a vertical bar in place of a repeated line number, got %q", second)
	}
}

func TestChunkPrintsHeader(t *testing.T) {
	c := bytecode.NewChunk()
	c.WriteOp(bytecode.OpReturn, 1)

	var sb strings.Builder
	Chunk(&sb, c, "test chunk")

	if !strings.HasPrefix(sb.String(), "== test chunk ==\n") {
		t.Fatalf("expected header, got %q", sb.String())
	}
}
