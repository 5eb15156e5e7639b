package compiler

import (
	"testing"

	"github.com/kristofer/wisp/internal/bytecode"
	"github.com/kristofer/wisp/internal/object"
)

func compile(t *testing.T, source string) (*bytecode.Chunk, bool) {
	t.Helper()
	heap := object.NewHeap()
	chunk := bytecode.NewChunk()
	ok := Compile(source, heap, chunk)
	return chunk, ok
}

func TestCompileArithmeticEmitsExpectedOps(t *testing.T) {
	chunk, ok := compile(t, "1 + 2 * 3;")
	if !ok {
		t.Fatal("expected compile to succeed")
	}

	want := []bytecode.Opcode{
		bytecode.OpConstant, // 1
		bytecode.OpConstant, // 2
		bytecode.OpConstant, // 3
		bytecode.OpMultiply,
		bytecode.OpAdd,
		bytecode.OpPop,
		bytecode.OpReturn,
	}

	got := []bytecode.Opcode{}
	for i := 0; i < chunk.Len(); {
		op := bytecode.Opcode(chunk.ByteAt(i))
		got = append(got, op)
		if bytecode.HasOperand(op) {
			i += 2
		} else {
			i++
		}
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d ops, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCompileVarDeclarationWithoutInitializerPushesNone(t *testing.T) {
	chunk, ok := compile(t, "var x;")
	if !ok {
		t.Fatal("expected compile to succeed")
	}

	if bytecode.Opcode(chunk.ByteAt(0)) != bytecode.OpNone {
		t.Fatalf("expected OP_NONE as the implicit initializer, got %s", bytecode.Opcode(chunk.ByteAt(0)))
	}
}

func TestCompileMissingSemicolonIsCompileError(t *testing.T) {
	_, ok := compile(t, "print 1")
	if ok {
		t.Fatal("expected a compile error for a missing semicolon")
	}
}

func TestCompileRelationalRewrites(t *testing.T) {
	cases := []struct {
		source string
		want   []bytecode.Opcode
	}{
		{"1 != 2;", []bytecode.Opcode{bytecode.OpConstant, bytecode.OpConstant, bytecode.OpEqual, bytecode.OpNot, bytecode.OpPop, bytecode.OpReturn}},
		{"1 >= 2;", []bytecode.Opcode{bytecode.OpConstant, bytecode.OpConstant, bytecode.OpLess, bytecode.OpNot, bytecode.OpPop, bytecode.OpReturn}},
		{"1 <= 2;", []bytecode.Opcode{bytecode.OpConstant, bytecode.OpConstant, bytecode.OpGreater, bytecode.OpNot, bytecode.OpPop, bytecode.OpReturn}},
	}

	for _, tt := range cases {
		chunk, ok := compile(t, tt.source)
		if !ok {
			t.Fatalf("%s: expected compile to succeed", tt.source)
		}
		var got []bytecode.Opcode
		for i := 0; i < chunk.Len(); {
			op := bytecode.Opcode(chunk.ByteAt(i))
			got = append(got, op)
			if bytecode.HasOperand(op) {
				i += 2
			} else {
				i++
			}
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.source, tt.want, got)
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: op %d: expected %s, got %s", tt.source, i, tt.want[i], got[i])
			}
		}
	}
}

func TestCompileUnterminatedGroupingIsCompileError(t *testing.T) {
	_, ok := compile(t, "print (1 + 2;")
	if ok {
		t.Fatal("expected a compile error for an unclosed parenthesis")
	}
}

func TestCompileTooManyConstantsIsCompileError(t *testing.T) {
	source := ""
	for i := 0; i < 257; i++ {
		source += "print 1;\n"
	}
	// Each literal 1 is its own constant pool entry (no folding), so 257
	// print statements overflow the 256-entry byte-indexed pool.
	_, ok := compile(t, source)
	if ok {
		t.Fatal("expected a compile error once the constant pool overflows 256 entries")
	}
}
