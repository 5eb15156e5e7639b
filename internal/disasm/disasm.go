// Package disasm implements wisp's bytecode disassembler.
//
// This is the "disassembler used for debugging output" spec.md §1 names
// as an out-of-core collaborator: the core spec states its contract
// (readable instruction listings) but does not design it. It prints one
// line per instruction: offset, line number (or a vertical bar when
// unchanged from the previous instruction), mnemonic, and any
// operand/constant.
package disasm

import (
	"fmt"
	"io"

	"github.com/kristofer/wisp/internal/bytecode"
	"github.com/kristofer/wisp/internal/value"
)

// Chunk prints every instruction in c to w under the given name header.
func Chunk(w io.Writer, c *bytecode.Chunk, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)

	for offset := 0; offset < c.Len(); {
		offset = Instruction(w, c, offset)
	}
}

// Instruction prints the single instruction at offset and returns the
// offset of the next one.
func Instruction(w io.Writer, c *bytecode.Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)

	if offset > 0 && c.Line(offset) == c.Line(offset-1) {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Line(offset))
	}

	op := bytecode.Opcode(c.ByteAt(offset))

	if !bytecode.HasOperand(op) {
		fmt.Fprintf(w, "%s\n", op)
		return offset + 1
	}

	idx := c.ByteAt(offset + 1)
	fmt.Fprintf(w, "%-16s %4d '%s'\n", op, idx, value.Format(c.Constant(int(idx))))
	return offset + 2
}
