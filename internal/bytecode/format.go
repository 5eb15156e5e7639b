// Bytecode file persistence: the .sg binary format.
//
// Precompiling a .wisp source file to a .sg bytecode file is a CLI-level
// convenience (spec.md's core contract never mentions persistence — see
// SPEC_FULL.md §3.2): a small fixed header (magic number, format version),
// then a constants section, then an instructions section. The compiler
// only puts numbers and strings into the constant pool (None, True and
// False are emitted as OpNone/OpTrue/OpFalse, which carry no constant);
// the format also has a tag for booleans, so the type tag set is three
// entries.
package bytecode

import (
	"encoding/binary"
	"io"

	"github.com/kristofer/wisp/internal/object"
	"github.com/kristofer/wisp/internal/value"
	"github.com/pkg/errors"
)

const (
	// magicNumber is the file signature for .sg files: ASCII "WISP" read
	// as a big-endian uint32. It is written little-endian, so the file's
	// first four bytes are "PSIW".
	magicNumber uint32 = 0x57495350
	// formatVersion is the current .sg format version.
	formatVersion uint32 = 1
)

const (
	constTypeNumber byte = 0x01
	constTypeString byte = 0x02
	constTypeBool   byte = 0x03
)

// Encode writes c to w in the .sg binary format.
func Encode(c *Chunk, w io.Writer) error {
	if err := writeHeader(w); err != nil {
		return errors.Wrap(err, "write header")
	}
	if err := writeConstants(w, c); err != nil {
		return errors.Wrap(err, "write constants")
	}
	if err := writeCode(w, c); err != nil {
		return errors.Wrap(err, "write code")
	}
	return nil
}

// Decode reads a Chunk from r in the .sg binary format. Decoded string
// constants are interned into heap, exactly as string literals encountered
// during compilation would be.
func Decode(r io.Reader, heap *object.Heap) (*Chunk, error) {
	if err := readHeader(r); err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	c := NewChunk()
	if err := readConstants(r, c, heap); err != nil {
		return nil, errors.Wrap(err, "read constants")
	}
	if err := readCode(r, c); err != nil {
		return nil, errors.Wrap(err, "read code")
	}
	return c, nil
}

func writeHeader(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, magicNumber); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, formatVersion)
}

func readHeader(r io.Reader) error {
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return err
	}
	if magic != magicNumber {
		return errors.Errorf("invalid magic number: 0x%08X (expected 0x%08X)", magic, magicNumber)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return err
	}
	if version != formatVersion {
		return errors.Errorf("unsupported bytecode version: %d (expected %d)", version, formatVersion)
	}
	return nil
}

func writeConstants(w io.Writer, c *Chunk) error {
	count := uint32(c.ConstantsLen())
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return err
	}

	for i := 0; i < c.ConstantsLen(); i++ {
		if err := writeConstant(w, c.Constant(i)); err != nil {
			return errors.Wrapf(err, "constant %d", i)
		}
	}
	return nil
}

func writeConstant(w io.Writer, v value.Value) error {
	switch v.Type {
	case value.TypeNumber:
		if err := binary.Write(w, binary.LittleEndian, constTypeNumber); err != nil {
			return err
		}
		return binary.Write(w, binary.LittleEndian, v.Num)

	case value.TypeBool:
		if err := binary.Write(w, binary.LittleEndian, constTypeBool); err != nil {
			return err
		}
		var b byte
		if v.Bool {
			b = 1
		}
		return binary.Write(w, binary.LittleEndian, b)

	case value.TypeObj:
		str, ok := v.Obj.(*object.String)
		if !ok {
			return errors.Errorf("unsupported object constant: %T", v.Obj)
		}
		if err := binary.Write(w, binary.LittleEndian, constTypeString); err != nil {
			return err
		}
		bytes := []byte(str.Chars())
		if err := binary.Write(w, binary.LittleEndian, uint32(len(bytes))); err != nil {
			return err
		}
		_, err := w.Write(bytes)
		return err

	default:
		return errors.Errorf("unsupported constant type: %v", v.Type)
	}
}

// readConstants reads constants into c, interning any strings into heap so
// they dedupe against each other and against anything else later interned
// into the same heap (e.g. by a subsequent compile in the same VM session).
func readConstants(r io.Reader, c *Chunk, heap *object.Heap) error {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		v, err := readConstant(r, heap)
		if err != nil {
			return errors.Wrapf(err, "constant %d", i)
		}
		c.AddConstant(v)
	}
	return nil
}

func readConstant(r io.Reader, heap *object.Heap) (value.Value, error) {
	var typ byte
	if err := binary.Read(r, binary.LittleEndian, &typ); err != nil {
		return value.Value{}, err
	}

	switch typ {
	case constTypeNumber:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return value.Value{}, err
		}
		return value.Number(f), nil

	case constTypeBool:
		var b byte
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b != 0), nil

	case constTypeString:
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return value.Value{}, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return value.Value{}, err
		}
		return value.FromObj(heap.Intern(string(buf))), nil

	default:
		return value.Value{}, errors.Errorf("unknown constant type tag: 0x%02X", typ)
	}
}

func writeCode(w io.Writer, c *Chunk) error {
	count := uint32(c.Len())
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return err
	}
	for i := 0; i < c.Len(); i++ {
		if err := binary.Write(w, binary.LittleEndian, c.ByteAt(i)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(c.Line(i))); err != nil {
			return err
		}
	}
	return nil
}

func readCode(r io.Reader, c *Chunk) error {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		var b byte
		var line int32
		if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &line); err != nil {
			return err
		}
		c.Write(b, int(line))
	}
	return nil
}
