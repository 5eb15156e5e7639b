package value

import "testing"

func TestEqualNumbers(t *testing.T) {
	if !Equal(Number(3), Number(3)) {
		t.Fatal("expected 3 == 3")
	}
	if Equal(Number(3), Number(4)) {
		t.Fatal("expected 3 != 4")
	}
}

func TestEqualTypeMismatchIsFalse(t *testing.T) {
	if Equal(Number(0), Bool(false)) {
		t.Fatal("0 and False must never compare equal")
	}
	if Equal(None, Bool(false)) {
		t.Fatal("None and False must never compare equal")
	}
}

func TestIsFalsey(t *testing.T) {
	cases := []struct {
		v       Value
		falsey  bool
	}{
		{None, true},
		{Bool(false), true},
		{Bool(true), false},
		{Number(0), false},
		{Number(1), false},
	}

	for _, c := range cases {
		if got := c.v.IsFalsey(); got != c.falsey {
			t.Errorf("IsFalsey(%v) = %v, want %v", c.v, got, c.falsey)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{None, "None"},
		{Bool(true), "True"},
		{Bool(false), "False"},
		{Number(3), "3"},
		{Number(3.5), "3.5"},
	}

	for _, c := range cases {
		if got := Format(c.v); got != c.want {
			t.Errorf("Format(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestArrayWriteGet(t *testing.T) {
	var a Array
	i := a.Write(Number(42))
	if i != 0 {
		t.Fatalf("expected index 0, got %d", i)
	}
	if a.Len() != 1 {
		t.Fatalf("expected len 1, got %d", a.Len())
	}
	got := a.Get(0)
	if got.Num != 42 {
		t.Fatalf("expected 42, got %v", got)
	}
}
