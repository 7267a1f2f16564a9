package cell

import "testing"

func TestIsFalselike(t *testing.T) {
	falsy := &Cell{Tag: Boolean, Boolean: false}
	truthy := &Cell{Tag: Boolean, Boolean: true}
	empty := &Cell{Tag: EmptyList}
	nilSym := &Cell{Tag: Symbol, Symbol: "nil"}
	otherSym := &Cell{Tag: Symbol, Symbol: "t"}
	fixnum := &Cell{Tag: Fixnum, Fixnum: 0}

	cases := []struct {
		name string
		v    *Cell
		want bool
	}{
		{"nil pointer", nil, true},
		{"#f", falsy, true},
		{"#t", truthy, false},
		{"empty list", empty, true},
		{"symbol nil", nilSym, true},
		{"other symbol", otherSym, false},
		{"fixnum zero", fixnum, false},
	}
	for _, c := range cases {
		if got := IsFalselike(c.v); got != c.want {
			t.Errorf("%s: IsFalselike = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestIsCallable(t *testing.T) {
	callable := []Tag{CompiledProc, CompiledSyntaxProc, PrimitiveProc, MetaProc}
	for _, tag := range callable {
		if !IsCallable(&Cell{Tag: tag}) {
			t.Errorf("tag %v should be callable", tag)
		}
	}

	notCallable := []Tag{Pair, Fixnum, Symbol, String, Vector, HashTable, Boolean, EmptyList}
	for _, tag := range notCallable {
		if IsCallable(&Cell{Tag: tag}) {
			t.Errorf("tag %v should not be callable", tag)
		}
	}
}

func TestUnwrapMeta(t *testing.T) {
	inner := &Cell{Tag: PrimitiveProc}
	wrapped := &Cell{Tag: MetaProc, Car: inner, Cdr: &Cell{Tag: Pair}}
	doubleWrapped := &Cell{Tag: MetaProc, Car: wrapped}

	if got := UnwrapMeta(inner); got != inner {
		t.Errorf("unwrapping a non-meta proc should return it unchanged")
	}
	if got := UnwrapMeta(wrapped); got != inner {
		t.Errorf("single unwrap: got %v, want inner", got)
	}
	if got := UnwrapMeta(doubleWrapped); got != inner {
		t.Errorf("nested unwrap: got %v, want inner", got)
	}
	if got := UnwrapMeta(nil); got != nil {
		t.Errorf("unwrapping nil should return nil, got %v", got)
	}
}

func TestTagString(t *testing.T) {
	if Fixnum.String() != "fixnum" {
		t.Errorf("Fixnum.String() = %q", Fixnum.String())
	}
	if got := Tag(255).String(); got != "tag(255)" {
		t.Errorf("unknown tag String() = %q, want tag(255)", got)
	}
}
