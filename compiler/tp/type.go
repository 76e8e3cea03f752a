package tp

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	// Type is a scalar type of the language.
	Type int8
)

const (
	Mismatch Type = -1 - iota
)

const (
	U8 Type = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
	Bool
	Void

	numTypes
)

var names = [numTypes]string{
	U8:   "u8",
	U16:  "u16",
	U32:  "u32",
	U64:  "u64",
	I8:   "i8",
	I16:  "i16",
	I32:  "i32",
	I64:  "i64",
	F32:  "f32",
	F64:  "f64",
	Bool: "bool",
	Void: "void",
}

// Lookup returns a type by its keyword.
func Lookup(name string) (Type, bool) {
	for t, n := range names {
		if n == name {
			return Type(t), true
		}
	}

	return Mismatch, false
}

// All returns scalar types in declaration order.
func All() []Type {
	r := make([]Type, numTypes)

	for t := range r {
		r[t] = Type(t)
	}

	return r
}

func (t Type) Valid() bool { return t >= 0 && t < numTypes }

// Bits is the width of the value. Zero for void.
func (t Type) Bits() int {
	switch t {
	case U8, I8:
		return 8
	case U16, I16:
		return 16
	case U32, I32, F32:
		return 32
	case U64, I64, F64:
		return 64
	case Bool:
		return 1
	case Void, Mismatch:
		return 0
	}

	panic(t)
}

func (t Type) Size() int {
	return (t.Bits() + 7) / 8
}

func (t Type) Signed() bool {
	switch t {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

func (t Type) Unsigned() bool {
	switch t {
	case U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

func (t Type) Integer() bool { return t.Signed() || t.Unsigned() }

func (t Type) Float() bool { return t == F32 || t == F64 }

// Value reports whether the type can be stored and computed with.
func (t Type) Value() bool { return t.Valid() && t != Void }

func (t Type) String() string {
	if t.Valid() {
		return names[t]
	}

	if t == Mismatch {
		return "<mismatch>"
	}

	return "<bad type>"
}

func (t Type) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, t.String())
}
