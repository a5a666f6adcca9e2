// Package types implements the tagged Type variant from spec.md §3 and the
// per-compilation target descriptor it is parameterized over. A Type value
// is immutable and comparable by Equal; none of these types ever own a
// Namespace back-reference, only small integer IDs, per spec.md §9's
// "cyclic references" design note.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the tagged Type variant.
type Kind int

const (
	Invalid Kind = iota
	Bool
	Int        // signed integer, Width bits
	Uint       // unsigned integer, Width bits
	Rational   // arbitrary-precision rational, used for constant expressions
	Bytes      // fixed-length bytes(n), n in 1..32, Width holds n
	DynamicBytes
	String
	Address    // Payable marks `address payable`
	Contract   // ID indexes Namespace contracts
	Enum       // ID indexes Namespace enums
	Struct     // ID indexes Namespace structs; ID < 0 means a builtin struct
	UserType   // ID indexes Namespace user-defined value types
	Array      // Elem + Dim
	Mapping    // Elem (value) + Key (via Params[0])
	FunctionInternal
	FunctionExternal
	Ref        // l-value marker: a mutable reference to Elem
	StorageRef // l-value marker: a reference into storage; Immutable flag
	FunctionSelector
	Slice // Elem, used for in-memory/calldata slices distinct from Array
	Void
	Unresolved // resolution failed; carries no further information
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Rational:
		return "rational"
	case Bytes:
		return "bytes(n)"
	case DynamicBytes:
		return "bytes"
	case String:
		return "string"
	case Address:
		return "address"
	case Contract:
		return "contract"
	case Enum:
		return "enum"
	case Struct:
		return "struct"
	case UserType:
		return "user-type"
	case Array:
		return "array"
	case Mapping:
		return "mapping"
	case FunctionInternal:
		return "function-internal"
	case FunctionExternal:
		return "function-external"
	case Ref:
		return "ref"
	case StorageRef:
		return "storage-ref"
	case FunctionSelector:
		return "function-selector"
	case Slice:
		return "slice"
	case Void:
		return "void"
	case Unresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Mutability classifies function state-access per spec.md §3.
type Mutability int

const (
	Pure Mutability = iota
	View
	Nonpayable
	Payable
)

func (m Mutability) String() string {
	switch m {
	case Pure:
		return "pure"
	case View:
		return "view"
	case Nonpayable:
		return "nonpayable"
	case Payable:
		return "payable"
	default:
		return "mutability?"
	}
}

// Dim is an array dimension: fixed size, dynamic (length-prefixed), or
// "any fixed size" used only in function-parameter type matching (T[] vs
// T[k] overload candidates during declaration, never on a resolved value).
type DimKind int

const (
	DimFixed DimKind = iota
	DimDynamic
	DimAnyFixed
)

type Dim struct {
	Kind DimKind
	Size int64 // meaningful only when Kind == DimFixed
}

func Fixed(n int64) Dim  { return Dim{Kind: DimFixed, Size: n} }
func Dynamic() Dim       { return Dim{Kind: DimDynamic} }
func AnyFixed() Dim      { return Dim{Kind: DimAnyFixed} }

func (d Dim) String() string {
	switch d.Kind {
	case DimFixed:
		return fmt.Sprintf("%d", d.Size)
	case DimDynamic:
		return ""
	default:
		return "*"
	}
}

// Param describes one entry of a function pointer's parameter or return
// list; Name is optional (Yul/unnamed returns omit it).
type Param struct {
	Name string
	Type Type
}

// Type is the tagged variant. Only the fields relevant to Kind are set;
// callers must not read fields outside their Kind's contract.
type Type struct {
	Kind Kind

	Width int  // Int/Uint bit-width, or Bytes(n) length
	Payable bool // Address

	ID int // Contract/Enum/Struct/UserType entity ID; Struct ID<0 => builtin

	Elem *Type // Array/Mapping value/Ref/StorageRef/Slice element
	Key  *Type // Mapping key
	Dim  Dim   // Array dimension

	Params  []Param // function parameter list
	Returns []Param // function return list
	Mut     Mutability

	Immutable bool // StorageRef only: refers to an `immutable` declaration
}

// Equal reports structural equality, per spec.md's requirement that two
// independently-resolved types compare equal iff they denote the same type.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Int, Uint, Bytes:
		return t.Width == o.Width
	case Address:
		return t.Payable == o.Payable
	case Contract, Enum, Struct, UserType:
		return t.ID == o.ID
	case Array:
		return t.Dim == o.Dim && elemEqual(t.Elem, o.Elem)
	case Mapping:
		return elemEqual(t.Key, o.Key) && elemEqual(t.Elem, o.Elem)
	case FunctionInternal, FunctionExternal:
		return t.Mut == o.Mut && paramsEqual(t.Params, o.Params) && paramsEqual(t.Returns, o.Returns)
	case Ref:
		return elemEqual(t.Elem, o.Elem)
	case StorageRef:
		return t.Immutable == o.Immutable && elemEqual(t.Elem, o.Elem)
	case Slice:
		return elemEqual(t.Elem, o.Elem)
	default:
		return true
	}
}

func elemEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func paramsEqual(a, b []Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

// IsNumeric reports whether t is Int, Uint, or Rational.
func (t Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Uint || t.Kind == Rational
}

// Signed reports whether t is a signed integer kind.
func (t Type) Signed() bool { return t.Kind == Int }

// String renders a canonical, human-facing rendering (also used, with
// selector.go's CanonicalSignature, as the basis for ABI signature text).
func (t Type) String() string {
	switch t.Kind {
	case Bool:
		return "bool"
	case Int:
		return fmt.Sprintf("int%d", t.Width)
	case Uint:
		return fmt.Sprintf("uint%d", t.Width)
	case Rational:
		return "rational"
	case Bytes:
		return fmt.Sprintf("bytes%d", t.Width)
	case DynamicBytes:
		return "bytes"
	case String:
		return "string"
	case Address:
		if t.Payable {
			return "address payable"
		}
		return "address"
	case Contract:
		return fmt.Sprintf("contract#%d", t.ID)
	case Enum:
		return fmt.Sprintf("enum#%d", t.ID)
	case Struct:
		return fmt.Sprintf("struct#%d", t.ID)
	case UserType:
		return fmt.Sprintf("usertype#%d", t.ID)
	case Array:
		if t.Elem == nil {
			return "<invalid>[" + t.Dim.String() + "]"
		}
		return t.Elem.String() + "[" + t.Dim.String() + "]"
	case Mapping:
		return fmt.Sprintf("mapping(%s => %s)", t.Key.String(), t.Elem.String())
	case FunctionInternal, FunctionExternal:
		kind := "internal"
		if t.Kind == FunctionExternal {
			kind = "external"
		}
		var ps []string
		for _, p := range t.Params {
			ps = append(ps, p.Type.String())
		}
		var rs []string
		for _, r := range t.Returns {
			rs = append(rs, r.Type.String())
		}
		s := fmt.Sprintf("function(%s) %s %s", strings.Join(ps, ","), kind, t.Mut)
		if len(rs) > 0 {
			s += " returns (" + strings.Join(rs, ",") + ")"
		}
		return s
	case Ref:
		return "ref " + t.Elem.String()
	case StorageRef:
		imm := ""
		if t.Immutable {
			imm = "immutable "
		}
		return "storage-ref " + imm + t.Elem.String()
	case FunctionSelector:
		return "bytes4"
	case Slice:
		return t.Elem.String() + "[]slice"
	case Void:
		return "void"
	case Unresolved:
		return "<unresolved>"
	default:
		return "<invalid>"
	}
}

// Constructors for the common leaf kinds; composite kinds are built with
// struct literals since they need submitted sub-Type pointers anyway.

func NewBool() Type                 { return Type{Kind: Bool} }
func NewInt(width int) Type         { return Type{Kind: Int, Width: width} }
func NewUint(width int) Type        { return Type{Kind: Uint, Width: width} }
func NewRational() Type             { return Type{Kind: Rational} }
func NewBytes(n int) Type           { return Type{Kind: Bytes, Width: n} }
func NewDynamicBytes() Type         { return Type{Kind: DynamicBytes} }
func NewString() Type               { return Type{Kind: String} }
func NewAddress(payable bool) Type  { return Type{Kind: Address, Payable: payable} }
func NewContract(id int) Type       { return Type{Kind: Contract, ID: id} }
func NewEnum(id int) Type           { return Type{Kind: Enum, ID: id} }
func NewStruct(id int) Type         { return Type{Kind: Struct, ID: id} }
func NewUserType(id int) Type       { return Type{Kind: UserType, ID: id} }
func NewVoid() Type                 { return Type{Kind: Void} }
func NewUnresolved() Type           { return Type{Kind: Unresolved} }
func NewFunctionSelector() Type     { return Type{Kind: FunctionSelector} }

func NewArray(elem Type, dim Dim) Type {
	e := elem
	return Type{Kind: Array, Elem: &e, Dim: dim}
}

func NewMapping(key, value Type) Type {
	k, v := key, value
	return Type{Kind: Mapping, Key: &k, Elem: &v}
}

func NewRef(elem Type) Type {
	e := elem
	return Type{Kind: Ref, Elem: &e}
}

func NewStorageRef(immutable bool, elem Type) Type {
	e := elem
	return Type{Kind: StorageRef, Immutable: immutable, Elem: &e}
}

func NewSlice(elem Type) Type {
	e := elem
	return Type{Kind: Slice, Elem: &e}
}

func NewFunction(external bool, params, returns []Param, mut Mutability) Type {
	k := FunctionInternal
	if external {
		k = FunctionExternal
	}
	return Type{Kind: k, Params: params, Returns: returns, Mut: mut}
}
