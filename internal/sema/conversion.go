package sema

import "github.com/dekarrin/solfront/internal/types"

// ConversionKind is the outcome of checking whether a value of one type can
// flow into another, per spec.md §4.5.
type ConversionKind int

const (
	ConvNone ConversionKind = iota // no conversion needed, types already equal
	ConvZeroExt
	ConvSignExt
	ConvTrunc
	ConvCast         // explicit-only reinterpretation (e.g. bytesN<->intN same width)
	ConvCheckingTrunc
	ConvShiftTrunc   // bytesN narrowing: right-shift then truncate
	ConvShiftZeroExt // bytesN widening: zero-extend then left-shift
	ConvInvalid
)

// Conversion describes how to get from From to To.
type Conversion struct {
	Kind       ConversionKind
	From, To   types.Type
	ExplicitOnly bool
}

// Convert computes the Conversion from `from` to `to`. `implicit` is the
// ExprContext's implicit-conversions-only mode: explicit-only conversions
// (bytesN<->intN at equal width, address<->bytesN at address width) are
// rejected when implicit is true by returning ConvInvalid.
func Convert(from, to types.Type, implicit bool, addressWidth int) Conversion {
	if from.Equal(to) {
		return Conversion{Kind: ConvNone, From: from, To: to}
	}

	switch {
	case from.IsNumeric() && to.IsNumeric():
		return convertNumeric(from, to, implicit)

	case from.Kind == types.Bytes && to.Kind == types.Bytes:
		if from.Width == to.Width {
			return Conversion{Kind: ConvNone, From: from, To: to}
		}
		if from.Width < to.Width {
			return Conversion{Kind: ConvShiftZeroExt, From: from, To: to}
		}
		return Conversion{Kind: ConvShiftTrunc, From: from, To: to}

	case from.Kind == types.Bytes && to.IsNumeric() && !to.Signed():
		if from.Width*8 == to.Width {
			if implicit {
				return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
			}
			return Conversion{Kind: ConvCast, From: from, To: to}
		}
		return Conversion{Kind: ConvInvalid}

	case from.Kind == types.Address && to.Kind == types.Bytes:
		if to.Width == addressWidth {
			if implicit {
				return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
			}
			return Conversion{Kind: ConvCast, From: from, To: to}
		}
		return Conversion{Kind: ConvInvalid}

	case from.Kind == types.Bytes && to.Kind == types.Address:
		if from.Width == addressWidth {
			if implicit {
				return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
			}
			return Conversion{Kind: ConvCast, From: from, To: to}
		}
		return Conversion{Kind: ConvInvalid}

	case from.Kind == types.DynamicBytes && to.Kind == types.String:
		if implicit {
			return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
		}
		return Conversion{Kind: ConvCast, From: from, To: to}

	case from.Kind == types.String && to.Kind == types.DynamicBytes:
		if implicit {
			return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
		}
		return Conversion{Kind: ConvCast, From: from, To: to}

	case from.Kind == types.Contract && to.Kind == types.Address:
		return Conversion{Kind: ConvNone, From: from, To: to}

	case from.Kind == types.Address && to.Kind == types.Address:
		// address -> address payable is explicit-only; the reverse is implicit
		if to.Payable && !from.Payable {
			if implicit {
				return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
			}
			return Conversion{Kind: ConvCast, From: from, To: to}
		}
		return Conversion{Kind: ConvNone, From: from, To: to}

	case from.Kind == types.UserType:
		// a user-defined value type converts like its underlying type;
		// callers that need the underlying type must unwrap it via the
		// Namespace before calling Convert (sema's expr resolver does).
		return Conversion{Kind: ConvInvalid}

	default:
		return Conversion{Kind: ConvInvalid}
	}
}

func convertNumeric(from, to types.Type, implicit bool) Conversion {
	if from.Kind == types.Rational {
		// rational constants: folding already checked range; treat as a
		// same-width no-op if the fold succeeded (expr.go guards this by
		// never calling Convert on an unfolded rational without a
		// concrete target width first).
		return Conversion{Kind: ConvNone, From: from, To: to}
	}
	if to.Kind == types.Rational {
		return Conversion{Kind: ConvInvalid}
	}

	fromSigned := from.Signed()
	toSigned := to.Signed()

	if fromSigned == toSigned {
		if from.Width == to.Width {
			return Conversion{Kind: ConvNone, From: from, To: to}
		}
		if from.Width < to.Width {
			if fromSigned {
				return Conversion{Kind: ConvSignExt, From: from, To: to}
			}
			return Conversion{Kind: ConvZeroExt, From: from, To: to}
		}
		if implicit {
			return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
		}
		return Conversion{Kind: ConvTrunc, From: from, To: to}
	}

	// signed -> unsigned or unsigned -> signed at any width is
	// explicit-only in general; it is implicit only for literals, which
	// expr.go checks before ever calling Convert for a signed<->unsigned
	// pair.
	if implicit {
		return Conversion{Kind: ConvInvalid, ExplicitOnly: true}
	}
	if !fromSigned && toSigned && from.Width < to.Width {
		return Conversion{Kind: ConvZeroExt, From: from, To: to}
	}
	return Conversion{Kind: ConvCheckingTrunc, From: from, To: to}
}

// ArithmeticCoerce returns the smallest common numeric type that
// represents both operands' sign and range, per spec.md §4.5: signed+
// unsigned widens the signed side by 8 bits up to 256.
func ArithmeticCoerce(a, b types.Type) types.Type {
	if a.Kind == types.Rational || b.Kind == types.Rational {
		return types.NewRational()
	}
	if a.Signed() == b.Signed() {
		w := a.Width
		if b.Width > w {
			w = b.Width
		}
		if a.Signed() {
			return types.NewInt(w)
		}
		return types.NewUint(w)
	}
	// mixed sign: widen the signed side by 8 bits at a time until it
	// covers the unsigned side's range, capped at 256.
	signed, unsigned := a, b
	if b.Signed() {
		signed, unsigned = b, a
	}
	w := signed.Width
	for w <= unsigned.Width && w < 256 {
		w += 8
	}
	if w > 256 {
		w = 256
	}
	return types.NewInt(w)
}
