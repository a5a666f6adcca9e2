package lex

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// validateStringEscapes validates (but does not need to fully decode for the
// caller, since the resolver re-derives the value) the escape sequences in
// a double-quoted or single-quoted string literal's raw lexeme (quotes
// included). It supports \xNN, \uNNNN, octal escapes (\0-\377) and the
// single-character escapes (\n \r \t \\ \' \" \0). It returns the list of
// problems found; each is non-fatal.
func validateStringEscapes(raw string) []string {
	if len(raw) < 2 {
		return nil
	}
	body := raw[1 : len(raw)-1]
	var problems []string

	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			continue
		}
		if i+1 >= len(body) {
			problems = append(problems, "unterminated escape sequence at end of string")
			break
		}
		esc := body[i+1]
		switch esc {
		case 'n', 'r', 't', '\\', '\'', '"', '\n':
			i++
		case 'x':
			if i+3 >= len(body) || !isHexDigit(body[i+2]) || !isHexDigit(body[i+3]) {
				problems = append(problems, fmt.Sprintf("invalid hex escape at offset %d: expected exactly 2 hex digits after \\x", i))
			}
			i += 3
		case 'u':
			if i+5 >= len(body) {
				problems = append(problems, fmt.Sprintf("invalid unicode escape at offset %d: expected 4 hex digits after \\u", i))
				i = len(body)
				break
			}
			for j := 2; j <= 5; j++ {
				if !isHexDigit(body[i+j]) {
					problems = append(problems, fmt.Sprintf("invalid unicode escape at offset %d: expected 4 hex digits after \\u", i))
					break
				}
			}
			i += 5
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i + 1
			n := 0
			for n < 3 && j < len(body) && body[j] >= '0' && body[j] <= '7' {
				j++
				n++
			}
			i = j - 1
		default:
			problems = append(problems, fmt.Sprintf("unknown escape sequence '\\%c' at offset %d", esc, i))
			i++
		}
	}
	return problems
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// validateHexStringLiteral checks a `hex"..."` literal's digit body is
// even-length, per spec. Odd-length hex strings are reported but the token
// is still emitted with best-effort bytes (the caller is not responsible
// for truncating; it only reports).
func validateHexStringLiteral(raw string) []string {
	start := strings.IndexByte(raw, '"')
	end := strings.LastIndexByte(raw, '"')
	if start < 0 || end <= start {
		return []string{"malformed hex string literal"}
	}
	body := strings.ReplaceAll(raw[start+1:end], "_", "")
	if len(body)%2 != 0 {
		return []string{fmt.Sprintf("hex string literal has odd number of digits (%d)", len(body))}
	}
	for i := 0; i < len(body); i++ {
		if !isHexDigit(body[i]) {
			return []string{fmt.Sprintf("invalid hex digit %q in hex string literal", body[i])}
		}
	}
	return nil
}

// validateUnicodeStringLiteral runs a quick normalization-form check over a
// `unicode"..."` literal's code points. It never rewrites the literal — the
// spec requires code points be preserved verbatim — it only warns when the
// text mixes normalization forms in a way likely to indicate an accidental
// paste of look-alike characters.
func validateUnicodeStringLiteral(raw string) []string {
	start := strings.IndexByte(raw, '"')
	end := strings.LastIndexByte(raw, '"')
	if start < 0 || end <= start {
		return nil
	}
	body := raw[start+1 : end]
	if !utf8.ValidString(body) {
		return []string{"unicode string literal contains invalid UTF-8"}
	}
	if !norm.NFC.IsNormalString(body) && !norm.NFD.IsNormalString(body) {
		return []string{"unicode string literal mixes normalization forms; consider normalizing to NFC"}
	}
	return nil
}

// NumberLiteral is the decomposition of a numeric literal's raw lexeme into
// its digits and its optional Yul-style `:type` suffix (e.g. "3:u256").
// Both the digits and the suffix are kept verbatim, per spec.
type NumberLiteral struct {
	Digits string
	Suffix string // "" if no suffix was present
	IsHex  bool
}

// ParseNumberLiteral splits a lexed number-literal lexeme into digits and
// suffix. It does not evaluate the digits; that is constant-folding's job
// (internal/sema).
func ParseNumberLiteral(lexeme string) NumberLiteral {
	digits, suffix, hasSuffix := strings.Cut(lexeme, ":")
	nl := NumberLiteral{Digits: digits}
	if hasSuffix {
		nl.Suffix = suffix
	}
	if strings.HasPrefix(strings.ToLower(digits), "0x") {
		nl.IsHex = true
	}
	return nl
}

// FitsSuffixWidth reports whether the literal's value fits in the bit width
// implied by a Yul numeric type suffix such as "u256" or "u32". An empty or
// unrecognized suffix is treated as always fitting (the caller should have
// already rejected the suffix as invalid).
func (nl NumberLiteral) FitsSuffixWidth() bool {
	width, ok := yulSuffixWidth(nl.Suffix)
	if !ok {
		return true
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(nl.Digits), "0x"), hexOrDec(nl.IsHex), 64)
	if err != nil {
		// literal does not fit uint64 at all; only meaningful for width==256,
		// which cannot be represented by this best-effort check, so assume ok
		// and let sema's full bignum constant-folding catch it.
		return width >= 256
	}
	if width >= 64 {
		return true
	}
	return v < (uint64(1) << width)
}

func hexOrDec(isHex bool) int {
	if isHex {
		return 16
	}
	return 10
}

func yulSuffixWidth(suffix string) (int, bool) {
	switch suffix {
	case "u8", "s8":
		return 8, true
	case "u32", "s32":
		return 32, true
	case "u64", "s64":
		return 64, true
	case "u128", "s128":
		return 128, true
	case "u256", "s256":
		return 256, true
	default:
		return 0, false
	}
}

// IsSignedYulSuffix reports whether suffix names a signed Yul numeric type.
func IsSignedYulSuffix(suffix string) bool {
	return strings.HasPrefix(suffix, "s")
}

// ValidYulSuffix reports whether suffix is one of Yul's builtin numeric
// type names.
func ValidYulSuffix(suffix string) bool {
	_, ok := yulSuffixWidth(suffix)
	return ok
}
