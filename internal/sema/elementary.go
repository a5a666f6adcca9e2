// Package sema implements spec.md §4.4-§4.6: the type-name/field resolver,
// the expression resolver, the statement resolver, contract linearization,
// and selector computation. Every entry point takes a *namespace.Namespace
// and a *parse.Tree and returns a resolved internal/ast node, pushing
// diagnostics into the Namespace rather than returning a Go error (spec.md
// §7's propagation policy).
package sema

import (
	"regexp"
	"strconv"

	"github.com/dekarrin/solfront/internal/types"
)

var (
	reUint = regexp.MustCompile(`^uint(\d*)$`)
	reInt  = regexp.MustCompile(`^int(\d*)$`)
	reBytesN = regexp.MustCompile(`^bytes(\d+)$`)
)

// elementaryByName recognizes the identifier-lexeme built-in types that the
// lexer cannot distinguish from a user identifier at scan time (uint256,
// int8, bytes32, ...): the parser emits these as "user-defined-type" nodes
// and sema resolves them to a concrete types.Type here before ever
// consulting the symbol table, matching the Solidity-family convention
// that elementary numeric/bytes type keywords are not reserved words.
func elementaryByName(name string) (types.Type, bool) {
	if m := reUint.FindStringSubmatch(name); m != nil {
		width := 256
		if m[1] != "" {
			w, err := strconv.Atoi(m[1])
			if err != nil || w < 8 || w > 256 || w%8 != 0 {
				return types.Type{}, false
			}
			width = w
		}
		return types.NewUint(width), true
	}
	if m := reInt.FindStringSubmatch(name); m != nil {
		width := 256
		if m[1] != "" {
			w, err := strconv.Atoi(m[1])
			if err != nil || w < 8 || w > 256 || w%8 != 0 {
				return types.Type{}, false
			}
			width = w
		}
		return types.NewInt(width), true
	}
	if name == "byte" {
		return types.NewBytes(1), true
	}
	if m := reBytesN.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 32 {
			return types.Type{}, false
		}
		return types.NewBytes(n), true
	}
	return types.Type{}, false
}
