package types

// ABI selects the canonical-signature/dispatch formatting rule a target
// uses; spec.md's open question leaves concrete selector/address widths to
// the descriptor, never hard-coded in the resolver or selector computation.
type ABI int

const (
	ABIEthereum ABI = iota
	ABISoroban
)

func (a ABI) String() string {
	if a == ABISoroban {
		return "soroban"
	}
	return "ethereum"
}

// Target is the per-compilation descriptor threaded through every pass that
// needs a width or dispatch convention: the address width, the native
// machine-word width, the selector length, and the storage-slot width are
// all target parameters, never literals baked into the core (spec.md §9
// open questions).
type Target struct {
	Name string

	AddressWidth int // bytes
	NativeWidth  int // bits, e.g. 256 for EVM words
	SelectorLength int // bytes, e.g. 4 for Ethereum-style dispatch
	StorageSlotWidth int // bytes per storage slot

	ABI ABI

	// SparseSlotIsAddressWide reports whether this target's storage slot
	// type is address-wide, which changes the sparse-array hashing path
	// per spec.md §4.7's "Storage arrays and bytes" rule. Left as a target
	// parameter rather than guessed from other fields.
	SparseSlotIsAddressWide bool
}

// EVM is the default Ethereum-style target: 20-byte addresses, 256-bit
// native words, 4-byte selectors, 32-byte storage slots.
func EVM() Target {
	return Target{
		Name:             "evm",
		AddressWidth:     20,
		NativeWidth:      256,
		SelectorLength:   4,
		StorageSlotWidth: 32,
		ABI:              ABIEthereum,
	}
}

// Soroban is a second dispatch ABI (per original_source/'s
// src/codegen/dispatch/soroban.rs), kept distinct only in ABI and
// SelectorLength; a function's resolved Mutability and parameter encoding
// stay ABI-agnostic.
func Soroban() Target {
	return Target{
		Name:             "soroban",
		AddressWidth:     32,
		NativeWidth:      64,
		SelectorLength:   8,
		StorageSlotWidth: 8,
		ABI:              ABISoroban,
	}
}
