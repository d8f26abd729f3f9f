package model

import "math/big"

// AmountSize is the size, in bytes, of a serialized Amount.
const AmountSize = 16

// Amount is a 128-bit unsigned integer, stored big-endian. The total supply
// of the ledger (2^128 - 1) fits without overflow.
type Amount [AmountSize]byte

// ZeroAmount is the additive identity.
var ZeroAmount Amount

// AmountFromUint64 builds an Amount from a uint64 value.
func AmountFromUint64(v uint64) Amount {
	var a Amount
	for i := 0; i < 8; i++ {
		a[AmountSize-1-i] = byte(v >> (8 * i))
	}
	return a
}

// AmountFromBigInt builds an Amount from a big.Int. Panics if neg or too
// large to fit in 128 bits - callers in this ledger never construct an
// out-of-range amount because every balance delta is checked before it
// reaches here.
func AmountFromBigInt(v *big.Int) Amount {
	if v.Sign() < 0 {
		panic("model: negative amount")
	}
	var a Amount
	b := v.Bytes()
	if len(b) > AmountSize {
		panic("model: amount overflows 128 bits")
	}
	copy(a[AmountSize-len(b):], b)
	return a
}

// BigInt returns a's value as a big.Int.
func (a Amount) BigInt() *big.Int {
	return new(big.Int).SetBytes(a[:])
}

// IsZero reports whether a is zero.
func (a Amount) IsZero() bool {
	return a == ZeroAmount
}

// Cmp compares a and other, returning -1, 0 or 1.
func (a Amount) Cmp(other Amount) int {
	return a.BigInt().Cmp(other.BigInt())
}

// Add returns a+b.
func (a Amount) Add(b Amount) Amount {
	return AmountFromBigInt(new(big.Int).Add(a.BigInt(), b.BigInt()))
}

// Sub returns a-b. Callers must ensure a >= b; this mirrors the ledger's
// invariant that balances and weights never go negative.
func (a Amount) Sub(b Amount) Amount {
	return AmountFromBigInt(new(big.Int).Sub(a.BigInt(), b.BigInt()))
}

// MaxAmount is 2^128 - 1, the maximum representable amount. The genesis
// Open block credits genesis.Params.TotalSupply, not this value.
func MaxAmount() Amount {
	var a Amount
	for i := range a {
		a[i] = 0xff
	}
	return a
}

// halves splits a into big-endian high/low uint64 halves, the form
// binaryserializer.PutUint128 serializes.
func (a Amount) halves() (hi, lo uint64) {
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(a[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(a[i])
	}
	return hi, lo
}

// amountFromHalves is the inverse of Amount.halves.
func amountFromHalves(hi, lo uint64) Amount {
	var a Amount
	for i := 0; i < 8; i++ {
		a[7-i] = byte(hi >> (8 * i))
	}
	for i := 0; i < 8; i++ {
		a[15-i] = byte(lo >> (8 * i))
	}
	return a
}
