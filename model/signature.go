package model

// SignatureSize is the size, in bytes, of a Signature (an ed25519 signature).
const SignatureSize = 64

// Signature is a 512-bit ed25519-style signature over a block or vote hash.
type Signature [SignatureSize]byte

// Work is a 64-bit proof-of-work nonce, found by the external work
// generator referenced in spec.md §1 and verified in package sigwork.
type Work uint64

// Sequence is a 64-bit counter, monotone per voter per election root, used
// to order a voter's successive votes.
type Sequence uint64
