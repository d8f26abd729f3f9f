// Package sigwork holds the two pure, stateless validators the Ledger
// Processor consults as global preconditions before touching Store: ed25519
// signature verification over a block's SigningMessage bytes (the
// signature is checked against those bytes, not against the 32-byte
// canonical hash), and proof-of-work threshold verification over a
// block's root. Grounded on the teacher's
// domain/consensus/model/pow package (a target comparison over a hash
// derived from block fields) and its utils/consensushashing streaming-hash
// idiom, adapted from kaspad's SHA256d/difficulty-bits scheme to this
// ledger's ed25519/blake2b-256 lineage.
package sigwork

import (
	"encoding/binary"

	"golang.org/x/crypto/ed25519"

	"github.com/blocklattice/ledgercore/model"
)

// VerifySignature reports whether signature is a valid ed25519 signature by
// account over message. account is interpreted as a raw ed25519 public key,
// the same 32 bytes a block's account/representative fields already carry.
func VerifySignature(account model.AccountId, message []byte, signature model.Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(account[:]), message, signature[:])
}

// VerifyBlockSignature verifies a block's Signature field over its
// SigningMessage, signed by signer.
func VerifyBlockSignature(signer model.AccountId, block model.Block) bool {
	return VerifySignature(signer, block.SigningMessage(), block.Signature())
}

// CheckWork reports whether work meets threshold for root: the top 8 bytes
// of blake2b-256(root || work-as-8-big-endian-bytes), read back as a
// big-endian uint64, must be >= threshold. Higher threshold means harder
// work, the same sense CheckProofOfWorkWithTarget's Cmp direction encodes
// for kaspad's hash-below-target rule, inverted because this ledger defines
// work validity as a minimum rather than a maximum.
func CheckWork(root model.Hash, work model.Work, threshold uint64) bool {
	return workValue(root, work) >= threshold
}

func workValue(root model.Hash, work model.Work) uint64 {
	var workBytes [8]byte
	binary.BigEndian.PutUint64(workBytes[:], uint64(work))

	w := model.NewHashWriter()
	_, _ = w.Write(root[:])
	_, _ = w.Write(workBytes[:])
	digest := w.Finalize()

	return binary.BigEndian.Uint64(digest[:8])
}

// FindWork brute-forces a work value meeting threshold for root. It exists
// for tests and tooling that need to synthesize valid blocks; production
// callers only ever verify work, never generate it (spec.md's Non-goals
// excludes work generation from the core).
func FindWork(root model.Hash, threshold uint64) model.Work {
	for w := model.Work(0); ; w++ {
		if CheckWork(root, w, threshold) {
			return w
		}
	}
}
