package sigwork

import (
	"crypto/rand"
	"testing"

	"golang.org/x/crypto/ed25519"

	"github.com/blocklattice/ledgercore/model"
)

func TestVerifySignatureRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	var account model.AccountId
	copy(account[:], pub)

	message := []byte("block signing message")
	raw := ed25519.Sign(priv, message)
	var sig model.Signature
	copy(sig[:], raw)

	if !VerifySignature(account, message, sig) {
		t.Fatalf("expected valid signature to verify")
	}

	sig[0] ^= 0xFF
	if VerifySignature(account, message, sig) {
		t.Fatalf("expected tampered signature to fail")
	}
}

func TestCheckWorkThreshold(t *testing.T) {
	var root model.Hash
	root[0] = 0x42

	const threshold = uint64(1) << 40

	work := FindWork(root, threshold)
	if !CheckWork(root, work, threshold) {
		t.Fatalf("FindWork produced work that does not meet its own threshold")
	}

	if CheckWork(root, work, ^uint64(0)) {
		t.Fatalf("did not expect work to meet an unreasonably high threshold")
	}
}

func TestCheckWorkDependsOnRoot(t *testing.T) {
	var rootA, rootB model.Hash
	rootA[0] = 1
	rootB[0] = 2

	const threshold = uint64(1) << 40
	work := FindWork(rootA, threshold)

	if workValue(rootA, work) == workValue(rootB, work) {
		t.Fatalf("expected work value to depend on root")
	}
}
