package model

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/blocklattice/ledgercore/util/binaryserializer"
)

// EncodeBlock writes the bit-exact, big-endian wire encoding of b: a one
// byte kind tag followed by the kind's fields in the order spec.md §6
// lists, followed by signature and work.
func EncodeBlock(w io.Writer, b Block) error {
	if err := binaryserializer.PutUint8(w, uint8(b.Kind())); err != nil {
		return err
	}
	switch blk := b.(type) {
	case *SendBlock:
		return encodeSend(w, blk)
	case *ReceiveBlock:
		return encodeReceive(w, blk)
	case *OpenBlock:
		return encodeOpen(w, blk)
	case *ChangeBlock:
		return encodeChange(w, blk)
	case *StateBlock:
		return encodeState(w, blk)
	default:
		return errors.Errorf("model: EncodeBlock: unknown block type %T", b)
	}
}

// DecodeBlock reads a block written by EncodeBlock.
func DecodeBlock(r io.Reader) (Block, error) {
	tag, err := binaryserializer.Uint8(r)
	if err != nil {
		return nil, err
	}
	switch Kind(tag) {
	case KindSend:
		return decodeSend(r)
	case KindReceive:
		return decodeReceive(r)
	case KindOpen:
		return decodeOpen(r)
	case KindChange:
		return decodeChange(r)
	case KindState:
		return decodeState(r)
	default:
		return nil, errors.Errorf("model: DecodeBlock: unknown kind tag %d", tag)
	}
}

// EncodeBlockToBytes is a convenience wrapper returning the encoded bytes
// directly, used when callers need a []byte for Store rather than a writer
// (e.g. store.BlockStore.Put).
func EncodeBlockToBytes(b Block) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeBlock(&buf, b); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeBlockFromBytes is the inverse of EncodeBlockToBytes.
func DecodeBlockFromBytes(data []byte) (Block, error) {
	return DecodeBlock(bytes.NewReader(data))
}

func writeHash(w io.Writer, h Hash) error {
	_, err := w.Write(h[:])
	return errors.WithStack(err)
}

func readHash(r io.Reader) (Hash, error) {
	var h Hash
	if _, err := io.ReadFull(r, h[:]); err != nil {
		return ZeroHash, errors.WithStack(err)
	}
	return h, nil
}

func writeAmount(w io.Writer, a Amount) error {
	hi, lo := a.halves()
	return binaryserializer.PutUint128(w, hi, lo)
}

func readAmount(r io.Reader) (Amount, error) {
	hi, lo, err := binaryserializer.Uint128(r)
	if err != nil {
		return ZeroAmount, err
	}
	return amountFromHalves(hi, lo), nil
}

func writeSignature(w io.Writer, s Signature) error {
	_, err := w.Write(s[:])
	return errors.WithStack(err)
}

func readSignature(r io.Reader) (Signature, error) {
	var s Signature
	if _, err := io.ReadFull(r, s[:]); err != nil {
		return Signature{}, errors.WithStack(err)
	}
	return s, nil
}

func writeWork(w io.Writer, work Work) error {
	return binaryserializer.PutUint64(w, uint64(work))
}

func readWork(r io.Reader) (Work, error) {
	v, err := binaryserializer.Uint64(r)
	return Work(v), err
}

func encodeSend(w io.Writer, b *SendBlock) error {
	for _, step := range []func() error{
		func() error { return writeHash(w, b.PreviousHash) },
		func() error { return writeHash(w, b.Destination) },
		func() error { return writeAmount(w, b.Balance) },
		func() error { return writeSignature(w, b.Sig) },
		func() error { return writeWork(w, b.W) },
	} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func decodeSend(r io.Reader) (*SendBlock, error) {
	b := &SendBlock{}
	var err error
	if b.PreviousHash, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Destination, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Balance, err = readAmount(r); err != nil {
		return nil, err
	}
	if b.Sig, err = readSignature(r); err != nil {
		return nil, err
	}
	if b.W, err = readWork(r); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeReceive(w io.Writer, b *ReceiveBlock) error {
	if err := writeHash(w, b.PreviousHash); err != nil {
		return err
	}
	if err := writeHash(w, b.Source); err != nil {
		return err
	}
	if err := writeSignature(w, b.Sig); err != nil {
		return err
	}
	return writeWork(w, b.W)
}

func decodeReceive(r io.Reader) (*ReceiveBlock, error) {
	b := &ReceiveBlock{}
	var err error
	if b.PreviousHash, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Source, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Sig, err = readSignature(r); err != nil {
		return nil, err
	}
	if b.W, err = readWork(r); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeOpen(w io.Writer, b *OpenBlock) error {
	if err := writeHash(w, b.Source); err != nil {
		return err
	}
	if err := writeHash(w, b.Representative); err != nil {
		return err
	}
	if err := writeHash(w, b.Account); err != nil {
		return err
	}
	if err := writeSignature(w, b.Sig); err != nil {
		return err
	}
	return writeWork(w, b.W)
}

func decodeOpen(r io.Reader) (*OpenBlock, error) {
	b := &OpenBlock{}
	var err error
	if b.Source, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Representative, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Account, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Sig, err = readSignature(r); err != nil {
		return nil, err
	}
	if b.W, err = readWork(r); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeChange(w io.Writer, b *ChangeBlock) error {
	if err := writeHash(w, b.PreviousHash); err != nil {
		return err
	}
	if err := writeHash(w, b.Representative); err != nil {
		return err
	}
	if err := writeSignature(w, b.Sig); err != nil {
		return err
	}
	return writeWork(w, b.W)
}

func decodeChange(r io.Reader) (*ChangeBlock, error) {
	b := &ChangeBlock{}
	var err error
	if b.PreviousHash, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Representative, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Sig, err = readSignature(r); err != nil {
		return nil, err
	}
	if b.W, err = readWork(r); err != nil {
		return nil, err
	}
	return b, nil
}

func encodeState(w io.Writer, b *StateBlock) error {
	if err := writeHash(w, b.Account); err != nil {
		return err
	}
	if err := writeHash(w, b.PreviousHash); err != nil {
		return err
	}
	if err := writeHash(w, b.Representative); err != nil {
		return err
	}
	if err := writeAmount(w, b.Balance); err != nil {
		return err
	}
	if err := writeHash(w, b.Link); err != nil {
		return err
	}
	if err := writeSignature(w, b.Sig); err != nil {
		return err
	}
	return writeWork(w, b.W)
}

func decodeState(r io.Reader) (*StateBlock, error) {
	b := &StateBlock{}
	var err error
	if b.Account, err = readHash(r); err != nil {
		return nil, err
	}
	if b.PreviousHash, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Representative, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Balance, err = readAmount(r); err != nil {
		return nil, err
	}
	if b.Link, err = readHash(r); err != nil {
		return nil, err
	}
	if b.Sig, err = readSignature(r); err != nil {
		return nil, err
	}
	if b.W, err = readWork(r); err != nil {
		return nil, err
	}
	return b, nil
}
