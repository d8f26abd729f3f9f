package model

// PendingKey identifies a pending entry by the destination account and the
// hash of the send block that created it (spec.md §3).
type PendingKey struct {
	Destination AccountId
	Send        Hash
}

// Bytes returns the 64-byte database suffix for this key: destination
// followed by send hash, so that a cursor over one destination's pending
// entries (if ever needed) can seek by destination prefix.
func (k PendingKey) Bytes() []byte {
	buf := make([]byte, 0, HashSize*2)
	buf = append(buf, k.Destination[:]...)
	buf = append(buf, k.Send[:]...)
	return buf
}

// PendingEntry is the outstanding claim a send block creates and a
// matching receive/open consumes (spec.md §3).
type PendingEntry struct {
	Source AccountId
	Amount Amount
	Epoch  Epoch
}
