package model

// VoteCode is the closed outcome set for Election Tally's Vote operation
// (spec.md §4.5).
type VoteCode int

const (
	// VoteInvalid means the vote's signature does not verify.
	VoteInvalid VoteCode = iota
	// VoteReplay means the vote was ignored: its sequence is not higher
	// than the voter's recorded one (whatever block it names), or it
	// changes the voter's block before the cooldown has elapsed.
	VoteReplay
	// VoteAccepted means the vote was recorded (new voter, higher
	// sequence, or a cooled-down change of vote).
	VoteAccepted
)

func (c VoteCode) String() string {
	switch c {
	case VoteInvalid:
		return "invalid"
	case VoteReplay:
		return "replay"
	case VoteAccepted:
		return "vote"
	default:
		return "unknown"
	}
}

// Vote is a single signed vote cast by a representative for a block
// sharing some election root (spec.md §3).
type Vote struct {
	Voter     AccountId
	Sequence  Sequence
	Signature Signature
	BlockHash Hash
}

// SigningMessage returns the bytes a vote's Signature is verified over:
// voter public key, sequence, and block hash, per spec.md §4.5.
func (v Vote) SigningMessage() []byte {
	buf := make([]byte, 0, HashSize*2+8)
	buf = append(buf, v.Voter[:]...)
	buf = appendUint64BE(buf, uint64(v.Sequence))
	buf = append(buf, v.BlockHash[:]...)
	return buf
}

func appendUint64BE(buf []byte, v uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[7-i] = byte(v >> (8 * i))
	}
	return append(buf, b[:]...)
}

// VoterRecord is the last vote seen from one voter within an election
// (spec.md §3's last_votes entry).
type VoterRecord struct {
	BlockHash Hash
	Sequence  Sequence
	Time      int64 // unix seconds, monotone clock source per spec.md §9
}

// WeightedBlock is one candidate in a tally result: a block hash and the
// total representative weight currently voting for it.
type WeightedBlock struct {
	BlockHash Hash
	Weight    Amount
}
