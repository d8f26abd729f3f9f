package model

// Kind identifies the tagged variant of a Block. The wire tag values match
// spec.md §6's serialization table exactly.
type Kind byte

const (
	// KindSend is a legacy send block.
	KindSend Kind = 1
	// KindReceive is a legacy receive block.
	KindReceive Kind = 2
	// KindOpen is a legacy open block.
	KindOpen Kind = 3
	// KindChange is a legacy representative-change block.
	KindChange Kind = 4
	// KindState is the universal state block. Tag 5 is intentionally
	// unused (reserved in the wire format this ledger's tag numbering
	// follows).
	KindState Kind = 6
)

func (k Kind) String() string {
	switch k {
	case KindSend:
		return "send"
	case KindReceive:
		return "receive"
	case KindOpen:
		return "open"
	case KindChange:
		return "change"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Block is the tagged variant described in spec.md §3. Every kind carries a
// Signature and Work in addition to its kind-specific fields; Root and
// Previous are the two chain-linkage accessors the processor and rollback
// engine need without a type switch at every call site.
type Block interface {
	Kind() Kind
	Signature() Signature
	Work() Work
	// Root returns the election root: for a block with a previous, its
	// previous; for an open/state-open, the account id.
	Root() Hash
	// Previous returns the preceding block hash on the same chain, or the
	// zero hash for an open/state-open block.
	Previous() Hash
	// SigningMessage returns the bytes that BlockHash is computed over and
	// that the signature is verified against (kind-specific fields only,
	// excluding Signature and Work, per spec.md §3).
	SigningMessage() []byte
}

// OpenBlock opens a new account chain by consuming a pending send.
type OpenBlock struct {
	Source         Hash
	Representative AccountId
	Account        AccountId
	Sig            Signature
	W              Work
}

// Kind implements Block.
func (b *OpenBlock) Kind() Kind { return KindOpen }

// Signature implements Block.
func (b *OpenBlock) Signature() Signature { return b.Sig }

// Work implements Block.
func (b *OpenBlock) Work() Work { return b.W }

// Root implements Block.
func (b *OpenBlock) Root() Hash { return b.Account }

// Previous implements Block.
func (b *OpenBlock) Previous() Hash { return ZeroHash }

// SigningMessage implements Block.
func (b *OpenBlock) SigningMessage() []byte {
	buf := make([]byte, 0, HashSize*3)
	buf = append(buf, b.Source[:]...)
	buf = append(buf, b.Representative[:]...)
	buf = append(buf, b.Account[:]...)
	return buf
}

// SendBlock decreases the sending account's balance and creates a pending
// claim for Destination.
type SendBlock struct {
	PreviousHash Hash
	Destination  AccountId
	Balance      Amount
	Sig          Signature
	W            Work
}

// Kind implements Block.
func (b *SendBlock) Kind() Kind { return KindSend }

// Signature implements Block.
func (b *SendBlock) Signature() Signature { return b.Sig }

// Work implements Block.
func (b *SendBlock) Work() Work { return b.W }

// Root implements Block.
func (b *SendBlock) Root() Hash { return b.PreviousHash }

// Previous implements Block.
func (b *SendBlock) Previous() Hash { return b.PreviousHash }

// SigningMessage implements Block.
func (b *SendBlock) SigningMessage() []byte {
	buf := make([]byte, 0, HashSize*2+AmountSize)
	buf = append(buf, b.PreviousHash[:]...)
	buf = append(buf, b.Destination[:]...)
	buf = append(buf, b.Balance[:]...)
	return buf
}

// ReceiveBlock consumes a pending claim created by a matching send.
type ReceiveBlock struct {
	PreviousHash Hash
	Source       Hash
	Sig          Signature
	W            Work
}

// Kind implements Block.
func (b *ReceiveBlock) Kind() Kind { return KindReceive }

// Signature implements Block.
func (b *ReceiveBlock) Signature() Signature { return b.Sig }

// Work implements Block.
func (b *ReceiveBlock) Work() Work { return b.W }

// Root implements Block.
func (b *ReceiveBlock) Root() Hash { return b.PreviousHash }

// Previous implements Block.
func (b *ReceiveBlock) Previous() Hash { return b.PreviousHash }

// SigningMessage implements Block.
func (b *ReceiveBlock) SigningMessage() []byte {
	buf := make([]byte, 0, HashSize*2)
	buf = append(buf, b.PreviousHash[:]...)
	buf = append(buf, b.Source[:]...)
	return buf
}

// ChangeBlock changes an account's representative without moving value.
type ChangeBlock struct {
	PreviousHash   Hash
	Representative AccountId
	Sig            Signature
	W              Work
}

// Kind implements Block.
func (b *ChangeBlock) Kind() Kind { return KindChange }

// Signature implements Block.
func (b *ChangeBlock) Signature() Signature { return b.Sig }

// Work implements Block.
func (b *ChangeBlock) Work() Work { return b.W }

// Root implements Block.
func (b *ChangeBlock) Root() Hash { return b.PreviousHash }

// Previous implements Block.
func (b *ChangeBlock) Previous() Hash { return b.PreviousHash }

// SigningMessage implements Block.
func (b *ChangeBlock) SigningMessage() []byte {
	buf := make([]byte, 0, HashSize*2)
	buf = append(buf, b.PreviousHash[:]...)
	buf = append(buf, b.Representative[:]...)
	return buf
}

// StateBlock is the universal block: it encodes send/receive/change/open/
// epoch by inspection of Link and PreviousHash (see ledgerprocessor).
type StateBlock struct {
	Account        AccountId
	PreviousHash   Hash
	Representative AccountId
	Balance        Amount
	Link           Hash
	Sig            Signature
	W              Work
}

// Kind implements Block.
func (b *StateBlock) Kind() Kind { return KindState }

// Signature implements Block.
func (b *StateBlock) Signature() Signature { return b.Sig }

// Work implements Block.
func (b *StateBlock) Work() Work { return b.W }

// Root implements Block: previous if nonzero, else account.
func (b *StateBlock) Root() Hash {
	if !b.PreviousHash.IsZero() {
		return b.PreviousHash
	}
	return b.Account
}

// Previous implements Block.
func (b *StateBlock) Previous() Hash { return b.PreviousHash }

// SigningMessage implements Block.
func (b *StateBlock) SigningMessage() []byte {
	buf := make([]byte, 0, HashSize*4+AmountSize)
	buf = append(buf, b.Account[:]...)
	buf = append(buf, b.PreviousHash[:]...)
	buf = append(buf, b.Representative[:]...)
	buf = append(buf, b.Balance[:]...)
	buf = append(buf, b.Link[:]...)
	return buf
}

var (
	_ Block = (*OpenBlock)(nil)
	_ Block = (*SendBlock)(nil)
	_ Block = (*ReceiveBlock)(nil)
	_ Block = (*ChangeBlock)(nil)
	_ Block = (*StateBlock)(nil)
)
