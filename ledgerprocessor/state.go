package ledgerprocessor

import (
	"github.com/blocklattice/ledgercore/ledgererrors"
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/sigwork"
)

// processState dispatches a State block to its open or continuation
// handler depending on whether it has a previous (spec.md §3: "If
// previous is zero it behaves like an open... otherwise inspect the
// balance delta against the account's current balance").
func (p *Processor) processState(tx model.DBTransaction, hash model.Hash, b *model.StateBlock) (model.ProcessResult, error) {
	if b.PreviousHash.IsZero() {
		return p.processStateOpen(tx, hash, b)
	}
	return p.processStateContinuation(tx, hash, b)
}

// stateSignature returns whether b verifies against account's own key, and
// separately whether it verifies against the signer of an epoch whose
// LinkValue matches b.Link. Both are computed up front, before any
// fork/position check, so that "signature precedes fork" (spec.md §4.1)
// holds uniformly for every state sub-case - including the epoch-upgrade
// one, which is authorized by a different key than the account's own.
func (p *Processor) stateSignature(b *model.StateBlock) (accountSigned, epochSigned bool, epochInfo model.EpochInfo) {
	accountSigned = sigwork.VerifyBlockSignature(b.Account, b)
	if info, ok := p.params.EpochForLink(b.Link); ok {
		epochInfo = info
		epochSigned = sigwork.VerifyBlockSignature(info.Signer, b)
	}
	return accountSigned, epochSigned, epochInfo
}

// processStateOpen handles a state block with a zero previous: either a
// zero-balance epoch-upgrade open signed by an epoch's designated signer,
// or a normal open consuming a pending entry keyed by Link, signed by the
// account itself.
func (p *Processor) processStateOpen(tx model.DBTransaction, hash model.Hash, b *model.StateBlock) (model.ProcessResult, error) {
	account := b.Account
	accountSigned, epochSigned, epochInfo := p.stateSignature(b)
	if !accountSigned && !epochSigned {
		return reject(model.BadSignature), nil
	}

	opened, err := p.accounts.Has(tx, account)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if opened {
		return reject(model.Fork), nil
	}

	if epochSigned {
		if !b.Representative.IsZero() || !b.Balance.IsZero() {
			return reject(model.OpenedBurnAccount), nil
		}
		info := &model.AccountInfo{
			Head:           hash,
			OpenBlock:      hash,
			RepBlock:       hash,
			Balance:        model.ZeroAmount,
			Modified:       p.now(),
			BlockCount:     1,
			Epoch:          epochInfo.Epoch,
			Representative: model.ZeroHash,
		}
		if err := p.commitOpen(tx, account, hash, b, info); err != nil {
			return model.ProcessResult{}, err
		}
		return model.ProcessResult{Code: model.Progress, Account: account}, nil
	}

	key := model.PendingKey{Destination: account, Send: b.Link}
	pending, found, err := getPending(tx, p.pending, key)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return reject(model.GapSource), nil
	}
	if b.Balance.Cmp(pending.Amount) != 0 {
		return reject(model.BalanceMismatch), nil
	}

	info := &model.AccountInfo{
		Head:           hash,
		OpenBlock:      hash,
		RepBlock:       hash,
		Balance:        pending.Amount,
		Modified:       p.now(),
		BlockCount:     1,
		Epoch:          model.Epoch0,
		Representative: b.Representative,
	}
	if err := p.consumePending(tx, hash, key, pending); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.weight.Add(tx, b.Representative, pending.Amount); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.commitOpen(tx, account, hash, b, info); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: account, Amount: pending.Amount, Pending: pending}, nil
}

// processStateContinuation handles a state block extending an existing
// chain. Its meaning is read off the balance delta against the account's
// current balance: zero is a representative change, an epoch upgrade, or
// (degenerately) a zero-amount receive; negative is a send; positive is a
// receive. A representative change rides along with any of the three.
func (p *Processor) processStateContinuation(tx model.DBTransaction, hash model.Hash, b *model.StateBlock) (model.ProcessResult, error) {
	account := b.Account
	accountSigned, epochSigned, epochInfo := p.stateSignature(b)
	if !accountSigned && !epochSigned {
		return reject(model.BadSignature), nil
	}

	info, err := p.accounts.Get(tx, account)
	if err != nil {
		if ledgererrors.IsNotFoundError(err) {
			return reject(model.GapPrevious), nil
		}
		return model.ProcessResult{}, err
	}
	if info.Head != b.PreviousHash {
		exists, err := p.blocks.Has(tx, b.PreviousHash)
		if err != nil {
			return model.ProcessResult{}, err
		}
		if !exists {
			return reject(model.GapPrevious), nil
		}
		return reject(model.Fork), nil
	}

	repChanged := b.Representative != info.Representative

	switch b.Balance.Cmp(info.Balance) {
	case 0:
		return p.processStateNoDelta(tx, hash, b, account, info, accountSigned, epochSigned, epochInfo, repChanged)
	case -1:
		if !accountSigned {
			return reject(model.BadSignature), nil
		}
		return p.processStateSend(tx, hash, b, account, info, repChanged)
	default:
		if !accountSigned {
			return reject(model.BadSignature), nil
		}
		return p.processStateReceive(tx, hash, b, account, info, repChanged)
	}
}

// processStateNoDelta handles the three cases where a state continuation
// block's balance is unchanged: an epoch upgrade (signed by the epoch
// signer, representative unchanged), a degenerate zero-amount receive
// (link set but not recognized as an epoch link, or recognized but not
// epoch-signed - spec.md §4.1's "if signer is not the epoch signer, treat
// link as a receive source"), and a plain representative change.
func (p *Processor) processStateNoDelta(tx model.DBTransaction, hash model.Hash, b *model.StateBlock, account model.AccountId, info *model.AccountInfo, accountSigned, epochSigned bool, epochInfo model.EpochInfo, repChanged bool) (model.ProcessResult, error) {
	if epochSigned {
		if repChanged {
			return reject(model.RepresentativeMismatch), nil
		}
		// Only the account's immediate next epoch may be applied; a repeat
		// or skipped-ahead epoch block is a position error, not a fork.
		next, ok := p.params.NextEpoch(info.Epoch)
		if !ok || epochInfo.Epoch != next.Epoch {
			return reject(model.BlockPosition), nil
		}
		updated := *info
		updated.Epoch = epochInfo.Epoch
		updated.Head = hash
		updated.BlockCount++
		updated.Modified = p.now()
		if err := p.commitExtension(tx, account, b.PreviousHash, hash, b, info, &updated); err != nil {
			return model.ProcessResult{}, err
		}
		return model.ProcessResult{Code: model.Progress, Account: account}, nil
	}
	if !accountSigned {
		return reject(model.BadSignature), nil
	}

	if !b.Link.IsZero() {
		key := model.PendingKey{Destination: account, Send: b.Link}
		pending, found, err := getPending(tx, p.pending, key)
		if err != nil {
			return model.ProcessResult{}, err
		}
		if !found {
			return reject(model.GapSource), nil
		}
		if !pending.Amount.IsZero() {
			return reject(model.BalanceMismatch), nil
		}
		if err := p.consumePending(tx, hash, key, pending); err != nil {
			return model.ProcessResult{}, err
		}
		if repChanged {
			if err := p.moveWeight(tx, info.Representative, info.Balance, b.Representative, b.Balance); err != nil {
				return model.ProcessResult{}, err
			}
		}
		updated := *info
		if repChanged {
			updated.RepBlock = hash
			updated.Representative = b.Representative
		}
		updated.Head = hash
		updated.BlockCount++
		updated.Modified = p.now()
		if err := p.commitExtension(tx, account, b.PreviousHash, hash, b, info, &updated); err != nil {
			return model.ProcessResult{}, err
		}
		return model.ProcessResult{Code: model.Progress, Account: account, Pending: pending}, nil
	}

	if repChanged {
		if err := p.weight.Move(tx, info.Representative, b.Representative, info.Balance); err != nil {
			return model.ProcessResult{}, err
		}
	}
	updated := *info
	if repChanged {
		updated.RepBlock = hash
		updated.Representative = b.Representative
	}
	updated.Head = hash
	updated.BlockCount++
	updated.Modified = p.now()
	if err := p.commitExtension(tx, account, b.PreviousHash, hash, b, info, &updated); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: account}, nil
}

// processStateSend handles a state continuation whose balance strictly
// decreased: it creates a pending entry for b.Link, exactly like a legacy
// Send, but may also change the representative in the same block.
func (p *Processor) processStateSend(tx model.DBTransaction, hash model.Hash, b *model.StateBlock, account model.AccountId, info *model.AccountInfo, repChanged bool) (model.ProcessResult, error) {
	amount := info.Balance.Sub(b.Balance)
	pendKey := model.PendingKey{Destination: b.Link, Send: hash}
	pendEntry := &model.PendingEntry{Source: account, Amount: amount, Epoch: info.Epoch}

	if err := p.moveWeight(tx, info.Representative, info.Balance, b.Representative, b.Balance); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.pending.Put(tx, pendKey, pendEntry); err != nil {
		return model.ProcessResult{}, err
	}

	updated := *info
	updated.Balance = b.Balance
	if repChanged {
		updated.RepBlock = hash
		updated.Representative = b.Representative
	}
	updated.Head = hash
	updated.BlockCount++
	updated.Modified = p.now()
	if err := p.commitExtension(tx, account, b.PreviousHash, hash, b, info, &updated); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: account, Amount: amount, Pending: pendEntry}, nil
}

// processStateReceive handles a state continuation whose balance strictly
// increased: it must reference a pending entry for account whose amount
// matches the delta exactly, exactly like a legacy Receive, but may also
// change the representative in the same block.
func (p *Processor) processStateReceive(tx model.DBTransaction, hash model.Hash, b *model.StateBlock, account model.AccountId, info *model.AccountInfo, repChanged bool) (model.ProcessResult, error) {
	amount := b.Balance.Sub(info.Balance)
	pendKey := model.PendingKey{Destination: account, Send: b.Link}
	pending, found, err := getPending(tx, p.pending, pendKey)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return reject(model.GapSource), nil
	}
	if pending.Amount.Cmp(amount) != 0 {
		return reject(model.BalanceMismatch), nil
	}

	if err := p.consumePending(tx, hash, pendKey, pending); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.moveWeight(tx, info.Representative, info.Balance, b.Representative, b.Balance); err != nil {
		return model.ProcessResult{}, err
	}

	updated := *info
	updated.Balance = b.Balance
	if repChanged {
		updated.RepBlock = hash
		updated.Representative = b.Representative
	}
	updated.Head = hash
	updated.BlockCount++
	updated.Modified = p.now()
	if err := p.commitExtension(tx, account, b.PreviousHash, hash, b, info, &updated); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: account, Amount: amount, Pending: pending}, nil
}
