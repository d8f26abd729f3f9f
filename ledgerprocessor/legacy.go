package ledgerprocessor

import (
	"github.com/blocklattice/ledgercore/model"
	"github.com/blocklattice/ledgercore/sigwork"
)

// processOpen handles a legacy Open block: it must reference a pending
// entry at the base epoch for an account with no existing chain.
func (p *Processor) processOpen(tx model.DBTransaction, hash model.Hash, b *model.OpenBlock) (model.ProcessResult, error) {
	if !sigwork.VerifyBlockSignature(b.Account, b) {
		return reject(model.BadSignature), nil
	}

	alreadyOpen, err := p.accounts.Has(tx, b.Account)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if alreadyOpen {
		return reject(model.Fork), nil
	}

	key := model.PendingKey{Destination: b.Account, Send: b.Source}
	pending, found, err := getPending(tx, p.pending, key)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return reject(model.GapSource), nil
	}
	if pending.Epoch != model.Epoch0 {
		return reject(model.Unreceivable), nil
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
	if err := p.commitOpen(tx, b.Account, hash, b, info); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: b.Account, Amount: pending.Amount}, nil
}

// legacyPredecessor resolves a legacy Send/Receive/Change block's owning
// account and verifies the global preconditions shared by all three:
// previous must exist, the signature must verify against the resolved
// owner, previous must not already have a successor, the owning
// account's epoch must still be the base epoch (spec.md I6: once an
// account is epoch-upgraded, only state blocks are accepted on it), and
// previous must not be a state block.
// ok is false whenever the caller should return the accompanying
// ProcessResultCode without further processing.
func (p *Processor) legacyPredecessor(tx model.DBTransaction, previous model.Hash, block model.Block) (owner model.AccountId, info *model.AccountInfo, code model.ProcessResultCode, ok bool, err error) {
	owner, found, err := p.resolveLegacyLink(tx, previous)
	if err != nil {
		return model.ZeroHash, nil, 0, false, err
	}
	if !found {
		return model.ZeroHash, nil, model.GapPrevious, false, nil
	}
	if !sigwork.VerifyBlockSignature(owner, block) {
		return model.ZeroHash, nil, model.BadSignature, false, nil
	}
	hasSuccessor, err := p.successor.Has(tx, previous)
	if err != nil {
		return model.ZeroHash, nil, 0, false, err
	}
	if hasSuccessor {
		return model.ZeroHash, nil, model.Fork, false, nil
	}
	info, err = p.accounts.Get(tx, owner)
	if err != nil {
		return model.ZeroHash, nil, 0, false, err
	}
	if info.Epoch > model.Epoch0 {
		return model.ZeroHash, nil, model.BlockPosition, false, nil
	}
	prevBlock, _, err := p.blocks.Get(tx, previous)
	if err != nil {
		return model.ZeroHash, nil, 0, false, err
	}
	if prevBlock.Kind() == model.KindState {
		return model.ZeroHash, nil, model.BlockPosition, false, nil
	}
	return owner, info, 0, true, nil
}

// processSend handles a legacy Send block: the new balance must be
// strictly less than the current one, and the difference becomes a
// pending claim for Destination.
func (p *Processor) processSend(tx model.DBTransaction, hash model.Hash, b *model.SendBlock) (model.ProcessResult, error) {
	owner, info, code, ok, err := p.legacyPredecessor(tx, b.PreviousHash, b)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !ok {
		return reject(code), nil
	}
	if b.Balance.Cmp(info.Balance) >= 0 {
		return reject(model.NegativeSpend), nil
	}
	amount := info.Balance.Sub(b.Balance)

	updated := *info
	updated.Balance = b.Balance
	updated.Head = hash
	updated.BlockCount++
	updated.Modified = p.now()

	pendKey := model.PendingKey{Destination: b.Destination, Send: hash}
	pendEntry := &model.PendingEntry{Source: owner, Amount: amount, Epoch: info.Epoch}

	if err := p.weight.Sub(tx, info.Representative, amount); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.pending.Put(tx, pendKey, pendEntry); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.commitExtension(tx, owner, b.PreviousHash, hash, b, info, &updated); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: owner, Amount: amount, Pending: pendEntry}, nil
}

// processReceive handles a legacy Receive block: it must reference a
// pending entry created for owner at the base epoch.
func (p *Processor) processReceive(tx model.DBTransaction, hash model.Hash, b *model.ReceiveBlock) (model.ProcessResult, error) {
	owner, info, code, ok, err := p.legacyPredecessor(tx, b.PreviousHash, b)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !ok {
		return reject(code), nil
	}

	pendKey := model.PendingKey{Destination: owner, Send: b.Source}
	pending, found, err := getPending(tx, p.pending, pendKey)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !found {
		return reject(model.Unreceivable), nil
	}
	if pending.Epoch != model.Epoch0 {
		return reject(model.Unreceivable), nil
	}

	updated := *info
	updated.Balance = info.Balance.Add(pending.Amount)
	updated.Head = hash
	updated.BlockCount++
	updated.Modified = p.now()

	if err := p.consumePending(tx, hash, pendKey, pending); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.weight.Add(tx, info.Representative, pending.Amount); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.commitExtension(tx, owner, b.PreviousHash, hash, b, info, &updated); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: owner, Amount: pending.Amount, Pending: pending}, nil
}

// processChange handles a legacy Change block: it moves owner's entire
// balance's weight from its current representative to b.Representative,
// without touching balance or pending state.
func (p *Processor) processChange(tx model.DBTransaction, hash model.Hash, b *model.ChangeBlock) (model.ProcessResult, error) {
	owner, info, code, ok, err := p.legacyPredecessor(tx, b.PreviousHash, b)
	if err != nil {
		return model.ProcessResult{}, err
	}
	if !ok {
		return reject(code), nil
	}

	updated := *info
	updated.Representative = b.Representative
	updated.RepBlock = hash
	updated.Head = hash
	updated.BlockCount++
	updated.Modified = p.now()

	if err := p.weight.Move(tx, info.Representative, b.Representative, info.Balance); err != nil {
		return model.ProcessResult{}, err
	}
	if err := p.commitExtension(tx, owner, b.PreviousHash, hash, b, info, &updated); err != nil {
		return model.ProcessResult{}, err
	}
	return model.ProcessResult{Code: model.Progress, Account: owner}, nil
}
