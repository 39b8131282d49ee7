package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/contracts/proposalsingle"
	"dao-dashboard/internal/model"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

type ProposalPageState struct {
	ModuleAddr string
	ProposalID uint64
	Account    string
	Load       LoadState
	// nil until the first successful load
	Proposal     *model.Proposal
	Voting       bool
	CanVote      bool
	Notification *model.Notification
}

// ProposalPage shows one proposal of a proposal module and lets the viewer vote.
type ProposalPage struct {
	page
	moduleAddr string
	proposalID uint64

	loadGen  uint64
	load     LoadState
	proposal *model.Proposal
	voting   bool
}

func (a *App) newProposalPage(session chain.Session, moduleAddr string, proposalID uint64) *ProposalPage {
	p := &ProposalPage{
		moduleAddr: moduleAddr,
		proposalID: proposalID,
		load:       loading(),
	}
	p.init(a, session)
	return p
}

func (p *ProposalPage) Load() error {
	p.mu.Lock()
	p.loadGen++
	gen := p.loadGen
	session := p.session
	p.load = loading()
	p.mu.Unlock()
	p.changed()

	proposal, err := fetchProposal(p.ctx, session, p.moduleAddr, p.proposalID)

	p.mu.Lock()
	if cerr := p.current(gen, p.loadGen); cerr != nil {
		p.mu.Unlock()
		return cerr
	}
	if err != nil {
		p.load = failed(err)
		p.mu.Unlock()
		p.app.logger.Warn("failed to load the proposal: "+err.Error(), zap.String("module", p.moduleAddr), zap.Uint64("proposalID", p.proposalID))
		p.changed()
		return err
	}
	p.proposal = &proposal
	p.load = ready()
	p.mu.Unlock()
	p.changed()

	return nil
}

// Vote casts the viewer's vote and re-queries the proposal once it succeeds.
// Only one vote per page can be in flight.
func (p *ProposalPage) Vote(ctx context.Context, choice model.VoteChoice) (chain.TxResult, error) {
	if !choice.IsValid() {
		return chain.TxResult{}, fmt.Errorf("%w, got %q", model.ErrInvalidVote, string(choice))
	}

	p.mu.Lock()
	session := p.session
	if !session.Connected() {
		p.mu.Unlock()
		return chain.TxResult{}, ErrNoAccount
	}
	if p.voting {
		p.mu.Unlock()
		return chain.TxResult{}, ErrVoteInFlight
	}
	p.voting = true
	p.mu.Unlock()
	p.changed()

	client := proposalsingle.NewClient(session.Chain, session.Signer, session.Address, p.moduleAddr)
	res, err := client.Vote(ctx, p.proposalID, choice)
	p.app.recordTx(model.TxKindVote, session.Address, p.moduleAddr, fmt.Sprintf("proposal %d: %s", p.proposalID, choice), res, err)

	p.mu.Lock()
	p.voting = false
	p.mu.Unlock()

	if err != nil {
		p.notify(model.ErrorNotification(err))
		p.changed()
		return res, err
	}
	p.notify(model.SuccessNotification(voteSuccessMessage))

	if lerr := p.Load(); lerr != nil && !errors.Is(lerr, ErrStaleResult) {
		p.app.logger.Warn("failed to re-query the proposal after the vote: "+lerr.Error(), zap.String("module", p.moduleAddr), zap.Uint64("proposalID", p.proposalID))
	}
	return res, nil
}

func (p *ProposalPage) Start() {
	p.goLoad(p.Load)
}

func (p *ProposalPage) Reload() {
	p.goLoad(p.Load)
}

func (p *ProposalPage) SetSession(session chain.Session) {
	if p.swapSession(session) {
		p.changed()
	}
}

func (p *ProposalPage) State() ProposalPageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return ProposalPageState{
		ModuleAddr:   p.moduleAddr,
		ProposalID:   p.proposalID,
		Account:      p.session.Address,
		Load:         p.load,
		Proposal:     p.proposal,
		Voting:       p.voting,
		CanVote:      p.session.Connected() && !p.voting,
		Notification: p.notification,
	}
}

func (p *ProposalPage) Snapshot() interface{} {
	return p.State()
}

func (p *ProposalPage) Close() {
	p.close()
}

func (p *ProposalPage) changed() {
	p.app.publish(p.id, stateEvent, p.State())
}
