package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"

	"go.uber.org/zap"
)

// MountDaoView mounts a DAO page for daoAddr and starts loading it. The
// state is then read with View or followed on the view events.
func (a *App) MountDaoView(session chain.Session, daoAddr string) (*DaoPage, error) {
	if err := a.ValidateAddress(daoAddr); err != nil {
		return nil, err
	}

	view := a.views.add(func(id string) View {
		p := a.newDaoPage(session, daoAddr)
		p.id = id
		return p
	})
	a.metrics.ViewMounted()
	a.logger.Debug("dao view mounted", zap.String("viewID", view.ID()), zap.String("dao", daoAddr))

	page := view.(*DaoPage)
	page.Start()
	return page, nil
}

func (a *App) MountProposalView(session chain.Session, moduleAddr string, proposalID uint64) (*ProposalPage, error) {
	if err := a.ValidateAddress(moduleAddr); err != nil {
		return nil, err
	}

	view := a.views.add(func(id string) View {
		p := a.newProposalPage(session, moduleAddr, proposalID)
		p.id = id
		return p
	})
	a.metrics.ViewMounted()
	a.logger.Debug("proposal view mounted", zap.String("viewID", view.ID()), zap.String("module", moduleAddr), zap.Uint64("proposalID", proposalID))

	page := view.(*ProposalPage)
	page.Start()
	return page, nil
}

// View returns a mounted view as seen by session: a different account than
// the one the view was last used with re-runs the account dependent queries.
func (a *App) View(id string, session chain.Session) (View, error) {
	view, err := a.views.Get(id)
	if err != nil {
		return nil, err
	}
	view.SetSession(session)
	return view, nil
}

func (a *App) DaoView(id string, session chain.Session) (*DaoPage, error) {
	view, err := a.View(id, session)
	if err != nil {
		return nil, err
	}
	page, ok := view.(*DaoPage)
	if !ok {
		return nil, ErrWrongView
	}
	return page, nil
}

func (a *App) ProposalView(id string, session chain.Session) (*ProposalPage, error) {
	view, err := a.View(id, session)
	if err != nil {
		return nil, err
	}
	page, ok := view.(*ProposalPage)
	if !ok {
		return nil, ErrWrongView
	}
	return page, nil
}

func (a *App) ReloadView(id string, session chain.Session) error {
	view, err := a.View(id, session)
	if err != nil {
		return err
	}
	view.Reload()
	return nil
}

// UnmountView discards the view; its loads are cancelled and their results dropped.
func (a *App) UnmountView(id string) error {
	if err := a.views.Remove(id); err != nil {
		return err
	}
	a.events.CloseTopic(id)
	return nil
}

// LoadDao loads a DAO page once, for clients that do not mount views.
func (a *App) LoadDao(ctx context.Context, session chain.Session, daoAddr string) (DaoPageState, error) {
	if err := a.ValidateAddress(daoAddr); err != nil {
		return DaoPageState{}, err
	}
	p := a.newDaoPage(session, daoAddr)
	stop := context.AfterFunc(ctx, p.cancel)
	defer stop()
	defer p.Close()

	if err := p.Load(); err != nil {
		return p.State(), err
	}
	return p.State(), nil
}

func (a *App) LoadProposal(ctx context.Context, session chain.Session, moduleAddr string, proposalID uint64) (ProposalPageState, error) {
	if err := a.ValidateAddress(moduleAddr); err != nil {
		return ProposalPageState{}, err
	}
	p := a.newProposalPage(session, moduleAddr, proposalID)
	stop := context.AfterFunc(ctx, p.cancel)
	defer stop()
	defer p.Close()

	if err := p.Load(); err != nil {
		return p.State(), err
	}
	return p.State(), nil
}

// Vote casts a vote outside of a mounted view and returns the re-queried proposal.
func (a *App) Vote(ctx context.Context, session chain.Session, moduleAddr string, proposalID uint64, choice model.VoteChoice) (ProposalPageState, chain.TxResult, error) {
	if err := a.ValidateAddress(moduleAddr); err != nil {
		return ProposalPageState{}, chain.TxResult{}, err
	}
	p := a.newProposalPage(session, moduleAddr, proposalID)
	defer p.Close()

	res, err := p.Vote(ctx, choice)
	return p.State(), res, err
}

// StakingBalances queries what the staking modal shows for the token and
// staking contracts.
func (a *App) StakingBalances(ctx context.Context, session chain.Session, tokenAddr, stakingAddr string) (StakingBalances, error) {
	if err := a.ValidateAddresses(tokenAddr, stakingAddr); err != nil {
		return StakingBalances{}, err
	}
	return fetchStakingBalances(ctx, session, tokenAddr, stakingAddr)
}

// Stake submits a stake or unstake outside of a mounted view.
func (a *App) Stake(ctx context.Context, session chain.Session, tokenAddr, stakingAddr string, req model.StakeRequest) (chain.TxResult, error) {
	if err := a.ValidateAddresses(tokenAddr, stakingAddr); err != nil {
		return chain.TxResult{}, err
	}

	res, contract, err := submitStake(ctx, session, tokenAddr, stakingAddr, req)
	if contract == "" {
		// rejected before anything was sent
		return res, err
	}

	kind := model.TxKindStake
	if req.Action == model.ActionUnstake {
		kind = model.TxKindUnstake
	}
	a.recordTx(kind, session.Address, contract, req.Action.String()+" "+req.Amount.String(), res, err)
	return res, err
}
