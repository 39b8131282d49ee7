package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

var ErrNoStaking = errors.New("the DAO has no staking contract")

type DaoPageState struct {
	DaoAddr string
	Account string
	Load    LoadState
	// nil until the first successful load
	Info *model.DaoInfo

	Staking     model.UserStaking
	StakingLoad LoadState

	Modal        *ModalState
	Notification *model.Notification
}

// DaoPage shows a DAO, its proposals and the staking of the viewer.
type DaoPage struct {
	page
	daoAddr string

	loadGen     uint64
	load        LoadState
	info        *model.DaoInfo
	stakingGen  uint64
	staking     model.UserStaking
	stakingLoad LoadState
	modal       *StakingModal
}

func (a *App) newDaoPage(session chain.Session, daoAddr string) *DaoPage {
	p := &DaoPage{
		daoAddr:     daoAddr,
		load:        loading(),
		staking:     model.NoAccountStaking(),
		stakingLoad: loading(),
	}
	p.init(a, session)
	return p
}

// Load queries the DAO info and then the staking of the viewer. Only the
// most recent load applies its result.
func (p *DaoPage) Load() error {
	p.mu.Lock()
	p.loadGen++
	gen := p.loadGen
	// staking loads of the previous info are void too
	p.stakingGen++
	session := p.session
	p.load = loading()
	p.mu.Unlock()
	p.changed()

	info, err := fetchDaoInfo(p.ctx, p.app.logger, session, p.daoAddr)

	p.mu.Lock()
	if cerr := p.current(gen, p.loadGen); cerr != nil {
		p.mu.Unlock()
		p.app.logger.Debug("dao info discarded: "+cerr.Error(), zap.String("dao", p.daoAddr))
		return cerr
	}
	if err != nil {
		p.load = failed(err)
		p.mu.Unlock()
		p.app.logger.Warn("failed to load the dao: "+err.Error(), zap.String("dao", p.daoAddr))
		p.changed()
		return err
	}
	p.info = &info
	p.load = ready()
	if info.TokenAddr != "" && info.StakingAddr != "" {
		if p.modal == nil || p.modal.tokenAddr != info.TokenAddr || p.modal.stakingAddr != info.StakingAddr {
			p.modal = NewStakingModal(p.app.logger, info.TokenAddr, info.StakingAddr)
		}
	} else {
		p.modal = nil
	}
	p.mu.Unlock()
	p.changed()

	// a staking failure shows in the staking state only
	_ = p.LoadStaking()
	return nil
}

// LoadStaking re-queries the staking of the viewer for the loaded DAO.
func (p *DaoPage) LoadStaking() error {
	p.mu.Lock()
	if p.info == nil {
		p.mu.Unlock()
		return nil
	}
	p.stakingGen++
	gen := p.stakingGen
	session := p.session
	stakingAddr := p.info.StakingAddr
	p.stakingLoad = loading()
	p.mu.Unlock()
	p.changed()

	staking, err := fetchUserStaking(p.ctx, p.app.logger, session, stakingAddr)

	p.mu.Lock()
	if cerr := p.current(gen, p.stakingGen); cerr != nil {
		p.mu.Unlock()
		return cerr
	}
	if err != nil {
		p.stakingLoad = failed(err)
		p.mu.Unlock()
		p.app.logger.Warn("failed to load the staking: "+err.Error(), zap.String("dao", p.daoAddr), zap.String("account", session.Address))
		p.changed()
		return err
	}
	p.staking = staking
	p.stakingLoad = ready()
	p.mu.Unlock()
	p.changed()

	return nil
}

// Start loads the page in the background.
func (p *DaoPage) Start() {
	p.goLoad(p.Load)
}

// Reload is the explicit reload signal; it also retries a failed load.
func (p *DaoPage) Reload() {
	p.goLoad(p.Load)
}

// SetSession switches the viewer. A new account re-runs the staking query
// and the modal balances; the modal drops the balances of the previous
// account right away.
func (p *DaoPage) SetSession(session chain.Session) {
	if !p.swapSession(session) {
		return
	}
	p.goLoad(p.LoadStaking)

	modal, err := p.Modal()
	if err != nil {
		return
	}
	modal.switchAccount(session)
	p.changed()
	p.goLoad(func() error {
		err := modal.RefreshBalances(p.ctx, session)
		if err != nil && !errors.Is(err, ErrStaleResult) {
			p.app.logger.Warn("failed to refresh the staking balances: "+err.Error(), zap.String("dao", p.daoAddr))
		}
		p.changed()
		return err
	})
}

func (p *DaoPage) State() DaoPageState {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := DaoPageState{
		DaoAddr:      p.daoAddr,
		Account:      p.session.Address,
		Load:         p.load,
		Info:         p.info,
		Staking:      p.staking,
		StakingLoad:  p.stakingLoad,
		Notification: p.notification,
	}
	if p.modal != nil {
		modal := p.modal.State()
		state.Modal = &modal
	}
	return state
}

func (p *DaoPage) Snapshot() interface{} {
	return p.State()
}

func (p *DaoPage) Close() {
	p.close()
}

// Modal returns the staking modal of the DAO once its staking contracts are known.
func (p *DaoPage) Modal() (*StakingModal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modal == nil {
		return nil, ErrNoStaking
	}
	return p.modal, nil
}

func (p *DaoPage) OpenModal(ctx context.Context, tab model.StakeAction) error {
	modal, err := p.Modal()
	if err != nil {
		return err
	}
	err = modal.Open(ctx, p.currentSession(), tab)
	p.changed()
	return err
}

// UpdateModal applies a stepper, text or tab command to the open modal.
func (p *DaoPage) UpdateModal(update func(m *StakingModal) error) error {
	modal, err := p.Modal()
	if err != nil {
		return err
	}
	if err := update(modal); err != nil {
		return err
	}
	p.changed()
	return nil
}

// ConfirmModal submits the modal request. After a submission the modal
// balances and the staking of the page are re-queried for the contracts
// involved, instead of reloading the whole page.
func (p *DaoPage) ConfirmModal(ctx context.Context) (StakeOutcome, error) {
	modal, err := p.Modal()
	if err != nil {
		return StakeOutcome{}, err
	}
	session := p.currentSession()

	outcome, err := modal.Confirm(ctx, session)
	if err != nil {
		return StakeOutcome{}, err
	}
	p.changed()

	req := outcome.Request
	kind := model.TxKindStake
	if req.Action == model.ActionUnstake {
		kind = model.TxKindUnstake
	}
	p.app.recordTx(kind, session.Address, outcome.Contract, fmt.Sprintf("%s %s", req.Action, req.Amount), outcome.Result, outcome.Err)

	if outcome.Err != nil {
		p.notify(model.ErrorNotification(outcome.Err))
	} else {
		p.notify(model.SuccessNotification(successMessage(req.Action)))
	}

	if err := modal.RefreshBalances(p.ctx, session); err != nil {
		p.app.logger.Warn("failed to refresh the staking balances: "+err.Error(), zap.String("dao", p.daoAddr))
	}
	_ = p.LoadStaking()

	return outcome, outcome.Err
}

func (p *DaoPage) changed() {
	p.app.publish(p.id, stateEvent, p.State())
}

func successMessage(action model.StakeAction) string {
	name := action.String()
	return strings.ToUpper(name[:1]) + name[1:] + " success !"
}
