package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type ModalMode string

const (
	ModalClosed     ModalMode = "closed"
	ModalOpen       ModalMode = "open"
	ModalSubmitting ModalMode = "submitting"
)

type ModalState struct {
	Mode      ModalMode
	Tab       model.StakeAction
	Amount    model.TokenAmount
	CanSubmit bool

	Balances     StakingBalances
	BalancesLoad LoadState
}

// StakeOutcome is the result of a submitted stake or unstake.
type StakeOutcome struct {
	Request  model.StakeRequest
	Contract string
	Result   chain.TxResult
	Err      error
}

// StakingModal moves closed -> open(tab) -> submitting -> closed. Cancel
// goes back from open to closed.
type StakingModal struct {
	logger      *zap.Logger
	tokenAddr   string
	stakingAddr string

	mu           sync.Mutex
	mode         ModalMode
	tab          model.StakeAction
	amount       model.TokenAmount
	connected    bool
	balances     StakingBalances
	balancesLoad LoadState
	balancesGen  uint64
}

func NewStakingModal(logger *zap.Logger, tokenAddr, stakingAddr string) *StakingModal {
	return &StakingModal{
		logger:       logger,
		tokenAddr:    tokenAddr,
		stakingAddr:  stakingAddr,
		mode:         ModalClosed,
		tab:          model.ActionStake,
		amount:       model.ZeroAmount,
		balances:     StakingBalances{TokenBalance: model.ZeroBalance, Staked: model.ZeroBalance},
		balancesLoad: loading(),
	}
}

func (m *StakingModal) Open(ctx context.Context, session chain.Session, tab model.StakeAction) error {
	if !tab.IsValid() {
		return model.ErrInvalidAction
	}

	m.mu.Lock()
	if m.mode != ModalClosed {
		m.mu.Unlock()
		return ErrInvalidTransition
	}
	m.mode = ModalOpen
	m.tab = tab
	m.amount = model.ZeroAmount
	m.connected = session.Connected()
	m.mu.Unlock()

	if err := m.RefreshBalances(ctx, session); err != nil {
		m.logger.Warn("failed to query the staking balances: "+err.Error(), zap.String("staking", m.stakingAddr))
	}
	return nil
}

func (m *StakingModal) SelectTab(tab model.StakeAction) error {
	if !tab.IsValid() {
		return model.ErrInvalidAction
	}
	return m.whileOpen(func() { m.tab = tab })
}

func (m *StakingModal) Increment() error {
	return m.whileOpen(func() { m.amount = m.amount.Increment() })
}

func (m *StakingModal) Decrement() error {
	return m.whileOpen(func() { m.amount = m.amount.Decrement() })
}

// SetText sets the amount from user input; anything but a non-negative
// integer becomes zero.
func (m *StakingModal) SetText(text string) error {
	return m.whileOpen(func() { m.amount = model.ParseTokenAmount(text) })
}

func (m *StakingModal) Cancel() error {
	return m.whileOpen(func() {
		m.mode = ModalClosed
		m.amount = model.ZeroAmount
	})
}

// Confirm submits the stake or unstake. A request that cannot be submitted
// leaves the modal open and returns the reason. Once submitted the modal
// closes whatever the transaction outcome.
func (m *StakingModal) Confirm(ctx context.Context, session chain.Session) (StakeOutcome, error) {
	m.mu.Lock()
	if m.mode != ModalOpen {
		m.mu.Unlock()
		return StakeOutcome{}, ErrInvalidTransition
	}
	if !session.Connected() {
		m.mu.Unlock()
		return StakeOutcome{}, ErrNoAccount
	}
	req := model.StakeRequest{Action: m.tab, Amount: m.amount}
	if err := req.Validate(); err != nil {
		m.mu.Unlock()
		return StakeOutcome{}, fmt.Errorf("%w: nothing was submitted and the modal stays open", err)
	}
	m.mode = ModalSubmitting
	m.mu.Unlock()

	res, contract, err := submitStake(ctx, session, m.tokenAddr, m.stakingAddr, req)

	m.mu.Lock()
	m.mode = ModalClosed
	m.amount = model.ZeroAmount
	m.mu.Unlock()

	return StakeOutcome{Request: req, Contract: contract, Result: res, Err: err}, nil
}

// RefreshBalances re-queries the token balance, the staked balance and the
// unstaking config. A result older than the last refresh started is dropped.
func (m *StakingModal) RefreshBalances(ctx context.Context, session chain.Session) error {
	m.mu.Lock()
	m.balancesGen++
	gen := m.balancesGen
	m.connected = session.Connected()
	m.balancesLoad = loading()
	m.mu.Unlock()

	balances, err := fetchStakingBalances(ctx, session, m.tokenAddr, m.stakingAddr)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.balancesGen {
		return ErrStaleResult
	}
	if err != nil {
		m.balancesLoad = failed(err)
		return err
	}
	m.balances = balances
	m.balancesLoad = ready()
	return nil
}

// switchAccount forgets the balances of the previous account and voids any
// refresh still running for it.
func (m *StakingModal) switchAccount(session chain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balancesGen++
	m.connected = session.Connected()
	m.balances.TokenBalance = model.ZeroBalance
	m.balances.Staked = model.ZeroBalance
	m.balancesLoad = loading()
}

func (m *StakingModal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ModalState{
		Mode:         m.mode,
		Tab:          m.tab,
		Amount:       m.amount,
		CanSubmit:    m.mode == ModalOpen && m.connected,
		Balances:     m.balances,
		BalancesLoad: m.balancesLoad,
	}
}

func (m *StakingModal) whileOpen(update func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != ModalOpen {
		return ErrInvalidTransition
	}
	update()
	return nil
}
