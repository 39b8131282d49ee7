package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
	"dao-dashboard/internal/notify"
	"errors"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	recordTimeout      = 5 * time.Second
	defaultViewTTL     = 30 * time.Minute
	transactionsLimit  = 50
	voteSuccessMessage = "Vote success !"

	stateEvent  = notify.EventState
	notifyEvent = notify.EventNotification
)

var (
	ErrNoAccount         = errors.New("no account connected")
	ErrViewNotFound      = errors.New("view not found")
	ErrWrongView         = errors.New("the view does not support this action")
	ErrVoteInFlight      = errors.New("a vote is already being submitted")
	ErrInvalidTransition = errors.New("invalid staking modal transition")
	ErrStaleResult       = errors.New("result discarded, a newer load is current")
	ErrViewClosed        = errors.New("view closed")
	ErrTxLogDisabled     = errors.New("transaction log is not configured")
)

// TxRecorder keeps the log of the submitted transactions.
type TxRecorder interface {
	InsertTransaction(ctx context.Context, tx model.TxRecord) error
	GetAccountTransactions(ctx context.Context, account string, limit int64) ([]model.TxRecord, error)
}

// Publisher pushes view events to the subscribers of a view.
type Publisher interface {
	Publish(event notify.Event)
	CloseTopic(topic string)
}

type Metrics interface {
	ViewMounted()
	ViewUnmounted()
	ObserveTransaction(kind string, err error)
}

type Deps struct {
	Provider     chain.Provider
	Bech32Prefix string
	// optional, the transaction log is disabled when nil
	Recorder TxRecorder
	Events   Publisher
	Metrics  Metrics
	ViewTTL  time.Duration
}

type App struct {
	logger   *zap.Logger
	provider chain.Provider
	prefix   string
	recorder TxRecorder
	events   Publisher
	metrics  Metrics
	views    *ViewRegistry
}

func NewApp(logger *zap.Logger, deps Deps) *App {
	a := &App{
		logger:   logger,
		provider: deps.Provider,
		prefix:   deps.Bech32Prefix,
		recorder: deps.Recorder,
		events:   deps.Events,
		metrics:  deps.Metrics,
	}
	if a.events == nil {
		a.events = nopPublisher{}
	}
	if a.metrics == nil {
		a.metrics = nopMetrics{}
	}

	ttl := deps.ViewTTL
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	a.views = newViewRegistry(logger, ttl, a.metrics)

	return a
}

// Session builds the session of account. An empty account is a visitor
// without a wallet.
func (a *App) Session(account string) (chain.Session, error) {
	if account != "" {
		if err := a.ValidateAddress(account); err != nil {
			return chain.Session{}, err
		}
	}
	return a.provider.Session(account), nil
}

func (a *App) ValidateAddress(addr string) error {
	return chain.ValidateAddress(addr, a.prefix)
}

// ValidateAddresses checks all of addrs and reports every invalid one.
func (a *App) ValidateAddresses(addrs ...string) error {
	var allErr error
	for _, addr := range addrs {
		if err := a.ValidateAddress(addr); err != nil {
			allErr = multierr.Append(allErr, err)
		}
	}
	return allErr
}

// AccountTransactions returns the transactions account submitted through the dashboard.
func (a *App) AccountTransactions(ctx context.Context, account string) ([]model.TxRecord, error) {
	if a.recorder == nil {
		return nil, ErrTxLogDisabled
	}
	if err := a.ValidateAddress(account); err != nil {
		return nil, err
	}
	return a.recorder.GetAccountTransactions(ctx, account, transactionsLimit)
}

// Close unmounts every view.
func (a *App) Close() {
	a.views.Clear()
}

func (a *App) recordTx(kind model.TxKind, account, contract, detail string, res chain.TxResult, err error) {
	a.metrics.ObserveTransaction(string(kind), err)

	fields := []zap.Field{
		zap.String("kind", string(kind)),
		zap.String("account", account),
		zap.String("contract", contract),
		zap.String("txHash", res.TxHash),
	}
	if err != nil {
		a.logger.Warn("transaction failed: "+err.Error(), fields...)
	} else {
		a.logger.Info("transaction submitted", fields...)
	}

	if a.recorder == nil {
		return
	}

	record := model.TxRecord{
		TxHash:   res.TxHash,
		Account:  account,
		Kind:     kind,
		Contract: contract,
		Detail:   detail,
		Success:  err == nil,
		Time:     time.Now(),
	}
	if err != nil {
		record.Error = err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := a.recorder.InsertTransaction(ctx, record); err != nil {
		a.logger.Error("failed to log the transaction: "+err.Error(), zap.String("txHash", res.TxHash))
	}
}

func (a *App) publish(topic, eventType string, payload interface{}) {
	if topic == "" {
		return
	}
	a.events.Publish(notify.Event{Type: eventType, Topic: topic, Payload: payload})
}

type nopPublisher struct{}

func (nopPublisher) Publish(notify.Event) {}
func (nopPublisher) CloseTopic(string) {}

type nopMetrics struct{}

func (nopMetrics) ViewMounted() {}
func (nopMetrics) ViewUnmounted() {}
func (nopMetrics) ObserveTransaction(string, error) {}
