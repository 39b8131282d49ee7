package app

import (
	"context"
	"crypto/sha256"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/contracts/contractstest"
	"dao-dashboard/internal/model"
	"dao-dashboard/internal/notify"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAddr(t *testing.T, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	addr, err := chain.EncodeAddress("orai", sum[:20])
	require.NoError(t, err)
	return addr
}

type fixture struct {
	chain    *contractstest.Chain
	executor *contractstest.Executor
	events   *recordingPublisher
	recorder *memRecorder
	app      *App

	dao, module, voting, token, staking, alice string
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		chain:    contractstest.NewChain(),
		executor: &contractstest.Executor{Result: chain.TxResult{TxHash: "A1B2", Height: 100}},
		events:   &recordingPublisher{},
		recorder: &memRecorder{},
		dao:      testAddr(t, "dao"),
		module:   testAddr(t, "module"),
		voting:   testAddr(t, "voting"),
		token:    testAddr(t, "token"),
		staking:  testAddr(t, "staking"),
		alice:    testAddr(t, "alice"),
	}
	f.chain.Height = 100

	f.chain.
		Respond(f.dao, "config", map[string]interface{}{
			"name":        "Oraichain DAO",
			"description": "Governance of the Oraichain ecosystem",
			"image_url":   "https://orai.io/dao.png",
		}).
		Respond(f.dao, "proposal_modules", []map[string]string{{"address": f.module, "prefix": "A", "status": "enabled"}}).
		Respond(f.dao, "voting_module", f.voting).
		Respond(f.module, "list_proposals", map[string]interface{}{"proposals": []interface{}{proposalResponse(1, "10")}}).
		Respond(f.module, "proposal_count", 1).
		Handle(f.module, "proposal", func(json.RawMessage) (interface{}, error) {
			// every vote cast adds to the yes tally
			yes := 10 + len(f.executor.Calls())
			return proposalResponse(1, fmt.Sprint(yes)), nil
		}).
		Respond(f.voting, "token_contract", f.token).
		Respond(f.voting, "staking_contract", f.staking).
		Respond(f.token, "token_info", map[string]interface{}{"name": "Oraix", "symbol": "ORAIX", "decimals": 6, "total_supply": "1000000"}).
		Respond(f.token, "balance", map[string]string{"balance": "1000"}).
		Respond(f.staking, "staked_balance_at_height", map[string]interface{}{"balance": "700", "height": 101}).
		Respond(f.staking, "staked_value", map[string]string{"value": "750"}).
		Respond(f.staking, "get_config", map[string]interface{}{"token_address": f.token, "unstaking_duration": map[string]uint64{"time": 1209600}})

	f.app = NewApp(zap.NewNop(), Deps{
		Provider:     chain.NewProvider("Oraichain", f.chain, f.executor),
		Bech32Prefix: "orai",
		Recorder:     f.recorder,
		Events:       f.events,
	})
	t.Cleanup(f.app.Close)
	return f
}

func (f *fixture) session(account string) chain.Session {
	return f.app.provider.Session(account)
}

func proposalResponse(id uint64, yes string) map[string]interface{} {
	return map[string]interface{}{
		"id": id,
		"proposal": map[string]interface{}{
			"title":          "Fund the grants program",
			"description":    "Move 10k ORAIX to the grants multisig",
			"proposer":       "orai1proposer",
			"start_height":   90,
			"expiration":     map[string]uint64{"at_height": 1090},
			"status":         "open",
			"votes":          map[string]string{"yes": yes, "no": "2", "abstain": "0"},
			"total_power":    "100",
			"allow_revoting": false,
		},
	}
}

// queriedContracts lists the contracts queried from the index on.
func (f *fixture) queriedContracts(from int) map[string]bool {
	contracts := make(map[string]bool)
	for _, q := range f.chain.Queries()[from:] {
		contracts[q.Contract] = true
	}
	return contracts
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	closed []string
}

func (p *recordingPublisher) Publish(event notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) CloseTopic(topic string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, topic)
}

func (p *recordingPublisher) notifications(topic string) []model.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []model.Notification
	for _, e := range p.events {
		if e.Topic == topic && e.Type == notify.EventNotification {
			out = append(out, e.Payload.(model.Notification))
		}
	}
	return out
}

func (p *recordingPublisher) closedTopics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.closed...)
}

type memRecorder struct {
	mu  sync.Mutex
	txs []model.TxRecord
}

func (r *memRecorder) InsertTransaction(ctx context.Context, tx model.TxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, tx)
	return nil
}

func (r *memRecorder) GetAccountTransactions(ctx context.Context, account string, limit int64) ([]model.TxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TxRecord
	for _, tx := range r.txs {
		if tx.Account == account {
			out = append(out, tx)
		}
	}
	return out, nil
}

// gatedChain blocks every query until its context is done.
type gatedChain struct {
	*contractstest.Chain
	entered chan struct{}
}

func (g gatedChain) QuerySmart(ctx context.Context, contract string, query interface{}, out interface{}) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}
