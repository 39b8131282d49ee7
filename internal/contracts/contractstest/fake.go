// Package contractstest provides in-memory chain doubles for contract adapters.
package contractstest

import (
	"context"
	"dao-dashboard/internal/chain"
	"encoding/json"
	"fmt"
	"sync"
)

// Handler answers one query; the returned value is marshalled into the
// caller's output just like the LCD data field.
type Handler func(params json.RawMessage) (interface{}, error)

// Chain serves smart queries from handlers keyed by contract then query name.
type Chain struct {
	mu       sync.Mutex
	Height   uint64
	handlers map[string]map[string]Handler
	queries  []Call
}

type Call struct {
	Contract string
	Msg      json.RawMessage
}

func NewChain() *Chain {
	return &Chain{handlers: make(map[string]map[string]Handler)}
}

// Handle registers handler for query name on contract.
func (c *Chain) Handle(contract, name string, handler Handler) *Chain {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handlers[contract] == nil {
		c.handlers[contract] = make(map[string]Handler)
	}
	c.handlers[contract][name] = handler
	return c
}

// Respond registers a fixed response.
func (c *Chain) Respond(contract, name string, resp interface{}) *Chain {
	return c.Handle(contract, name, func(json.RawMessage) (interface{}, error) { return resp, nil })
}

// Fail makes the query return err.
func (c *Chain) Fail(contract, name string, err error) *Chain {
	return c.Handle(contract, name, func(json.RawMessage) (interface{}, error) { return nil, err })
}

func (c *Chain) QuerySmart(ctx context.Context, contract string, query interface{}, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(query)
	if err != nil {
		return err
	}
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return err
	}

	c.mu.Lock()
	c.queries = append(c.queries, Call{Contract: contract, Msg: raw})
	var handler Handler
	var params json.RawMessage
	for name, p := range msg {
		handler = c.handlers[contract][name]
		params = p
	}
	c.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("query %s on %s: %w", string(raw), contract, chain.ErrNotFound)
	}
	resp, err := handler(params)
	if err != nil {
		return err
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Chain) LatestHeight(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Height, nil
}

// Queries returns the messages sent so far.
func (c *Chain) Queries() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.queries...)
}

// Executor records executed messages and replies with Result or Err.
type Executor struct {
	mu     sync.Mutex
	Result chain.TxResult
	Err    error
	// Block, when set, is waited on before replying
	Block chan struct{}
	calls []Execution
}

type Execution struct {
	Sender   string
	Contract string
	Msg      json.RawMessage
}

func (e *Executor) Execute(ctx context.Context, sender, contract string, msg interface{}) (chain.TxResult, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return chain.TxResult{}, err
	}
	e.mu.Lock()
	e.calls = append(e.calls, Execution{Sender: sender, Contract: contract, Msg: raw})
	block := e.Block
	e.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return chain.TxResult{}, ctx.Err()
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Result, e.Err
}

func (e *Executor) Calls() []Execution {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Execution(nil), e.calls...)
}
