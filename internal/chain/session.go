package chain

import "context"

// Querier is the read side of a contract adapter.
type Querier interface {
	QuerySmart(ctx context.Context, contract string, query interface{}, out interface{}) error
}

// Reader queries contracts and knows the chain height.
type Reader interface {
	Querier
	LatestHeight(ctx context.Context) (uint64, error)
}

// Executor is the write side of a contract adapter.
type Executor interface {
	Execute(ctx context.Context, sender, contract string, msg interface{}) (TxResult, error)
}

// Session is what a page controller gets injected: the connected account
// (empty when no wallet is connected) and the clients to reach the chain.
type Session struct {
	Address string
	Chain   Reader
	Signer  Executor
}

func (s Session) Connected() bool {
	return s.Address != ""
}

// WithAccount returns a copy of the session for another account.
func (s Session) WithAccount(address string) Session {
	s.Address = address
	return s
}

// Provider hands out sessions sharing the same chain clients.
type Provider struct {
	ChainName string
	chain     Reader
	signer    Executor
}

func NewProvider(chainName string, chain Reader, signer Executor) Provider {
	return Provider{ChainName: chainName, chain: chain, signer: signer}
}

func (p Provider) Session(account string) Session {
	return Session{
		Address: account,
		Chain:   p.chain,
		Signer:  p.signer,
	}
}
