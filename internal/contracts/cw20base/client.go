package cw20base

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
	"encoding/json"
	"errors"
)

type QueryClient struct {
	querier  chain.Querier
	contract string
}

func NewQueryClient(querier chain.Querier, contract string) QueryClient {
	return QueryClient{querier: querier, contract: contract}
}

func (c QueryClient) Balance(ctx context.Context, address string) (resp BalanceResponse, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryBalance: balanceQuery{Address: address}}, &resp)
	return
}

func (c QueryClient) TokenInfo(ctx context.Context) (resp TokenInfoResponse, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryTokenInfo: struct{}{}}, &resp)
	return
}

type Client struct {
	QueryClient
	executor chain.Executor
	sender   string
}

func NewClient(querier chain.Querier, executor chain.Executor, sender, contract string) Client {
	return Client{
		QueryClient: NewQueryClient(querier, contract),
		executor:    executor,
		sender:      sender,
	}
}

// Send moves amount to the recipient contract with hook embedded as the
// instruction its receive entry point runs.
func (c Client) Send(ctx context.Context, amount model.TokenAmount, recipient string, hook interface{}) (chain.TxResult, error) {
	embedded, err := json.Marshal(hook)
	if err != nil {
		return chain.TxResult{}, errors.New("failed to marshal the embedded message: " + err.Error())
	}

	msg := map[string]interface{}{ExecuteSend: sendMsg{
		Contract: recipient,
		Amount:   amount.String(),
		Msg:      embedded,
	}}
	return c.executor.Execute(ctx, c.sender, c.contract, msg)
}
