package cw20stake

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
)

type QueryClient struct {
	querier  chain.Querier
	contract string
}

func NewQueryClient(querier chain.Querier, contract string) QueryClient {
	return QueryClient{querier: querier, contract: contract}
}

// StakedBalanceAtHeight of address; a nil height means the current one.
func (c QueryClient) StakedBalanceAtHeight(ctx context.Context, address string, height *uint64) (resp StakedBalanceAtHeightResponse, err error) {
	query := map[string]interface{}{QueryStakedBalanceAtHeight: stakedBalanceQuery{Address: address, Height: height}}
	err = c.querier.QuerySmart(ctx, c.contract, query, &resp)
	return
}

// StakedValue is the staked balance plus what the stake earned.
func (c QueryClient) StakedValue(ctx context.Context, address string) (resp StakedValueResponse, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryStakedValue: addressQuery{Address: address}}, &resp)
	return
}

func (c QueryClient) GetConfig(ctx context.Context) (config Config, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryGetConfig: struct{}{}}, &config)
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

func (c Client) Unstake(ctx context.Context, amount model.TokenAmount) (chain.TxResult, error) {
	msg := map[string]interface{}{ExecuteUnstake: unstakeMsg{Amount: amount.String()}}
	return c.executor.Execute(ctx, c.sender, c.contract, msg)
}
