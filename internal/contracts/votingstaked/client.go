// Package votingstaked queries the dao-voting-cw20-staked module linking a DAO
// to its governance token and staking contract.
package votingstaked

import (
	"context"
	"dao-dashboard/internal/chain"
)

const (
	QueryTokenContract   = "token_contract"
	QueryStakingContract = "staking_contract"
)

type QueryClient struct {
	querier  chain.Querier
	contract string
}

func NewQueryClient(querier chain.Querier, contract string) QueryClient {
	return QueryClient{querier: querier, contract: contract}
}

func (c QueryClient) TokenContract(ctx context.Context) (addr string, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryTokenContract: struct{}{}}, &addr)
	return
}

func (c QueryClient) StakingContract(ctx context.Context) (addr string, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryStakingContract: struct{}{}}, &addr)
	return
}
