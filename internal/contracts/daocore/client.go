package daocore

import (
	"context"
	"dao-dashboard/internal/chain"
)

type QueryClient struct {
	querier  chain.Querier
	contract string
}

func NewQueryClient(querier chain.Querier, contract string) QueryClient {
	return QueryClient{querier: querier, contract: contract}
}

func (c QueryClient) Address() string {
	return c.contract
}

func (c QueryClient) Config(ctx context.Context) (config Config, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryConfig: struct{}{}}, &config)
	return
}

func (c QueryClient) ProposalModules(ctx context.Context, pagination Pagination) (modules []ProposalModule, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryProposalModules: pagination}, &modules)
	return
}

// VotingModule returns the address of the voting module.
func (c QueryClient) VotingModule(ctx context.Context) (addr string, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryVotingModule: struct{}{}}, &addr)
	return
}
