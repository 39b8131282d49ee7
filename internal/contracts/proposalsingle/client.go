package proposalsingle

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/model"
	"fmt"
)

type QueryClient struct {
	querier  chain.Querier
	contract string
}

func NewQueryClient(querier chain.Querier, contract string) QueryClient {
	return QueryClient{querier: querier, contract: contract}
}

func (c QueryClient) ListProposals(ctx context.Context, params ListParams) (list ProposalListResponse, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryListProposals: params}, &list)
	return
}

func (c QueryClient) ProposalCount(ctx context.Context) (count uint64, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryProposalCount: struct{}{}}, &count)
	return
}

func (c QueryClient) Proposal(ctx context.Context, proposalID uint64) (proposal ProposalResponse, err error) {
	err = c.querier.QuerySmart(ctx, c.contract, map[string]interface{}{QueryProposal: proposalQuery{ProposalID: proposalID}}, &proposal)
	return
}

// Client signs as sender.
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

// Vote casts the sender's vote. The choice is validated before anything is sent.
func (c Client) Vote(ctx context.Context, proposalID uint64, vote model.VoteChoice) (chain.TxResult, error) {
	if !vote.IsValid() {
		return chain.TxResult{}, fmt.Errorf("%w, got %q", model.ErrInvalidVote, string(vote))
	}

	msg := map[string]interface{}{ExecuteVote: voteMsg{ProposalID: proposalID, Vote: vote}}
	return c.executor.Execute(ctx, c.sender, c.contract, msg)
}
