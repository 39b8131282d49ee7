package proposalsingle

import "dao-dashboard/internal/model"

const (
	QueryListProposals = "list_proposals"
	QueryProposalCount = "proposal_count"
	QueryProposal      = "proposal"

	ExecuteVote = "vote"
)

type Votes struct {
	Yes     string `json:"yes"`
	No      string `json:"no"`
	Abstain string `json:"abstain"`
}

type Expiration struct {
	AtHeight *uint64   `json:"at_height,omitempty"`
	AtTime   *string   `json:"at_time,omitempty"`
	Never    *struct{} `json:"never,omitempty"`
}

type SingleChoiceProposal struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Proposer      string     `json:"proposer"`
	StartHeight   uint64     `json:"start_height"`
	Expiration    Expiration `json:"expiration"`
	Status        string     `json:"status"`
	Votes         Votes      `json:"votes"`
	TotalPower    string     `json:"total_power"`
	AllowRevoting bool       `json:"allow_revoting"`
}

type ProposalResponse struct {
	ID       uint64               `json:"id"`
	Proposal SingleChoiceProposal `json:"proposal"`
}

type ProposalListResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}

// ListParams paginates proposals by id.
type ListParams struct {
	StartAfter *uint64 `json:"start_after,omitempty"`
	Limit      *uint64 `json:"limit,omitempty"`
}

type proposalQuery struct {
	ProposalID uint64 `json:"proposal_id"`
}

type voteMsg struct {
	ProposalID uint64           `json:"proposal_id"`
	Vote       model.VoteChoice `json:"vote"`
	Rationale  *string          `json:"rationale,omitempty"`
}

// ToModel maps the contract response to the proposal the pages show.
func (r ProposalResponse) ToModel(moduleAddr string) model.Proposal {
	p := r.Proposal
	return model.Proposal{
		ID:            r.ID,
		ModuleAddress: moduleAddr,
		Title:         p.Title,
		Description:   p.Description,
		Proposer:      p.Proposer,
		Status:        model.ProposalStatus(p.Status),
		Votes: model.Votes{
			Yes:     model.Balance(p.Votes.Yes),
			No:      model.Balance(p.Votes.No),
			Abstain: model.Balance(p.Votes.Abstain),
		},
		TotalPower:  model.Balance(p.TotalPower),
		StartHeight: p.StartHeight,
		Expiration: model.Expiration{
			AtHeight: p.Expiration.AtHeight,
			AtTime:   p.Expiration.AtTime,
			Never:    p.Expiration.Never != nil,
		},
		AllowRevoting: p.AllowRevoting,
	}
}
