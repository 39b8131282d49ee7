package model

import "strconv"

type ProposalStatus string

const (
	ProposalStatusOpen            ProposalStatus = "open"
	ProposalStatusRejected        ProposalStatus = "rejected"
	ProposalStatusPassed          ProposalStatus = "passed"
	ProposalStatusExecuted        ProposalStatus = "executed"
	ProposalStatusClosed          ProposalStatus = "closed"
	ProposalStatusExecutionFailed ProposalStatus = "execution_failed"
)

func (status ProposalStatus) String() string {
	return string(status)
}

// Votes holds the tallies in voting power units.
type Votes struct {
	Yes     Balance
	No      Balance
	Abstain Balance
}

// Expiration is set in exactly one way: a height, a time or never.
type Expiration struct {
	AtHeight *uint64
	// AtTime is nanoseconds since epoch, as the contracts encode timestamps
	AtTime *string
	Never  bool
}

// Proposal existing in a proposal module
type Proposal struct {
	ID            uint64
	ModuleAddress string

	Title       string
	Description string
	Proposer    string

	Status     ProposalStatus
	Votes      Votes
	TotalPower Balance

	StartHeight   uint64
	Expiration    Expiration
	AllowRevoting bool
}

// Path is the route of the proposal page: /proposal/{module}/{id}
func (proposal Proposal) Path() string {
	return "/proposal/" + proposal.ModuleAddress + "/" + strconv.FormatUint(proposal.ID, 10)
}

func (proposal Proposal) IsOpen() bool {
	return proposal.Status == ProposalStatusOpen
}
