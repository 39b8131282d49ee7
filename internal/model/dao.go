package model

type ProposalModule struct {
	Address string
	Prefix  string
	Status  string
}

// DaoInfo is everything the DAO page shows that does not depend on the account.
type DaoInfo struct {
	Address     string
	Name        string
	Description string
	ImageURL    string

	ProposalModules []ProposalModule
	Proposals       []Proposal
	TotalProposals  uint64

	VotingModule string
	TokenAddr    string
	StakingAddr  string
	TokenSymbol  string
}

func (info DaoInfo) HasImage() bool {
	return info.ImageURL != ""
}

// FirstProposalModule returns the module whose proposals the page lists.
func (info DaoInfo) FirstProposalModule() (ProposalModule, bool) {
	if len(info.ProposalModules) == 0 {
		return ProposalModule{}, false
	}
	return info.ProposalModules[0], true
}

// CreateProposalPath links to the proposal creation page of the first module.
func (info DaoInfo) CreateProposalPath() string {
	module, ok := info.FirstProposalModule()
	if !ok {
		return ""
	}
	return "/create-proposal/" + module.Address
}

// UserStaking of the connected account. Reward is display-only.
type UserStaking struct {
	Staked Balance
	Reward Reward
}

// NoAccountStaking is what the page shows without a connected account.
func NoAccountStaking() UserStaking {
	return UserStaking{Staked: ZeroBalance, Reward: ZeroReward}
}
