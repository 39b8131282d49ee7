package daocore

// query names of the dao-core contract
const (
	QueryConfig          = "config"
	QueryProposalModules = "proposal_modules"
	QueryVotingModule    = "voting_module"
)

type Config struct {
	Name                   string  `json:"name"`
	Description            string  `json:"description"`
	ImageURL               *string `json:"image_url"`
	AutomaticallyAddCw20s  bool    `json:"automatically_add_cw20s"`
	AutomaticallyAddCw721s bool    `json:"automatically_add_cw721s"`
	DaoURI                 *string `json:"dao_uri"`
}

type ProposalModule struct {
	Address string `json:"address"`
	Prefix  string `json:"prefix"`
	// enabled or disabled
	Status string `json:"status"`
}

// Pagination over the proposal modules, by module address.
type Pagination struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}
