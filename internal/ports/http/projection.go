package http

import (
	"dao-dashboard/internal/app"
	"dao-dashboard/internal/model"
	"strconv"
	"time"

	"github.com/samber/lo"
)

type loadJSON struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type notificationJSON struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type proposalModuleJSON struct {
	Address string `json:"address"`
	Prefix  string `json:"prefix"`
	Status  string `json:"status"`
}

type expirationJSON struct {
	AtHeight *uint64 `json:"atHeight,omitempty"`
	AtTime   *string `json:"atTime,omitempty"`
	Never    bool    `json:"never,omitempty"`
}

type proposalJSON struct {
	ID            uint64         `json:"id"`
	ModuleAddress string         `json:"moduleAddress"`
	Path          string         `json:"path"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Proposer      string         `json:"proposer"`
	Status        string         `json:"status"`
	Yes           string         `json:"yes"`
	No            string         `json:"no"`
	Abstain       string         `json:"abstain"`
	TotalPower    string         `json:"totalPower"`
	StartHeight   uint64         `json:"startHeight"`
	Expiration    expirationJSON `json:"expiration"`
	AllowRevoting bool           `json:"allowRevoting"`
}

type daoInfoJSON struct {
	Address            string               `json:"address"`
	Name               string               `json:"name"`
	Description        string               `json:"description"`
	ImageURL           string               `json:"imageUrl,omitempty"`
	ProposalModules    []proposalModuleJSON `json:"proposalModules"`
	Proposals          []proposalJSON       `json:"proposals"`
	TotalProposals     uint64               `json:"totalProposals"`
	CreateProposalPath string               `json:"createProposalPath,omitempty"`
	VotingModule       string               `json:"votingModule"`
	TokenAddr          string               `json:"tokenAddr"`
	StakingAddr        string               `json:"stakingAddr"`
	TokenSymbol        string               `json:"tokenSymbol,omitempty"`
}

type stakingJSON struct {
	Staked string `json:"staked"`
	Reward string `json:"reward"`
	// the staked value fell below the staked balance
	RewardNegative bool     `json:"rewardNegative,omitempty"`
	Load           loadJSON `json:"load"`
}

type balancesJSON struct {
	TokenBalance      string  `json:"tokenBalance"`
	Staked            string  `json:"staked"`
	UnstakingDuration string  `json:"unstakingDuration,omitempty"`
	UnstakingHeight   *uint64 `json:"unstakingHeight,omitempty"`
	UnstakingSeconds  *uint64 `json:"unstakingSeconds,omitempty"`
}

type modalJSON struct {
	Mode      string       `json:"mode"`
	Tab       string       `json:"tab"`
	Amount    string       `json:"amount"`
	CanSubmit bool         `json:"canSubmit"`
	Balances  balancesJSON `json:"balances"`
	Load      loadJSON     `json:"load"`
}

type daoPageJSON struct {
	Kind         string            `json:"kind"`
	ViewID       string            `json:"viewId,omitempty"`
	DaoAddr      string            `json:"daoAddr"`
	Account      string            `json:"account,omitempty"`
	Load         loadJSON          `json:"load"`
	Info         *daoInfoJSON      `json:"info,omitempty"`
	Staking      stakingJSON       `json:"staking"`
	Modal        *modalJSON        `json:"modal,omitempty"`
	Notification *notificationJSON `json:"notification,omitempty"`
}

type proposalPageJSON struct {
	Kind         string            `json:"kind"`
	ViewID       string            `json:"viewId,omitempty"`
	ModuleAddr   string            `json:"moduleAddr"`
	ProposalID   uint64            `json:"proposalId"`
	Account      string            `json:"account,omitempty"`
	Load         loadJSON          `json:"load"`
	Proposal     *proposalJSON     `json:"proposal,omitempty"`
	Voting       bool              `json:"voting"`
	CanVote      bool              `json:"canVote"`
	Notification *notificationJSON `json:"notification,omitempty"`
}

type menuItemJSON struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type layoutJSON struct {
	Menu      []menuItemJSON `json:"menu"`
	ChainName string         `json:"chainName"`
	Account   string         `json:"account,omitempty"`
	Connected bool           `json:"connected"`
}

type txResultJSON struct {
	TxHash string `json:"txHash"`
	Height int64  `json:"height"`
}

type txRecordJSON struct {
	TxHash   string `json:"txHash,omitempty"`
	Kind     string `json:"kind"`
	Contract string `json:"contract"`
	Detail   string `json:"detail"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Time     string `json:"time"`
}

func toLoadJSON(load app.LoadState) loadJSON {
	return loadJSON{Status: string(load.Status), Error: load.Error, Retryable: load.Retryable}
}

func toNotificationJSON(n *model.Notification) *notificationJSON {
	if n == nil {
		return nil
	}
	return &notificationJSON{Level: string(n.Level), Message: n.Message}
}

func toProposalJSON(p model.Proposal) proposalJSON {
	return proposalJSON{
		ID:            p.ID,
		ModuleAddress: p.ModuleAddress,
		Path:          p.Path(),
		Title:         p.Title,
		Description:   p.Description,
		Proposer:      p.Proposer,
		Status:        p.Status.String(),
		Yes:           p.Votes.Yes.String(),
		No:            p.Votes.No.String(),
		Abstain:       p.Votes.Abstain.String(),
		TotalPower:    p.TotalPower.String(),
		StartHeight:   p.StartHeight,
		Expiration: expirationJSON{
			AtHeight: p.Expiration.AtHeight,
			AtTime:   p.Expiration.AtTime,
			Never:    p.Expiration.Never,
		},
		AllowRevoting: p.AllowRevoting,
	}
}

func toDaoInfoJSON(info model.DaoInfo) *daoInfoJSON {
	return &daoInfoJSON{
		Address:     info.Address,
		Name:        info.Name,
		Description: info.Description,
		ImageURL:    info.ImageURL,
		ProposalModules: lo.Map(info.ProposalModules, func(m model.ProposalModule, _ int) proposalModuleJSON {
			return proposalModuleJSON{Address: m.Address, Prefix: m.Prefix, Status: m.Status}
		}),
		Proposals: lo.Map(info.Proposals, func(p model.Proposal, _ int) proposalJSON {
			return toProposalJSON(p)
		}),
		TotalProposals:     info.TotalProposals,
		CreateProposalPath: info.CreateProposalPath(),
		VotingModule:       info.VotingModule,
		TokenAddr:          info.TokenAddr,
		StakingAddr:        info.StakingAddr,
		TokenSymbol:        info.TokenSymbol,
	}
}

func toBalancesJSON(b app.StakingBalances) balancesJSON {
	out := balancesJSON{
		TokenBalance:     b.TokenBalance.String(),
		Staked:           b.Staked.String(),
		UnstakingHeight:  b.Unstaking.Height,
		UnstakingSeconds: b.Unstaking.Time,
	}
	if b.Unstaking.IsSet() {
		out.UnstakingDuration = b.Unstaking.String()
	}
	return out
}

func toModalJSON(m *app.ModalState) *modalJSON {
	if m == nil {
		return nil
	}
	return &modalJSON{
		Mode:      string(m.Mode),
		Tab:       m.Tab.String(),
		Amount:    m.Amount.String(),
		CanSubmit: m.CanSubmit,
		Balances:  toBalancesJSON(m.Balances),
		Load:      toLoadJSON(m.BalancesLoad),
	}
}

func toDaoPageJSON(viewID string, state app.DaoPageState) daoPageJSON {
	out := daoPageJSON{
		Kind:    "dao",
		ViewID:  viewID,
		DaoAddr: state.DaoAddr,
		Account: state.Account,
		Load:    toLoadJSON(state.Load),
		Staking: stakingJSON{
			Staked:         state.Staking.Staked.String(),
			Reward:         state.Staking.Reward.String(),
			RewardNegative: state.Staking.Reward.IsNegative(),
			Load:           toLoadJSON(state.StakingLoad),
		},
		Modal:        toModalJSON(state.Modal),
		Notification: toNotificationJSON(state.Notification),
	}
	if state.Info != nil {
		out.Info = toDaoInfoJSON(*state.Info)
	}
	return out
}

func toProposalPageJSON(viewID string, state app.ProposalPageState) proposalPageJSON {
	out := proposalPageJSON{
		Kind:         "proposal",
		ViewID:       viewID,
		ModuleAddr:   state.ModuleAddr,
		ProposalID:   state.ProposalID,
		Account:      state.Account,
		Load:         toLoadJSON(state.Load),
		Voting:       state.Voting,
		CanVote:      state.CanVote,
		Notification: toNotificationJSON(state.Notification),
	}
	if state.Proposal != nil {
		p := toProposalJSON(*state.Proposal)
		out.Proposal = &p
	}
	return out
}

// toViewJSON projects the snapshot of any mounted view.
func toViewJSON(viewID string, snapshot interface{}) interface{} {
	switch state := snapshot.(type) {
	case app.DaoPageState:
		return toDaoPageJSON(viewID, state)
	case app.ProposalPageState:
		return toProposalPageJSON(viewID, state)
	case model.Notification:
		return toNotificationJSON(&state)
	default:
		return snapshot
	}
}

func toLayoutJSON(layout app.Layout) layoutJSON {
	return layoutJSON{
		Menu: lo.Map(layout.Menu, func(item app.MenuItem, _ int) menuItemJSON {
			return menuItemJSON{Label: item.Label, Path: item.Path}
		}),
		ChainName: layout.ChainName,
		Account:   layout.Account,
		Connected: layout.Connected,
	}
}

func toTxRecordsJSON(txs []model.TxRecord) []txRecordJSON {
	return lo.Map(txs, func(tx model.TxRecord, _ int) txRecordJSON {
		return txRecordJSON{
			TxHash:   tx.TxHash,
			Kind:     string(tx.Kind),
			Contract: tx.Contract,
			Detail:   tx.Detail,
			Success:  tx.Success,
			Error:    tx.Error,
			Time:     tx.Time.UTC().Format(time.RFC3339),
		}
	})
}

func parseProposalID(text string) (uint64, error) {
	return strconv.ParseUint(text, 10, 64)
}
