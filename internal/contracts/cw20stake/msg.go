package cw20stake

import "dao-dashboard/internal/model"

const (
	QueryStakedBalanceAtHeight = "staked_balance_at_height"
	QueryStakedValue           = "staked_value"
	QueryGetConfig             = "get_config"

	ExecuteUnstake = "unstake"
)

type StakedBalanceAtHeightResponse struct {
	Balance string `json:"balance"`
	Height  uint64 `json:"height"`
}

type StakedValueResponse struct {
	Value string `json:"value"`
}

// Duration is cw-utils Duration: {"height": n} or {"time": seconds}.
type Duration struct {
	Height *uint64 `json:"height,omitempty"`
	Time   *uint64 `json:"time,omitempty"`
}

type Config struct {
	Owner             *string   `json:"owner"`
	Manager           *string   `json:"manager"`
	TokenAddress      string    `json:"token_address"`
	UnstakingDuration *Duration `json:"unstaking_duration"`
}

func (c Config) Unstaking() model.UnstakingDuration {
	if c.UnstakingDuration == nil {
		return model.UnstakingDuration{}
	}
	return model.UnstakingDuration{Height: c.UnstakingDuration.Height, Time: c.UnstakingDuration.Time}
}

type stakedBalanceQuery struct {
	Address string `json:"address"`
	// current height when nil
	Height *uint64 `json:"height,omitempty"`
}

type addressQuery struct {
	Address string `json:"address"`
}

type unstakeMsg struct {
	Amount string `json:"amount"`
}

// ReceiveMsg is embedded in a cw20 send to the staking contract.
type ReceiveMsg struct {
	Stake *struct{} `json:"stake,omitempty"`
}

// StakeHook is the instruction that makes a cw20 send a stake.
func StakeHook() ReceiveMsg {
	return ReceiveMsg{Stake: &struct{}{}}
}
