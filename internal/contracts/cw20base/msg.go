package cw20base

const (
	QueryBalance   = "balance"
	QueryTokenInfo = "token_info"

	ExecuteSend = "send"
)

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type TokenInfoResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    uint8  `json:"decimals"`
	TotalSupply string `json:"total_supply"`
}

type balanceQuery struct {
	Address string `json:"address"`
}

// sendMsg transfers to a contract and calls its receive hook with Msg.
// Msg is marshalled as base64, the Binary encoding of the contracts.
type sendMsg struct {
	Contract string `json:"contract"`
	Amount   string `json:"amount"`
	Msg      []byte `json:"msg"`
}
