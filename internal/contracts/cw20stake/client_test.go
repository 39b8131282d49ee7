package cw20stake_test

import (
	"context"
	"dao-dashboard/internal/contracts/contractstest"
	"dao-dashboard/internal/contracts/cw20stake"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStakedBalanceAtHeight(t *testing.T) {
	fake := contractstest.NewChain().Handle("staking", cw20stake.QueryStakedBalanceAtHeight, func(params json.RawMessage) (interface{}, error) {
		return map[string]interface{}{"balance": "700", "height": 101}, nil
	})
	client := cw20stake.NewQueryClient(fake, "staking")

	height := uint64(101)
	resp, err := client.StakedBalanceAtHeight(context.Background(), "orai1alice", &height)
	require.NoError(t, err)
	assert.Equal(t, "700", resp.Balance)
	assert.EqualValues(t, 101, resp.Height)

	_, err = client.StakedBalanceAtHeight(context.Background(), "orai1alice", nil)
	require.NoError(t, err)

	queries := fake.Queries()
	require.Len(t, queries, 2)
	assert.JSONEq(t, `{"staked_balance_at_height":{"address":"orai1alice","height":101}}`, string(queries[0].Msg))
	assert.JSONEq(t, `{"staked_balance_at_height":{"address":"orai1alice"}}`, string(queries[1].Msg))
}

func TestStakedValue(t *testing.T) {
	fake := contractstest.NewChain().Respond("staking", cw20stake.QueryStakedValue, map[string]string{"value": "750"})

	resp, err := cw20stake.NewQueryClient(fake, "staking").StakedValue(context.Background(), "orai1alice")
	require.NoError(t, err)
	assert.Equal(t, "750", resp.Value)
}

func TestGetConfig(t *testing.T) {
	fake := contractstest.NewChain().Respond("staking", cw20stake.QueryGetConfig, json.RawMessage(
		`{"owner":null,"manager":"orai1mgr","token_address":"token","unstaking_duration":{"time":1209600}}`))

	config, err := cw20stake.NewQueryClient(fake, "staking").GetConfig(context.Background())
	require.NoError(t, err)
	assert.Nil(t, config.Owner)
	assert.Equal(t, "token", config.TokenAddress)
	assert.Equal(t, "2 weeks", config.Unstaking().String())
}

func TestGetConfigWithoutUnstakingDuration(t *testing.T) {
	fake := contractstest.NewChain().Respond("staking", cw20stake.QueryGetConfig, json.RawMessage(`{"token_address":"token"}`))

	config, err := cw20stake.NewQueryClient(fake, "staking").GetConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, config.Unstaking().IsSet())
}

func TestUnstake(t *testing.T) {
	executor := &contractstest.Executor{}
	client := cw20stake.NewClient(contractstest.NewChain(), executor, "orai1alice", "staking")

	_, err := client.Unstake(context.Background(), "42")
	require.NoError(t, err)

	calls := executor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "staking", calls[0].Contract)
	assert.JSONEq(t, `{"unstake":{"amount":"42"}}`, string(calls[0].Msg))
}
