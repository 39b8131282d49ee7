package model_test

import (
	"dao-dashboard/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoteChoice(t *testing.T) {
	for _, text := range []string{"yes", "no", "abstain", "YES", " No "} {
		choice, err := model.ParseVoteChoice(text)
		require.NoError(t, err, text)
		assert.True(t, choice.IsValid())
	}

	for _, text := range []string{"", "maybe", "veto", "no_with_veto", "1"} {
		_, err := model.ParseVoteChoice(text)
		assert.ErrorIs(t, err, model.ErrInvalidVote, text)
	}
}

func TestStakeRequestValidate(t *testing.T) {
	assert.NoError(t, model.StakeRequest{Action: model.ActionStake, Amount: "10"}.Validate())
	assert.ErrorIs(t, model.StakeRequest{Action: model.ActionUnstake}.Validate(), model.ErrZeroAmount)
	assert.ErrorIs(t, model.StakeRequest{Action: "bond", Amount: "1"}.Validate(), model.ErrInvalidAction)

	_, err := model.ParseStakeAction("delegate")
	assert.ErrorIs(t, err, model.ErrInvalidAction)
	action, err := model.ParseStakeAction("Unstake")
	require.NoError(t, err)
	assert.Equal(t, model.ActionUnstake, action)
}

func TestUnstakingDurationString(t *testing.T) {
	u := func(v uint64) *uint64 { return &v }

	assert.Equal(t, "", model.UnstakingDuration{}.String())
	assert.False(t, model.UnstakingDuration{}.IsSet())
	assert.Equal(t, "2 weeks", model.UnstakingDuration{Time: u(1209600)}.String())
	assert.Equal(t, "3 days", model.UnstakingDuration{Time: u(259200)}.String())
	assert.Equal(t, "1 hour", model.UnstakingDuration{Time: u(3600)}.String())
	assert.Equal(t, "90 seconds", model.UnstakingDuration{Time: u(90)}.String())
	assert.Equal(t, "100800 blocks", model.UnstakingDuration{Height: u(100800)}.String())
	assert.Equal(t, "1 block", model.UnstakingDuration{Height: u(1)}.String())
}

func TestDaoInfoLinks(t *testing.T) {
	info := model.DaoInfo{}
	assert.Equal(t, "", info.CreateProposalPath())

	info.ProposalModules = []model.ProposalModule{{Address: "orai1module"}}
	assert.Equal(t, "/create-proposal/orai1module", info.CreateProposalPath())

	proposal := model.Proposal{ID: 3, ModuleAddress: "orai1module"}
	assert.Equal(t, "/proposal/orai1module/3", proposal.Path())
}
