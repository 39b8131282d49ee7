package app

import (
	"context"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/contracts/cw20base"
	"dao-dashboard/internal/contracts/cw20stake"
	"dao-dashboard/internal/contracts/daocore"
	"dao-dashboard/internal/contracts/proposalsingle"
	"dao-dashboard/internal/contracts/votingstaked"
	"dao-dashboard/internal/model"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// fetchDaoInfo queries everything the DAO page shows apart from the account
// staking. Independent queries run concurrently.
func fetchDaoInfo(ctx context.Context, logger *zap.Logger, session chain.Session, daoAddr string) (model.DaoInfo, error) {
	core := daocore.NewQueryClient(session.Chain, daoAddr)

	var (
		config       daocore.Config
		modules      []daocore.ProposalModule
		votingModule string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if config, err = core.Config(gctx); err != nil {
			return fmt.Errorf("dao config: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if modules, err = core.ProposalModules(gctx, daocore.Pagination{}); err != nil {
			return fmt.Errorf("proposal modules: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if votingModule, err = core.VotingModule(gctx); err != nil {
			return fmt.Errorf("voting module: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DaoInfo{}, err
	}

	info := model.DaoInfo{
		Address:      daoAddr,
		Name:         config.Name,
		Description:  config.Description,
		VotingModule: votingModule,
		Proposals:    []model.Proposal{},
	}
	if config.ImageURL != nil {
		info.ImageURL = *config.ImageURL
	}
	for _, m := range modules {
		info.ProposalModules = append(info.ProposalModules, model.ProposalModule{
			Address: m.Address,
			Prefix:  m.Prefix,
			Status:  m.Status,
		})
	}

	g, gctx = errgroup.WithContext(ctx)
	if module, ok := info.FirstProposalModule(); ok {
		proposals := proposalsingle.NewQueryClient(session.Chain, module.Address)
		g.Go(func() error {
			list, err := proposals.ListProposals(gctx, proposalsingle.ListParams{})
			if err != nil {
				return fmt.Errorf("proposal list: %w", err)
			}
			for _, p := range list.Proposals {
				info.Proposals = append(info.Proposals, p.ToModel(module.Address))
			}
			return nil
		})
		g.Go(func() (err error) {
			if info.TotalProposals, err = proposals.ProposalCount(gctx); err != nil {
				return fmt.Errorf("proposal count: %w", err)
			}
			return nil
		})
	}
	if votingModule != "" {
		voting := votingstaked.NewQueryClient(session.Chain, votingModule)
		g.Go(func() (err error) {
			if info.TokenAddr, err = voting.TokenContract(gctx); err != nil {
				return fmt.Errorf("token contract: %w", err)
			}
			tokenInfo, err := cw20base.NewQueryClient(session.Chain, info.TokenAddr).TokenInfo(gctx)
			if err != nil {
				// the symbol is cosmetic
				logger.Warn("failed to query the token info: "+err.Error(), zap.String("token", info.TokenAddr))
				return nil
			}
			info.TokenSymbol = tokenInfo.Symbol
			return nil
		})
		g.Go(func() (err error) {
			if info.StakingAddr, err = voting.StakingContract(gctx); err != nil {
				return fmt.Errorf("staking contract: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.DaoInfo{}, err
	}

	return info, nil
}

// fetchUserStaking queries the staked balance at the next block and the
// staked value of the session account.
func fetchUserStaking(ctx context.Context, logger *zap.Logger, session chain.Session, stakingAddr string) (model.UserStaking, error) {
	if !session.Connected() || stakingAddr == "" {
		return model.NoAccountStaking(), nil
	}

	latest, err := session.Chain.LatestHeight(ctx)
	if err != nil {
		return model.UserStaking{}, err
	}
	height := latest + 1

	staking := cw20stake.NewQueryClient(session.Chain, stakingAddr)
	var (
		staked cw20stake.StakedBalanceAtHeightResponse
		value  cw20stake.StakedValueResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if staked, err = staking.StakedBalanceAtHeight(gctx, session.Address, &height); err != nil {
			return fmt.Errorf("staked balance: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if value, err = staking.StakedValue(gctx, session.Address); err != nil {
			return fmt.Errorf("staked value: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.UserStaking{}, err
	}

	stakedBalance, err := model.ParseBalance(staked.Balance)
	if err != nil {
		return model.UserStaking{}, err
	}
	reward, err := model.RewardOf(model.Balance(value.Value), stakedBalance)
	if err != nil {
		return model.UserStaking{}, err
	}
	if reward.IsNegative() {
		logger.Warn("staked value below the staked balance, the reward is negative",
			zap.String("account", session.Address), zap.String("value", value.Value), zap.String("staked", staked.Balance))
	}

	return model.UserStaking{Staked: stakedBalance, Reward: reward}, nil
}

// StakingBalances is what the staking modal shows.
type StakingBalances struct {
	TokenBalance model.Balance
	Staked       model.Balance
	Unstaking    model.UnstakingDuration
}

// fetchStakingBalances queries the modal balances. Without an account both
// balances are zero and only the unstaking config is queried.
func fetchStakingBalances(ctx context.Context, session chain.Session, tokenAddr, stakingAddr string) (StakingBalances, error) {
	balances := StakingBalances{TokenBalance: model.ZeroBalance, Staked: model.ZeroBalance}
	staking := cw20stake.NewQueryClient(session.Chain, stakingAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		config, err := staking.GetConfig(gctx)
		if err != nil {
			return fmt.Errorf("staking config: %w", err)
		}
		balances.Unstaking = config.Unstaking()
		return nil
	})
	if session.Connected() {
		g.Go(func() error {
			resp, err := cw20base.NewQueryClient(session.Chain, tokenAddr).Balance(gctx, session.Address)
			if err != nil {
				return fmt.Errorf("token balance: %w", err)
			}
			balances.TokenBalance = model.Balance(resp.Balance)
			return nil
		})
		g.Go(func() error {
			resp, err := staking.StakedBalanceAtHeight(gctx, session.Address, nil)
			if err != nil {
				return fmt.Errorf("staked balance: %w", err)
			}
			balances.Staked = model.Balance(resp.Balance)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StakingBalances{}, err
	}
	return balances, nil
}

func fetchProposal(ctx context.Context, session chain.Session, moduleAddr string, proposalID uint64) (model.Proposal, error) {
	resp, err := proposalsingle.NewQueryClient(session.Chain, moduleAddr).Proposal(ctx, proposalID)
	if err != nil {
		return model.Proposal{}, fmt.Errorf("proposal %d: %w", proposalID, err)
	}
	return resp.ToModel(moduleAddr), nil
}

// submitStake performs req with the session account: a stake is a cw20
// send to the staking contract carrying the stake hook, an unstake goes to
// the staking contract directly.
func submitStake(ctx context.Context, session chain.Session, tokenAddr, stakingAddr string, req model.StakeRequest) (chain.TxResult, string, error) {
	if !session.Connected() {
		return chain.TxResult{}, "", ErrNoAccount
	}
	if err := req.Validate(); err != nil {
		return chain.TxResult{}, "", err
	}

	switch req.Action {
	case model.ActionStake:
		token := cw20base.NewClient(session.Chain, session.Signer, session.Address, tokenAddr)
		res, err := token.Send(ctx, req.Amount, stakingAddr, cw20stake.StakeHook())
		return res, tokenAddr, err
	default:
		staking := cw20stake.NewClient(session.Chain, session.Signer, session.Address, stakingAddr)
		res, err := staking.Unstake(ctx, req.Amount)
		return res, stakingAddr, err
	}
}
