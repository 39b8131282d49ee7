package model

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrInvalidBalance = errors.New("balance must be a non-negative integer")

// TokenAmount is the amount a user picks in the staking modal: a Uint128 in
// decimal, like the contracts take it. The empty value is zero.
type TokenAmount string

const ZeroAmount TokenAmount = "0"

var (
	one        = big.NewInt(1)
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(one, 128), one)
)

// Increment adds a single token, it stops at the largest Uint128.
func (a TokenAmount) Increment() TokenAmount {
	return amountOf(new(big.Int).Add(a.value(), one))
}

// Decrement removes a single token, it never goes below zero.
func (a TokenAmount) Decrement() TokenAmount {
	v := a.value()
	if v.Sign() == 0 {
		return ZeroAmount
	}
	return amountOf(v.Sub(v, one))
}

func (a TokenAmount) IsZero() bool {
	return a.value().Sign() == 0
}

func (a TokenAmount) String() string {
	if a == "" {
		return string(ZeroAmount)
	}
	return string(a)
}

func (a TokenAmount) value() *big.Int {
	v, ok := toInt(string(a))
	if !ok {
		return new(big.Int)
	}
	return v
}

func amountOf(v *big.Int) TokenAmount {
	if v.Cmp(maxUint128) > 0 {
		return TokenAmount(maxUint128.String())
	}
	return TokenAmount(v.String())
}

// ParseTokenAmount reads an amount typed by the user. Empty, negative or
// non-numeric text, and integers beyond Uint128, are coerced to zero.
func ParseTokenAmount(text string) TokenAmount {
	text = strings.TrimSpace(text)
	if text == "" || strings.TrimLeft(text, "0123456789") != "" {
		return ZeroAmount
	}

	v, ok := toInt(text)
	if !ok || v.Cmp(maxUint128) > 0 {
		return ZeroAmount
	}
	return amountOf(v)
}

// Balance is a Uint128 amount as the contracts return it: a decimal string.
type Balance string

const ZeroBalance Balance = "0"

func ParseBalance(s string) (Balance, error) {
	if _, ok := toInt(s); !ok {
		return ZeroBalance, fmt.Errorf("%w: %q", ErrInvalidBalance, s)
	}
	return Balance(s), nil
}

func (b Balance) String() string {
	if b == "" {
		return string(ZeroBalance)
	}
	return string(b)
}

func (b Balance) IsZero() bool {
	v, ok := toInt(b.String())
	return !ok || v.Sign() == 0
}

// Reward is the signed decimal difference between the staked value and the
// staked balance. It is display-only and negative when the value fell below
// the balance.
type Reward string

const ZeroReward Reward = "0"

func (r Reward) String() string {
	if r == "" {
		return string(ZeroReward)
	}
	return string(r)
}

func (r Reward) IsNegative() bool {
	return strings.HasPrefix(string(r), "-")
}

// RewardOf derives the reward figure: totalValue - staked, exactly.
func RewardOf(totalValue, staked Balance) (Reward, error) {
	total, ok := toInt(totalValue.String())
	if !ok {
		return ZeroReward, fmt.Errorf("staked value: %w", ErrInvalidBalance)
	}
	stakedInt, ok := toInt(staked.String())
	if !ok {
		return ZeroReward, fmt.Errorf("staked balance: %w", ErrInvalidBalance)
	}

	return Reward(new(big.Int).Sub(total, stakedInt).String()), nil
}

func toInt(s string) (*big.Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}
