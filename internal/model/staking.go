package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidAction = errors.New("action must be one of: stake, unstake")
	ErrZeroAmount    = errors.New("amount must be greater than zero")
)

type StakeAction string

const (
	ActionStake   StakeAction = "stake"
	ActionUnstake StakeAction = "unstake"
)

func (action StakeAction) IsValid() bool {
	return action == ActionStake || action == ActionUnstake
}

func (action StakeAction) String() string {
	return string(action)
}

func ParseStakeAction(text string) (StakeAction, error) {
	action := StakeAction(strings.ToLower(strings.TrimSpace(text)))
	if !action.IsValid() {
		return "", fmt.Errorf("%w, got %q", ErrInvalidAction, text)
	}
	return action, nil
}

// StakeRequest is consumed by a single execute call and not kept.
type StakeRequest struct {
	Action StakeAction
	Amount TokenAmount
}

func (req StakeRequest) Validate() error {
	if !req.Action.IsValid() {
		return ErrInvalidAction
	}
	if req.Amount.IsZero() {
		return ErrZeroAmount
	}
	return nil
}

// UnstakingDuration is either a block count or a number of seconds.
// Both nil means the staking contract has no unstaking period.
type UnstakingDuration struct {
	Height *uint64
	Time   *uint64
}

func (d UnstakingDuration) IsSet() bool {
	return d.Height != nil || d.Time != nil
}

func (d UnstakingDuration) String() string {
	switch {
	case d.Height != nil:
		return plural(*d.Height, "block")
	case d.Time != nil:
		return formatSeconds(*d.Time)
	default:
		return ""
	}
}

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
)

func formatSeconds(seconds uint64) string {
	switch {
	case seconds == 0:
		return plural(0, "second")
	case seconds%week == 0:
		return plural(seconds/week, "week")
	case seconds%day == 0:
		return plural(seconds/day, "day")
	case seconds%hour == 0:
		return plural(seconds/hour, "hour")
	case seconds%minute == 0:
		return plural(seconds/minute, "minute")
	default:
		return plural(seconds, "second")
	}
}

func plural(n uint64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatUint(n, 10) + " " + unit + "s"
}
