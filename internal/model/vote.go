package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidVote = errors.New("vote must be one of: yes, no, abstain")

type VoteChoice string

const (
	VoteYes     VoteChoice = "yes"
	VoteNo      VoteChoice = "no"
	VoteAbstain VoteChoice = "abstain"
)

func (v VoteChoice) IsValid() bool {
	return v == VoteYes || v == VoteNo || v == VoteAbstain
}

func (v VoteChoice) String() string {
	return string(v)
}

// ParseVoteChoice accepts only the closed set of choices, case insensitive.
func ParseVoteChoice(text string) (VoteChoice, error) {
	choice := VoteChoice(strings.ToLower(strings.TrimSpace(text)))
	if !choice.IsValid() {
		return "", fmt.Errorf("%w, got %q", ErrInvalidVote, text)
	}
	return choice, nil
}
