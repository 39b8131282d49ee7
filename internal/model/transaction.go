package model

import "time"

type TxKind string

const (
	TxKindVote    TxKind = "vote"
	TxKindStake   TxKind = "stake"
	TxKindUnstake TxKind = "unstake"
)

// TxRecord is a log entry of a transaction submitted through the dashboard.
// It is a history of what was sent, never a source of contract state.
type TxRecord struct {
	TxHash   string
	Account  string
	Kind     TxKind
	Contract string
	Detail   string
	Success  bool
	Error    string
	Time     time.Time
}

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// Notification is a dismissible toast shown after an action.
type Notification struct {
	Level   NotificationLevel
	Message string
}

func SuccessNotification(message string) Notification {
	return Notification{Level: NotificationSuccess, Message: message}
}

func ErrorNotification(err error) Notification {
	return Notification{Level: NotificationError, Message: err.Error()}
}
