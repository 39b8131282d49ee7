package mongodb

import (
	"dao-dashboard/internal/model"
	"time"
)

type storedTransaction struct {
	ID       string    `bson:"_id" json:"id"`
	TxHash   string    `bson:"txHash,omitempty" json:"txHash,omitempty"`
	Account  string    `bson:"account" json:"account"`
	Kind     string    `bson:"kind" json:"kind"`
	Contract string    `bson:"contract" json:"contract"`
	Detail   string    `bson:"detail" json:"detail"`
	Success  bool      `bson:"success" json:"success"`
	Error    string    `bson:"error,omitempty" json:"error,omitempty"`
	Time     time.Time `bson:"time" json:"time"`
}

func toStoredTransaction(id string, tx model.TxRecord) storedTransaction {
	return storedTransaction{
		ID:       id,
		TxHash:   tx.TxHash,
		Account:  tx.Account,
		Kind:     string(tx.Kind),
		Contract: tx.Contract,
		Detail:   tx.Detail,
		Success:  tx.Success,
		Error:    tx.Error,
		Time:     tx.Time.UTC(),
	}
}

func (s storedTransaction) toModel() model.TxRecord {
	return model.TxRecord{
		TxHash:   s.TxHash,
		Account:  s.Account,
		Kind:     model.TxKind(s.Kind),
		Contract: s.Contract,
		Detail:   s.Detail,
		Success:  s.Success,
		Error:    s.Error,
		Time:     s.Time,
	}
}
