package mongodb

import (
	"context"
	"dao-dashboard/internal/model"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	transactionsCollection = "transactions"

	defaultTransactionsLimit = 50
)

// InsertTransaction appends tx to the log. Failed submissions have no hash,
// so every entry gets its own id.
func (b Repository) InsertTransaction(ctx context.Context, tx model.TxRecord) error {
	coll := b.transactions()

	stored := toStoredTransaction(uuid.NewString(), tx)
	data, err := bson.Marshal(stored)
	if err != nil {
		return errors.New("failed to marshal the transaction: " + err.Error())
	}

	if _, err := coll.InsertOne(ctx, data); err != nil {
		return errors.New("failed to insert the transaction: " + err.Error())
	}

	b.logger.Debug("transaction logged", zap.String("account", tx.Account), zap.String("txHash", tx.TxHash))
	return nil
}

// GetAccountTransactions returns the latest transactions of account, newest first.
func (b Repository) GetAccountTransactions(ctx context.Context, account string, limit int64) ([]model.TxRecord, error) {
	if limit <= 0 {
		limit = defaultTransactionsLimit
	}
	coll := b.transactions()

	opts := options.Find().SetSort(bson.D{{Key: "time", Value: -1}}).SetLimit(limit)
	cursor, err := coll.Find(ctx, bson.M{"account": account}, opts)
	if err != nil {
		return nil, errors.New("failed to find the account transactions: " + err.Error())
	}

	var stored []storedTransaction
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, errors.New("failed to decode the account transactions: " + err.Error())
	}

	txs := make([]model.TxRecord, 0, len(stored))
	for _, s := range stored {
		txs = append(txs, s.toModel())
	}
	return txs, nil
}
