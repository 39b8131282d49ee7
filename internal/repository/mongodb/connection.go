package mongodb

import (
	"context"
	"dao-dashboard/internal/config"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const connectTimeout = 3 * time.Second

// Repository is the transaction log kept in MongoDB.
type Repository struct {
	// connection closer function
	Disconnect func()

	client *mongo.Client
	logger *zap.Logger
}

// NewConnection connects to uri and makes sure the transaction log can be
// queried by account.
func NewConnection(ctx context.Context, logger *zap.Logger, uri string) (Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.Error("db connection failed", zap.Error(err))
		return Repository{}, err
	}

	setupCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(setupCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return Repository{}, errors.New("the db does not answer: " + err.Error())
	}

	repo := Repository{
		client: client,
		logger: logger,
		Disconnect: func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("failed to disconnect the DB: " + err.Error())
			}
		},
	}

	if err := repo.ensureIndexes(setupCtx); err != nil {
		repo.Disconnect()
		return Repository{}, err
	}

	logger.Info("transaction log connected", zap.String("db", config.GetDatabaseName()))
	return repo, nil
}

func (b Repository) transactions() *mongo.Collection {
	return b.client.Database(config.GetDatabaseName()).Collection(transactionsCollection)
}

// ensureIndexes backs the newest first listing of an account.
func (b Repository) ensureIndexes(ctx context.Context) error {
	_, err := b.transactions().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account", Value: 1}, {Key: "time", Value: -1}},
		Options: options.Index().SetName("account_time"),
	})
	if err != nil {
		return errors.New("failed to create the transactions index: " + err.Error())
	}
	return nil
}
