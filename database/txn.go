package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// TxnRunner executes a function inside a single transaction so that writes
// to multiple aggregates (wallet debit plus shipment settlement) commit or
// roll back together. Services depend on this interface rather than on the
// driver so they can be exercised with an in-memory runner in tests.
type TxnRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// MongoTxnRunner runs the callback inside a MongoDB session transaction.
type MongoTxnRunner struct {
	Client *mongo.Client
}

func NewMongoTxnRunner(client *mongo.Client) *MongoTxnRunner {
	return &MongoTxnRunner{Client: client}
}

func (r *MongoTxnRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.Client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// NoTxnRunner executes the callback directly. It backs deployments without a
// replica set, where transactions are unavailable, and unit tests.
type NoTxnRunner struct{}

func (NoTxnRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
