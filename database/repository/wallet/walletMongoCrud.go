package walletRepo

import (
	"context"
	"fmt"
	"time"

	"droply/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureWallet creates a zero-balance wallet for the user if none exists.
func (r *MongoWalletRepo) EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"userId":           userID,
			"balance":          0.0,
			"availableBalance": 0.0,
			"lockedBalance":    0.0,
			"totalEarned":      0.0,
			"totalWithdrawn":   0.0,
			"transactions":     []models.Transaction{},
			"createdAt":        now,
			"updatedAt":        now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var w models.Wallet
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to ensure wallet for user %s: %w", userID, err)
	}
	return &w, nil
}

// GetByUserID retrieves a wallet by its owning user.
func (r *MongoWalletRepo) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var w models.Wallet
	if err := r.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch wallet for user %s: %w", userID, err)
	}
	return &w, nil
}

// ApplyTransaction appends the transaction and moves the balance aggregates
// in a single write. Debits carry an availableBalance guard in the filter so
// the database itself refuses an overdraft regardless of what the caller
// checked beforehand.
func (r *MongoWalletRepo) ApplyTransaction(ctx context.Context, userID string, txn models.Transaction, deltas BalanceDeltas) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"userId": userID}
	if deltas.AvailableBalance < 0 {
		filter["availableBalance"] = bson.M{"$gte": -deltas.AvailableBalance}
	}

	update := bson.M{
		"$push": bson.M{"transactions": txn},
		"$inc": bson.M{
			"balance":          deltas.Balance,
			"availableBalance": deltas.AvailableBalance,
			"lockedBalance":    deltas.LockedBalance,
			"totalEarned":      deltas.TotalEarned,
			"totalWithdrawn":   deltas.TotalWithdrawn,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to apply transaction for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		count, countErr := r.coll.CountDocuments(ctx, bson.M{"userId": userID})
		if countErr == nil && count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientFunds
	}
	return nil
}

// SetBankAccount registers a bank payout destination.
func (r *MongoWalletRepo) SetBankAccount(ctx context.Context, userID string, acct models.BankAccount) error {
	return r.setPayoutField(ctx, userID, bson.M{"bankAccount": acct})
}

// SetUPIHandle registers a UPI payout destination.
func (r *MongoWalletRepo) SetUPIHandle(ctx context.Context, userID string, handle string) error {
	return r.setPayoutField(ctx, userID, bson.M{"upiHandle": handle})
}

func (r *MongoWalletRepo) setPayoutField(ctx context.Context, userID string, fields bson.M) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	fields["updatedAt"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"userId": userID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update payout destination for user %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
