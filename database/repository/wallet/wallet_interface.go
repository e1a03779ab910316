package walletRepo

import (
	"context"
	"errors"

	"droply/models"
)

// Sentinel errors surfaced to the service layer.
var (
	// ErrNotFound is returned when the user has no wallet document.
	ErrNotFound = errors.New("wallet not found")
	// ErrInsufficientFunds is returned when a debit would take the
	// available balance below zero. The write is rejected server-side, so
	// no partial change is ever applied.
	ErrInsufficientFunds = errors.New("insufficient available balance")
)

// BalanceDeltas describes how a transaction moves the wallet aggregates.
// Every field is applied in the same write as the transaction append.
type BalanceDeltas struct {
	Balance          float64
	AvailableBalance float64
	LockedBalance    float64
	TotalEarned      float64
	TotalWithdrawn   float64
}

// WalletRepository defines data access for the wallet aggregate. The ledger
// is append-only: transactions are pushed, never rewritten, and the
// aggregate balances move in the same atomic write.
type WalletRepository interface {
	// EnsureWallet creates a zero-balance wallet for the user if none
	// exists, and returns the current document either way.
	EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// GetByUserID retrieves a wallet by its owning user.
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	// ApplyTransaction appends the transaction and applies the balance
	// deltas in one conditional write. For debits the write carries an
	// availableBalance guard and fails with ErrInsufficientFunds.
	ApplyTransaction(ctx context.Context, userID string, txn models.Transaction, deltas BalanceDeltas) error
	// SetBankAccount registers a bank payout destination.
	SetBankAccount(ctx context.Context, userID string, acct models.BankAccount) error
	// SetUPIHandle registers a UPI payout destination.
	SetUPIHandle(ctx context.Context, userID string, handle string) error
}
