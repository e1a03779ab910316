package wallet

import (
	"context"
	"errors"

	"droply/models"
)

// Exported business errors (handlers and the settlement coordinator map
// these to the transport taxonomy).
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientFunds   = errors.New("insufficient available balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrBelowMinWithdrawal  = errors.New("amount is below the minimum withdrawal")
	ErrNoPayoutDestination = errors.New("no payout destination registered for this method")
)

// TxnMeta carries bookkeeping fields recorded on every ledger entry.
type TxnMeta struct {
	Method      string // e.g. "wallet", "bank", "upi"
	ReferenceID string // shipment id, payment id, or payout reference
	Description string
}

// WalletService is the balance and ledger subsystem. It never inspects
// shipment or bid state; the delivery core calls it, never the reverse.
type WalletService interface {
	// EnsureWallet lazily creates the user's wallet and returns it.
	EnsureWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// GetWallet returns the user's wallet.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	// Credit appends a credit transaction and raises the balances.
	Credit(ctx context.Context, userID string, amount float64, meta TxnMeta) error
	// Debit appends a debit transaction and lowers the balances. Fails
	// closed with ErrInsufficientFunds; no partial change is applied.
	Debit(ctx context.Context, userID string, amount float64, meta TxnMeta) error
	// Withdraw debits toward a registered payout destination, subject to
	// the minimum-withdrawal policy.
	Withdraw(ctx context.Context, userID string, amount float64, method string) error
	// SetBankAccount registers a bank payout destination.
	SetBankAccount(ctx context.Context, userID string, acct models.BankAccount) error
	// SetUPIHandle registers a UPI payout destination.
	SetUPIHandle(ctx context.Context, userID string, handle string) error
}
