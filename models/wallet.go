package models

import "time"

// Transaction types and statuses.
const (
	TxnTypeCredit = "credit"
	TxnTypeDebit  = "debit"

	TxnStatusCompleted = "completed"
)

// Payout methods.
const (
	PayoutMethodBank = "bank"
	PayoutMethodUPI  = "upi"
)

// Wallet holds a user's balance and its full transaction history. The
// aggregate fields move in lock-step with each appended transaction; they are
// never written independently.
type Wallet struct {
	UserID           string        `bson:"userId" json:"userId"`
	Balance          float64       `bson:"balance" json:"balance"`
	AvailableBalance float64       `bson:"availableBalance" json:"availableBalance"`
	LockedBalance    float64       `bson:"lockedBalance" json:"lockedBalance"`
	TotalEarned      float64       `bson:"totalEarned" json:"totalEarned"`
	TotalWithdrawn   float64       `bson:"totalWithdrawn" json:"totalWithdrawn"`
	BankAccount      *BankAccount  `bson:"bankAccount,omitempty" json:"bankAccount,omitempty"`
	UPIHandle        string        `bson:"upiHandle,omitempty" json:"upiHandle,omitempty"`
	Transactions     []Transaction `bson:"transactions" json:"transactions"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// BankAccount is a registered payout destination.
type BankAccount struct {
	AccountNumber string `bson:"accountNumber" json:"accountNumber"`
	IFSC          string `bson:"ifsc" json:"ifsc"`
	HolderName    string `bson:"holderName" json:"holderName"`
}

// Transaction is one entry in the append-only wallet ledger.
type Transaction struct {
	ID          string    `bson:"id" json:"id"`
	Type        string    `bson:"type" json:"type"` // "credit" or "debit"
	Amount      float64   `bson:"amount" json:"amount"`
	Method      string    `bson:"method" json:"method"` // e.g. "wallet", "bank", "upi"
	ReferenceID string    `bson:"referenceId,omitempty" json:"referenceId,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}
