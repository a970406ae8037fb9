package model

import "time"

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Transaction is one row of the income/expense ledger. Timestamp mirrors
// Date in unix milliseconds so the collection can be ordered cheaply.
type Transaction struct {
	ID          string          `firestore:"-" json:"id"`
	Description string          `firestore:"description" json:"description" validate:"required"`
	Amount      float64         `firestore:"amount" json:"amount" validate:"gt=0"`
	Type        TransactionType `firestore:"type" json:"type" validate:"required,oneof=income expense"`
	Date        string          `firestore:"date" json:"date" validate:"required"`
	Timestamp   int64           `firestore:"timestamp" json:"timestamp"`
	CreatedAt   time.Time       `firestore:"createdAt" json:"createdAt"`
}

func (t *Transaction) Validate() error {
	return validateRecord(t)
}

func (t *Transaction) Time() time.Time {
	return time.UnixMilli(t.Timestamp).UTC()
}
