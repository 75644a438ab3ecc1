package domain

import "time"

// Loan records that a product is lent to a borrower. A loan is active until
// returned; at most one active loan may exist per product.
type Loan struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	ProductID     string     `json:"product_id"`
	BorrowerName  string     `json:"borrower_name"`
	BorrowerNotes string     `json:"borrower_notes,omitempty"`
	LentAt        time.Time  `json:"lent_at"`
	DueAt         *time.Time `json:"due_at,omitempty"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty"`
}

// IsActive returns true while the loan has not been returned.
func (l *Loan) IsActive() bool {
	return l.ReturnedAt == nil
}

// IsOverdue returns true if the loan is active and past its due date.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.IsActive() && l.DueAt != nil && now.After(*l.DueAt)
}
