package model

import (
	"time"
)

// Notification is the broadcast alert shown on the public landing page.
type Notification struct {
	Title     string    `firestore:"title,omitempty" json:"title"`
	Alert     string    `firestore:"alert" json:"alert" validate:"required"`
	UpdatedAt time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (n *Notification) Validate() error {
	return validateRecord(n)
}
