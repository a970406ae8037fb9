package model

import "time"

type Admin struct {
	AdminID   string    `firestore:"adminid,omitempty" json:"adminId"`
	Name      string    `firestore:"name,omitempty" json:"name"`
	Email     string    `firestore:"email,omitempty" json:"email" validate:"required,email"`
	Password  string    `firestore:"password,omitempty" json:"-" validate:"required"`
	Role      string    `firestore:"role,omitempty" json:"role"` // "admin"
	CreatedAt time.Time `firestore:"createdat,omitempty" json:"createdAt"`
}

func (a *Admin) Validate() error {
	return validateRecord(a)
}
