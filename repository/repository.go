// Package repository defines the store contracts used by the services.
// Implementations live in the firestore and memory subpackages.
package repository

import (
	"context"
	"errors"

	"kalavedi/model"
)

var ErrNotFound = errors.New("not found")

// Member fields that can be looked up by equality.
const (
	FieldEmail    = "email"
	FieldPhone    = "phoneNumber"
	FieldMemberID = "memberId"
)

// AssignID turns the latest stored member id into the next one.
type AssignID func(latest string) (string, error)

// CreateGuard runs inside the create transaction before the id is read.
// Returning an error aborts the write.
type CreateGuard func(ctx context.Context, lookup MemberLookup) error

// MemberLookup is the read surface available to a CreateGuard.
type MemberLookup interface {
	FindByField(ctx context.Context, field, value string) (*model.Member, error)
}

type MemberRepository interface {
	MemberLookup
	LatestMemberID(ctx context.Context) (string, error)
	// CreateWithNextID runs guard, reads the latest member id, assigns the
	// next one via assign and writes m in a single atomic unit.
	CreateWithNextID(ctx context.Context, m *model.Member, assign AssignID, guard CreateGuard) (*model.Member, error)
	Get(ctx context.Context, docID string) (*model.Member, error)
	List(ctx context.Context, status model.MemberStatus) ([]model.Member, error)
	UpdateStatus(ctx context.Context, docID string, status model.MemberStatus, customMessage string) error
}

type ActivityRepository interface {
	List(ctx context.Context) ([]model.Activity, error)
	Get(ctx context.Context, id string) (*model.Activity, error)
	Create(ctx context.Context, a *model.Activity) (string, error)
	Update(ctx context.Context, a *model.Activity) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Get(ctx context.Context) (*model.Notification, error)
	Put(ctx context.Context, n *model.Notification) error
}

type TransactionRepository interface {
	List(ctx context.Context) ([]model.Transaction, error)
	Get(ctx context.Context, id string) (*model.Transaction, error)
	Create(ctx context.Context, t *model.Transaction) (string, error)
	Update(ctx context.Context, t *model.Transaction) error
	Delete(ctx context.Context, id string) error
}

type AdminRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	Create(ctx context.Context, a *model.Admin) error
}

// Store bundles the repositories of one backend.
type Store struct {
	Members       MemberRepository
	Activities    ActivityRepository
	Notifications NotificationRepository
	Transactions  TransactionRepository
	Admins        AdminRepository
	Close         func() error
}
