package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kalavedi/model"
	"kalavedi/repository"
)

const (
	transactionsCollection = "incomeexpense"
	notificationCollection = "notification"
	adminsCollection       = "admins"
)

type TransactionRepository struct {
	client *firestore.Client
}

func NewTransactionRepository(client *firestore.Client) *TransactionRepository {
	return &TransactionRepository{client: client}
}

func (r *TransactionRepository) List(ctx context.Context) ([]model.Transaction, error) {
	docs, err := r.client.Collection(transactionsCollection).OrderBy("timestamp", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	txs := make([]model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var t model.Transaction
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", doc.Ref.ID, err)
		}
		t.ID = doc.Ref.ID
		txs = append(txs, t)
	}
	return txs, nil
}

func (r *TransactionRepository) Get(ctx context.Context, id string) (*model.Transaction, error) {
	doc, err := r.client.Collection(transactionsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	var t model.Transaction
	if err := doc.DataTo(&t); err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", id, err)
	}
	t.ID = doc.Ref.ID
	return &t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *model.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	ref, _, err := r.client.Collection(transactionsCollection).Add(ctx, t)
	if err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}
	return ref.ID, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	_, err := r.client.Collection(transactionsCollection).Doc(t.ID).Update(ctx, []firestore.Update{
		{Path: "description", Value: t.Description},
		{Path: "amount", Value: t.Amount},
		{Path: "type", Value: string(t.Type)},
		{Path: "date", Value: t.Date},
		{Path: "timestamp", Value: t.Timestamp},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(transactionsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// NotificationRepository reads and writes the single broadcast document.
type NotificationRepository struct {
	client *firestore.Client
	docID  string
}

func NewNotificationRepository(client *firestore.Client, docID string) *NotificationRepository {
	return &NotificationRepository{client: client, docID: docID}
}

func (r *NotificationRepository) Get(ctx context.Context) (*model.Notification, error) {
	doc, err := r.client.Collection(notificationCollection).Doc(r.docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}
	var n model.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) Put(ctx context.Context, n *model.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	_, err := r.client.Collection(notificationCollection).Doc(r.docID).Set(ctx, map[string]interface{}{
		"title":     n.Title,
		"alert":     n.Alert,
		"updatedAt": n.UpdatedAt,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

type AdminRepository struct {
	client *firestore.Client
}

func NewAdminRepository(client *firestore.Client) *AdminRepository {
	return &AdminRepository{client: client}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	docs, err := r.client.Collection(adminsCollection).Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query admins: %w", err)
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}
	var a model.Admin
	if err := docs[0].DataTo(&a); err != nil {
		return nil, fmt.Errorf("decode admin: %w", err)
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *model.Admin) error {
	if a.AdminID == "" {
		a.AdminID = uuid.New().String()
	}
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := r.client.Collection(adminsCollection).Doc(a.AdminID).Set(ctx, a); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

// NewStore wires every Firestore repository around one client.
func NewStore(client *firestore.Client, notificationDocID string) *repository.Store {
	return &repository.Store{
		Members:       NewMemberRepository(client),
		Activities:    NewActivityRepository(client),
		Notifications: NewNotificationRepository(client, notificationDocID),
		Transactions:  NewTransactionRepository(client),
		Admins:        NewAdminRepository(client),
		Close:         client.Close,
	}
}
