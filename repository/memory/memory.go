// Package memory is an in-process implementation of the repository
// contracts. It backs the tests and APP_STORE=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kalavedi/model"
	"kalavedi/repository"
)

func NewStore() *repository.Store {
	return &repository.Store{
		Members:       NewMemberRepository(),
		Activities:    NewActivityRepository(),
		Notifications: NewNotificationRepository(),
		Transactions:  NewTransactionRepository(),
		Admins:        NewAdminRepository(),
		Close:         func() error { return nil },
	}
}

type MemberRepository struct {
	mu      sync.Mutex
	members map[string]model.Member
	// Err, when set, is returned by every call.
	Err error
}

func NewMemberRepository() *MemberRepository {
	return &MemberRepository{members: make(map[string]model.Member)}
}

// Seed inserts members as-is, keeping their MemberID. Used by tests and the
// local development store.
func (r *MemberRepository) Seed(members ...model.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range members {
		if m.DocID == "" {
			m.DocID = uuid.New().String()
		}
		m.Normalize()
		r.members[m.DocID] = m
	}
}

func (r *MemberRepository) FindByField(ctx context.Context, field, value string) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.findLocked(field, value)
}

func (r *MemberRepository) findLocked(field, value string) (*model.Member, error) {
	for _, m := range r.sortedLocked() {
		var got string
		switch field {
		case repository.FieldEmail:
			got = m.Email
		case repository.FieldPhone:
			got = m.PhoneNumber
		case repository.FieldMemberID:
			got = m.MemberID
		default:
			continue
		}
		if got == value {
			found := m
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

// sortedLocked returns members ordered by document id so lookups are
// deterministic.
func (r *MemberRepository) sortedLocked() []model.Member {
	out := make([]model.Member, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocID < out[j].DocID })
	return out
}

func (r *MemberRepository) LatestMemberID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	return r.latestLocked(), nil
}

// latestLocked mirrors the store's descending string ordering on memberId.
func (r *MemberRepository) latestLocked() string {
	latest := ""
	for _, m := range r.members {
		if strings.Compare(m.MemberID, latest) > 0 {
			latest = m.MemberID
		}
	}
	return latest
}

type lockedLookup struct{ r *MemberRepository }

func (l lockedLookup) FindByField(ctx context.Context, field, value string) (*model.Member, error) {
	return l.r.findLocked(field, value)
}

func (r *MemberRepository) CreateWithNextID(ctx context.Context, m *model.Member, assign repository.AssignID, guard repository.CreateGuard) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	if guard != nil {
		if err := guard(ctx, lockedLookup{r: r}); err != nil {
			return nil, err
		}
	}
	next, err := assign(r.latestLocked())
	if err != nil {
		return nil, err
	}

	created := *m
	created.MemberID = next
	if err := created.Validate(); err != nil {
		return nil, err
	}
	created.DocID = uuid.New().String()
	r.members[created.DocID] = created
	return &created, nil
}

func (r *MemberRepository) Get(ctx context.Context, docID string) (*model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, ok := r.members[docID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MemberRepository) List(ctx context.Context, status model.MemberStatus) ([]model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []model.Member{}
	for _, m := range r.sortedLocked() {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RegistrationDate > out[j].RegistrationDate
	})
	return out, nil
}

func (r *MemberRepository) UpdateStatus(ctx context.Context, docID string, status model.MemberStatus, customMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	m, ok := r.members[docID]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = status
	m.CustomMessage = customMessage
	m.UpdatedAt = time.Now()
	r.members[docID] = m
	return nil
}

type ActivityRepository struct {
	mu         sync.Mutex
	activities map[string]model.Activity
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{activities: make(map[string]model.Activity)}
}

func (r *ActivityRepository) List(ctx context.Context) ([]model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Activity, 0, len(r.activities))
	for _, a := range r.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (*model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.activities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) (string, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = uuid.New().String()
	r.activities[a.ID] = *a
	return a.ID, nil
}

func (r *ActivityRepository) Update(ctx context.Context, a *model.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.activities[a.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *a
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = time.Now()
	r.activities[a.ID] = updated
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activities, id)
	return nil
}

type NotificationRepository struct {
	mu sync.Mutex
	n  *model.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Get(ctx context.Context) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n == nil {
		return nil, repository.ErrNotFound
	}
	n := *r.n
	return &n, nil
}

func (r *NotificationRepository) Put(ctx context.Context, n *model.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *n
	r.n = &stored
	return nil
}

type TransactionRepository struct {
	mu  sync.Mutex
	txs map[string]model.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{txs: make(map[string]model.Transaction)}
}

func (r *TransactionRepository) List(ctx context.Context) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *TransactionRepository) Get(ctx context.Context, id string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.txs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *model.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.New().String()
	r.txs[t.ID] = *t
	return t.ID, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *model.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.txs[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *t
	updated.CreatedAt = old.CreatedAt
	r.txs[t.ID] = updated
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.txs, id)
	return nil
}

type AdminRepository struct {
	mu     sync.Mutex
	admins map[string]model.Admin
}

func NewAdminRepository() *AdminRepository {
	return &AdminRepository{admins: make(map[string]model.Admin)}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[email]
	if !ok {
		return nil, repository.ErrNotFound
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
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[a.Email] = *a
	return nil
}
