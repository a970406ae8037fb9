package firestoredb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kalavedi/model"
	"kalavedi/repository"
)

const membersCollection = "members"

type MemberRepository struct {
	client *firestore.Client
}

func NewMemberRepository(client *firestore.Client) *MemberRepository {
	return &MemberRepository{client: client}
}

func (r *MemberRepository) members() *firestore.CollectionRef {
	return r.client.Collection(membersCollection)
}

func (r *MemberRepository) FindByField(ctx context.Context, field, value string) (*model.Member, error) {
	docs, err := r.members().Where(field, "==", value).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query members by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}
	return decodeMember(docs[0])
}

func (r *MemberRepository) LatestMemberID(ctx context.Context) (string, error) {
	docs, err := r.latestQuery().Documents(ctx).GetAll()
	if err != nil {
		return "", fmt.Errorf("query latest member id: %w", err)
	}
	return latestID(docs)
}

func (r *MemberRepository) latestQuery() firestore.Query {
	return r.members().OrderBy("memberId", firestore.Desc).Limit(1)
}

func latestID(docs []*firestore.DocumentSnapshot) (string, error) {
	if len(docs) == 0 {
		return "", nil
	}
	m, err := decodeMember(docs[0])
	if err != nil {
		return "", err
	}
	return m.MemberID, nil
}

// CreateWithNextID runs the duplicate guard, the id read and the insert in
// one Firestore transaction so concurrent submitters are serialised by the
// store instead of racing on the same id.
func (r *MemberRepository) CreateWithNextID(ctx context.Context, m *model.Member, assign repository.AssignID, guard repository.CreateGuard) (*model.Member, error) {
	ref := r.members().NewDoc()
	var created model.Member

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if guard != nil {
			if err := guard(ctx, &txLookup{tx: tx, members: r.members()}); err != nil {
				return err
			}
		}

		docs, err := tx.Documents(r.latestQuery()).GetAll()
		if err != nil {
			return fmt.Errorf("query latest member id: %w", err)
		}
		latest, err := latestID(docs)
		if err != nil {
			return err
		}
		next, err := assign(latest)
		if err != nil {
			return err
		}

		created = *m
		created.MemberID = next
		if err := created.Validate(); err != nil {
			return err
		}
		return tx.Create(ref, created)
	})
	if err != nil {
		return nil, err
	}

	created.DocID = ref.ID
	return &created, nil
}

type txLookup struct {
	tx      *firestore.Transaction
	members *firestore.CollectionRef
}

func (l *txLookup) FindByField(ctx context.Context, field, value string) (*model.Member, error) {
	docs, err := l.tx.Documents(l.members.Where(field, "==", value).Limit(1)).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query members by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, repository.ErrNotFound
	}
	return decodeMember(docs[0])
}

func (r *MemberRepository) Get(ctx context.Context, docID string) (*model.Member, error) {
	doc, err := r.members().Doc(docID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get member %s: %w", docID, err)
	}
	return decodeMember(doc)
}

// List returns members with the given status, newest registration first.
// Filtering happens after decoding because older documents carry no status
// field and must still be listed as pending.
func (r *MemberRepository) List(ctx context.Context, st model.MemberStatus) ([]model.Member, error) {
	docs, err := r.members().Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]model.Member, 0, len(docs))
	for _, doc := range docs {
		m, err := decodeMember(doc)
		if err != nil {
			return nil, err
		}
		if st != "" && m.Status != st {
			continue
		}
		members = append(members, *m)
	}
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].RegistrationDate > members[j].RegistrationDate
	})
	return members, nil
}

func (r *MemberRepository) UpdateStatus(ctx context.Context, docID string, st model.MemberStatus, customMessage string) error {
	_, err := r.members().Doc(docID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(st)},
		{Path: "customMessage", Value: customMessage},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("update member %s status: %w", docID, err)
	}
	return nil
}

func decodeMember(doc *firestore.DocumentSnapshot) (*model.Member, error) {
	var m model.Member
	if err := doc.DataTo(&m); err != nil {
		return nil, fmt.Errorf("decode member %s: %w", doc.Ref.ID, err)
	}
	m.DocID = doc.Ref.ID
	m.Normalize()
	return &m, nil
}
