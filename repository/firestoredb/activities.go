package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"kalavedi/model"
	"kalavedi/repository"
)

const activitiesCollection = "activities"

type ActivityRepository struct {
	client *firestore.Client
}

func NewActivityRepository(client *firestore.Client) *ActivityRepository {
	return &ActivityRepository{client: client}
}

func (r *ActivityRepository) List(ctx context.Context) ([]model.Activity, error) {
	iter := r.client.Collection(activitiesCollection).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	activities := []model.Activity{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list activities: %w", err)
		}
		var a model.Activity
		if err := doc.DataTo(&a); err != nil {
			return nil, fmt.Errorf("decode activity %s: %w", doc.Ref.ID, err)
		}
		a.ID = doc.Ref.ID
		activities = append(activities, a)
	}
	return activities, nil
}

func (r *ActivityRepository) Get(ctx context.Context, id string) (*model.Activity, error) {
	doc, err := r.client.Collection(activitiesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get activity %s: %w", id, err)
	}
	var a model.Activity
	if err := doc.DataTo(&a); err != nil {
		return nil, fmt.Errorf("decode activity %s: %w", id, err)
	}
	a.ID = doc.Ref.ID
	return &a, nil
}

func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) (string, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if err := a.Validate(); err != nil {
		return "", err
	}
	ref, _, err := r.client.Collection(activitiesCollection).Add(ctx, a)
	if err != nil {
		return "", fmt.Errorf("create activity: %w", err)
	}
	return ref.ID, nil
}

func (r *ActivityRepository) Update(ctx context.Context, a *model.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.client.Collection(activitiesCollection).Doc(a.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: a.Title},
		{Path: "description", Value: a.Description},
		{Path: "date", Value: a.Date},
		{Path: "photos", Value: a.Photos},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return repository.ErrNotFound
		}
		return fmt.Errorf("update activity %s: %w", a.ID, err)
	}
	return nil
}

func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.client.Collection(activitiesCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	return nil
}
