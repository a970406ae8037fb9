package services

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"kalavedi/model"
	"kalavedi/repository"
)

var ErrEmptyAlert = errors.New("alert message is required")

const notificationKey = "notification"

// NotificationService serves the landing page broadcast. Reads are cached
// briefly; an update clears the cache.
type NotificationService struct {
	repo   repository.NotificationRepository
	cache  *gocache.Cache
	logger *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, cacheTTL time.Duration, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// Get returns the current broadcast. A missing document reads as an empty
// notification.
func (s *NotificationService) Get(ctx context.Context) (*model.Notification, error) {
	if x, found := s.cache.Get(notificationKey); found {
		if n, ok := x.(model.Notification); ok {
			return &n, nil
		}
	}
	n, err := s.repo.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		n, err = &model.Notification{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Set(notificationKey, *n, gocache.DefaultExpiration)
	return n, nil
}

func (s *NotificationService) Update(ctx context.Context, title, alert string) (*model.Notification, error) {
	alert = strings.TrimSpace(alert)
	if alert == "" {
		return nil, ErrEmptyAlert
	}
	n := &model.Notification{
		Title:     strings.TrimSpace(title),
		Alert:     alert,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	s.cache.Delete(notificationKey)
	s.logger.Info("notification updated", zap.String("title", n.Title))
	return n, nil
}
