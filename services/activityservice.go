package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"kalavedi/model"
	"kalavedi/repository"
)

const MaxActivityPhotos = 10

var (
	ErrActivityFields = errors.New("title and description are required")
	ErrTooManyPhotos  = fmt.Errorf("at most %d photos can be uploaded at once", MaxActivityPhotos)
)

type ActivityInput struct {
	Title       string
	Description string
	Date        string
}

type ActivityService struct {
	activities repository.ActivityRepository
	uploader   Uploader
	logger     *zap.Logger
	now        func() time.Time
}

// NewActivityService wires activity management. uploader may be nil, in
// which case requests carrying photos fail with ErrUploadsDisabled.
func NewActivityService(activities repository.ActivityRepository, uploader Uploader, logger *zap.Logger) *ActivityService {
	return &ActivityService{activities: activities, uploader: uploader, logger: logger, now: time.Now}
}

func (s *ActivityService) List(ctx context.Context) ([]model.Activity, error) {
	return s.activities.List(ctx)
}

func (s *ActivityService) Get(ctx context.Context, id string) (*model.Activity, error) {
	return s.activities.Get(ctx, id)
}

func (s *ActivityService) normalize(in ActivityInput) (ActivityInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)
	if in.Title == "" || in.Description == "" {
		return in, ErrActivityFields
	}
	if in.Date == "" {
		in.Date = s.now().Format("2006-01-02")
	}
	return in, nil
}

// uploadPhotos uploads files in order. A failed upload is logged and
// skipped so one bad file does not lose the rest.
func (s *ActivityService) uploadPhotos(ctx context.Context, title string, files []Attachment) ([]model.Photo, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > MaxActivityPhotos {
		return nil, ErrTooManyPhotos
	}
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}

	folder := ActivityFolder(title)
	photos := make([]model.Photo, 0, len(files))
	for _, f := range files {
		res, err := s.uploader.Upload(ctx, bytes.NewReader(f.Data), f.Name, folder)
		if err != nil {
			s.logger.Warn("photo upload failed", zap.String("name", f.Name), zap.Error(err))
			continue
		}
		photos = append(photos, model.Photo{
			Name:         f.Name,
			URL:          res.URL,
			ThumbnailURL: res.ThumbnailURL,
			PublicID:     res.PublicID,
			UploadedAt:   s.now().UTC().Format(time.RFC3339),
		})
	}
	return photos, nil
}

func (s *ActivityService) Create(ctx context.Context, in ActivityInput, files []Attachment) (*model.Activity, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	photos, err := s.uploadPhotos(ctx, in.Title, files)
	if err != nil {
		return nil, err
	}

	a := &model.Activity{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Photos:      photos,
		CreatedAt:   s.now(),
	}
	if a.Photos == nil {
		a.Photos = []model.Photo{}
	}
	id, err := s.activities.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create activity: %w", err)
	}
	a.ID = id
	s.logger.Info("activity created", zap.String("id", id), zap.Int("photos", len(a.Photos)))
	return a, nil
}

// Update replaces the text fields, drops the photos listed in removeIDs and
// appends newly uploaded ones.
func (s *ActivityService) Update(ctx context.Context, id string, in ActivityInput, files []Attachment, removeIDs []string) (*model.Activity, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}
	a, err := s.activities.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	remove := make(map[string]bool, len(removeIDs))
	for _, pid := range removeIDs {
		remove[pid] = true
	}
	kept := make([]model.Photo, 0, len(a.Photos))
	for _, p := range a.Photos {
		if remove[p.PublicID] {
			s.destroy(ctx, p.PublicID)
			continue
		}
		kept = append(kept, p)
	}

	added, err := s.uploadPhotos(ctx, in.Title, files)
	if err != nil {
		return nil, err
	}

	a.Title = in.Title
	a.Description = in.Description
	a.Date = in.Date
	a.Photos = append(kept, added...)
	a.UpdatedAt = s.now()
	if err := s.activities.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("update activity %s: %w", id, err)
	}
	return a, nil
}

// Delete removes the activity and then its hosted photos, best effort.
func (s *ActivityService) Delete(ctx context.Context, id string) error {
	a, err := s.activities.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.activities.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete activity %s: %w", id, err)
	}
	for _, p := range a.Photos {
		s.destroy(ctx, p.PublicID)
	}
	s.logger.Info("activity deleted", zap.String("id", id))
	return nil
}

func (s *ActivityService) destroy(ctx context.Context, publicID string) {
	if s.uploader == nil || publicID == "" {
		return
	}
	if err := s.uploader.Destroy(ctx, publicID); err != nil {
		s.logger.Warn("photo cleanup failed", zap.String("publicId", publicID), zap.Error(err))
	}
}
