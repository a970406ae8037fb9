package model

import "time"

type Photo struct {
	Name         string `firestore:"name" json:"name"`
	URL          string `firestore:"url" json:"url" validate:"required"`
	ThumbnailURL string `firestore:"thumbnailUrl" json:"thumbnailUrl"`
	PublicID     string `firestore:"publicId" json:"publicId"`
	UploadedAt   string `firestore:"uploadedAt" json:"uploadedAt"`
}

type Activity struct {
	ID          string    `firestore:"-" json:"id"`
	Title       string    `firestore:"title" json:"title" validate:"required"`
	Description string    `firestore:"description" json:"description" validate:"required"`
	Date        string    `firestore:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Photos      []Photo   `firestore:"photos" json:"photos" validate:"dive"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (a *Activity) Validate() error {
	return validateRecord(a)
}
