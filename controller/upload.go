package controller

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"kalavedi/services"
)

var ErrNoFile = errors.New("no file uploaded")

// ReadAttachment loads one multipart file into memory. At most limit+1
// bytes are read so an oversized file is still detectable by size.
func ReadAttachment(c *gin.Context, field string, limit int64) (*services.Attachment, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, ErrNoFile
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return readFileHeader(fh, limit)
}

// ReadAttachments loads every file posted under field.
func ReadAttachments(c *gin.Context, field string, limit int64) ([]services.Attachment, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse multipart form: %w", err)
	}
	var out []services.Attachment
	for _, fh := range form.File[field] {
		a, err := readFileHeader(fh, limit)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, nil
}

func readFileHeader(fh *multipart.FileHeader, limit int64) (*services.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return &services.Attachment{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
