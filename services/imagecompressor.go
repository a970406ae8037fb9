package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Compression presets for registration attachments.
var (
	PhotoPreset     = CompressOptions{MaxWidth: 600, Quality: 60}
	SignaturePreset = CompressOptions{MaxWidth: 400, Quality: 50}
)

type CompressOptions struct {
	MaxWidth int
	Quality  int
}

// CompressJob is one image to shrink into a JPEG data URL.
type CompressJob struct {
	Name string
	Data []byte
	Opts CompressOptions
}

type CompressProgress struct {
	Name  string
	Done  int
	Total int
}

// ImageCompressor turns uploaded photos into small JPEG data URLs.
type ImageCompressor struct {
	logger *zap.Logger
}

func NewImageCompressor(logger *zap.Logger) *ImageCompressor {
	return &ImageCompressor{logger: logger}
}

// Compress decodes data, scales it down to opts.MaxWidth keeping the aspect
// ratio, flattens transparency onto white and re-encodes it as JPEG.
func (c *ImageCompressor) Compress(data []byte, opts CompressOptions) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}
	bg := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
	flat := imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// CompressTask is a running batch started by Start.
type CompressTask struct {
	cancel   context.CancelFunc
	progress chan CompressProgress
	done     chan struct{}

	mu      sync.Mutex
	results []string
	err     error
}

// Start compresses jobs in order on a separate goroutine. Progress is
// reported once per finished job and the channel is closed at the end.
func (c *ImageCompressor) Start(ctx context.Context, jobs []CompressJob) *CompressTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &CompressTask{
		cancel:   cancel,
		progress: make(chan CompressProgress, len(jobs)),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer close(t.progress)
		defer cancel()

		results := make([]string, 0, len(jobs))
		for i, job := range jobs {
			if err := ctx.Err(); err != nil {
				t.finish(nil, fmt.Errorf("compress %s: %w", job.Name, err))
				return
			}
			out, err := c.Compress(job.Data, job.Opts)
			if err != nil {
				c.logger.Warn("image compression failed", zap.String("name", job.Name), zap.Error(err))
				t.finish(nil, fmt.Errorf("compress %s: %w", job.Name, err))
				return
			}
			results = append(results, out)
			t.progress <- CompressProgress{Name: job.Name, Done: i + 1, Total: len(jobs)}
		}
		t.finish(results, nil)
	}()
	return t
}

func (t *CompressTask) finish(results []string, err error) {
	t.mu.Lock()
	t.results, t.err = results, err
	t.mu.Unlock()
}

func (t *CompressTask) Progress() <-chan CompressProgress {
	return t.progress
}

func (t *CompressTask) Cancel() {
	t.cancel()
}

// Wait blocks until the batch ends and returns the data URLs in job order.
func (t *CompressTask) Wait() ([]string, error) {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.results, t.err
}
