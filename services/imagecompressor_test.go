package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeDataURL(t *testing.T, url string) (int, int) {
	t.Helper()
	const prefix = "data:image/jpeg;base64,"
	require.True(t, strings.HasPrefix(url, prefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestImageCompressor_Compress(t *testing.T) {
	c := NewImageCompressor(zap.NewNop())

	out, err := c.Compress(testPNG(t, 1200, 800), PhotoPreset)
	require.NoError(t, err)
	w, h := decodeDataURL(t, out)
	assert.Equal(t, 600, w)
	assert.Equal(t, 400, h)

	// narrower than the limit keeps its size
	out, err = c.Compress(testPNG(t, 300, 100), SignaturePreset)
	require.NoError(t, err)
	w, h = decodeDataURL(t, out)
	assert.Equal(t, 300, w)
	assert.Equal(t, 100, h)

	_, err = c.Compress([]byte("garbage"), PhotoPreset)
	assert.Error(t, err)
}

func TestImageCompressor_TaskProgress(t *testing.T) {
	c := NewImageCompressor(zap.NewNop())
	task := c.Start(context.Background(), []CompressJob{
		{Name: "photo", Data: testPNG(t, 800, 800), Opts: PhotoPreset},
		{Name: "signature", Data: testPNG(t, 500, 200), Opts: SignaturePreset},
	})

	var seen []CompressProgress
	for p := range task.Progress() {
		seen = append(seen, p)
	}
	urls, err := task.Wait()
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, []CompressProgress{
		{Name: "photo", Done: 1, Total: 2},
		{Name: "signature", Done: 2, Total: 2},
	}, seen)

	w, _ := decodeDataURL(t, urls[1])
	assert.Equal(t, 400, w)
}

func TestImageCompressor_TaskCancelled(t *testing.T) {
	c := NewImageCompressor(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := c.Start(ctx, []CompressJob{{Name: "photo", Data: testPNG(t, 10, 10), Opts: PhotoPreset}})
	urls, err := task.Wait()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, urls)
}

func TestImageCompressor_TaskStopsOnBadImage(t *testing.T) {
	c := NewImageCompressor(zap.NewNop())
	task := c.Start(context.Background(), []CompressJob{
		{Name: "photo", Data: []byte("nope"), Opts: PhotoPreset},
		{Name: "signature", Data: testPNG(t, 10, 10), Opts: SignaturePreset},
	})
	task.Cancel()
	_, err := task.Wait()
	assert.Error(t, err)
}
