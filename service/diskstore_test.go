package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/kevinaaaquil/readingbud/backend/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskImageStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := service.NewDiskImageStore(t.TempDir())
	require.NoError(t, err)

	key, err := d.Save(ctx, "books/images/", "cover.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "books/images/"))
	assert.True(t, strings.HasSuffix(key, ".png"))

	rc, contentType, err := d.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, d.Delete(ctx, key))
	_, _, err = d.Open(ctx, key)
	assert.Error(t, err)

	// Deleting twice is fine.
	assert.NoError(t, d.Delete(ctx, key))
}

func TestDiskImageStore_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	d, err := service.NewDiskImageStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = d.Open(ctx, "../etc/passwd")
	assert.Error(t, err)
	assert.Error(t, d.Delete(ctx, "/abs/key.png"))
}
