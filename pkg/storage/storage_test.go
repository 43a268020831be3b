package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateFile(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n")
	pngData := pngBytes(t, 4, 4)

	t.Run("accepts pdf", func(t *testing.T) {
		check, err := ValidateFile("license.PDF", pdf, http.DetectContentType(pdf))
		require.NoError(t, err)
		assert.Equal(t, ".pdf", check.Extension)
		assert.Equal(t, "application/pdf", check.ContentType)
		assert.False(t, check.IsImage)
	})

	t.Run("accepts png", func(t *testing.T) {
		check, err := ValidateFile("photo.png", pngData, http.DetectContentType(pngData))
		require.NoError(t, err)
		assert.True(t, check.IsImage)
	})

	t.Run("rejects missing extension", func(t *testing.T) {
		_, err := ValidateFile("license", pdf, "application/pdf")
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("rejects unknown extension", func(t *testing.T) {
		_, err := ValidateFile("run.exe", pdf, "application/pdf")
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("rejects content that does not match extension", func(t *testing.T) {
		_, err := ValidateFile("photo.png", pdf, "application/pdf")
		assert.ErrorIs(t, err, ErrInvalidFile)
	})

	t.Run("rejects mismatched MIME type", func(t *testing.T) {
		_, err := ValidateFile("license.pdf", pdf, "text/plain; charset=utf-8")
		assert.ErrorIs(t, err, ErrInvalidFile)
	})
}

func TestCompressImage(t *testing.T) {
	out, err := CompressImage(pngBytes(t, 400, 200), 100, 80)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	_, err = CompressImage([]byte("not an image"), 100, 80)
	assert.Error(t, err)
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{400, 200, 100, 100, 50},
		{200, 400, 100, 50, 100},
		{1000, 1, 10, 10, 1},
		{30, 30, 0, 30, 30},
	}
	for _, c := range cases {
		w, h := fitWithin(c.w, c.h, c.max)
		assert.Equal(t, c.wantW, w)
		assert.Equal(t, c.wantH, h)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:8080/files/")

	url, err := store.Put(ctx, "a/b.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/a/b.pdf", url)

	obj, ok := store.Get("a/b.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)

	require.NoError(t, store.Delete(ctx, "a/b.pdf"))
	_, ok = store.Get("a/b.pdf")
	assert.False(t, ok)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(S3Config{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "https://s3.wasabisys.com/docs", publicBaseURL(S3Config{Endpoint: "https://s3.wasabisys.com", Bucket: "docs"}))
	assert.Equal(t, "https://docs.s3.ap-southeast-1.amazonaws.com", publicBaseURL(S3Config{Bucket: "docs", Region: "ap-southeast-1"}))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "My_License_2024.pdf", SanitizeFilename("My License 2024.PDF"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "scan.jpg", SanitizeFilename(`C:\Users\me\scan.jpg`))
	assert.Equal(t, "file.png", SanitizeFilename("ダイビング.png"))
	assert.Equal(t, "archivetar", SanitizeFilename("archive.tar.exe"))
}
