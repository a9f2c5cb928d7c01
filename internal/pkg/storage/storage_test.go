package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eltech/store-backend/internal/config"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newLocal(t *testing.T) *Local {
	t.Helper()
	cfg := &config.Config{
		Storage: config.StorageConfig{LocalPath: t.TempDir(), PublicURL: "/uploads"},
		Upload:  config.UploadConfig{MaxSize: 1 << 10, AllowedExtensions: []string{"png", "jpg"}},
	}
	return NewLocal(cfg, logging.Discard())
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestSaveAndDelete(t *testing.T) {
	l := newLocal(t)

	p, err := l.SaveImage(fileHeader(t, "Photo.PNG", pngHeader), KindProduct)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, "uploads/product/"))
	assert.True(t, strings.HasSuffix(p, ".png"))

	full := filepath.Join(l.Root(), KindProduct, filepath.Base(p))
	data, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	l.Delete(p)
	_, err = os.Stat(full)
	assert.True(t, os.IsNotExist(err))

	l.Delete(p)
	l.Delete("../../etc/passwd")
}

func TestSaveRejects(t *testing.T) {
	l := newLocal(t)

	_, err := l.SaveImage(nil, KindPost)
	assert.ErrorIs(t, err, ErrNoFile)
	_, err = l.SaveImage(fileHeader(t, "doc.pdf", pngHeader), KindPost)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = l.SaveImage(fileHeader(t, "fake.png", []byte("plain text, not an image")), KindPost)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = l.SaveImage(fileHeader(t, "big.png", append(pngHeader, make([]byte, 2<<10)...)), KindPost)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}
