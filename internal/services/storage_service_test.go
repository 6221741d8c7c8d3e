// internal/services/storage_service_test.go
package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/fashion-storefront/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newLocalStorage(t *testing.T) (*StorageService, *config.Config) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.UploadDir = t.TempDir()
	cfg.Storage.PublicBaseURL = "http://localhost:8080/"
	cfg.Storage.MaxUploadSize = 1024

	svc, err := NewStorageService(cfg)
	require.NoError(t, err)
	require.False(t, svc.UsesS3())
	return svc, cfg
}

func multipartFile(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/uploads", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return file, header
}

func TestUploadImageStoresLocally(t *testing.T) {
	svc, cfg := newLocalStorage(t)

	file, header := multipartFile(t, "look.PNG", pngHeader)
	result, err := svc.UploadImage(file, header, svc.ImageUploadOptions("images"))
	require.NoError(t, err)

	assert.Equal(t, "image/png", result.MimeType)
	assert.True(t, strings.HasPrefix(result.Key, "images/"))
	assert.True(t, strings.HasSuffix(result.Key, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+result.Key, result.URL)

	stored, err := os.ReadFile(filepath.Join(cfg.Storage.UploadDir, filepath.FromSlash(result.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	require.NoError(t, svc.DeleteFile(result.Key))
	_, err = os.Stat(filepath.Join(cfg.Storage.UploadDir, filepath.FromSlash(result.Key)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, svc.DeleteFile(result.Key), "deleting a missing file is not an error")
}

func TestUploadImageRejectsBadFiles(t *testing.T) {
	svc, _ := newLocalStorage(t)
	opts := svc.ImageUploadOptions("images")

	file, header := multipartFile(t, "notes.txt", []byte("hello"))
	_, err := svc.UploadImage(file, header, opts)
	assert.True(t, IsKind(err, KindValidation), "extension")

	file, header = multipartFile(t, "fake.jpg", []byte("<html>not an image</html>"))
	_, err = svc.UploadImage(file, header, opts)
	assert.True(t, IsKind(err, KindValidation), "content sniffing")

	file, header = multipartFile(t, "huge.png", append(append([]byte{}, pngHeader...), make([]byte, 2048)...))
	_, err = svc.UploadImage(file, header, opts)
	assert.True(t, IsKind(err, KindValidation), "size")
}
