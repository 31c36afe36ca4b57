package filestorage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monchobi/artschool/internal/pkg/apperrors"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxImageSize))
	return req.MultipartForm.File["image"][0]
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:5000/uploads/")
	require.NoError(t, err)

	url, err := ls.SaveImage(context.Background(), fileHeader(t, "cover.exe", pngHeader), "classes")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/classes/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), "extension follows the content, not the filename")

	stored := filepath.Join(dir, "classes", filepath.Base(url))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, ls.DeleteFile(url), "deleting twice is fine")
}

func TestSaveImage_Rejects(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ls.SaveImage(ctx, nil, "classes")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = ls.SaveImage(ctx, fileHeader(t, "notes.png", []byte("just some text")), "classes")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	big := fileHeader(t, "big.png", pngHeader)
	big.Size = MaxImageSize + 1
	_, err = ls.SaveImage(ctx, big, "classes")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestSaveImage_SubPathStaysInside(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost/uploads")
	require.NoError(t, err)

	url, err := ls.SaveImage(context.Background(), fileHeader(t, "a.png", pngHeader), "../../etc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost/uploads/etc/"), url)

	_, err = os.Stat(filepath.Join(dir, "etc", filepath.Base(url)))
	assert.NoError(t, err)
}

func TestDeleteFile_ForeignURL(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)

	assert.Error(t, ls.DeleteFile("https://elsewhere.example/x.png"))
	assert.Error(t, ls.DeleteFile("http://localhost/uploads/"))
}
