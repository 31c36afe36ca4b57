package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/logger"
)

// MaxImageSize bounds a single uploaded image.
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // root directory files are written to
	baseURL  string // public URL basePath is served under
}

// NewLocalStorage creates a new LocalStorage instance, creating basePath if needed.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveImage saves an uploaded image. The stored name is random; the extension
// is derived from the sniffed content type, never from the client filename.
func (ls *LocalStorage) SaveImage(_ context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", apperrors.NewBadRequestError("image file is required")
	}
	if fileHeader.Size > MaxImageSize {
		return "", apperrors.NewBadRequestError(fmt.Sprintf("image must be at most %d MB", MaxImageSize>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}
	ext, ok := allowedImageTypes[http.DetectContentType(head[:n])]
	if !ok {
		return "", apperrors.NewBadRequestError("only jpeg, png, webp and gif images are accepted")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	subPath = filepath.Clean("/" + subPath)[1:]
	dir := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(file, MaxImageSize)); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	url := ls.baseURL + "/" + path.Join(filepath.ToSlash(subPath), name)
	logger.Info().Str("filename", fileHeader.Filename).Str("url", url).Msg("Image saved")
	return url, nil
}

// DeleteFile removes a stored file. Missing files are not an error.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	if rel == fileURL || rel == "" || rel == "/" {
		return fmt.Errorf("invalid file url: %s", fileURL)
	}

	physicalPath := filepath.Join(ls.basePath, filepath.Clean("/"+filepath.FromSlash(rel)))
	if err := os.Remove(physicalPath); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
