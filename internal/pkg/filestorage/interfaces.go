package filestorage

import (
	"context"
	"mime/multipart"
)

// FileStorage stores uploaded class images.
type FileStorage interface {
	// SaveImage validates and stores an uploaded image under subPath and
	// returns the URL it is served from.
	SaveImage(ctx context.Context, fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file given its URL.
	DeleteFile(fileURL string) error

	// BasePath is the directory files are served from.
	BasePath() string
}
