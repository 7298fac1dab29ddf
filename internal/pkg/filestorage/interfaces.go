package filestorage

import (
	"io"
	"mime/multipart"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileAs stores an uploaded file under the given name and returns its public path
	SaveFileAs(fileHeader *multipart.FileHeader, filename string) (string, error)

	// SaveReader stores the content of r under the given name and returns its public path
	SaveReader(r io.Reader, filename string) (string, error)

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a given file URL
	GetFullPath(fileURL string) string
}
