package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/yigit/devcamper/internal/pkg/logger"
)

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
	baseURL  string // The URL prefix the directory is served under
}

var _ FileStorage = (*LocalStorage)(nil)

// NewLocalStorage creates a new LocalStorage instance.
// basePath is the directory on the server; baseURL is the prefix returned with
// stored names (e.g. "/uploads").
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// BasePath is the directory files are written to
func (ls *LocalStorage) BasePath() string { return ls.basePath }

// BaseURL is the URL prefix stored files are served under
func (ls *LocalStorage) BaseURL() string { return ls.baseURL }

// SaveFileAs saves an uploaded file under filename, replacing any existing file
func (ls *LocalStorage) SaveFileAs(fileHeader *multipart.FileHeader, filename string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	return ls.SaveReader(file, filename)
}

// SaveReader writes r to filename inside the storage directory
func (ls *LocalStorage) SaveReader(r io.Reader, filename string) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}

	dstPath := filepath.Join(ls.basePath, name)

	// write to a temp file first so a failed copy never leaves a truncated photo
	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		logger.Error().Err(err).Str("path", ls.basePath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = io.Copy(tmp, r); err != nil {
		tmp.Close()
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := os.Rename(tmp.Name(), dstPath); err != nil {
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	logger.Info().Str("saved_as", name).Msg("File saved successfully")
	return ls.publicPath(name), nil
}

// DeleteFile removes a file from the storage filesystem.
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	physicalPath := ls.GetFullPath(filePath)
	if physicalPath == "" {
		return fmt.Errorf("invalid file path: %s", filePath)
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// GetFullPath returns the full filesystem path for a given file URL.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	name, err := cleanName(fileURL)
	if err != nil {
		return ""
	}
	return filepath.Join(ls.basePath, name)
}

func (ls *LocalStorage) publicPath(name string) string {
	if ls.baseURL == "" {
		return name
	}
	return strings.TrimRight(ls.baseURL, "/") + "/" + name
}

// only the base name is kept so callers cannot escape the storage directory
func cleanName(filename string) (string, error) {
	name := filepath.Base(filepath.ToSlash(filename))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}
	return name, nil
}
