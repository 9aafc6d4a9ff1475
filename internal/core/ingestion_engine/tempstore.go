package ingestion_engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"

	"github.com/markdave123-py/quizsmith/internal/models"
)

const maxTempNameRunes = 100

// TempStore is a per-request directory holding uploaded files while they are
// extracted. File names are <uuid>_<sanitized upload name>.
type TempStore struct {
	dir string

	mu     sync.Mutex
	closed bool
}

// TempFile is a scoped handle on one stored upload. Release removes the
// file and may be called more than once.
type TempFile struct {
	Name     string
	MimeType string
	path     string

	once       sync.Once
	releaseErr error
}

// NewTempStore creates a fresh directory under root (os.TempDir when empty).
func NewTempStore(root string) (*TempStore, error) {
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("create temp root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "quiz-")
	if err != nil {
		return nil, fmt.Errorf("create request temp dir: %w", err)
	}
	return &TempStore{dir: dir}, nil
}

// Dir returns the directory backing the store.
func (s *TempStore) Dir() string { return s.dir }

// Acquire writes the file's bytes to a new uniquely named temp file.
func (s *TempStore) Acquire(file *models.UploadedFile) (*TempFile, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, errors.New("temp store closed")
	}

	name := uuid.NewString() + "_" + sanitizeFileName(file.Name)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, file.Bytes, 0o600); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	return &TempFile{Name: file.Name, MimeType: file.MimeType, path: path}, nil
}

// Close removes the directory and anything still in it.
func (s *TempStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return os.RemoveAll(s.dir)
}

// Path returns the location of the stored file.
func (f *TempFile) Path() string { return f.path }

// ReadAll returns the stored bytes.
func (f *TempFile) ReadAll() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read temp file: %w", err)
	}
	return data, nil
}

// Release deletes the stored file.
func (f *TempFile) Release() error {
	f.once.Do(func() {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			f.releaseErr = fmt.Errorf("remove temp file: %w", err)
		}
	})
	return f.releaseErr
}

// sanitizeFileName keeps letters, digits, dot, dash and underscore from the
// base name and replaces everything else with '_'.
func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	n := 0
	for _, r := range name {
		if n == maxTempNameRunes {
			break
		}
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		n++
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
