package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrTooLarge         = errors.New("file too large")
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mkv": true, ".mov": true, ".webm": true,
	".m4v": true, ".ogv": true, ".avi": true,
}

func IsVideoFile(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

// Store keeps uploaded videos on disk, one directory per review session.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// SaveVideo copies an upload into the session's directory and returns the
// stored path and size.
func (s *Store) SaveVideo(sessionID, filename string, r io.Reader) (string, int64, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if !IsVideoFile(name) {
		return "", 0, fmt.Errorf("%w: %s", ErrUnsupportedMedia, filepath.Ext(name))
	}

	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create session dir: %w", err)
	}

	// The upload lands in a temp file first so a failed re-upload under the
	// same name leaves the current video intact.
	dst := filepath.Join(dir, name)
	f, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return "", 0, fmt.Errorf("create video file: %w", err)
	}
	tmp := f.Name()
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("write video file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("chmod video file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", 0, fmt.Errorf("move video file: %w", err)
	}
	return dst, n, nil
}

// Remove deletes a single stored file. Paths outside the store are refused.
func (s *Store) Remove(path string) error {
	if err := s.contains(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RemoveSession deletes everything stored for a session.
func (s *Store) RemoveSession(sessionID string) error {
	dir, err := s.sessionDir(sessionID)
	if err != nil {
		return err
	}
	return os.RemoveAll(dir)
}

// ReadText reads a whole text upload into memory, up to limit bytes.
func ReadText(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return "", ErrTooLarge
	}
	return string(data), nil
}

func (s *Store) sessionDir(sessionID string) (string, error) {
	dir := filepath.Join(s.root, sessionID)
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", os.ErrPermission
	}
	return dir, s.contains(dir)
}

// contains guards against path traversal.
func (s *Store) contains(path string) error {
	absBase, err := filepath.Abs(s.root)
	if err != nil {
		return err
	}
	absFull, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if absFull == absBase || !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return os.ErrPermission
	}
	return nil
}
