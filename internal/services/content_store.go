package services

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"html-presenter/internal/models"
)

// StaticPrefix is the URL path slides from the slides directory live under
const StaticPrefix = "/slides/"

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidContent  = errors.New("invalid content reference")
)

type blob struct {
	data      []byte
	mediaType string
}

// ContentStore resolves content references. Uploaded documents are held in
// memory for the session and must be released when their slide goes away.
type ContentStore struct {
	mu        sync.RWMutex
	slidesDir string
	blobs     map[models.ContentRef]blob
}

// NewContentStore creates a store serving static slides from slidesDir
func NewContentStore(slidesDir string) *ContentStore {
	return &ContentStore{
		slidesDir: slidesDir,
		blobs:     make(map[models.ContentRef]blob),
	}
}

// StaticRef returns the reference of a file in the slides directory
func StaticRef(name string) models.ContentRef {
	return models.ContentRef(StaticPrefix + strings.TrimPrefix(filepath.ToSlash(name), "/"))
}

// RevisedRef returns a reference to the file that no earlier reference to it
// equals, so caches keyed by reference start over after the file changed
func RevisedRef(name string) models.ContentRef {
	return models.ContentRef(string(StaticRef(name)) + "?rev=" + uuid.NewString()[:8])
}

// Put stores an ephemeral document and returns its reference
func (s *ContentStore) Put(data []byte, mediaType string) models.ContentRef {
	ref := models.ContentRef(models.EphemeralPrefix + uuid.NewString())
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = blob{data: buf, mediaType: mediaType}
	return ref
}

// Resolve returns the bytes behind ref
func (s *ContentStore) Resolve(ref models.ContentRef) ([]byte, error) {
	if ref.IsEphemeral() {
		s.mu.RLock()
		defer s.mu.RUnlock()
		b, ok := s.blobs[ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrContentNotFound, ref)
		}
		return b.data, nil
	}

	p, err := s.staticPath(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}

// MediaType reports the media type of an ephemeral entry
func (s *ContentStore) MediaType(ref models.ContentRef) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.blobs[ref]; ok && b.mediaType != "" {
		return b.mediaType
	}
	return "text/html; charset=utf-8"
}

// Release frees an ephemeral entry. Static references are ignored.
func (s *ContentStore) Release(ref models.ContentRef) bool {
	if !ref.IsEphemeral() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		return false
	}
	delete(s.blobs, ref)
	return true
}

// Len counts live ephemeral entries
func (s *ContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func (s *ContentStore) staticPath(ref models.ContentRef) (string, error) {
	base := string(ref.Base())
	rel := strings.TrimPrefix(base, StaticPrefix)
	if rel == base || rel == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidContent, ref)
	}
	clean := path.Clean("/" + rel)
	if clean != "/"+rel || strings.Contains(rel, "\\") {
		return "", fmt.Errorf("%w: %s", ErrInvalidContent, ref)
	}
	return filepath.Join(s.slidesDir, filepath.FromSlash(clean)), nil
}
