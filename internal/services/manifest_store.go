package services

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"html-presenter/internal/document"
	"html-presenter/internal/models"
)

// ManifestFile is the name of the default slide manifest inside the slides directory
const ManifestFile = "slides.json"

// ManifestStore manages the static default slide set in slides.json
type ManifestStore struct {
	mu        sync.RWMutex
	filePath  string
	slidesDir string
	include   []string
	exclude   []string
	data      *models.Manifest
}

// NewManifestStore creates a manifest store and loads data. Without a
// manifest file the slides directory is discovered with the include and
// exclude patterns.
func NewManifestStore(slidesDir string, include, exclude []string) (*ManifestStore, error) {
	if len(include) == 0 {
		include = []string{"**/*.html", "**/*.htm"}
	}
	store := &ManifestStore{
		filePath:  filepath.Join(slidesDir, ManifestFile),
		slidesDir: slidesDir,
		include:   include,
		exclude:   exclude,
		data:      &models.Manifest{},
	}

	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	return store, nil
}

// Load reads slides.json or falls back to discovery if it doesn't exist
func (s *ManifestStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		entries, err := s.discover()
		if err != nil {
			return err
		}
		s.data = &models.Manifest{Slides: entries}
		log.Printf("Manifest not found, discovered %d slides in %s", len(entries), s.slidesDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read manifest file: %w", err)
	}

	var file models.Manifest
	if err := json.Unmarshal(data, &file); err != nil {
		log.Printf("Failed to parse %s, using empty manifest: %v", ManifestFile, err)
		return nil
	}

	s.data = &file
	log.Printf("Loaded %d slides from %s", len(s.data.Slides), s.filePath)
	return nil
}

// Discover walks the slides directory and returns matching files in path order
func (s *ManifestStore) Discover() ([]models.ManifestEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.discover()
}

func (s *ManifestStore) discover() ([]models.ManifestEntry, error) {
	if _, err := os.Stat(s.slidesDir); os.IsNotExist(err) {
		return nil, nil
	}

	var entries []models.ManifestEntry
	err := filepath.WalkDir(s.slidesDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.slidesDir, p)
		if err != nil || !s.Matches(rel) {
			return nil
		}
		entries = append(entries, s.entryFor(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover slides: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Matches reports whether a path relative to the slides directory is a slide
func (s *ManifestStore) Matches(relPath string) bool {
	normalized := filepath.ToSlash(relPath)
	if normalized == ManifestFile {
		return false
	}
	return matchesAny(normalized, s.include) && !matchesAny(normalized, s.exclude)
}

func matchesAny(relPath string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, filepath.Base(relPath)); err == nil && matched {
			return true
		}
	}
	return false
}

// EntryFor builds the manifest entry of a file in the slides directory
func (s *ManifestStore) EntryFor(relPath string) models.ManifestEntry {
	return s.entryFor(filepath.ToSlash(relPath))
}

func (s *ManifestStore) entryFor(relPath string) models.ManifestEntry {
	base := filepath.Base(relPath)
	id := strings.TrimSuffix(relPath, filepath.Ext(base))
	title := strings.TrimSuffix(base, filepath.Ext(base))
	if data, err := os.ReadFile(filepath.Join(s.slidesDir, filepath.FromSlash(relPath))); err == nil {
		if t := document.ExtractTitle(data); t != "" {
			title = t
		}
	}
	return models.ManifestEntry{ID: strings.ReplaceAll(id, "/", "-"), Title: title, Path: relPath}
}

// Entries returns the manifest entries
func (s *ManifestStore) Entries() []models.ManifestEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ManifestEntry, len(s.data.Slides))
	copy(out, s.data.Slides)
	return out
}

// SetEntries replaces the entries and saves the manifest
func (s *ManifestStore) SetEntries(entries []models.ManifestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &models.Manifest{Slides: entries}
	if err := s.save(); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	log.Printf("Saved %d slides to %s", len(entries), s.filePath)
	return nil
}

// Slides converts the manifest into deck slides
func (s *ManifestStore) Slides() []models.Slide {
	entries := s.Entries()
	slides := make([]models.Slide, 0, len(entries))
	for _, e := range entries {
		slides = append(slides, models.Slide{ID: e.ID, Title: e.Title, ContentRef: StaticRef(e.Path)})
	}
	return slides
}

// save atomically writes slides.json (temp file → rename)
// Must be called with lock held
func (s *ManifestStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.MkdirAll(s.slidesDir, 0755); err != nil {
		return fmt.Errorf("failed to create slides directory: %w", err)
	}

	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	file, err := os.OpenFile(tempPath, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	file.Close()

	if err := os.Rename(tempPath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Save atomically writes slides.json
func (s *ManifestStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Path returns the manifest file location
func (s *ManifestStore) Path() string {
	return s.filePath
}
