// Package library stores playlists as YAML files in a directory.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/PizzaHomicide/clipreel/internal/log"
	"github.com/gofrs/flock"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

// ErrPlaylistNotFound is returned when no playlist file matches the requested name
var ErrPlaylistNotFound = errors.New("playlist not found")

const (
	fileExt       = ".yaml"
	lockFile      = ".clipreel.lock"
	lockRetryWait = 50 * time.Millisecond
)

// Store implements domain.PlaylistRepository on top of a directory of YAML files
type Store struct {
	dir  string
	lock *flock.Flock

	mu sync.Mutex
	// paths maps the ID of every playlist read from disk to the file it came from
	paths map[string]string
}

var _ domain.PlaylistRepository = (*Store)(nil)

// NewStore creates the library directory if needed and returns a store rooted at it
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}
	return &Store{
		dir:   dir,
		lock:  flock.New(filepath.Join(dir, lockFile)),
		paths: make(map[string]string),
	}, nil
}

// Dir returns the directory the store reads from
func (s *Store) Dir() string {
	return s.dir
}

// List returns every playlist in the library ordered by name.  Unreadable files are skipped with a warning.
func (s *Store) List(ctx context.Context) ([]*domain.Playlist, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	var playlists []*domain.Playlist
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		p, err := s.readFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			log.Warn("Skipping unreadable playlist file", "file", entry.Name(), "error", err)
			continue
		}
		playlists = append(playlists, p)
	}

	sort.Slice(playlists, func(i, j int) bool {
		return strings.ToLower(playlists[i].Name) < strings.ToLower(playlists[j].Name)
	})
	return playlists, nil
}

// Load returns the playlist with the given name.  Files named after the playlist are tried first, then every
// file in the library is checked for a matching name.
func (s *Store) Load(ctx context.Context, name string) (*domain.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.readFile(s.pathFor(name))
	if err == nil && strings.EqualFold(p.Name, name) {
		return p, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, candidate := range all {
		if strings.EqualFold(candidate.Name, name) {
			return candidate, nil
		}
	}
	if p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPlaylistNotFound, name)
}

// Find returns the playlists whose names fuzzily match query, closest match first
func (s *Store) Find(ctx context.Context, query string) ([]*domain.Playlist, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Sort(ranks)

	out := make([]*domain.Playlist, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, all[r.OriginalIndex])
	}
	return out, nil
}

// Save writes the playlist to disk.  A playlist read from the library goes back to the file it came from, a new one
// gets a file named after it.  Writers across processes are serialised by a lock file in the library dir.
func (s *Store) Save(ctx context.Context, playlist *domain.Playlist) error {
	if strings.TrimSpace(playlist.Name) == "" {
		return errors.New("playlist needs a name to be saved")
	}
	playlist.EnsureIDs()
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = time.Now().UTC()
	}

	data, err := yaml.Marshal(playlist)
	if err != nil {
		return fmt.Errorf("marshal playlist: %w", err)
	}

	locked, err := s.lock.TryLockContext(ctx, lockRetryWait)
	if err != nil {
		return fmt.Errorf("acquire library lock: %w", err)
	}
	if !locked {
		return errors.New("library is locked by another writer")
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			log.Warn("Failed to release library lock", "error", err)
		}
	}()

	target := s.targetFor(playlist)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write playlist: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace playlist file: %w", err)
	}

	s.remember(playlist.ID, target)
	log.Debug("Saved playlist", "name", playlist.Name, "clips", playlist.Len(), "path", target)
	return nil
}

func (s *Store) targetFor(playlist *domain.Playlist) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path, ok := s.paths[playlist.ID]; ok {
		return path
	}
	return s.pathFor(playlist.Name)
}

func (s *Store) remember(id, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths[id] = path
}

func (s *Store) readFile(path string) (*domain.Playlist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := &domain.Playlist{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	p.EnsureIDs()
	s.remember(p.ID, path)
	return p, nil
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.dir, slug(name)+fileExt)
}

// slug maps a playlist name onto a file name: lowercase letters and digits separated by single dashes
func slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "playlist"
	}
	return out
}
