package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PizzaHomicide/clipreel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "playlists"))
	require.NoError(t, err)
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := domain.NewPlaylist("Power Hour: 90s", domain.NewClip("abc123", 42, 60), domain.NewClip("def456", 0, 60))
	p.Interstitial = domain.AudioCue("/sounds/airhorn.ogg", 2)
	p.Loop = true
	require.NoError(t, s.Save(ctx, p))

	loaded, err := s.Load(ctx, "Power Hour: 90s")
	require.NoError(t, err)

	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, p.Name, loaded.Name)
	assert.True(t, loaded.Loop)
	assert.Equal(t, domain.InterstitialAudio, loaded.Interstitial.Kind)
	assert.Equal(t, 2.0, loaded.Interstitial.DurationHint)
	require.Len(t, loaded.Clips, 2)
	assert.Equal(t, p.Clips[0].ID, loaded.Clips[0].ID)
	assert.Equal(t, 42.0, loaded.Clips[0].StartOffset)
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestHandWrittenFileGetsIDs(t *testing.T) {
	s := newTestStore(t)
	content := `name: handmade
interstitial:
  kind: video
  video_id: sting
  start: 5
  duration: 3
clips:
  - video_id: aaa
    start: 10
    duration: 60
  - video_id: bbb
    start: 0
    duration: 60
`
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "handmade.yaml"), []byte(content), 0600))

	p, err := s.Load(context.Background(), "handmade")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	for _, c := range p.Clips {
		assert.NotEmpty(t, c.ID)
	}
	assert.NoError(t, p.Validate())
}

func TestListAndFind(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, name := range []string{"Rock Anthems", "rockabilly", "Jazz Standards"} {
		require.NoError(t, s.Save(ctx, domain.NewPlaylist(name, domain.NewClip("v", 0, 60))))
	}
	// Files that are not playlists are ignored or skipped
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("hi"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "broken.yaml"), []byte("clips: ["), 0600))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Jazz Standards", all[0].Name)

	found, err := s.Find(ctx, "rock")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "rockabilly", found[0].Name, "closest match first")

	none, err := s.Find(ctx, "polka")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveOverwritesReorder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := domain.NewPlaylist("mix", domain.NewClip("a", 0, 60), domain.NewClip("b", 0, 60))
	require.NoError(t, s.Save(ctx, p))
	require.NoError(t, p.Move(1, 0))
	require.NoError(t, s.Save(ctx, p))

	loaded, err := s.Load(ctx, "mix")
	require.NoError(t, err)
	assert.Equal(t, "b", loaded.Clips[0].VideoID)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "power-hour-90s", slug("Power Hour: 90s"))
	assert.Equal(t, "playlist", slug("!!!"))
	assert.Equal(t, "café", slug("Café"))
}

func TestSaveWritesBackToSourceFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := `name: Power Hour 90s
clips:
  - video_id: a
    duration: 60
  - video_id: b
    duration: 60
`
	source := filepath.Join(s.Dir(), "favorites.yaml")
	require.NoError(t, os.WriteFile(source, []byte(content), 0600))

	found, err := s.Find(ctx, "power hour")
	require.NoError(t, err)
	require.Len(t, found, 1)

	p := found[0].Clone()
	require.NoError(t, p.Move(0, 1))
	require.NoError(t, s.Save(ctx, p))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1, "reorder must not create a second file")
	assert.Equal(t, "b", all[0].Clips[0].VideoID)

	_, err = os.Stat(filepath.Join(s.Dir(), "power-hour-90s.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMatchesNameInsideFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := "name: Power Hour 90s\nclips:\n  - video_id: a\n    duration: 60\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "favorites.yaml"), []byte(content), 0600))

	p, err := s.Load(ctx, "power hour 90s")
	require.NoError(t, err)
	assert.Equal(t, "Power Hour 90s", p.Name)

	require.NoError(t, p.Move(0, 0))
	require.NoError(t, s.Save(ctx, p))
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	var yamls int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".yaml" {
			yamls++
		}
	}
	assert.Equal(t, 1, yamls)
}
