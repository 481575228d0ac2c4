package posts

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureRepository(t *testing.T, workers int) *Repository {
	t.Helper()
	return NewRepository(
		Config{Dir: filepath.Join("testdata", "content"), Workers: workers},
		WithBuilder(newTestBuilder()),
	)
}

func TestLoadAllSortsByDateDescending(t *testing.T) {
	repo := newFixtureRepository(t, 4)

	posts, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)

	// The placeholder carries the build date, which is newer than both fixtures.
	assert.Equal(t, "broken", posts[0].Slug)
	assert.True(t, posts[0].IsPlaceholder())
	assert.Equal(t, "2025-03-09", posts[0].Date)
	assert.Equal(t, "learning-react", posts[1].Slug)
	assert.Equal(t, "cooking-basics", posts[2].Slug)
}

func TestLoadAllSkipsNonMarkdownAndDirectories(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	posts, err := repo.LoadAll(context.Background())
	require.NoError(t, err)

	for _, post := range posts {
		assert.NotEqual(t, "notes", post.Slug)
		assert.NotEqual(t, "drafts", post.Slug)
		assert.NotEqual(t, "ignored", post.Slug)
	}
}

func TestLoadEntriesKeepsFailures(t *testing.T) {
	repo := newFixtureRepository(t, 2)

	entries, err := repo.LoadEntries(context.Background())
	require.NoError(t, err)

	var failed []string
	for _, entry := range entries {
		if entry.Failed() {
			failed = append(failed, entry.Post.Slug)
		}
	}
	assert.Equal(t, []string{"broken"}, failed)
}

func TestLoadAllMissingDirectory(t *testing.T) {
	repo := NewRepository(Config{Dir: filepath.Join(t.TempDir(), "missing")})

	posts, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoadAllCancelledContext(t *testing.T) {
	repo := newFixtureRepository(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.LoadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAllScenarioOrdering(t *testing.T) {
	filesystem := fstest.MapFS{
		"older.md": {Data: []byte("---\ntitle: Older\ndate: 2024-01-01\n---\nold")},
		"newer.md": {Data: []byte("---\ntitle: Newer\ndate: 2024-06-01\n---\nnew")},
	}
	repo := NewRepository(Config{}, WithFS(filesystem), WithBuilder(newTestBuilder()))

	posts, err := repo.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "2024-06-01", posts[0].Date)
	assert.Equal(t, "2024-01-01", posts[1].Date)
}

func TestLoadOne(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	post, err := repo.LoadOne(context.Background(), "cooking-basics")
	require.NoError(t, err)
	assert.Equal(t, "Cooking Basics", post.Title)
	assert.Equal(t, []string{"Cooking"}, post.Categories)
	assert.Equal(t, "Guest Chef", post.Author)
	assert.Equal(t, "cooking-basics.md", post.Slug+repo.Extension())
}

func TestLoadOneRoundTripsEverySlug(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	slugs, err := repo.Slugs()
	require.NoError(t, err)
	require.NotEmpty(t, slugs)

	for _, slug := range slugs {
		post, err := repo.LoadOne(context.Background(), slug)
		require.NoError(t, err, slug)
		assert.Equal(t, slug, post.Slug)
	}
}

func TestLoadOneNotFound(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	_, err := repo.LoadOne(context.Background(), "does-not-exist")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestLoadOneRejectsTraversal(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	for _, slug := range []string{"", "..", "../secret", "drafts/ignored", `a\b`} {
		_, err := repo.LoadOne(context.Background(), slug)
		require.Error(t, err, slug)
		assert.True(t, IsNotFound(err), slug)
	}
}

func TestLoadOneDirectoryIsNotFound(t *testing.T) {
	filesystem := fstest.MapFS{
		"folder.md/inner.txt": {Data: []byte("x")},
	}
	repo := NewRepository(Config{}, WithFS(filesystem))

	_, err := repo.LoadOne(context.Background(), "folder")
	assert.True(t, IsNotFound(err))
}

func TestLoadOneMalformedReturnsPlaceholder(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	post, err := repo.LoadOne(context.Background(), "broken")
	require.NoError(t, err)
	assert.True(t, post.IsPlaceholder())
}

func TestRepositorySource(t *testing.T) {
	repo := newFixtureRepository(t, 1)

	data, err := repo.Source("learning-react")
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: Learning React")

	_, err = repo.Source("nope")
	assert.True(t, IsNotFound(err))
}

type recordingObserver struct {
	mu     sync.Mutex
	total  int
	failed int
	calls  int
}

func (o *recordingObserver) ObserveLoad(total, failed int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total, o.failed = total, failed
	o.calls++
}

func TestLoadEntriesNotifiesObserver(t *testing.T) {
	observer := &recordingObserver{}
	repo := NewRepository(
		Config{Dir: filepath.Join("testdata", "content")},
		WithBuilder(newTestBuilder()),
		WithObserver(observer),
	)

	_, err := repo.LoadEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, observer.calls)
	assert.Equal(t, 3, observer.total)
	assert.Equal(t, 1, observer.failed)
}

func TestSortPosts(t *testing.T) {
	list := []Post{
		{Slug: "b", Date: "2024-01-01"},
		{Slug: "bad", Date: "sometime"},
		{Slug: "a", Date: "2024-01-01"},
		{Slug: "c", Date: "2024-05-01T10:00:00Z"},
		{Slug: "d", Date: "March 3, 2024"},
	}

	SortPosts(list)

	var got []string
	for _, p := range list {
		got = append(got, p.Slug)
	}
	assert.Equal(t, []string{"c", "d", "a", "b", "bad"}, got)
}

func TestValidSlug(t *testing.T) {
	assert.True(t, ValidSlug("hello-world"))
	assert.True(t, ValidSlug("Hello_World.v2"))
	assert.False(t, ValidSlug(""))
	assert.False(t, ValidSlug("."))
	assert.False(t, ValidSlug("a/b"))
}
