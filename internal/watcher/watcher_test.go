package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifycmd "github.com/darshanbajgain/darshan-blog-temp/internal/commands/notify"
	"github.com/darshanbajgain/darshan-blog-temp/internal/processed"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []interfaces.PostNotification
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, msg interfaces.PostNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, msg)
	return n.err
}

func (n *recordingNotifier) snapshot() []interfaces.PostNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]interfaces.PostNotification(nil), n.calls...)
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (o *countingObserver) ObserveNotification(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string]int{}
	}
	o.outcomes[outcome]++
}

type harness struct {
	dir      string
	clock    *fakeClock
	store    *processed.Memory
	notifier *recordingNotifier
	observer *countingObserver
	watcher  *Watcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		dir:      t.TempDir(),
		clock:    &fakeClock{now: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)},
		store:    processed.NewMemory(),
		notifier: &recordingNotifier{},
		observer: &countingObserver{},
	}
	handler := notifycmd.NewNotifyPostHandler(h.notifier, h.store, nil, notifycmd.FeatureGates{Now: h.clock.Now})

	w, err := New(Config{Dir: h.dir}, h.store, handler,
		WithClock(h.clock.Now),
		WithObserver(h.observer),
	)
	require.NoError(t, err)
	h.watcher = w
	return h
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (h *harness) tick() {
	h.watcher.Tick(context.Background())
	h.watcher.Wait()
}

const postSource = "---\ntitle: Fresh Post\ndescription: Just landed\n---\n# Heading\n\nBody text.\n"

func TestWatcherNotifiesOnceAfterSettling(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	path := h.write(t, "fresh-post.md", postSource)

	h.watcher.HandleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create})
	assert.Equal(t, Settling, h.watcher.State("fresh-post.md"))

	h.clock.Advance(time.Second)
	h.tick()
	assert.Empty(t, h.notifier.snapshot())

	h.clock.Advance(time.Second)
	h.tick()

	calls := h.notifier.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "fresh-post", calls[0].Slug)
	assert.Equal(t, "Fresh Post", calls[0].Title)
	assert.Equal(t, "Just landed", calls[0].Description)
	assert.Equal(t, "# Heading\n\nBody text.\n", calls[0].Content)
	assert.Equal(t, Idle, h.watcher.State("fresh-post.md"))

	seen, err := h.store.Has(ctx, "fresh-post.md")
	require.NoError(t, err)
	assert.True(t, seen)

	h.watcher.HandleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Create})
	assert.Equal(t, Idle, h.watcher.State("fresh-post.md"))
	h.clock.Advance(5 * time.Second)
	h.tick()
	assert.Len(t, h.notifier.snapshot(), 1)
	assert.Equal(t, 1, h.observer.outcomes[OutcomeSent])
}

func TestWatcherWaitsForWritesToStop(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	path := h.write(t, "growing.md", "---\ntitle: Growing\n---\n")
	h.watcher.Detect(ctx, path)

	content := "---\ntitle: Growing\n---\n"
	for i := 0; i < 5; i++ {
		h.clock.Advance(time.Second)
		content += "more text\n"
		h.write(t, "growing.md", content)
		h.tick()
	}
	assert.Empty(t, h.notifier.snapshot())

	h.clock.Advance(2 * time.Second)
	h.tick()
	assert.Len(t, h.notifier.snapshot(), 1)
}

func TestWatcherIgnoresNonPostFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.Detect(ctx, h.write(t, "notes.txt", "text"))
	h.watcher.Detect(ctx, h.write(t, ".hidden.md", postSource))
	require.NoError(t, os.Mkdir(filepath.Join(h.dir, "folder.md"), 0o755))
	h.watcher.Detect(ctx, filepath.Join(h.dir, "folder.md"))

	assert.Empty(t, h.watcher.debouncer.Pending())
}

func TestWatcherSkipsAlreadyProcessed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.Mark(ctx, "old.md", h.clock.Now()))

	h.watcher.Detect(ctx, h.write(t, "old.md", postSource))
	assert.Equal(t, Idle, h.watcher.State("old.md"))
}

func TestWatcherFailureLeavesFileRetryable(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("provider unavailable")
	ctx := context.Background()
	path := h.write(t, "retry.md", postSource)

	h.watcher.Detect(ctx, path)
	h.clock.Advance(2 * time.Second)
	h.tick()

	require.Len(t, h.notifier.snapshot(), 1)
	seen, _ := h.store.Has(ctx, "retry.md")
	assert.False(t, seen)
	assert.Equal(t, 1, h.observer.outcomes[OutcomeFailed])

	h.notifier.mu.Lock()
	h.notifier.err = nil
	h.notifier.mu.Unlock()

	h.watcher.Detect(ctx, path)
	h.clock.Advance(2 * time.Second)
	h.tick()

	assert.Len(t, h.notifier.snapshot(), 2)
	seen, _ = h.store.Has(ctx, "retry.md")
	assert.True(t, seen)
}

func TestWatcherCancelsRemovedFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	path := h.write(t, "gone.md", postSource)

	h.watcher.Detect(ctx, path)
	require.NoError(t, os.Remove(path))
	h.watcher.HandleEvent(ctx, fsnotify.Event{Name: path, Op: fsnotify.Remove})
	assert.Equal(t, Idle, h.watcher.State("gone.md"))

	path = h.write(t, "vanish.md", postSource)
	h.watcher.Detect(ctx, path)
	require.NoError(t, os.Remove(path))
	h.clock.Advance(3 * time.Second)
	h.tick()

	assert.Empty(t, h.notifier.snapshot())
}

func TestWatcherDefaultsMissingMetadata(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.watcher.Detect(ctx, h.write(t, "bare.md", "Only a body"))
	h.clock.Advance(2 * time.Second)
	h.tick()

	calls := h.notifier.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, "Untitled Post", calls[0].Title)
	assert.Equal(t, "No description available", calls[0].Description)
	assert.Equal(t, "Only a body", calls[0].Content)
}

func TestNewValidatesArguments(t *testing.T) {
	handler := notifycmd.NewNotifyPostHandler(&recordingNotifier{}, processed.NewMemory(), nil, notifycmd.FeatureGates{})

	_, err := New(Config{}, processed.NewMemory(), handler)
	assert.ErrorIs(t, err, ErrNoDirectory)

	_, err = New(Config{Dir: t.TempDir()}, nil, handler)
	assert.Error(t, err)

	_, err = New(Config{Dir: t.TempDir()}, processed.NewMemory(), nil)
	assert.Error(t, err)
}

func TestWatcherRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.md"), []byte(postSource), 0o644))

	store := processed.NewMemory()
	notifier := &recordingNotifier{}
	handler := notifycmd.NewNotifyPostHandler(notifier, store, nil, notifycmd.FeatureGates{})

	w, err := New(Config{
		Dir:                dir,
		StabilityThreshold: 150 * time.Millisecond,
		PollInterval:       20 * time.Millisecond,
		ScanExisting:       true,
	}, store, handler)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		return len(notifier.snapshot()) == 1
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "live.md"), []byte(postSource), 0o644))
	require.Eventually(t, func() bool {
		return len(notifier.snapshot()) == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	calls := notifier.snapshot()
	assert.Equal(t, "existing", calls[0].Slug)
	assert.Equal(t, "live", calls[1].Slug)
}
