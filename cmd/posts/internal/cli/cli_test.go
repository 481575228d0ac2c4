package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darshanbajgain/darshan-blog-temp/internal/di"
	"github.com/darshanbajgain/darshan-blog-temp/internal/processed"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
	"github.com/darshanbajgain/darshan-blog-temp/pkg/testsupport"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []interfaces.PostNotification
}

func (n *captureNotifier) Notify(_ context.Context, post interfaces.PostNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, post)
	return nil
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"learning-react.md": "---\ntitle: Learning React\ndate: 2024-06-01\ndescription: Hooks\ncategories: [React]\n---\nUse hooks.\n",
		"go-channels.md":    "---\ntitle: Go Channels\ndate: 2024-05-01\ndescription: Pipes\ncategories: Go\n---\nChannels.\n",
	}
	require.NoError(t, testsupport.WriteContentDir(dir, files))
	return dir
}

func run(t *testing.T, opts []di.Option, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand(opts...)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListPrintsTable(t *testing.T) {
	dir := writeFixtures(t)

	out, err := run(t, nil, "--content-dir", dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "learning-react")
	assert.Contains(t, out, "go-channels")
	assert.Contains(t, out, "page 1 of 1, 2 matching")
}

func TestSearchJSON(t *testing.T) {
	dir := writeFixtures(t)

	out, err := run(t, nil, "--content-dir", dir, "--json", "search", "channels")
	require.NoError(t, err)

	var page struct {
		Items []struct {
			Slug string `json:"slug"`
		} `json:"items"`
		TotalMatching int `json:"total_matching"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "go-channels", page.Items[0].Slug)
	assert.Equal(t, 1, page.TotalMatching)
}

func TestShowMissingPost(t *testing.T) {
	dir := writeFixtures(t)

	_, err := run(t, nil, "--content-dir", dir, "show", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `post "nope" not found`)
}

func TestCategories(t *testing.T) {
	dir := writeFixtures(t)

	out, err := run(t, nil, "--content-dir", dir, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "React")
	assert.Contains(t, out, "/categories/Go")
}

func TestLintFailsOnInvalidFrontMatter(t *testing.T) {
	dir := writeFixtures(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.md"), []byte("---\ntitle: Broken\n---\nBody"), 0o644))

	out, err := run(t, nil, "--content-dir", dir, "lint")
	require.ErrorIs(t, err, ErrLintFailed)
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "invalid")
}

func TestNotifyAndProcessed(t *testing.T) {
	dir := writeFixtures(t)
	notifier := &captureNotifier{}
	store := processed.NewMemory()
	opts := []di.Option{di.WithNotifier(notifier), di.WithProcessedStore(store)}

	out, err := run(t, opts, "--content-dir", dir, "notify", "go-channels")
	require.NoError(t, err)
	assert.Contains(t, out, "announced go-channels")
	require.Len(t, notifier.sent, 1)

	out, err = run(t, opts, "--content-dir", dir, "notify", "go-channels")
	require.NoError(t, err)
	assert.Contains(t, out, "already announced")
	assert.Len(t, notifier.sent, 1)

	out, err = run(t, opts, "--content-dir", dir, "processed", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "go-channels.md")

	out, err = run(t, opts, "--content-dir", dir, "processed", "forget", "go-channels.md")
	require.NoError(t, err)
	assert.Contains(t, out, "forgot go-channels.md")

	_, err = run(t, opts, "--content-dir", dir, "notify", "--retries", "1", "go-channels")
	require.NoError(t, err)
	assert.Len(t, notifier.sent, 2)
}

func TestNewCreatesScaffold(t *testing.T) {
	dir := writeFixtures(t)

	out, err := run(t, nil, "--content-dir", dir, "new", "Debugging Go Tests", "--category", "Go", "--date", "2025-02-03")
	require.NoError(t, err)
	assert.Contains(t, out, "created debugging-go-tests")

	data, err := os.ReadFile(filepath.Join(dir, "debugging-go-tests.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Debugging Go Tests")
	assert.Contains(t, string(data), "2025-02-03")

	_, err = run(t, nil, "--content-dir", dir, "new", "Debugging Go Tests")
	assert.Error(t, err)
}
