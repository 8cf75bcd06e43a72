package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// slowIngestService holds IngestFile open until release is closed.
type slowIngestService struct {
	*mockIngestService
	started  chan string
	release  chan struct{}
	finished chan string
}

func (s *slowIngestService) IngestFile(
	ctx context.Context, path string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	s.started <- path
	<-s.release
	defer func() { s.finished <- path }()
	return s.mockIngestService.IngestFile(ctx, path, opts)
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.stop()

	for i := 0; i < 5; i++ {
		d.touch("contract.md")
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case path := <-d.out:
		assert.Equal(t, "contract.md", path)
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}

	select {
	case path := <-d.out:
		t.Fatalf("unexpected second event for %s", path)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncer_SeparatePaths(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	defer d.stop()

	d.touch("a.md")
	d.touch("b.md")

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case path := <-d.out:
			got[path] = true
		case <-time.After(time.Second):
			t.Fatal("debouncer never fired")
		}
	}
	assert.Equal(t, map[string]bool{"a.md": true, "b.md": true}, got)
}

func TestDebouncer_StopIsIdempotent(t *testing.T) {
	d := newDebouncer(time.Hour)
	d.touch("a.md")

	d.stop()
	d.stop()
	d.touch("b.md")

	_, open := <-d.out
	assert.False(t, open)
}

func TestWatchable(t *testing.T) {
	original := supportsFile
	defer func() { supportsFile = original }()

	supportsFile = func(path string) bool { return filepath.Ext(path) == ".md" }

	assert.True(t, watchable("/docs/msa.md"))
	assert.False(t, watchable("/docs/msa.pdf"))
	assert.False(t, watchable("/docs/.msa.md"))
	assert.False(t, watchable("/docs/~$msa.md"))
	assert.False(t, watchable("/docs/msa.md~"))

	supportsFile = nil
	assert.True(t, watchable("/docs/anything.bin"))
}

func TestAddTree_SkipsHiddenDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "contracts", "2025"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "objects"), 0o755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addTree(watcher, root))

	watched := watcher.WatchList()
	assert.Contains(t, watched, root)
	assert.Contains(t, watched, filepath.Join(root, "contracts", "2025"))
	assert.NotContains(t, watched, filepath.Join(root, ".git"))
}

func TestWatchCmd_RequiresDirectory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	file := filepath.Join(t.TempDir(), "msa.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := run(t, "watch", file)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestWatchCmd_ServiceNotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := run(t, "watch", t.TempDir())

	assert.ErrorIs(t, err, errIngestNotConfigured)
}

func TestStartIngestWorker_DrainWaitsForRunningIngest(t *testing.T) {
	original := ingestService
	defer func() { ingestService = original }()

	slow := &slowIngestService{
		mockIngestService: &mockIngestService{},
		started:           make(chan string, 1),
		release:           make(chan struct{}),
		finished:          make(chan string, 1),
	}
	ingestService = slow

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	deb := newDebouncer(time.Millisecond)
	drain := startIngestWorker(context.Background(), cmd, deb, domain.IngestOptions{})
	deb.touch("lease.md")

	select {
	case path := <-slow.started:
		assert.Equal(t, "lease.md", path)
	case <-time.After(time.Second):
		t.Fatal("ingest never started")
	}

	drained := make(chan struct{})
	go func() {
		drain()
		close(drained)
	}()

	select {
	case <-drained:
		t.Fatal("drain returned while an ingest was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(slow.release)
	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain never returned")
	}
	assert.Equal(t, "lease.md", <-slow.finished)
	assert.Contains(t, out.String(), "doc-lease.md")
}
