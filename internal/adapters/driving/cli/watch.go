package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// defaultWatchDelay lets editors finish writing before a file is read.
const defaultWatchDelay = 750 * time.Millisecond

var watchDelay time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest files as they appear in a directory",
	Long: `Watches a directory tree and ingests supported files when they are
created or modified. Bursts of writes to one file are collapsed into a single
ingest, and files are ingested one at a time.

Deleting a file does not delete its document; use 'lexrag document delete'.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDelay, "delay", defaultWatchDelay, "quiet period before a changed file is ingested")
	watchCmd.Flags().BoolVar(&ingestShared, "shared", false, "mark documents as shared rather than personal")
	watchCmd.Flags().StringSliceVar(&ingestTags, "tag", nil, "tag every chunk (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addTree(watcher, root); err != nil {
		return err
	}

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	deb := newDebouncer(watchDelay)
	drain := startIngestWorker(ctx, cmd, deb, ingestOptions())
	defer drain()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleWatchEvent(watcher, deb, event)
		}
	}
}

// startIngestWorker ingests paths emitted by deb one at a time. The
// returned func stops deb and blocks until the current ingest finishes,
// so callers can release storage afterwards.
func startIngestWorker(
	ctx context.Context, cmd *cobra.Command, deb *debouncer, opts domain.IngestOptions,
) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for path := range deb.out {
			if ctx.Err() != nil {
				return
			}
			report, err := ingestService.IngestFile(ctx, path, opts)
			if err != nil {
				printWarning(cmd, "skipped %s: %v", path, err)
				continue
			}
			cmd.Printf("  %s  %s %s\n", report.DocumentID, filepath.Base(path),
				faintStyle.Sprintf("(%s)", plural(report.Stored, "chunk")))
		}
	}()
	return func() {
		deb.stop()
		<-done
	}
}

func handleWatchEvent(watcher *fsnotify.Watcher, deb *debouncer, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := addTree(watcher, event.Name); err != nil {
			logger.Warn("%v", err)
		}
		return
	}
	if watchable(event.Name) {
		deb.touch(event.Name)
	}
}

// watchable filters out hidden and editor temp files, and formats no
// normaliser can read.
func watchable(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasSuffix(base, "~") {
		return false
	}
	if supportsFile == nil {
		return true
	}
	return supportsFile(path)
}

// addTree watches dir and every non-hidden directory below it.
func addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		logger.Debug("Watching %s", path)
		return nil
	})
}

// debouncer emits a path once it has been quiet for delay. out is
// consumed by a single goroutine, which serialises ingestion.
type debouncer struct {
	delay time.Duration
	out   chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		out:    make(chan string, 64),
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() { d.fire(path) })
}

func (d *debouncer) fire(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	delete(d.timers, path)
	select {
	case d.out <- path:
	default:
		logger.Warn("watch queue full, dropping %s", path)
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true
	for _, t := range d.timers {
		t.Stop()
	}
	close(d.out)
}
