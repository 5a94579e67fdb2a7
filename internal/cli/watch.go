package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/emoji"
	"github.com/yildizm/domainslab/internal/flow"
	"github.com/yildizm/domainslab/internal/logger"
)

const defaultSettleDelay = 500 * time.Millisecond

var (
	watchKeyword  string
	watchDownload bool
	watchSettle   time.Duration
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Upload every domain list dropped into a folder",
		Long: `Watch a drop folder and upload each .txt or .csv file written to it.

Files are picked up once they stop changing. With --keyword every processed
upload is followed by a search, and --download saves the result file.
Press Ctrl+C to stop watching.

Examples:
  domainslab watch
  domainslab watch ./inbox -k v=spf1
  domainslab watch ./inbox -k google-site-verification --download`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchKeyword, "keyword", "k", "", "keyword to search after each upload (default: watch.keyword)")
	cmd.Flags().BoolVarP(&watchDownload, "download", "d", false, "download each search result (default: watch.auto_download)")
	cmd.Flags().DurationVar(&watchSettle, "settle", defaultSettleDelay, "how long a file must stay unchanged before it is uploaded")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "watch")
	if err != nil {
		return err
	}

	dir := s.cfg.Watch.Directory
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err = prepareWatchDir(dir)
	if err != nil {
		return err
	}

	keyword := watchKeyword
	if keyword == "" {
		keyword = s.cfg.Watch.Keyword
	}
	download := watchDownload || s.cfg.Watch.AutoDownload
	if download && strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("--download needs a keyword (--keyword or watch.keyword)")
	}

	uploads := flow.NewUploadController(s.client, s.cfg.Upload.AllowedExtensions, s.log, s.notifier)
	folder := &dropFolder{
		dir:      dir,
		keyword:  keyword,
		settle:   watchSettle,
		allowed:  s.cfg.Upload.AllowedExtensions,
		uploads:  uploads,
		searches: flow.NewSearchController(s.client, uploads, s.log, s.notifier),
		log:      s.log,
		out:      cmd.OutOrStdout(),
		written:  make(map[string]bool),
	}
	if download {
		folder.downloads = flow.NewDownloadTrigger(s.client, s.cfg.Download.OutputDir, s.log, s.notifier)
	}

	watcher, err := createWatcher(dir)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher, s.log)

	ctx, stop := signalContext(cmd)
	defer stop()

	fmt.Fprintf(folder.out, "%s Watching %s for domain lists\n", emoji.GetEmoji("folder"), dir)
	s.log.Debug("press Ctrl+C to stop")

	return folder.run(ctx, watcher)
}

// dropFolder uploads files that settle in a watched directory
type dropFolder struct {
	dir       string
	keyword   string
	settle    time.Duration
	allowed   []string
	uploads   *flow.UploadController
	searches  *flow.SearchController
	downloads *flow.DownloadTrigger // nil unless results are saved
	log       *logger.Logger
	out       io.Writer

	// results this process saved; never uploaded back
	written map[string]bool
}

// run is the watch loop. Each event (re)arms a per-file timer; a file is
// handled once its timer fires. Handling happens on this goroutine, so
// files are uploaded one at a time.
func (d *dropFolder) run(ctx context.Context, watcher *fsnotify.Watcher) error {
	ready := make(chan string)
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			d.log.Debug("stopping watch of %s", d.dir)
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			d.handleEvent(ctx, event, timers, ready)

		case path := <-ready:
			delete(timers, path)
			d.process(ctx, path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			d.log.Warn("watcher error: %v", err)
		}
	}
}

func (d *dropFolder) handleEvent(ctx context.Context, event fsnotify.Event, timers map[string]*time.Timer, ready chan<- string) {
	path := event.Name

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if t, ok := timers[path]; ok {
			t.Stop()
			delete(timers, path)
		}
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if reason := d.skipReason(path); reason != "" {
		d.log.Debug("ignoring %s: %s", path, reason)
		return
	}

	if t, ok := timers[path]; ok {
		t.Reset(d.settle)
		return
	}
	timers[path] = time.AfterFunc(d.settle, func() {
		select {
		case ready <- path:
		case <-ctx.Done():
		}
	})
}

// skipReason explains why path is not a candidate upload, or returns ""
func (d *dropFolder) skipReason(path string) string {
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "."):
		return "hidden file"
	case d.written[path]:
		return "downloaded result"
	case !hasAllowedExtension(name, d.allowed):
		return "unsupported extension"
	}
	return ""
}

func (d *dropFolder) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// gone again, or a directory named like a list
		return
	}

	file, err := flow.OpenFile(path)
	if err != nil {
		d.log.Error("failed to read %s: %v", path, err)
		return
	}

	fmt.Fprintf(d.out, "%s Uploading %s\n", emoji.GetEmoji("upload"), file.Name)
	if err := d.uploads.Select(ctx, file); err != nil {
		return
	}

	if strings.TrimSpace(d.keyword) == "" {
		return
	}
	if err := d.searches.Search(ctx, d.keyword); err != nil {
		return
	}
	result, ok := d.searches.Result()
	if !ok {
		return
	}
	fmt.Fprintf(d.out, "%s Results for %q: %s\n", emoji.GetEmoji("search"), result.Keyword, result.Locator)

	if d.downloads == nil {
		return
	}
	saved, err := d.downloads.Download(ctx, result.Locator)
	if err != nil {
		return
	}
	if abs, err := filepath.Abs(saved); err == nil {
		d.written[abs] = true
	}
}

func hasAllowedExtension(name string, allowed []string) bool {
	ext := filepath.Ext(name)
	for _, a := range allowed {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}

// prepareWatchDir creates dir when missing and returns its absolute path
func prepareWatchDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("no directory to watch (pass one or set watch.directory)")
	}

	abs, err := filepath.Abs(filepath.Clean(dir))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return "", fmt.Errorf("failed to create watch directory: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("cannot watch %s: not a directory", dir)
	}
	return abs, nil
}

// createWatcher creates a watcher on dir
func createWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	return watcher, nil
}

func cleanupWatcher(watcher *fsnotify.Watcher, log *logger.Logger) {
	if err := watcher.Close(); err != nil {
		log.Warn("failed to close watcher: %v", err)
	}
}
