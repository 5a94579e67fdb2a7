package flow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/notify"
)

const fallbackDownloadName = "results.csv"

// DownloadTrigger fetches a result artifact and saves it locally. Every
// failure is both logged and notified.
type DownloadTrigger struct {
	downloader Downloader
	outputDir  string
	log        *logger.Logger
	notifier   notify.Notifier
}

// NewDownloadTrigger creates a download trigger saving into outputDir
// (the working directory when empty).
func NewDownloadTrigger(downloader Downloader, outputDir string, log *logger.Logger, notifier notify.Notifier) *DownloadTrigger {
	if outputDir == "" {
		outputDir = "."
	}
	if log == nil {
		log = logger.Discard()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &DownloadTrigger{
		downloader: downloader,
		outputDir:  outputDir,
		log:        log,
		notifier:   notifier,
	}
}

// Download fetches locator and writes it under the output directory using
// the locator's base name. It returns the path written.
func (d *DownloadTrigger) Download(ctx context.Context, locator string) (string, error) {
	started := time.Now()

	savedPath, size, err := d.download(ctx, locator)
	if err != nil {
		d.log.ErrorWithFields("download failed", []logger.Field{logger.F("locator", locator), logger.Error(err)})
		d.notifier.Error(api.Message(err))
		return "", err
	}

	d.log.InfoWithFields("download saved", []logger.Field{
		logger.F("locator", locator),
		logger.F("path", savedPath),
		logger.F("bytes", size),
		logger.Duration(time.Since(started)),
	})
	d.notifier.Success(fmt.Sprintf("Saved %s (%s)", savedPath, humanize.Bytes(uint64(size))))
	return savedPath, nil
}

func (d *DownloadTrigger) download(ctx context.Context, locator string) (string, int, error) {
	if strings.TrimSpace(locator) == "" {
		return "", 0, NewValidationError("locator", "", "Nothing to download yet, run a search first")
	}

	data, err := d.downloader.Download(ctx, locator)
	if err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(d.outputDir, 0o750); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory %s: %w", d.outputDir, err)
	}

	target, err := writeUnique(d.outputDir, SuggestedFileName(locator), data)
	if err != nil {
		return "", 0, err
	}

	return target, len(data), nil
}

// SuggestedFileName derives the local file name from a result locator
func SuggestedFileName(locator string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(locator), "\\", "/"))
	switch name {
	case "", ".", "/", "..":
		return fallbackDownloadName
	}
	return name
}

// writeUnique writes data to dir/name, or to name-1, name-2 ... when the
// file already exists.
func writeUnique(dir, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 1000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", stem, i, ext)
		}
		target := filepath.Join(dir, candidate)

		// #nosec G304 - target is built from the configured output directory
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", target, err)
		}

		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("failed to write %s: %w", target, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", target, err)
		}
		return target, nil
	}

	return "", fmt.Errorf("too many existing copies of %s in %s", name, dir)
}
