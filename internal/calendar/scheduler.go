package calendar

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/weekly-planner/backend/internal/log"
	"github.com/weekly-planner/backend/internal/planner"
)

// DefaultExportSpec runs the export at the top of every hour.
const DefaultExportSpec = "@hourly"

// UserSource lists the users to export.
type UserSource interface {
	Users() []planner.User
}

// ExportNotifier is told about every completed export run.
type ExportNotifier interface {
	BroadcastScheduleExported(dir string, users []string)
}

// ExportResult summarizes one export run.
type ExportResult struct {
	Dir   string    `json:"dir"`
	Users []string  `json:"users"`
	Files []string  `json:"files"`
	At    time.Time `json:"at"`
}

// Exporter periodically writes every user's schedule to disk, once as a schedule
// document (<user>.txt) and once as iCalendar (<user>.ics).
type Exporter struct {
	cron     *cron.Cron
	source   UserSource
	codec    *ICSCodec
	notifier ExportNotifier
	dir      string
	spec     string

	mu      sync.Mutex
	entry   cron.EntryID
	started bool
	last    *ExportResult
}

// NewExporter creates an exporter. notifier may be nil.
func NewExporter(source UserSource, codec *ICSCodec, dir, spec string, notifier ExportNotifier) *Exporter {
	if spec == "" {
		spec = DefaultExportSpec
	}
	return &Exporter{
		cron:     cron.New(cron.WithSeconds()),
		source:   source,
		codec:    codec,
		notifier: notifier,
		dir:      dir,
		spec:     spec,
	}
}

// Start registers the export job and starts the cron runner.
func (x *Exporter) Start(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.started {
		return nil
	}

	id, err := x.cron.AddFunc(x.spec, func() {
		if _, err := x.ExportNow(ctx); err != nil {
			log.Error("scheduled export failed", err, "dir", x.dir)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling export %q: %w", x.spec, err)
	}
	x.entry = id
	x.started = true
	x.cron.Start()
	log.Info("schedule exporter started", "spec", x.spec, "dir", x.dir)
	return nil
}

// Stop waits for a running export to finish and stops the runner.
func (x *Exporter) Stop() {
	x.mu.Lock()
	started := x.started
	x.started = false
	x.mu.Unlock()
	if !started {
		return
	}

	log.Info("stopping schedule exporter")
	<-x.cron.Stop().Done()
	log.Info("schedule exporter stopped")
}

// NextRun returns the next scheduled export time, or nil when not started.
func (x *Exporter) NextRun() *time.Time {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.started {
		return nil
	}
	next := x.cron.Entry(x.entry).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// LastResult returns the most recent successful export, if any.
func (x *Exporter) LastResult() *ExportResult {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.last
}

// ExportNow writes every user's files immediately.
func (x *Exporter) ExportNow(ctx context.Context) (*ExportResult, error) {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	result := &ExportResult{Dir: x.dir, At: time.Now().UTC()}
	for _, u := range x.source.Users() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var doc bytes.Buffer
		if err := EncodeSchedule(&doc, u); err != nil {
			return nil, err
		}
		base := fileBase(u.Name())
		txt := filepath.Join(x.dir, base+".txt")
		if err := writeAtomic(txt, doc.Bytes()); err != nil {
			return nil, fmt.Errorf("exporting %s: %w", u.Name(), err)
		}
		result.Files = append(result.Files, txt)

		if x.codec != nil {
			path := filepath.Join(x.dir, base+".ics")
			if err := writeAtomic(path, []byte(x.codec.Encode(u))); err != nil {
				return nil, fmt.Errorf("exporting %s: %w", u.Name(), err)
			}
			result.Files = append(result.Files, path)
		}
		result.Users = append(result.Users, u.Name())
	}

	log.Info("schedules exported", "dir", x.dir, "user_count", len(result.Users))
	x.mu.Lock()
	x.last = result
	x.mu.Unlock()
	if x.notifier != nil {
		x.notifier.BroadcastScheduleExported(x.dir, result.Users)
	}
	return result, nil
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileBase(name string) string {
	base := unsafeFileChars.ReplaceAllString(name, "_")
	if base == "" || base == "." || base == ".." {
		base = "user"
	}
	return base
}

// writeAtomic writes through a temp file in the same directory and renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
