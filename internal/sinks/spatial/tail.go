package spatial

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TailOptions selects which records Tail returns.
type TailOptions struct {
	// Offset is a byte offset returned by a previous Tail. Negative means
	// "the last Limit records".
	Offset int64
	Limit  int
	// Follow waits up to Wait for new records when none are available.
	Follow bool
	Wait   time.Duration
}

// TailResult carries decoded records and the offset to resume from.
type TailResult struct {
	Records []Record
	Offset  int64
}

// Tail reads records from a recording that may still be written to. Only
// complete lines are consumed; a partially flushed record is left for the
// next call.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat recording: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("recording path %q is a directory", path)
	}

	offset := opts.Offset
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	records, next, err := readRecords(path, offset)
	if err != nil {
		return result, err
	}
	if opts.Offset < 0 && opts.Limit > 0 && len(records) > opts.Limit {
		records = records[len(records)-opts.Limit:]
	}
	result.Records, result.Offset = records, next

	if len(records) == 0 && opts.Follow && opts.Wait > 0 {
		return waitForRecords(ctx, path, next, opts.Wait)
	}
	return result, nil
}

func readRecords(path string, offset int64) ([]Record, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, offset, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek recording: %w", err)
	}

	var out []Record
	r := bufio.NewReaderSize(f, 64*1024)
	for {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			// Unterminated tail: not yet flushed.
			return out, offset, nil
		}
		if err != nil {
			return out, offset, fmt.Errorf("read recording: %w", err)
		}
		offset += int64(len(line))
		if len(line) <= 1 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return out, offset, fmt.Errorf("decode record at byte %d: %w", offset-int64(len(line)), err)
		}
		out = append(out, rec)
	}
}

func waitForRecords(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	result := TailResult{Offset: offset}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return result, fmt.Errorf("create recording watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return result, fmt.Errorf("watch recording dir: %w", err)
	}
	// Catch writes that landed before the watch was in place.
	if records, next, err := readRecords(path, offset); err != nil || len(records) > 0 {
		return TailResult{Records: records, Offset: next}, err
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-timer.C:
			return result, nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return result, nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) {
				continue
			}
			records, next, err := readRecords(path, offset)
			if err != nil {
				return result, err
			}
			if len(records) > 0 {
				return TailResult{Records: records, Offset: next}, nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return result, nil
			}
			return result, fmt.Errorf("recording watcher: %w", err)
		}
	}
}
