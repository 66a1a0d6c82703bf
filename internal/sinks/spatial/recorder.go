// Package spatial records geometric debug annotations to JSON-lines files.
//
// The recorder is armed by Start and disarmed by Stop; events are only
// emitted while it is armed. Each recording is one file under the configured
// directory, held under an exclusive file lock so two hosts never interleave
// writes into the same recording.
package spatial

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

// ErrNotRecording is returned by Stop when nothing is being recorded.
var ErrNotRecording = errors.New("spatial recorder is not recording")

// ErrRecordingLocked means another process holds the recording file.
var ErrRecordingLocked = errors.New("recording file is locked by another process")

// Record is one line of a recording. Immediate draws set Draw and carry
// their label, segments and lifetime; annotations leave those empty.
type Record struct {
	Time       time.Time    `json:"ts"`
	SessionID  string       `json:"session_id,omitempty"`
	Category   string       `json:"category"`
	Severity   string       `json:"severity,omitempty"`
	Message    string       `json:"message,omitempty"`
	Owner      string       `json:"owner,omitempty"`
	Shape      event.Shape  `json:"shape"`
	Text       bool         `json:"text,omitempty"`
	Location   geom.Vector  `json:"location"`
	Rotation   geom.Rotator `json:"rotation"`
	Scale      geom.Vector  `json:"scale"`
	Params1    geom.Vector  `json:"params1"`
	Params2    geom.Vector  `json:"params2"`
	Color      string       `json:"color"`
	Wireframe  bool         `json:"wireframe,omitempty"`
	Draw       bool         `json:"draw,omitempty"`
	Label      string       `json:"label,omitempty"`
	Segments   int          `json:"segments,omitempty"`
	Persistent bool         `json:"persistent,omitempty"`
	LifeTimeMS int64        `json:"lifetime_ms,omitempty"`
	Thickness  float64      `json:"thickness,omitempty"`
}

// Options configures a Recorder.
type Options struct {
	Dir       string
	SessionID string
	Clock     func() time.Time
}

// Recorder is the spatial sink.
type Recorder struct {
	dir     string
	session string
	clock   func() time.Time

	armed atomic.Bool

	mu      sync.Mutex
	file    *os.File
	writer  *bufio.Writer
	lock    *flock.Flock
	path    string
	written int
}

// New constructs a disarmed Recorder.
func New(opts Options) *Recorder {
	r := &Recorder{dir: opts.Dir, session: opts.SessionID, clock: opts.Clock}
	if r.clock == nil {
		r.clock = time.Now
	}
	return r
}

// Recording reports whether the recorder is armed.
func (r *Recorder) Recording() bool { return r.armed.Load() }

// Path returns the active recording file, or "" when disarmed.
func (r *Recorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// Start opens a new recording and arms the recorder. name is used as the
// file stem; an empty name derives one from the current time. Starting while
// already recording returns the active path.
func (r *Recorder) Start(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		return r.path, nil
	}
	if name == "" {
		name = "rec-" + r.clock().UTC().Format("20060102-150405")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create recording directory: %w", err)
	}
	path := filepath.Join(r.dir, name+".jsonl")

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("acquire recording lock: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrRecordingLocked, path)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_ = lock.Unlock()
		return "", fmt.Errorf("open recording: %w", err)
	}
	r.file = f
	r.writer = bufio.NewWriter(f)
	r.lock = lock
	r.path = path
	r.written = 0
	r.armed.Store(true)
	return path, nil
}

// Stop flushes and closes the recording and disarms the recorder. It returns
// the recording path and how many records were written.
func (r *Recorder) Stop() (string, int, error) {
	r.armed.Store(false)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return "", 0, ErrNotRecording
	}
	path, written := r.path, r.written
	err := errors.Join(r.writer.Flush(), r.file.Close(), r.lock.Unlock())
	r.file, r.writer, r.lock, r.path, r.written = nil, nil, nil, "", 0
	if err != nil {
		return path, written, fmt.Errorf("close recording: %w", err)
	}
	return path, written, nil
}

// Emit appends one annotation. Calls made while disarmed are ignored.
func (r *Recorder) Emit(annotation event.Spatial, category string, sev severity.Severity, message string) error {
	rec := Record{
		Time:      r.clock().UTC(),
		SessionID: r.session,
		Category:  category,
		Severity:  sev.String(),
		Message:   message,
		Owner:     annotation.OwnerName(),
		Shape:     annotation.Shape,
		Text:      annotation.Text,
		Location:  annotation.Location,
		Rotation:  annotation.Rotation,
		Scale:     annotation.Scale,
		Params1:   annotation.Params1,
		Params2:   annotation.Params2,
		Color:     annotation.Color.Hex(),
		Wireframe: annotation.Wireframe,
	}
	return r.append(rec)
}

// Draw appends one immediate shape. The recording file stands in for the
// world, so draws made while disarmed have nowhere to go and are dropped.
func (r *Recorder) Draw(d event.Draw, category string) error {
	rec := Record{
		Time:       r.clock().UTC(),
		SessionID:  r.session,
		Category:   category,
		Shape:      d.Shape,
		Location:   d.Location,
		Rotation:   d.Rotation,
		Scale:      geom.One,
		Params1:    d.Params1,
		Params2:    d.Params2,
		Color:      d.Color.Hex(),
		Draw:       true,
		Label:      d.Text,
		Segments:   d.Segments,
		Persistent: d.Persistent,
		Thickness:  d.Thickness,
	}
	if d.LifeTime > 0 {
		rec.LifeTimeMS = d.LifeTime.Milliseconds()
	}
	return r.append(rec)
}

func (r *Recorder) append(rec Record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode spatial record: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.writer == nil {
		return nil
	}
	if _, err := r.writer.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write spatial record: %w", err)
	}
	r.written++
	return r.writer.Flush()
}

// ReadRecording decodes every record of a recording file.
func ReadRecording(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer f.Close()

	var out []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", len(out)+1, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	return out, nil
}
