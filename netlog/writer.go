// Package netlog is a rotating per-session frame-activity trace log,
// adapted from the teacher's logs.Writer (itself a rotating
// per-BMC-console file writer with retention cleanup). The ANSI-
// cursor-cleaning and line-dedup logic that writer carries exists only
// because BIOS consoles redraw via cursor positioning; a binary
// attendance protocol has no such noise, so this keeps the per-key
// file-handle map, daily rotation, and retention sweep, and drops the
// rest.
package netlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Writer appends one line per accepted frame to a rotating file keyed
// by session identity (typically the remote address).
type Writer struct {
	basePath      string
	retentionDays int

	mu           sync.Mutex
	files        map[string]*os.File
	lastRotation map[string]time.Time
}

// NewWriter creates a trace writer rooted at basePath. retentionDays
// <= 0 disables the cleanup sweep.
func NewWriter(basePath string, retentionDays int) *Writer {
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		files:         make(map[string]*os.File),
		lastRotation:  make(map[string]time.Time),
	}
}

// LogFrame records one accepted inner-packet frame.
func (w *Writer) LogFrame(sessionKey string, command, session, reply uint16, payloadLen int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.getOrCreateFile(sessionKey)
	if err != nil {
		return err
	}
	line := fmt.Sprintf("%s cmd=%d session=%d reply=%d payload=%dB\n",
		time.Now().Format(time.RFC3339Nano), command, session, reply, payloadLen)
	_, err = f.WriteString(line)
	return err
}

func (w *Writer) getOrCreateFile(sessionKey string) (*os.File, error) {
	if f, ok := w.files[sessionKey]; ok {
		if w.needsRotation(sessionKey) {
			f.Close()
			delete(w.files, sessionKey)
		} else {
			return f, nil
		}
	}

	dir := filepath.Join(w.basePath, sanitize(sessionKey))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	w.files[sessionKey] = f
	w.lastRotation[sessionKey] = time.Now()
	return f, nil
}

// needsRotation rolls the file over once a day, same cadence the
// teacher's writer uses for BMC console logs.
func (w *Writer) needsRotation(sessionKey string) bool {
	last, ok := w.lastRotation[sessionKey]
	if !ok {
		return false
	}
	return time.Now().YearDay() != last.YearDay() || time.Now().Year() != last.Year()
}

// Cleanup removes trace files older than the configured retention
// window. Intended to be called periodically (e.g. daily) by main.
func (w *Writer) Cleanup() {
	if w.retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	entries, err := os.ReadDir(w.basePath)
	if err != nil {
		return
	}
	for _, sessionDir := range entries {
		if !sessionDir.IsDir() {
			continue
		}
		dir := filepath.Join(w.basePath, sessionDir.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, fi := range files {
			info, err := fi.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				path := filepath.Join(dir, fi.Name())
				if err := os.Remove(path); err != nil {
					log.Warnf("netlog: cleanup failed to remove %s: %v", path, err)
				}
			}
		}
	}
}

// Close closes every open file handle.
func (w *Writer) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for key, f := range w.files {
		f.Close()
		delete(w.files, key)
	}
}

func sanitize(s string) string {
	r := []rune(s)
	for i, c := range r {
		switch c {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			r[i] = '_'
		}
	}
	return string(r)
}
