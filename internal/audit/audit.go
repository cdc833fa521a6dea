// Package audit appends one JSON line per user-visible action of the web
// form (login, save) to a history file.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/yuzeguitarist/qrforge/internal/app"
)

type Entry struct {
	Time   string `json:"time"`
	IP     string `json:"ip"`
	User   string `json:"user,omitempty"`
	Action string `json:"action"`
	Object string `json:"object,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Log writes entries to a JSONL file. A Log with an empty path, or a nil
// *Log, drops everything.
type Log struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Log { return &Log{path: path} }

// Write appends e, stamping the time when unset.
func (l *Log) Write(e Entry) error {
	if l == nil || l.path == "" {
		return nil
	}
	if e.Time == "" {
		e.Time = time.Now().UTC().Format(time.RFC3339)
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := app.EnsureParentDir(l.path); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(b, '\n'))
	return err
}
