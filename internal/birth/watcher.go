package birth

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // birth file written or created
	ChangeRemoved                    // birth file deleted
	ChangeInvalid                    // birth file present but unreadable or invalid
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeModified:
		return "modified"
	case ChangeRemoved:
		return "removed"
	case ChangeInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Change represents a detected change in the watched directory.
type Change struct {
	Kind   ChangeKind
	File   string
	Record Record // set for ChangeModified
	Err    error  // set for ChangeInvalid
}

// Watcher monitors a directory of *.toml birth files using fsnotify.
type Watcher struct {
	Dir     string
	Changes <-chan Change // Read-only external channel

	changes  chan Change // Internal write channel
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher creates a new watcher for the given directory.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Dir:      dir,
		Changes:  ch,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching the directory for changes.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and channels. Changes still pending or unread
// are dropped, so Stop never waits on a reader.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		w.watcher.Close()
		<-w.done // Wait for loop to exit
		close(w.changes)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	// Editors often write a file several times in a burst; only the last
	// write within the debounce interval is reported.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isBirthFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					delete(pending, file)
					if !w.emitChange(file) {
						return
					}
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func isBirthFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".toml") && !strings.HasPrefix(base, ".")
}

// emitChange reports the current state of file. It returns false if the
// watcher was stopped before the change could be delivered.
func (w *Watcher) emitChange(file string) bool {
	var c Change
	if _, err := os.Stat(file); os.IsNotExist(err) {
		c = Change{Kind: ChangeRemoved, File: file}
	} else if rec, err := Load(file); err != nil {
		c = Change{Kind: ChangeInvalid, File: file, Err: err}
	} else {
		c = Change{Kind: ChangeModified, File: file, Record: rec}
	}
	select {
	case w.changes <- c:
		return true
	case <-w.stop:
		return false
	}
}
