package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SidecarWatcher tails an LFS progress file (the path handed to git through
// GIT_LFS_PROGRESS) and feeds every appended line through the transfer
// grammar. It exists for hosts that enable the progress-file variant instead
// of consuming the inline stderr form.
type SidecarWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	demux   *Demux
	offset  int64
	done    chan struct{}
}

// WatchSidecar starts tailing path, invoking onProgress for every parsed
// transfer event. The file does not need to exist yet; its directory does.
// Callbacks stop after Close returns.
func WatchSidecar(path string, onProgress func(Event)) (*SidecarWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	// Watch the parent directory so creation of the file itself is seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		closeErr := watcher.Close()
		if closeErr != nil {
			return nil, fmt.Errorf("watch %s: %w (close: %v)", path, err, closeErr)
		}
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &SidecarWatcher{
		path:    path,
		watcher: watcher,
		demux:   NewDemux(Handler{OnProgress: onProgress}),
		done:    make(chan struct{}),
	}

	// The file may already have content by the time the watch starts.
	w.drain()

	go w.run()
	return w, nil
}

func (w *SidecarWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.drain()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are not fatal to the invocation; the stream
			// simply stops producing events.
		}
	}
}

// drain reads everything appended since the last read and feeds it to the
// line demultiplexer.
func (w *SidecarWatcher) drain() {
	f, err := os.Open(w.path)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(w.offset, io.SeekStart); err != nil {
		return
	}
	data, err := io.ReadAll(f)
	if err != nil && len(data) == 0 {
		return
	}
	w.offset += int64(len(data))
	w.demux.Feed(data)
}

// Close stops the watcher, performs a final drain so a trailing write is not
// lost, and flushes any partial last line. No callbacks occur after Close
// returns.
func (w *SidecarWatcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	w.drain()
	w.demux.Close()
	return err
}
