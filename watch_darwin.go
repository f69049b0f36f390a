//go:build darwin
// +build darwin

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// FileWatcher watches one RISC-V ELF file for rebuilds, using kqueue the
// way the host project's Darwin file watcher does for its own hot-reload
// support.
type FileWatcher struct {
	kq          int
	watchMap    map[int]string
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	onChange    func(string)
	verbose     bool
}

// NewFileWatcher opens a kqueue instance that invokes onChange whenever a
// watched file is written or its attributes change.
func NewFileWatcher(onChange func(string), verbose bool) (*FileWatcher, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue failed: %v", err)
	}

	return &FileWatcher{
		kq:          kq,
		watchMap:    make(map[int]string),
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
		verbose:     verbose,
	}, nil
}

// AddFile starts watching path.
func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fd, err := unix.Open(absPath, unix.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s: %v", absPath, err)
	}

	event := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_VNODE,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
		Fflags: unix.NOTE_WRITE | unix.NOTE_ATTRIB,
	}

	_, err = unix.Kevent(fw.kq, []unix.Kevent_t{event}, nil, nil)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("failed to add kevent for %s: %v", absPath, err)
	}

	fw.mu.Lock()
	fw.watchMap[fd] = absPath
	fw.mu.Unlock()

	return nil
}

// Watch blocks, dispatching debounced onChange calls as events arrive.
func (fw *FileWatcher) Watch() {
	events := make([]unix.Kevent_t, 10)

	for {
		n, err := unix.Kevent(fw.kq, nil, events, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if fw.verbose {
				fmt.Fprintf(os.Stderr, "Error reading kevent: %v\n", err)
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Ident)

			fw.mu.Lock()
			path := fw.watchMap[fd]
			fw.mu.Unlock()

			if path != "" {
				fw.debouncedCallback(path)
			}
		}
	}
}

func (fw *FileWatcher) debouncedCallback(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, exists := fw.debounceMap[path]; exists {
		timer.Stop()
	}

	fw.debounceMap[path] = time.AfterFunc(500*time.Millisecond, func() {
		fw.onChange(path)
		fw.mu.Lock()
		delete(fw.debounceMap, path)
		fw.mu.Unlock()
	})
}

// Close releases the kqueue and every file descriptor it's watching.
func (fw *FileWatcher) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	for fd := range fw.watchMap {
		unix.Close(fd)
	}

	return unix.Close(fw.kq)
}
