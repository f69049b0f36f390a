//go:build linux
// +build linux

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// FileWatcher watches one RISC-V ELF file for rebuilds, using inotify
// directly the way the host project's Linux file watcher does for its own
// hot-reload support.
type FileWatcher struct {
	fd          int
	watchMap    map[int]string
	mu          sync.Mutex
	debounceMap map[string]*time.Timer
	onChange    func(string)
	verbose     bool
}

// NewFileWatcher opens an inotify instance that invokes onChange whenever a
// watched file is modified.
func NewFileWatcher(onChange func(string), verbose bool) (*FileWatcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("inotify_init failed: %v", err)
	}

	return &FileWatcher{
		fd:          fd,
		watchMap:    make(map[int]string),
		debounceMap: make(map[string]*time.Timer),
		onChange:    onChange,
		verbose:     verbose,
	}, nil
}

// AddFile starts watching path for write-completion and modify events.
func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	wd, err := unix.InotifyAddWatch(fw.fd, absPath, unix.IN_MODIFY|unix.IN_CLOSE_WRITE)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %v", absPath, err)
	}

	fw.mu.Lock()
	fw.watchMap[wd] = absPath
	fw.mu.Unlock()

	return nil
}

// Watch blocks, dispatching debounced onChange calls as events arrive.
func (fw *FileWatcher) Watch() {
	buf := make([]byte, unix.SizeofInotifyEvent*10)

	for {
		n, err := unix.Read(fw.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				time.Sleep(100 * time.Millisecond)
				continue
			}
			if fw.verbose {
				fmt.Fprintf(os.Stderr, "Error reading inotify events: %v\n", err)
			}
			continue
		}

		offset := 0
		for offset < n {
			event := (*unix.InotifyEvent)(unsafe.Pointer(&buf[offset]))
			offset += unix.SizeofInotifyEvent + int(event.Len)

			if event.Mask&(unix.IN_MODIFY|unix.IN_CLOSE_WRITE) != 0 {
				fw.mu.Lock()
				path := fw.watchMap[int(event.Wd)]
				fw.mu.Unlock()

				if path != "" {
					fw.debouncedCallback(path)
				}
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

// Close releases the underlying inotify file descriptor.
func (fw *FileWatcher) Close() error {
	return unix.Close(fw.fd)
}
