package main

import (
	"fmt"
	"os"
)

// cmdWatch re-runs cmdTranspile every time elfPath changes on disk, using
// the platform-specific FileWatcher (inotify on Linux, kqueue on Darwin).
func cmdWatch(ctx *CommandContext, elfPath string) error {
	rebuild := func(path string) {
		if err := cmdTranspile(ctx, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "rebuilt %s\n", path)
	}

	fw, err := NewFileWatcher(rebuild, ctx.Verbose)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.AddFile(elfPath); err != nil {
		return err
	}

	rebuild(elfPath)
	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", elfPath)
	fw.Watch()
	return nil
}
