package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// SetupInterruptHandler returns a context cancelled on SIGINT/SIGTERM. A
// second signal exits immediately after removing unfinished temp files in
// dataDir.
func SetupInterruptHandler(parent context.Context, dataDir string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
			signal.Stop(sig)
			return
		}

		fmt.Println("\nInterrupt received. Finishing in-flight chapters...")
		cancel()

		<-sig
		CleanupUnfinishedTempFiles(dataDir)
		fmt.Println("\nExiting due to interrupt.")

		os.Exit(1)
	}()

	return ctx, func() {
		signal.Stop(sig)
		cancel()
	}
}

// CleanupUnfinishedTempFiles removes leftovers of interrupted atomic writes.
func CleanupUnfinishedTempFiles(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasSuffix(name, TempSuffix) {
			full := filepath.Join(dir, name)

			if err := os.Remove(full); err != nil {
				fmt.Printf("Error cleaning up %s: %v\n", full, err)
			} else {
				fmt.Printf("Removed %s\n", full)
			}
		}
	}
}
