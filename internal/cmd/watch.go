package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fracta-app/fracta/internal/index"
	"github.com/fracta-app/fracta/internal/vfs"
)

// watchPollInterval is how often the watch command drains pending events
// and runs an incremental update, independent of the Watcher's own
// per-path debounce window.
const watchPollInterval = 1 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a Location and keep its cache incrementally up to date",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	loc, err := vfs.Open(filepath.Base(root), root)
	if err != nil {
		return fmt.Errorf("open location: %w", err)
	}

	ix, err := index.Open(filepath.Join(loc.FractaDir(), "cache"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer ix.Close()

	if _, err := ix.BuildFull(loc); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}
	log.Printf("watching %s (Ctrl+C to stop)", loc.Root)

	watcher, err := loc.StartWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			log.Println("stopping watcher")
			return nil
		case <-ticker.C:
			if !watcher.HasPendingEvents() {
				continue
			}
			events := watcher.DrainEvents()
			stats, err := ix.UpdateIncremental(loc)
			if err != nil {
				log.Printf("incremental update failed: %v", err)
				continue
			}
			log.Printf("%d change(s): reindexed %d markdown file(s), removed %d stale entries",
				len(events), stats.MarkdownIndexed, stats.StaleRemoved)
		}
	}
}
