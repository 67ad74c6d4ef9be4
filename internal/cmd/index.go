package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fracta-app/fracta/internal/index"
	"github.com/fracta-app/fracta/internal/vfs"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh a Location's metadata and search cache",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build <path>",
	Short: "Rebuild the cache from scratch",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexBuild,
}

var indexUpdateCmd = &cobra.Command{
	Use:   "update <path>",
	Short: "Refresh only files changed since the last build",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexUpdate,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexUpdateCmd)
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	return withLocationIndex(args[0], func(loc *vfs.Location, ix *index.Index) error {
		stats, err := ix.BuildFull(loc)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		printBuildStats(stats)
		return nil
	})
}

func runIndexUpdate(cmd *cobra.Command, args []string) error {
	return withLocationIndex(args[0], func(loc *vfs.Location, ix *index.Index) error {
		stats, err := ix.UpdateIncremental(loc)
		if err != nil {
			return fmt.Errorf("update index: %w", err)
		}
		printBuildStats(stats)
		return nil
	})
}

func printBuildStats(stats index.BuildStats) {
	fmt.Printf("scanned %s, indexed %s markdown, updated %s metadata, removed %s stale, in %s\n",
		humanize.Comma(int64(stats.FilesScanned)),
		humanize.Comma(int64(stats.MarkdownIndexed)),
		humanize.Comma(int64(stats.MetadataUpdated)),
		humanize.Comma(int64(stats.StaleRemoved)),
		stats.Duration.Round(time.Millisecond),
	)
}

// withLocationIndex opens root as a Location and its cache, runs fn, and
// always closes the cache afterward.
func withLocationIndex(path string, fn func(*vfs.Location, *index.Index) error) error {
	root, err := filepath.Abs(path)
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

	return fn(loc, ix)
}
