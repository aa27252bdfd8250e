package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/marmos91/dittolist/internal/logger"
	"github.com/marmos91/dittolist/pkg/config"
	"github.com/marmos91/dittolist/pkg/listing"
	"github.com/spf13/cobra"
)

var (
	lsPage     int
	lsPageSize int
	lsJSON     bool
)

var lsCmd = &cobra.Command{
	Use:   "ls <path>",
	Short: "List a directory once and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().IntVar(&lsPage, "page", 1, "page number (large directories only)")
	lsCmd.Flags().IntVar(&lsPageSize, "page-size", 0, "entries per page (default: listing.default_page_size)")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "print the listing as JSON")
}

func runLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Keep stdout for the listing itself
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	if err := logger.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	pageSize := lsPageSize
	if pageSize == 0 {
		pageSize = cfg.Listing.DefaultPageSize
	}

	svc := config.CreateListingService(cfg, listing.NewFileResolver(), nil)
	result, err := svc.GetListing(cmd.Context(), path, lsPage, pageSize)
	if err != nil {
		return err
	}

	if lsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printListing(cmd.OutOrStdout(), result)
	return nil
}

// printListing writes one line per entry followed by a summary line.
func printListing(w io.Writer, l *listing.Listing) {
	dirColor := color.New(color.FgBlue, color.Bold)
	linkColor := color.New(color.FgCyan)

	for _, e := range l.Items {
		name := e.Name
		switch {
		case e.Type == listing.FileTypeDirectory:
			name = dirColor.Sprint(e.Name + "/")
		case hasAttribute(e, listing.AttrSymlink):
			name = linkColor.Sprint(e.Name)
		}

		size := "-"
		if e.Type == listing.FileTypeFile {
			size = humanize.IBytes(uint64(max(e.Size, 0)))
		}

		fmt.Fprintf(w, "%s  %9s  %s  %s\n",
			e.Permissions, size, e.Created.Format("2006-01-02 15:04"), name)
	}

	summary := fmt.Sprintf("%s entries", humanize.Comma(int64(l.TotalCount)))
	if l.TotalPages > 0 {
		summary += fmt.Sprintf(", page %d of %d", l.Page, l.TotalPages)
	}
	if l.Partial {
		summary += color.YellowString(" (partial: %s)", l.PartialReason)
	}
	fmt.Fprintln(w, summary)
}

func hasAttribute(e *listing.Entry, attr listing.Attribute) bool {
	for _, a := range e.Attributes {
		if a == attr {
			return true
		}
	}
	return false
}
