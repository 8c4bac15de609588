package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/impact-tracker/internal/core"
	"github.com/JonMunkholm/impact-tracker/internal/source"
)

type importOptions struct {
	file   string
	sheet  string
	dryRun bool
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import every row of an Excel workbook or CSV file",
		Long: "Reads the whole file, cleans each row and upserts it by row hash.\n" +
			"Re-importing the same file does not create duplicates.",
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := fileSource(opts.file, opts.sheet)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			app, _, err := openApp(ctx, root)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Service.Import(ctx, src, opts.dryRun)
			if err != nil {
				return fmt.Errorf("import %s: %w", opts.file, err)
			}

			out := cmd.OutOrStdout()
			printImportReport(out, report)
			if opts.dryRun {
				return nil
			}

			m, err := app.Service.Metrics(ctx, core.FilterState{})
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}
			printOverall(out, m.Overall)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "Path to a .xlsx or .csv file (required)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "Tracker", "Worksheet to read from a workbook")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Clean and count rows without writing them")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one incremental sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cfg, err := openApp(ctx, root)
			if err != nil {
				return err
			}
			defer app.Close()

			if name == "" {
				name = cfg.Sync.Source
			}

			result, err := app.Service.Sync(ctx, name, core.TriggerCLI)
			if err != nil {
				return fmt.Errorf("sync %s: %w", name, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Message)
			if result.Stats != nil {
				printSyncStats(out, *result.Stats)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "source", "", "Source to sync (default: SYNC_SOURCE)")
	return cmd
}

func newSeedAssetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed-assets",
		Short: "Insert a default asset for every sub-project that has none",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, _, err := openApp(ctx, root)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Service.SeedAssets(ctx)
			if err != nil {
				return fmt.Errorf("seed assets: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sub-projects: %d\n", report.Total)
			fmt.Fprintf(out, "Inserted:     %d\n", len(report.Inserted))
			fmt.Fprintf(out, "Skipped:      %d\n", len(report.Skipped))
			for _, sub := range report.Inserted {
				fmt.Fprintf(out, "  + %s\n", sub)
			}
			return nil
		},
	}
}

// fileSource picks the reader for path by its extension.
func fileSource(path, sheet string) (source.Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return source.NewExcel(path, sheet), nil
	case ".csv":
		return source.NewCSV(path), nil
	case "":
		return nil, fmt.Errorf("--file %q has no extension", path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

func printImportReport(w io.Writer, r core.ImportReport) {
	if r.DryRun {
		fmt.Fprintln(w, "Dry run: nothing was written")
	}
	fmt.Fprintf(w, "Processed:          %d\n", r.Processed)
	fmt.Fprintf(w, "Imported:           %d\n", r.Imported)
	fmt.Fprintf(w, "Errors:             %d\n", r.Errors)
	fmt.Fprintf(w, "Unparseable dates:  %d (%.1f%%)\n", r.UnparseableDates, r.UnparseableDateRate())
	if len(r.UnknownColumns) > 0 {
		fmt.Fprintf(w, "Ignored columns:    %s\n", strings.Join(r.UnknownColumns, ", "))
	}
	fmt.Fprintf(w, "Duration:           %s\n", r.Duration.Round(time.Millisecond))
}

func printOverall(w io.Writer, o core.OverallMetrics) {
	fmt.Fprintln(w, "\nSummary")
	fmt.Fprintf(w, "  Records:        %d\n", o.TotalRecords)
	fmt.Fprintf(w, "  Beneficiaries:  %.0f\n", o.TotalBeneficiaries)
	fmt.Fprintf(w, "  Amount:         %.2f\n", o.TotalAmount)
	fmt.Fprintf(w, "  Quantity:       %.0f\n", o.TotalQuantity)
	fmt.Fprintf(w, "  Projects:       %d\n", o.UniqueProjects)
	fmt.Fprintf(w, "  Sub-projects:   %d\n", o.UniqueSubProjects)
	fmt.Fprintf(w, "  Causes:         %d\n", o.UniqueCauses)
}

func printSyncStats(w io.Writer, s core.SyncStats) {
	fmt.Fprintf(w, "Rows in sheet:  %d\n", s.TotalRowsInSheet)
	fmt.Fprintf(w, "Last synced:    %d\n", s.LastSyncedCount)
	fmt.Fprintf(w, "New rows:       %d\n", s.NewRowsFetched)
	fmt.Fprintf(w, "Synced:         %d\n", s.RowsSynced)
	fmt.Fprintf(w, "Errors:         %d\n", s.Errors)
}
