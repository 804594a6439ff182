package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/gsheets"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [class...]",
	Short: "Export attendance worksheets to CSV files",
	Long: `Export attendance ledgers to local CSV files, one file per class.
With no arguments every registered class is exported; classes without
any attendance rows are skipped.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", ".", "Directory to write CSV files into")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Google.SpreadsheetID == "" {
		return errors.New("SHEETS_SPREADSHEET_ID environment variable is required")
	}

	registry := store.NewClassRegistry(cfg.Store.RegistryPath)
	if err := registry.Load(); err != nil {
		return fmt.Errorf("loading class registry: %w", err)
	}

	classes := args
	if len(classes) == 0 {
		classes = registry.Names()
	}
	if len(classes) == 0 {
		return errors.New("no classes to export")
	}

	sheet, err := gsheets.NewLedger(cmd.Context(), cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID)
	if err != nil {
		return fmt.Errorf("initializing attendance ledger: %w", err)
	}

	outDir := mustGetString(cmd, "out")
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	bar := progressbar.NewOptions(len(classes),
		progressbar.OptionSetDescription("Exporting classes"),
		progressbar.OptionShowCount(),
	)

	exported := 0
	for _, name := range classes {
		class, err := registry.Resolve(name)
		if err != nil {
			return fmt.Errorf("unknown class %q", name)
		}

		events, err := sheet.Rows(cmd.Context(), class)
		if err != nil {
			return fmt.Errorf("reading worksheet %q: %w", class, err)
		}
		_ = bar.Add(1)
		if len(events) == 0 {
			continue
		}

		from, to := ledger.DayBounds(events)
		path := filepath.Join(outDir, ledger.ExportFilename(class, from, to))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := ledger.WriteCSV(f, events); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", path, err)
		}
		exported++
	}

	fmt.Printf("\nExported %d of %d classes to %s\n", exported, len(classes), outDir)
	return nil
}
