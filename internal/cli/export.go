package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportPath   string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a source timecode report for the current timeline",
	Long: `Walk the current timeline and write a report of every clip with its
record and source timecode ranges.

The format is inferred from the file extension unless --format is set.
Supported formats: csv, json, edl.

Examples:
  # Write a CSV report
  resolve-mcp export --path report.csv

  # Force EDL output regardless of extension
  resolve-mcp export --path handoff.txt --format edl`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "path", "p", "", "output file path (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "report format: csv, json, or edl (default: from extension)")
	_ = exportCmd.MarkFlagRequired("path")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	slogger := slogLogger()
	registry, client, _, err := buildRegistry(slogger)
	if err != nil {
		return err
	}
	defer client.Close()

	data := map[string]any{"path": exportPath}
	if exportFormat != "" {
		data["format"] = exportFormat
	}
	result, err := registry.Dispatch(ctx, "export_source_timecode_report", data)
	if err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	fmt.Printf("%s %v clips written to %s\n",
		styles.Success.Render("exported:"), result["clips"], result["path"])
	return nil
}
