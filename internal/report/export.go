package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/timecode"
)

// Format is an export format for a source timecode report.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatEDL  Format = "edl"
)

// ParseFormat converts a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatEDL:
		return FormatEDL, nil
	default:
		return "", errors.Validation("report.ParseFormat",
			fmt.Sprintf("unknown export format %q, want csv, json or edl", s))
	}
}

// csvHeader is the fixed column set consumers of the CSV export rely on.
var csvHeader = []string{
	"Name", "Track", "Timeline Start", "Timeline End",
	"Duration", "Source In TC", "Source Out TC", "File Path",
}

// Export writes the report to w in the given format.
func Export(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatCSV:
		return exportCSV(w, r)
	case FormatJSON:
		return exportJSON(w, r)
	case FormatEDL:
		return exportEDL(w, r)
	default:
		return errors.Validation("report.Export", fmt.Sprintf("unknown export format %q", format))
	}
}

// ExportFile writes the report to path, inferring the format from the
// file extension.
func ExportFile(path string, r *Report) error {
	const op = "report.ExportFile"
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	format, err := ParseFormat(ext)
	if err != nil {
		return errors.Validation(op, fmt.Sprintf("cannot infer format from %q", path))
	}
	return ExportToPath(path, r, format)
}

// ExportToPath writes the report to path in an explicit format.
func ExportToPath(path string, r *Report, format Format) error {
	const op = "report.ExportToPath"
	f, err := os.Create(path)
	if err != nil {
		return errors.IOWrap(err, op, "creating export file")
	}
	defer f.Close()
	if err := Export(f, r, format); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return errors.IOWrap(err, op, "closing export file")
	}
	return nil
}

func exportCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.IOWrap(err, "report.exportCSV", "writing header")
	}
	for _, c := range r.Clips {
		row := []string{
			c.Name,
			c.Track,
			strconv.Itoa(c.StartFrame),
			strconv.Itoa(c.EndFrame),
			strconv.Itoa(c.Duration),
			c.SourceInTC,
			c.SourceOutTC,
			c.FilePath,
		}
		if err := cw.Write(row); err != nil {
			return errors.IOWrap(err, "report.exportCSV", "writing row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.IOWrap(err, "report.exportCSV", "flushing output")
	}
	return nil
}

func exportJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return errors.IOWrap(err, "report.exportJSON", "encoding report")
	}
	return nil
}

// exportEDL writes a CMX3600-style edit decision list. Only video
// events are listed. Record timecodes are derived from the timeline
// frame positions at the report's own frame rate.
func exportEDL(w io.Writer, r *Report) error {
	const op = "report.exportEDL"
	fps := r.FPS
	if fps < 1 {
		return errors.Validation(op, fmt.Sprintf("report has invalid fps %g", fps))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", r.Timeline)
	b.WriteString("FCM: NON-DROP FRAME\n\n")

	event := 0
	for _, c := range r.Clips {
		if !strings.EqualFold(c.TrackType, "video") {
			continue
		}
		event++

		recIn, err := timecode.Format(c.StartFrame, fps)
		if err != nil {
			return errors.Wrap(err, errors.KindValidation, op, fmt.Sprintf("record in for clip %q", c.Name))
		}
		recOut, err := timecode.Format(c.EndFrame, fps)
		if err != nil {
			return errors.Wrap(err, errors.KindValidation, op, fmt.Sprintf("record out for clip %q", c.Name))
		}
		srcIn := c.SourceInTC
		if srcIn == "" {
			srcIn = recIn
		}
		srcOut := c.SourceOutTC
		if srcOut == "" {
			srcOut = recOut
		}

		fmt.Fprintf(&b, "%03d  AX       V     C        %s %s %s %s\n", event, srcIn, srcOut, recIn, recOut)
		fmt.Fprintf(&b, "* FROM CLIP NAME: %s\n", c.Name)
		if c.FilePath != "" {
			fmt.Fprintf(&b, "* SOURCE FILE: %s\n", c.FilePath)
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.IOWrap(err, op, "writing output")
	}
	return nil
}
