// Package report builds and exports source timecode reports for a
// timeline. A report row pairs each clip's timeline position with the
// source timecode range it came from in the original media.
package report

import (
	"fmt"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/timecode"
)

// Clip is one row of a source timecode report.
type Clip struct {
	Name        string `json:"name"`
	Track       string `json:"track"`
	TrackType   string `json:"track_type"`
	StartFrame  int    `json:"start_frame"`
	EndFrame    int    `json:"end_frame"`
	Duration    int    `json:"duration"`
	SourceInTC  string `json:"source_in_tc,omitempty"`
	SourceOutTC string `json:"source_out_tc,omitempty"`
	FilePath    string `json:"file_path,omitempty"`
}

// Report is the full source timecode report for one timeline.
type Report struct {
	Timeline string  `json:"timeline"`
	FPS      float64 `json:"fps"`
	Clips    []Clip  `json:"clips"`
}

// SourceRange composes a clip's source in/out timecodes from the
// media's recorded start timecode, the clip's offset into the media,
// and the clip duration. A media item with no recorded start timecode
// counts from zero.
func SourceRange(mediaStartTC string, leftOffset, duration int, fps float64) (in, out string, err error) {
	const op = "report.SourceRange"
	if mediaStartTC == "" {
		mediaStartTC = "00:00:00:00"
	}
	if duration < 0 {
		return "", "", errors.Validation(op, fmt.Sprintf("negative duration %d", duration))
	}
	in, err = timecode.AddFrames(mediaStartTC, leftOffset, fps)
	if err != nil {
		return "", "", errors.Wrap(err, errors.KindValidation, op, "composing source in point")
	}
	out, err = timecode.AddFrames(in, duration, fps)
	if err != nil {
		return "", "", errors.Wrap(err, errors.KindValidation, op, "composing source out point")
	}
	return in, out, nil
}
