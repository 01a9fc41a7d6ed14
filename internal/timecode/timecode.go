// Package timecode implements non-drop-frame SMPTE timecode arithmetic.
//
// All conversions truncate the frame rate to its integer part, so 23.976
// behaves as 23 and 29.97 as 29. Drop-frame rates are not modeled.
package timecode

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/postflow/resolve-mcp/internal/errors"
)

// Timecode is a parsed "HH:MM:SS:FF" value. Frames is always in
// [0, floor(fps)) for a Timecode produced by this package.
type Timecode struct {
	Hours   int
	Minutes int
	Seconds int
	Frames  int
}

var tcPattern = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[:;](\d{2})$`)

// Parse parses an "HH:MM:SS:FF" string against the given frame rate.
// A semicolon frame separator is accepted on input but the value is
// still treated as non-drop-frame. Malformed input or a field out of
// range is an explicit error, never a zero value.
func Parse(s string, fps float64) (Timecode, error) {
	const op = "timecode.Parse"
	if fps < 1 {
		return Timecode{}, errors.Validation(op, fmt.Sprintf("invalid frame rate %g", fps))
	}
	m := tcPattern.FindStringSubmatch(s)
	if m == nil {
		return Timecode{}, errors.Validation(op, fmt.Sprintf("malformed timecode %q, want HH:MM:SS:FF", s))
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	f, _ := strconv.Atoi(m[4])

	if mi > 59 || sec > 59 {
		return Timecode{}, errors.Validation(op, fmt.Sprintf("timecode %q has minutes or seconds out of range", s))
	}
	if f >= int(fps) {
		return Timecode{}, errors.Validation(op, fmt.Sprintf("timecode %q has frame %d out of range for %g fps", s, f, fps))
	}
	return Timecode{Hours: h, Minutes: mi, Seconds: sec, Frames: f}, nil
}

// String formats the timecode as zero-padded "HH:MM:SS:FF".
func (t Timecode) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds, t.Frames)
}

// ToFrames converts the timecode to an absolute frame count at fps.
func (t Timecode) ToFrames(fps float64) int {
	rate := int(fps)
	return (t.Hours*3600+t.Minutes*60+t.Seconds)*rate + t.Frames
}

// FromFrames converts an absolute frame count to a Timecode at fps.
func FromFrames(frames int, fps float64) (Timecode, error) {
	const op = "timecode.FromFrames"
	if fps < 1 {
		return Timecode{}, errors.Validation(op, fmt.Sprintf("invalid frame rate %g", fps))
	}
	if frames < 0 {
		return Timecode{}, errors.Validation(op, fmt.Sprintf("negative frame count %d", frames))
	}
	rate := int(fps)
	f := frames % rate
	totalSeconds := frames / rate
	return Timecode{
		Hours:   totalSeconds / 3600,
		Minutes: (totalSeconds % 3600) / 60,
		Seconds: totalSeconds % 60,
		Frames:  f,
	}, nil
}

// ToFrames is a convenience for Parse followed by Timecode.ToFrames.
func ToFrames(s string, fps float64) (int, error) {
	tc, err := Parse(s, fps)
	if err != nil {
		return 0, err
	}
	return tc.ToFrames(fps), nil
}

// Format formats an absolute frame count as "HH:MM:SS:FF" at fps.
func Format(frames int, fps float64) (string, error) {
	tc, err := FromFrames(frames, fps)
	if err != nil {
		return "", err
	}
	return tc.String(), nil
}

// AddFrames offsets a timecode string by a frame count. The offset may
// be negative as long as the result does not go below zero.
func AddFrames(s string, offset int, fps float64) (string, error) {
	base, err := ToFrames(s, fps)
	if err != nil {
		return "", err
	}
	total := base + offset
	if total < 0 {
		return "", errors.Validation("timecode.AddFrames",
			fmt.Sprintf("offset %d moves %s before zero", offset, s))
	}
	return Format(total, fps)
}
