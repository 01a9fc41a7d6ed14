package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	return &Report{
		Timeline: "Scene 12 Cut",
		FPS:      24,
		Clips: []Clip{
			{
				Name:        "A001_C004.mov",
				Track:       "V1",
				TrackType:   "video",
				StartFrame:  0,
				EndFrame:    48,
				Duration:    48,
				SourceInTC:  "01:00:00:00",
				SourceOutTC: "01:00:02:00",
				FilePath:    "/media/A001_C004.mov",
			},
			{
				Name:       "vo_take3.wav",
				Track:      "A1",
				TrackType:  "audio",
				StartFrame: 0,
				EndFrame:   120,
				Duration:   120,
			},
			{
				Name:        "A001_C007.mov",
				Track:       "V1",
				TrackType:   "video",
				StartFrame:  48,
				EndFrame:    72,
				Duration:    24,
				SourceInTC:  "02:10:00:12",
				SourceOutTC: "02:10:01:12",
				FilePath:    "/media/A001_C007.mov",
			},
		},
	}
}

func TestSourceRange(t *testing.T) {
	in, out, err := SourceRange("01:00:00:00", 24, 48, 24)
	require.NoError(t, err)
	assert.Equal(t, "01:00:01:00", in)
	assert.Equal(t, "01:00:03:00", out)

	// No recorded start timecode counts from zero.
	in, out, err = SourceRange("", 10, 14, 24)
	require.NoError(t, err)
	assert.Equal(t, "00:00:00:10", in)
	assert.Equal(t, "00:00:01:00", out)

	_, _, err = SourceRange("garbage", 0, 10, 24)
	require.Error(t, err)

	_, _, err = SourceRange("00:00:00:00", 0, -1, 24)
	require.Error(t, err)
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleReport(), FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{
		"Name", "Track", "Timeline Start", "Timeline End",
		"Duration", "Source In TC", "Source Out TC", "File Path",
	}, records[0])

	assert.Equal(t, []string{
		"A001_C004.mov", "V1", "0", "48", "48",
		"01:00:00:00", "01:00:02:00", "/media/A001_C004.mov",
	}, records[1])

	// Missing source fields are empty strings, not omitted columns.
	assert.Equal(t, "vo_take3.wav", records[2][0])
	assert.Equal(t, "", records[2][5])
	assert.Equal(t, "", records[2][7])
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleReport(), FormatJSON))

	// Pretty-printed output.
	assert.Contains(t, buf.String(), "\n  \"timeline\"")

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Scene 12 Cut", decoded.Timeline)
	assert.Equal(t, 24.0, decoded.FPS)
	require.Len(t, decoded.Clips, 3)
	assert.Equal(t, "01:00:00:00", decoded.Clips[0].SourceInTC)
}

func TestExportEDL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, sampleReport(), FormatEDL))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "TITLE: Scene 12 Cut\n"))
	assert.Contains(t, out, "FCM: NON-DROP FRAME\n")

	// Audio clips are skipped, so events 001 and 002 are the two
	// video clips.
	assert.Contains(t, out, "001  AX       V     C        01:00:00:00 01:00:02:00 00:00:00:00 00:00:02:00")
	assert.Contains(t, out, "002  AX       V     C        02:10:00:12 02:10:01:12 00:00:02:00 00:00:03:00")
	assert.NotContains(t, out, "vo_take3.wav")

	assert.Contains(t, out, "* FROM CLIP NAME: A001_C004.mov\n")
	assert.Contains(t, out, "* SOURCE FILE: /media/A001_C007.mov\n")
}

// Record timecodes must reflect the timeline's real frame rate, not an
// assumed 24.
func TestExportEDLUsesReportFPS(t *testing.T) {
	r := &Report{
		Timeline: "30fps timeline",
		FPS:      30,
		Clips: []Clip{
			{
				Name:       "clip.mov",
				Track:      "V1",
				TrackType:  "video",
				StartFrame: 45,
				EndFrame:   90,
				Duration:   45,
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r, FormatEDL))
	out := buf.String()

	// Frame 45 at 30 fps is 1s15f; at 24 fps it would be 1s21f.
	assert.Contains(t, out, "00:00:01:15 00:00:03:00")
	assert.NotContains(t, out, "00:00:01:21")
}

func TestExportEDLRejectsInvalidFPS(t *testing.T) {
	r := sampleReport()
	r.FPS = 0
	err := Export(&bytes.Buffer{}, r, FormatEDL)
	require.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "CSV", "json", "edl", "EDL"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "report.csv")
	require.NoError(t, ExportFile(path, sampleReport()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Name,Track,"))

	err = ExportFile(filepath.Join(dir, "report.xml"), sampleReport())
	require.Error(t, err)
}
