package timecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow/resolve-mcp/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		fps     float64
		want    Timecode
		wantErr bool
	}{
		{
			name:  "simple value",
			input: "01:02:03:04",
			fps:   24,
			want:  Timecode{Hours: 1, Minutes: 2, Seconds: 3, Frames: 4},
		},
		{
			name:  "zero",
			input: "00:00:00:00",
			fps:   24,
			want:  Timecode{},
		},
		{
			name:  "last frame of the second",
			input: "00:00:00:23",
			fps:   24,
			want:  Timecode{Frames: 23},
		},
		{
			name:  "fractional rate truncates",
			input: "00:00:01:22",
			fps:   23.976,
			want:  Timecode{Seconds: 1, Frames: 22},
		},
		{
			name:  "semicolon separator accepted",
			input: "00:01:00;10",
			fps:   30,
			want:  Timecode{Minutes: 1, Frames: 10},
		},
		{
			name:    "frame at fps is out of range",
			input:   "00:00:00:24",
			fps:     24,
			wantErr: true,
		},
		{
			name:    "frame at truncated fps is out of range",
			input:   "00:00:00:23",
			fps:     23.976,
			wantErr: true,
		},
		{
			name:    "minutes out of range",
			input:   "00:61:00:00",
			fps:     24,
			wantErr: true,
		},
		{
			name:    "seconds out of range",
			input:   "00:00:75:00",
			fps:     24,
			wantErr: true,
		},
		{
			name:    "garbage",
			input:   "not a timecode",
			fps:     24,
			wantErr: true,
		},
		{
			name:    "missing field",
			input:   "01:02:03",
			fps:     24,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			fps:     24,
			wantErr: true,
		},
		{
			name:    "zero fps",
			input:   "00:00:00:00",
			fps:     0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.fps)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToFrames(t *testing.T) {
	tests := []struct {
		input string
		fps   float64
		want  int
	}{
		{"00:00:00:00", 24, 0},
		{"00:00:01:00", 24, 24},
		{"00:01:00:00", 24, 1440},
		{"01:00:00:00", 24, 86400},
		{"01:02:03:04", 24, (1*3600+2*60+3)*24 + 4},
		{"00:00:10:05", 30, 305},
		{"00:00:01:00", 23.976, 23},
	}

	for _, tt := range tests {
		got, err := ToFrames(tt.input, tt.fps)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		frames int
		fps    float64
		want   string
	}{
		{0, 24, "00:00:00:00"},
		{23, 24, "00:00:00:23"},
		{24, 24, "00:00:01:00"},
		{86400, 24, "01:00:00:00"},
		{305, 30, "00:00:10:05"},
	}

	for _, tt := range tests {
		got, err := Format(tt.frames, tt.fps)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Format(-1, 24)
	require.Error(t, err)
}

// Format and ToFrames must round-trip for every frame of a full day.
func TestRoundTrip(t *testing.T) {
	for _, fps := range []float64{24, 30} {
		rate := int(fps)
		for frames := 0; frames < rate*86400; frames += 7 {
			s, err := Format(frames, fps)
			require.NoError(t, err)
			back, err := ToFrames(s, fps)
			require.NoError(t, err)
			if back != frames {
				t.Fatalf("round trip failed at %d (%s) fps=%g: got %d", frames, s, fps, back)
			}
		}
	}
}

func TestAddFrames(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		offset  int
		fps     float64
		want    string
		wantErr bool
	}{
		{name: "add within a second", input: "00:00:00:00", offset: 10, fps: 24, want: "00:00:00:10"},
		{name: "carry into seconds", input: "00:00:00:20", offset: 10, fps: 24, want: "00:00:01:06"},
		{name: "carry into minutes", input: "00:00:59:23", offset: 1, fps: 24, want: "00:01:00:00"},
		{name: "negative offset", input: "00:00:01:00", offset: -1, fps: 24, want: "00:00:00:23"},
		{name: "zero offset", input: "01:02:03:04", offset: 0, fps: 24, want: "01:02:03:04"},
		{name: "below zero", input: "00:00:00:05", offset: -6, fps: 24, wantErr: true},
		{name: "malformed base", input: "bogus", offset: 1, fps: 24, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddFrames(tt.input, tt.offset, tt.fps)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
