package marker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postflow/resolve-mcp/internal/errors"
)

func TestColorsPalette(t *testing.T) {
	colors := Colors()
	assert.Len(t, colors, 16)
	assert.Contains(t, colors, "Blue")
	assert.Contains(t, colors, "Cocoa")
	assert.Contains(t, colors, "Fuchsia")
	// Sorted output feeds error messages and the capabilities payload.
	for i := 1; i < len(colors); i++ {
		assert.Less(t, colors[i-1], colors[i])
	}
}

func TestNormalizeColor(t *testing.T) {
	tests := []struct {
		name    string
		color   string
		policy  ColorPolicy
		want    string
		wantErr bool
	}{
		{name: "exact", color: "Blue", policy: PolicyReject, want: "Blue"},
		{name: "lowercase", color: "cyan", policy: PolicyReject, want: "Cyan"},
		{name: "uppercase", color: "RED", policy: PolicyReject, want: "Red"},
		{name: "mixed case", color: "lAvEnDeR", policy: PolicyReject, want: "Lavender"},
		{name: "empty defaults", color: "", policy: PolicyReject, want: "Blue"},
		{name: "unknown rejected", color: "Magenta", policy: PolicyReject, wantErr: true},
		{name: "unknown defaulted", color: "Magenta", policy: PolicyDefault, want: "Blue"},
		{name: "garbage defaulted", color: "###", policy: PolicyDefault, want: "Blue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeColor(tt.color, tt.policy)
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

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)

	p, err = ParsePolicy("Default")
	require.NoError(t, err)
	assert.Equal(t, PolicyDefault, p)

	_, err = ParsePolicy("lenient")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		marker  Marker
		policy  ColorPolicy
		wantErr bool
	}{
		{
			name:   "valid",
			marker: Marker{Frame: 100, Color: "green", Name: "review", Duration: 1},
			policy: PolicyReject,
		},
		{
			name:    "negative frame",
			marker:  Marker{Frame: -1, Color: "Blue", Duration: 1},
			policy:  PolicyReject,
			wantErr: true,
		},
		{
			name:    "zero duration",
			marker:  Marker{Frame: 0, Color: "Blue", Duration: 0},
			policy:  PolicyReject,
			wantErr: true,
		},
		{
			name:    "bad color rejected",
			marker:  Marker{Frame: 0, Color: "neon", Duration: 1},
			policy:  PolicyReject,
			wantErr: true,
		},
		{
			name:   "bad color defaulted",
			marker: Marker{Frame: 0, Color: "neon", Duration: 1},
			policy: PolicyDefault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.marker.Validate(tt.policy)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateNormalizesColorInPlace(t *testing.T) {
	m := Marker{Frame: 10, Color: "sky", Duration: 2}
	require.NoError(t, m.Validate(PolicyReject))
	assert.Equal(t, "Sky", m.Color)

	m = Marker{Frame: 10, Color: "nope", Duration: 2}
	require.NoError(t, m.Validate(PolicyDefault))
	assert.Equal(t, "Blue", m.Color)
}
