// Package marker defines the timeline marker model and the color
// palette the application accepts.
package marker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
)

// Marker is a timeline marker keyed by its frame position. At most one
// marker can exist per frame.
type Marker struct {
	Frame      int    `json:"frame"`
	Color      string `json:"color"`
	Name       string `json:"name"`
	Note       string `json:"note"`
	Duration   int    `json:"duration"`
	CustomData string `json:"custom_data,omitempty"`
}

// DefaultColor is used when no color is given, and as the fallback
// under PolicyDefault.
const DefaultColor = "Blue"

// palette is the fixed set of colors the application recognizes.
var palette = map[string]struct{}{
	"Blue": {}, "Cyan": {}, "Green": {}, "Yellow": {},
	"Red": {}, "Pink": {}, "Purple": {}, "Fuchsia": {},
	"Rose": {}, "Lavender": {}, "Sky": {}, "Mint": {},
	"Lemon": {}, "Sand": {}, "Cocoa": {}, "Cream": {},
}

// Colors returns the palette in sorted order.
func Colors() []string {
	out := make([]string, 0, len(palette))
	for c := range palette {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ColorPolicy decides what happens to a color outside the palette.
type ColorPolicy string

const (
	// PolicyReject turns an unknown color into a validation error.
	PolicyReject ColorPolicy = "reject"
	// PolicyDefault silently substitutes DefaultColor.
	PolicyDefault ColorPolicy = "default"
)

// ParsePolicy converts a config string into a ColorPolicy.
func ParsePolicy(s string) (ColorPolicy, error) {
	switch ColorPolicy(strings.ToLower(s)) {
	case PolicyReject:
		return PolicyReject, nil
	case PolicyDefault:
		return PolicyDefault, nil
	default:
		return "", errors.Validation("marker.ParsePolicy",
			fmt.Sprintf("unknown color policy %q, want reject or default", s))
	}
}

// NormalizeColor canonicalizes a color name ("cyan" -> "Cyan") and
// resolves it against the palette under the given policy. An empty
// color always resolves to DefaultColor.
func NormalizeColor(color string, policy ColorPolicy) (string, error) {
	if color == "" {
		return DefaultColor, nil
	}
	c := capitalize(color)
	if _, ok := palette[c]; ok {
		return c, nil
	}
	if policy == PolicyDefault {
		return DefaultColor, nil
	}
	return "", errors.Validation("marker.NormalizeColor",
		fmt.Sprintf("unknown marker color %q, valid colors: %s", color, strings.Join(Colors(), ", ")))
}

// Validate checks marker fields, normalizing the color in place.
func (m *Marker) Validate(policy ColorPolicy) error {
	const op = "marker.Validate"
	if m.Frame < 0 {
		return errors.Validation(op, fmt.Sprintf("negative frame %d", m.Frame))
	}
	if m.Duration < 1 {
		return errors.Validation(op, fmt.Sprintf("duration %d, must be at least 1 frame", m.Duration))
	}
	color, err := NormalizeColor(m.Color, policy)
	if err != nil {
		return err
	}
	m.Color = color
	return nil
}

// capitalize uppercases the first byte and lowercases the rest, which
// is how color names arriving as "RED" or "red" are canonicalized.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
