package ops

import (
	"context"
	"fmt"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/marker"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

func registerMarkerOps(r *Registry) {
	r.register("get_timeline_markers", opGetTimelineMarkers)
	r.register("add_timeline_marker", opAddTimelineMarker)
	r.register("update_marker", opUpdateMarker)
	r.register("delete_marker", opDeleteMarker)
	r.register("delete_markers_by_color", opDeleteMarkersByColor)
}

func currentTimeline(ctx context.Context, d *Deps) (*resolve.Timeline, func(), error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	tl, err := project.CurrentTimeline(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	release := func() {
		tl.Release(ctx)
		cleanup()
	}
	return tl, release, nil
}

func opGetTimelineMarkers(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	markers, err := tl.Markers(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"markers": markers, "count": len(markers)}, nil
}

// markerFromParams builds a marker from request data and runs it
// through color normalization under the configured policy.
func markerFromParams(d *Deps, data map[string]any, defaultFrame int) (marker.Marker, error) {
	m := marker.Marker{}
	frame, err := optionalInt(data, "frame", defaultFrame)
	if err != nil {
		return m, err
	}
	m.Frame = frame
	if m.Color, err = optionalString(data, "color", ""); err != nil {
		return m, err
	}
	if m.Name, err = optionalString(data, "name", ""); err != nil {
		return m, err
	}
	if m.Note, err = optionalString(data, "note", ""); err != nil {
		return m, err
	}
	if m.Duration, err = optionalInt(data, "duration", 1); err != nil {
		return m, err
	}
	if m.CustomData, err = optionalString(data, "custom_data", ""); err != nil {
		return m, err
	}
	if err := m.Validate(d.ColorPolicy()); err != nil {
		return m, err
	}
	return m, nil
}

func opAddTimelineMarker(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.add_timeline_marker"
	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Without an explicit frame the marker lands at the timeline
	// start, which keeps it visible rather than at an arbitrary zero.
	start, err := tl.StartFrame(ctx)
	if err != nil {
		return nil, err
	}
	m, err := markerFromParams(d, data, start)
	if err != nil {
		return nil, err
	}

	ok, err := tl.AddMarker(ctx, m)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("AddMarker at frame %d returned false; the frame may be out of range or already occupied", m.Frame))
	}
	return map[string]any{"added": true, "marker": m}, nil
}

// opUpdateMarker replaces a marker in place. The vendor API has no
// update call, so the old marker is deleted and a merged one re-added.
// When the re-add fails after a successful delete the marker is lost,
// and the error says so explicitly.
func opUpdateMarker(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.update_marker"
	frame, err := intParam(data, "frame")
	if err != nil {
		return nil, err
	}

	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	markers, err := tl.Markers(ctx)
	if err != nil {
		return nil, err
	}
	var existing *marker.Marker
	for i := range markers {
		if markers[i].Frame == frame {
			existing = &markers[i]
			break
		}
	}
	if existing == nil {
		return nil, errors.NotFound(op, fmt.Sprintf("no marker at frame %d", frame))
	}

	updated := *existing
	if color, ok := data["color"]; ok {
		if updated.Color, err = asString(color, "color"); err != nil {
			return nil, err
		}
	}
	if name, ok := data["name"]; ok {
		if updated.Name, err = asString(name, "name"); err != nil {
			return nil, err
		}
	}
	if note, ok := data["note"]; ok {
		if updated.Note, err = asString(note, "note"); err != nil {
			return nil, err
		}
	}
	if dur, ok := data["duration"]; ok {
		if updated.Duration, err = coerceInt("duration", dur); err != nil {
			return nil, err
		}
	}
	if cd, ok := data["custom_data"]; ok {
		if updated.CustomData, err = asString(cd, "custom_data"); err != nil {
			return nil, err
		}
	}
	if err := updated.Validate(d.ColorPolicy()); err != nil {
		return nil, err
	}

	ok, err := tl.DeleteMarkerAtFrame(ctx, frame)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("DeleteMarkerAtFrame(%d) returned false", frame))
	}

	ok, err = tl.AddMarker(ctx, updated)
	if err == nil && ok {
		return map[string]any{"updated": true, "marker": updated}, nil
	}

	// Try to put the original back so the update at least fails clean.
	if restored, restoreErr := tl.AddMarker(ctx, *existing); restoreErr == nil && restored {
		if err != nil {
			return nil, errors.Wrap(err, errors.KindVendor, op, "re-adding the updated marker failed; the original marker was restored")
		}
		return nil, errors.Vendor(op, "re-adding the updated marker failed; the original marker was restored")
	}
	return nil, errors.Vendor(op, fmt.Sprintf("marker at frame %d was deleted but could not be re-added or restored; the marker is lost", frame))
}

func opDeleteMarker(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.delete_marker"
	frame, err := intParam(data, "frame")
	if err != nil {
		return nil, err
	}

	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := tl.DeleteMarkerAtFrame(ctx, frame)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound(op, fmt.Sprintf("no marker at frame %d", frame))
	}
	return map[string]any{"deleted": true, "frame": frame}, nil
}

func opDeleteMarkersByColor(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.delete_markers_by_color"
	color, err := stringParam(data, "color")
	if err != nil {
		return nil, err
	}
	// "All" wipes every marker regardless of color.
	if color != "All" && color != "all" {
		if color, err = marker.NormalizeColor(color, d.ColorPolicy()); err != nil {
			return nil, err
		}
	} else {
		color = "All"
	}

	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	before, err := tl.Markers(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := tl.DeleteMarkersByColor(ctx, color)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("DeleteMarkersByColor(%q) returned false", color))
	}

	after, err := tl.Markers(ctx)
	if err != nil {
		return map[string]any{"deleted": true, "color": color}, nil
	}
	return map[string]any{"deleted": true, "color": color, "removed": len(before) - len(after)}, nil
}
