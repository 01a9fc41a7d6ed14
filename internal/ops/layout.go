package ops

import (
	"context"
	"fmt"
	"os"

	"github.com/postflow/resolve-mcp/internal/errors"
)

func registerLayoutOps(r *Registry) {
	r.register("list_layout_presets", opListLayoutPresets)
	r.register("save_layout_preset", opSaveLayoutPreset)
	r.register("load_layout_preset", opLoadLayoutPreset)
	r.register("delete_layout_preset", opDeleteLayoutPreset)
}

func opListLayoutPresets(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	presets := d.Layout.List()
	return map[string]any{"presets": presets, "count": len(presets), "dir": d.Layout.Dir()}, nil
}

// opSaveLayoutPreset snapshots the current UI layout under a name and
// exports it to the preset directory so it outlives the application.
func opSaveLayoutPreset(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.save_layout_preset"
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	ok, err := d.Client.SaveLayoutPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SaveLayoutPreset(%q) returned false", name))
	}

	path := d.Layout.PresetPath(name)
	exported, err := d.Client.ExportLayoutPreset(ctx, name, path)
	if err != nil || !exported {
		// The preset still exists inside the application; only the
		// on-disk copy is missing.
		d.Logger.Warn("layout preset saved but not exported", "name", name, "error", err)
		return map[string]any{"saved": true, "exported": false, "name": name}, nil
	}

	preset, err := d.Layout.Record(name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"saved": true, "exported": true, "name": name, "file": preset.File}, nil
}

// opLoadLayoutPreset applies a preset, importing the exported file
// first when the application no longer knows the name.
func opLoadLayoutPreset(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.load_layout_preset"
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	loaded, err := d.Client.LoadLayoutPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	if loaded {
		return map[string]any{"loaded": true, "name": name}, nil
	}

	preset, ok := d.Layout.Get(name)
	if !ok {
		return nil, errors.NotFound(op, fmt.Sprintf("layout preset %q is not known to the application or the preset directory", name))
	}
	path := d.Layout.PresetPath(preset.Name)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NotFound(op, fmt.Sprintf("layout preset file %q is missing", preset.File))
	}
	imported, err := d.Client.ImportLayoutPreset(ctx, path, name)
	if err != nil {
		return nil, err
	}
	if !imported {
		return nil, errors.Vendor(op, fmt.Sprintf("ImportLayoutPreset(%q) returned false", name))
	}
	loaded, err = d.Client.LoadLayoutPreset(ctx, name)
	if err != nil {
		return nil, err
	}
	if !loaded {
		return nil, errors.Vendor(op, fmt.Sprintf("preset %q was imported but could not be loaded", name))
	}
	return map[string]any{"loaded": true, "name": name, "imported": true}, nil
}

func opDeleteLayoutPreset(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	// Best effort on the application side; the preset may only exist
	// on disk.
	vendorDeleted, vendorErr := d.Client.DeleteLayoutPreset(ctx, name)

	_, known := d.Layout.Get(name)
	if known {
		if err := d.Layout.Remove(name); err != nil {
			return nil, err
		}
	}
	if !known && (vendorErr != nil || !vendorDeleted) {
		if vendorErr != nil {
			return nil, vendorErr
		}
		return nil, errors.NotFound("ops.delete_layout_preset", fmt.Sprintf("layout preset %q not found", name))
	}
	return map[string]any{"deleted": true, "name": name}, nil
}
