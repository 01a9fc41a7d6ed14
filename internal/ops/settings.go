package ops

import (
	"context"
	"fmt"

	"github.com/postflow/resolve-mcp/internal/errors"
)

func registerSettingsOps(r *Registry) {
	r.register("get_project_setting", opGetProjectSetting)
	r.register("set_project_setting", opSetProjectSetting)
	r.register("get_timeline_setting", opGetTimelineSetting)
	r.register("set_timeline_setting", opSetTimelineSetting)
}

func opGetProjectSetting(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	key, err := optionalString(data, "key", "")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	// Without a key the whole settings table comes back.
	if key == "" {
		settings, err := project.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"settings": settings}, nil
	}
	value, err := project.Setting(ctx, key)
	if err != nil {
		return nil, err
	}
	return map[string]any{"key": key, "value": value}, nil
}

func opSetProjectSetting(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_project_setting"
	key, err := stringParam(data, "key")
	if err != nil {
		return nil, err
	}
	value, err := settingValueParam(data)
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := project.SetSetting(ctx, key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetSetting(%q, %q) returned false; the key may be unknown or the value rejected", key, value))
	}
	return map[string]any{"set": true, "key": key, "value": value}, nil
}

func opGetTimelineSetting(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	key, err := optionalString(data, "key", "")
	if err != nil {
		return nil, err
	}

	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if key == "" {
		settings, err := tl.Settings(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"settings": settings}, nil
	}
	value, err := tl.Setting(ctx, key)
	if err != nil {
		return nil, err
	}
	return map[string]any{"key": key, "value": value}, nil
}

func opSetTimelineSetting(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_timeline_setting"
	key, err := stringParam(data, "key")
	if err != nil {
		return nil, err
	}
	value, err := settingValueParam(data)
	if err != nil {
		return nil, err
	}

	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := tl.SetSetting(ctx, key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetSetting(%q, %q) returned false; the key may be unknown or the value rejected", key, value))
	}
	return map[string]any{"set": true, "key": key, "value": value}, nil
}

// settingValueParam accepts strings, numbers and booleans and renders
// them in the string form the vendor settings table expects.
func settingValueParam(data map[string]any) (string, error) {
	v, ok := data["value"]
	if !ok {
		return "", errors.Validation("ops.params", `missing required parameter "value"`)
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case bool:
		if t {
			return "1", nil
		}
		return "0", nil
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), nil
		}
		return fmt.Sprintf("%g", t), nil
	case int:
		return fmt.Sprintf("%d", t), nil
	default:
		return "", errors.Validation("ops.params", `parameter "value" must be a string, number or boolean`)
	}
}
