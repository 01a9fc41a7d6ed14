package ops

import (
	"context"

	"github.com/postflow/resolve-mcp/internal/resolve"
)

func registerProjectOps(r *Registry) {
	r.register("get_projects", opGetProjects)
	r.register("get_project_info", opGetProjectInfo)
	r.register("create_project", opCreateProject)
	r.register("open_project", opOpenProject)
	r.register("save_project", opSaveProject)
	r.register("get_api_capabilities", opGetAPICapabilities)
}

func opGetProjects(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	pm, err := d.Client.ProjectManager(ctx)
	if err != nil {
		return nil, err
	}
	defer pm.Release(ctx)

	names, err := pm.ProjectNames(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"projects": names}, nil
}

func opGetProjectInfo(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	pm, err := d.Client.ProjectManager(ctx)
	if err != nil {
		return nil, err
	}
	defer pm.Release(ctx)

	project, err := pm.CurrentProject(ctx)
	if err != nil {
		return nil, err
	}
	defer project.Release(ctx)

	name, err := project.Name(ctx)
	if err != nil {
		return nil, err
	}
	count, err := project.TimelineCount(ctx)
	if err != nil {
		return nil, err
	}

	timelines := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		tl, err := project.TimelineByIndex(ctx, i)
		if err != nil {
			continue
		}
		tlName, err := tl.Name(ctx)
		tl.Release(ctx)
		if err != nil {
			continue
		}
		timelines = append(timelines, tlName)
	}

	info := map[string]any{
		"name":           name,
		"timeline_count": count,
		"timelines":      timelines,
	}
	if tl, err := project.CurrentTimeline(ctx); err == nil {
		if tlName, err := tl.Name(ctx); err == nil {
			info["current_timeline"] = tlName
		}
		tl.Release(ctx)
	}
	return info, nil
}

func opCreateProject(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	pm, err := d.Client.ProjectManager(ctx)
	if err != nil {
		return nil, err
	}
	defer pm.Release(ctx)

	project, err := pm.CreateProject(ctx, name)
	if err != nil {
		return nil, err
	}
	project.Release(ctx)
	return map[string]any{"created": true, "name": name}, nil
}

func opOpenProject(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	pm, err := d.Client.ProjectManager(ctx)
	if err != nil {
		return nil, err
	}
	defer pm.Release(ctx)

	project, err := pm.LoadProject(ctx, name)
	if err != nil {
		return nil, err
	}
	project.Release(ctx)
	return map[string]any{"opened": true, "name": name}, nil
}

func opSaveProject(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	pm, err := d.Client.ProjectManager(ctx)
	if err != nil {
		return nil, err
	}
	defer pm.Release(ctx)

	saved, err := pm.SaveProject(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"saved": saved}, nil
}

func opGetAPICapabilities(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	// Connect on demand so a cold adapter still answers with a real
	// probe instead of a zero struct.
	connectErr := d.Client.Connect(ctx)

	result := map[string]any{
		"api_capabilities": d.Client.Capabilities(),
		"state":            string(d.Client.State()),
	}
	if v := d.Client.Version(); v != "" {
		result["resolve_version"] = v
	}
	if connectErr != nil && d.Client.State() != resolve.StateConnected {
		result["connect_error"] = connectErr.Error()
	}
	return result, nil
}
