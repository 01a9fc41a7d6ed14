package ops

import (
	"context"
	"fmt"

	"github.com/postflow/resolve-mcp/internal/errors"
)

func registerRenderOps(r *Registry) {
	r.register("get_render_presets", opGetRenderPresets)
	r.register("get_render_formats", opGetRenderFormats)
	r.register("get_render_codecs", opGetRenderCodecs)
	r.register("get_render_jobs", opGetRenderJobs)
	r.register("add_render_job", opAddRenderJob)
	r.register("render_project", opRenderProject)
	r.register("delete_render_job", opDeleteRenderJob)
	r.register("start_rendering", opStartRendering)
	r.register("stop_rendering", opStopRendering)
	r.register("get_render_job_status", opGetRenderJobStatus)
}

func opGetRenderPresets(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	presets, err := project.RenderPresets(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"presets": presets, "count": len(presets)}, nil
}

func opGetRenderFormats(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	formats, err := project.RenderFormats(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"formats": formats}, nil
}

func opGetRenderCodecs(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	format, err := stringParam(data, "format")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	codecs, err := project.RenderCodecs(ctx, format)
	if err != nil {
		return nil, err
	}
	return map[string]any{"format": format, "codecs": codecs}, nil
}

func opGetRenderJobs(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	jobs, err := project.RenderJobs(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"jobs": jobs, "count": len(jobs)}, nil
}

// opAddRenderJob queues the current timeline for render. An optional
// preset is loaded first, then explicit settings override it. The
// target directory falls back to the configured default.
func opAddRenderJob(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.add_render_job"
	preset, err := optionalString(data, "preset", "")
	if err != nil {
		return nil, err
	}
	targetDir, err := optionalString(data, "target_dir", d.Config.Render.TargetDir)
	if err != nil {
		return nil, err
	}
	customName, err := optionalString(data, "custom_name", "")
	if err != nil {
		return nil, err
	}
	settings := map[string]any{}
	if _, ok := data["settings"]; ok {
		if settings, err = mapParam(data, "settings"); err != nil {
			return nil, err
		}
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if preset != "" {
		ok, err := project.LoadRenderPreset(ctx, preset)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NotFound(op, fmt.Sprintf("render preset %q not found", preset))
		}
	}

	if targetDir != "" {
		settings["TargetDir"] = targetDir
	}
	if customName != "" {
		settings["CustomName"] = customName
	}
	if len(settings) > 0 {
		ok, err := project.SetRenderSettings(ctx, settings)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Vendor(op, "SetRenderSettings returned false; check the setting keys")
		}
	}

	jobID, err := project.AddRenderJob(ctx)
	if err != nil {
		return nil, err
	}
	if jobID == "" {
		return nil, errors.Vendor(op, "AddRenderJob returned no job id")
	}
	return map[string]any{"job_id": jobID}, nil
}

// opRenderProject queues the current timeline and starts the render in
// one call. It takes the same parameters as add_render_job.
func opRenderProject(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.render_project"
	queued, err := opAddRenderJob(ctx, d, data)
	if err != nil {
		return nil, err
	}
	jobID, _ := queued["job_id"].(string)

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := project.StartRendering(ctx, []string{jobID}, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, "StartRendering returned false for job "+jobID)
	}
	return map[string]any{"rendering": true, "job_id": jobID}, nil
}

func opDeleteRenderJob(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.delete_render_job"
	jobID, err := stringParam(data, "job_id")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := project.DeleteRenderJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound(op, fmt.Sprintf("render job %q not found", jobID))
	}
	return map[string]any{"deleted": true, "job_id": jobID}, nil
}

func opStartRendering(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.start_rendering"
	var jobIDs []string
	if _, ok := data["job_ids"]; ok {
		var err error
		if jobIDs, err = stringsParam(data, "job_ids"); err != nil {
			return nil, err
		}
	}
	interactive, err := optionalBool(data, "interactive", false)
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ok, err := project.StartRendering(ctx, jobIDs, interactive)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, "StartRendering returned false; is the render queue empty?")
	}
	return map[string]any{"rendering": true, "jobs": len(jobIDs)}, nil
}

func opStopRendering(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := project.StopRendering(ctx); err != nil {
		return nil, err
	}
	return map[string]any{"stopped": true}, nil
}

func opGetRenderJobStatus(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	jobID, err := stringParam(data, "job_id")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	status, err := project.RenderJobStatus(ctx, jobID)
	if err != nil {
		return nil, err
	}
	rendering, err := project.IsRendering(ctx)
	if err == nil {
		status["IsRendering"] = rendering
	}
	return map[string]any{"job_id": jobID, "status": status}, nil
}
