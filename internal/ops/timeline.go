package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

func registerTimelineOps(r *Registry) {
	r.register("get_timeline_info", opGetTimelineInfo)
	r.register("list_timelines", opListTimelines)
	r.register("create_timeline", opCreateTimeline)
	r.register("set_current_timeline", opSetCurrentTimeline)
	r.register("delete_timeline", opDeleteTimeline)
	r.register("duplicate_timeline", opDuplicateTimeline)
	r.register("get_timeline_clips", opGetTimelineClips)
	r.register("select_clips_by_name", opSelectClipsByName)
	r.register("export_timeline", opExportTimeline)
}

// currentProject hops to the open project.
func currentProject(ctx context.Context, d *Deps) (*resolve.Project, func(), error) {
	pm, err := d.Client.ProjectManager(ctx)
	if err != nil {
		return nil, nil, err
	}
	project, err := pm.CurrentProject(ctx)
	if err != nil {
		pm.Release(ctx)
		return nil, nil, err
	}
	cleanup := func() {
		project.Release(ctx)
		pm.Release(ctx)
	}
	return project, cleanup, nil
}

// timelineNames lists all timeline names in the project in index order.
func timelineNames(ctx context.Context, project *resolve.Project) ([]string, error) {
	count, err := project.TimelineCount(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		tl, err := project.TimelineByIndex(ctx, i)
		if err != nil {
			continue
		}
		name, err := tl.Name(ctx)
		tl.Release(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// findTimeline locates a timeline by name. The caller releases it.
func findTimeline(ctx context.Context, project *resolve.Project, name string) (*resolve.Timeline, error) {
	const op = "ops.findTimeline"
	count, err := project.TimelineCount(ctx)
	if err != nil {
		return nil, err
	}
	for i := 1; i <= count; i++ {
		tl, err := project.TimelineByIndex(ctx, i)
		if err != nil {
			continue
		}
		tlName, err := tl.Name(ctx)
		if err == nil && tlName == name {
			return tl, nil
		}
		tl.Release(ctx)
	}
	return nil, errors.NotFound(op, fmt.Sprintf("timeline %q not found", name))
}

// newRetrier builds the retry wrapper for the timeline fallback
// chains. Validation errors are never retried.
func newRetrier(d *Deps) retry.Retry[bool] {
	return retry.New[bool](retry.Config{
		MaxAttempts:   d.Config.Resolve.RetryAttempts,
		InitialDelay:  d.Config.Resolve.RetryDelay,
		MaxDelay:      d.Config.Resolve.RetryDelay * 4,
		BackoffPolicy: retry.BackoffExponential,
		Multiplier:    2.0,
		Jitter:        true,
		IsRetryable: func(err error) bool {
			return !errors.IsKind(err, errors.KindValidation) &&
				!errors.IsKind(err, errors.KindNotFound)
		},
	})
}

func opGetTimelineInfo(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tl, err := project.CurrentTimeline(ctx)
	if err != nil {
		return nil, err
	}
	defer tl.Release(ctx)

	name, err := tl.Name(ctx)
	if err != nil {
		return nil, err
	}
	info := map[string]any{"name": name}

	if fps, err := tl.FrameRate(ctx); err == nil {
		info["fps"] = fps
	}
	if start, err := tl.StartFrame(ctx); err == nil {
		info["start_frame"] = start
	}
	if end, err := tl.EndFrame(ctx); err == nil {
		info["end_frame"] = end
	}
	if v, err := tl.TrackCount(ctx, "video"); err == nil {
		info["video_tracks"] = v
	}
	if a, err := tl.TrackCount(ctx, "audio"); err == nil {
		info["audio_tracks"] = a
	}
	if markers, err := tl.Markers(ctx); err == nil {
		info["marker_count"] = len(markers)
	}
	return info, nil
}

func opListTimelines(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	names, err := timelineNames(ctx, project)
	if err != nil {
		return nil, err
	}
	result := map[string]any{"timelines": names}
	if tl, err := project.CurrentTimeline(ctx); err == nil {
		if name, err := tl.Name(ctx); err == nil {
			result["current"] = name
		}
		tl.Release(ctx)
	}
	return result, nil
}

func opCreateTimeline(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pool, err := project.MediaPool(ctx)
	if err != nil {
		return nil, err
	}
	defer pool.Release(ctx)

	tl, err := pool.CreateEmptyTimeline(ctx, name)
	if err != nil {
		return nil, err
	}
	tl.Release(ctx)
	return map[string]any{"created": true, "name": name}, nil
}

func opSetCurrentTimeline(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.set_current_timeline"
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tl, err := findTimeline(ctx, project, name)
	if err != nil {
		return nil, err
	}
	defer tl.Release(ctx)

	ok, err := project.SetCurrentTimeline(ctx, tl)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Vendor(op, fmt.Sprintf("SetCurrentTimeline(%q) returned false", name))
	}
	return map[string]any{"current": name}, nil
}

// opDeleteTimeline removes a timeline, trying the project-level call
// first and falling back to the media pool. A vendor "false" after
// which the timeline is gone from the list still counts as success.
func opDeleteTimeline(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.delete_timeline"
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tl, err := findTimeline(ctx, project, name)
	if err != nil {
		return nil, err
	}
	defer tl.Release(ctx)

	// Deleting the active timeline fails on some versions; switch to
	// any other timeline first when one exists.
	switched := ""
	if current, err := project.CurrentTimeline(ctx); err == nil {
		currentName, nameErr := current.Name(ctx)
		current.Release(ctx)
		if nameErr == nil && currentName == name {
			names, _ := timelineNames(ctx, project)
			for _, other := range names {
				if other == name {
					continue
				}
				if otherTL, err := findTimeline(ctx, project, other); err == nil {
					if ok, err := project.SetCurrentTimeline(ctx, otherTL); err == nil && ok {
						switched = other
					}
					otherTL.Release(ctx)
					break
				}
			}
		}
	}

	retrier := newRetrier(d)
	method := ""

	// Approach 1: project-level delete, retried.
	_, err = retrier.Do(ctx, func(ctx context.Context) (bool, error) {
		ok, err := project.DeleteTimeline(ctx, name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errors.Vendor(op, "DeleteTimeline returned false")
		}
		return true, nil
	})
	if err == nil {
		method = "project"
	}

	// Approach 2: media pool delete.
	if method == "" {
		if pool, poolErr := project.MediaPool(ctx); poolErr == nil {
			ok, delErr := pool.DeleteTimelines(ctx, []*resolve.Timeline{tl})
			pool.Release(ctx)
			if delErr == nil && ok {
				method = "media_pool"
			}
		}
	}

	// Verify: a timeline gone from the list is deleted no matter what
	// the calls above claimed.
	names, listErr := timelineNames(ctx, project)
	if listErr == nil {
		gone := true
		for _, n := range names {
			if n == name {
				gone = false
				break
			}
		}
		if gone {
			if method == "" {
				method = "verified"
			}
			result := map[string]any{"deleted": true, "name": name, "method": method}
			if switched != "" {
				result["switched_to"] = switched
			}
			return result, nil
		}
	}

	return nil, errors.Vendor(op, fmt.Sprintf("could not delete timeline %q; all approaches failed", name))
}

// opDuplicateTimeline copies a timeline, trying the project-level
// duplicate, then the media pool, then an empty timeline as a partial
// fallback.
func opDuplicateTimeline(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.duplicate_timeline"
	source, err := stringParam(data, "source")
	if err != nil {
		return nil, err
	}
	target, err := optionalString(data, "target", source+" Copy")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	names, err := timelineNames(ctx, project)
	if err != nil {
		return nil, err
	}
	foundSource := false
	for _, n := range names {
		if n == target {
			return nil, errors.Validation(op, fmt.Sprintf("a timeline named %q already exists", target))
		}
		if n == source {
			foundSource = true
		}
	}
	if !foundSource {
		return nil, errors.NotFound(op, fmt.Sprintf("timeline %q not found", source))
	}

	retrier := newRetrier(d)

	// Approach 1: project-level duplicate, retried.
	_, err = retrier.Do(ctx, func(ctx context.Context) (bool, error) {
		ok, err := project.DuplicateTimeline(ctx, source, target)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errors.Vendor(op, "DuplicateTimeline returned false")
		}
		return true, nil
	})
	if err == nil {
		return map[string]any{"duplicated": true, "source": source, "target": target, "method": "project"}, nil
	}

	// Approach 2: media pool duplicate.
	tl, findErr := findTimeline(ctx, project, source)
	if findErr == nil {
		defer tl.Release(ctx)
		if pool, poolErr := project.MediaPool(ctx); poolErr == nil {
			ok, dupErr := pool.DuplicateTimeline(ctx, tl, target)
			pool.Release(ctx)
			if dupErr == nil && ok {
				return map[string]any{"duplicated": true, "source": source, "target": target, "method": "media_pool"}, nil
			}

			// Approach 3: an empty timeline under the target name. The
			// content is not copied, so this is only a partial success.
			if empty, emptyErr := pool.CreateEmptyTimeline(ctx, target); emptyErr == nil {
				empty.Release(ctx)
				return map[string]any{
					"duplicated":      false,
					"partial_success": true,
					"source":          source,
					"target":          target,
					"method":          "empty_timeline",
				}, nil
			}
		}
	}

	return nil, errors.Vendor(op, fmt.Sprintf("could not duplicate timeline %q; all approaches failed", source))
}

// clipEntry describes one timeline clip in list payloads.
type clipEntry struct {
	Name     string `json:"name"`
	Track    string `json:"track"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Duration int    `json:"duration"`
}

func collectClips(ctx context.Context, tl *resolve.Timeline, trackType string) ([]clipEntry, error) {
	count, err := tl.TrackCount(ctx, trackType)
	if err != nil {
		return nil, err
	}
	prefix := strings.ToUpper(trackType[:1])

	var clips []clipEntry
	for track := 1; track <= count; track++ {
		items, err := tl.ItemsInTrack(ctx, trackType, track)
		if err != nil {
			continue
		}
		for _, item := range items {
			entry := clipEntry{Track: fmt.Sprintf("%s%d", prefix, track)}
			if name, err := item.Name(ctx); err == nil {
				entry.Name = name
			}
			if start, err := item.Start(ctx); err == nil {
				entry.Start = start
			}
			if end, err := item.End(ctx); err == nil {
				entry.End = end
			}
			if dur, err := item.Duration(ctx); err == nil {
				entry.Duration = dur
			}
			clips = append(clips, entry)
			item.Release(ctx)
		}
	}
	return clips, nil
}

func opGetTimelineClips(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	trackType, err := trackTypeParam(data, "track_type", "video")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tl, err := project.CurrentTimeline(ctx)
	if err != nil {
		return nil, err
	}
	defer tl.Release(ctx)

	clips, err := collectClips(ctx, tl, trackType)
	if err != nil {
		return nil, err
	}
	return map[string]any{"clips": clips, "count": len(clips)}, nil
}

// opSelectClipsByName matches clips case-insensitively and selects
// them, falling back to per-clip flags when selection is unsupported.
func opSelectClipsByName(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	name, err := stringParam(data, "name")
	if err != nil {
		return nil, err
	}
	trackType, err := trackTypeParam(data, "track_type", "video")
	if err != nil {
		return nil, err
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tl, err := project.CurrentTimeline(ctx)
	if err != nil {
		return nil, err
	}
	defer tl.Release(ctx)

	count, err := tl.TrackCount(ctx, trackType)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	var matched []*resolve.TimelineItem
	var matchedNames []string
	defer func() {
		for _, item := range matched {
			item.Release(ctx)
		}
	}()

	for track := 1; track <= count; track++ {
		items, err := tl.ItemsInTrack(ctx, trackType, track)
		if err != nil {
			continue
		}
		for _, item := range items {
			clipName, err := item.Name(ctx)
			if err == nil && strings.Contains(strings.ToLower(clipName), needle) {
				matched = append(matched, item)
				matchedNames = append(matchedNames, clipName)
			} else {
				item.Release(ctx)
			}
		}
	}

	if len(matched) == 0 {
		return map[string]any{"matched": []string{}, "count": 0}, nil
	}

	method := "selection"
	if ok, err := tl.SetSelection(ctx, matched); err != nil || !ok {
		method = "flags"
		for _, item := range matched {
			_, _ = item.AddFlag(ctx, "Blue")
		}
	}
	return map[string]any{"matched": matchedNames, "count": len(matchedNames), "method": method}, nil
}

// exportTypes maps the accepted export formats to vendor export
// type and subtype arguments.
var exportTypes = map[string][2]string{
	"edl": {"EDL", ""},
	"xml": {"FCP_XML", ""},
	"aaf": {"AAF", ""},
	"drt": {"DRT", ""},
}

func opExportTimeline(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.export_timeline"
	path, err := stringParam(data, "path")
	if err != nil {
		return nil, err
	}
	format, err := optionalString(data, "format", "edl")
	if err != nil {
		return nil, err
	}
	kind, ok := exportTypes[strings.ToLower(format)]
	if !ok {
		return nil, errors.Validation(op, fmt.Sprintf("unknown export format %q, want edl, xml, aaf or drt", format))
	}

	project, cleanup, err := currentProject(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tl, err := project.CurrentTimeline(ctx)
	if err != nil {
		return nil, err
	}
	defer tl.Release(ctx)

	okExport, err := tl.Export(ctx, path, kind[0], kind[1])
	if err != nil {
		return nil, err
	}
	if !okExport {
		return nil, errors.Vendor(op, fmt.Sprintf("Export(%q) returned false", path))
	}
	return map[string]any{"exported": true, "path": path, "format": strings.ToLower(format)}, nil
}
