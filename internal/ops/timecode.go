package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/report"
	"github.com/postflow/resolve-mcp/internal/resolve"
)

func registerTimecodeOps(r *Registry) {
	r.register("get_clip_source_timecode", opGetClipSourceTimecode)
	r.register("get_source_timecode_report", opGetSourceTimecodeReport)
	r.register("export_source_timecode_report", opExportSourceTimecodeReport)
}

// clipSource reads the media-pool side of a timeline item. Generated
// clips have no media pool item and report empty values.
func clipSource(ctx context.Context, item *resolve.TimelineItem, fps float64) (srcIn, srcOut, filePath string, err error) {
	mpItem, err := item.MediaPoolItem(ctx)
	if err != nil {
		return "", "", "", err
	}
	if mpItem == nil {
		return "", "", "", nil
	}
	defer mpItem.Release(ctx)

	startTC, err := mpItem.ClipProperty(ctx, "Start TC")
	if err != nil {
		return "", "", "", err
	}
	filePath, _ = mpItem.ClipProperty(ctx, "File Path")

	offset, err := item.LeftOffset(ctx)
	if err != nil {
		offset = 0
	}
	duration, err := item.Duration(ctx)
	if err != nil {
		return "", "", "", err
	}

	srcIn, srcOut, err = report.SourceRange(startTC, offset, duration, fps)
	if err != nil {
		return "", "", "", err
	}
	return srcIn, srcOut, filePath, nil
}

// buildReport walks every track of the current timeline and resolves
// each clip back to its media pool source timecode.
func buildReport(ctx context.Context, d *Deps) (*report.Report, error) {
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
	fps, err := tl.FrameRate(ctx)
	if err != nil {
		return nil, err
	}

	rep := &report.Report{Timeline: name, FPS: fps}
	for _, trackType := range []string{"video", "audio"} {
		count, err := tl.TrackCount(ctx, trackType)
		if err != nil {
			continue
		}
		for track := 1; track <= count; track++ {
			items, err := tl.ItemsInTrack(ctx, trackType, track)
			if err != nil {
				continue
			}
			for _, item := range items {
				clip := report.Clip{
					Track:     fmt.Sprintf("%s%d", strings.ToUpper(trackType[:1]), track),
					TrackType: trackType,
				}
				if clip.Name, err = item.Name(ctx); err != nil {
					item.Release(ctx)
					continue
				}
				if start, err := item.Start(ctx); err == nil {
					clip.StartFrame = start
				}
				if end, err := item.End(ctx); err == nil {
					clip.EndFrame = end
				}
				if dur, err := item.Duration(ctx); err == nil {
					clip.Duration = dur
				}
				srcIn, srcOut, path, err := clipSource(ctx, item, fps)
				if err == nil {
					clip.SourceInTC = srcIn
					clip.SourceOutTC = srcOut
					clip.FilePath = path
				}
				rep.Clips = append(rep.Clips, clip)
				item.Release(ctx)
			}
		}
	}
	return rep, nil
}

func opGetClipSourceTimecode(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	const op = "ops.get_clip_source_timecode"
	trackType, err := trackTypeParam(data, "track_type", "video")
	if err != nil {
		return nil, err
	}
	track, err := optionalInt(data, "track", 1)
	if err != nil {
		return nil, err
	}
	clipIndex, err := intParam(data, "clip_index")
	if err != nil {
		return nil, err
	}

	tl, cleanup, err := currentTimeline(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	fps, err := tl.FrameRate(ctx)
	if err != nil {
		return nil, err
	}
	items, err := tl.ItemsInTrack(ctx, trackType, track)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, item := range items {
			item.Release(ctx)
		}
	}()
	if clipIndex < 0 || clipIndex >= len(items) {
		return nil, errors.Validation(op, fmt.Sprintf("clip_index %d out of range, track has %d clips", clipIndex, len(items)))
	}

	item := items[clipIndex]
	name, err := item.Name(ctx)
	if err != nil {
		return nil, err
	}
	srcIn, srcOut, path, err := clipSource(ctx, item, fps)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"name":          name,
		"source_in_tc":  srcIn,
		"source_out_tc": srcOut,
		"file_path":     path,
	}, nil
}

func opGetSourceTimecodeReport(ctx context.Context, d *Deps, _ map[string]any) (map[string]any, error) {
	rep, err := buildReport(ctx, d)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"timeline": rep.Timeline,
		"fps":      rep.FPS,
		"clips":    rep.Clips,
		"count":    len(rep.Clips),
	}, nil
}

func opExportSourceTimecodeReport(ctx context.Context, d *Deps, data map[string]any) (map[string]any, error) {
	path, err := stringParam(data, "path")
	if err != nil {
		return nil, err
	}
	formatName, err := optionalString(data, "format", "")
	if err != nil {
		return nil, err
	}

	rep, err := buildReport(ctx, d)
	if err != nil {
		return nil, err
	}

	if formatName == "" {
		if err := report.ExportFile(path, rep); err != nil {
			return nil, err
		}
	} else {
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return nil, err
		}
		if err := report.ExportToPath(path, rep, format); err != nil {
			return nil, err
		}
	}
	return map[string]any{"exported": true, "path": path, "clips": len(rep.Clips)}, nil
}
