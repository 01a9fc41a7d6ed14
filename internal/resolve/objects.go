package resolve

import (
	"context"
	"fmt"
	"strconv"

	"github.com/postflow/resolve-mcp/internal/errors"
	"github.com/postflow/resolve-mcp/internal/marker"
)

// argHandle marshals a handle reference the bridge resolves back into
// the vendor object it names.
type argHandle struct {
	H string `json:"$h"`
}

// Typed call helpers.

func (c *Client) callString(ctx context.Context, handle, method string, args ...any) (string, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return "", err
	}
	var s string
	return s, decodeResult(resp, &s)
}

func (c *Client) callBool(ctx context.Context, handle, method string, args ...any) (bool, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return false, err
	}
	var b bool
	return b, decodeResult(resp, &b)
}

func (c *Client) callInt(ctx context.Context, handle, method string, args ...any) (int, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return 0, err
	}
	var f float64
	if err := decodeResult(resp, &f); err != nil {
		return 0, err
	}
	return int(f), nil
}

func (c *Client) callStrings(ctx context.Context, handle, method string, args ...any) ([]string, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return nil, err
	}
	var out []string
	return out, decodeResult(resp, &out)
}

func (c *Client) callMap(ctx context.Context, handle, method string, args ...any) (map[string]any, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	return out, decodeResult(resp, &out)
}

// callHandle returns the handle of an object-valued call. An empty
// handle means the vendor returned nothing; callers translate that to
// an unavailable error with a message naming the missing hop.
func (c *Client) callHandle(ctx context.Context, handle, method string, args ...any) (string, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return "", err
	}
	return resp.Handle, nil
}

func (c *Client) callHandles(ctx context.Context, handle, method string, args ...any) ([]string, error) {
	resp, err := c.call(ctx, handle, method, args...)
	if err != nil {
		return nil, err
	}
	return resp.Handles, nil
}

// Root application methods.

// CurrentPage returns the active UI page (media, cut, edit, fusion,
// color, fairlight, deliver).
func (c *Client) CurrentPage(ctx context.Context) (string, error) {
	return c.callString(ctx, "", "GetCurrentPage")
}

// OpenPage switches the active UI page.
func (c *Client) OpenPage(ctx context.Context, page string) (bool, error) {
	return c.callBool(ctx, "", "OpenPage", page)
}

// SaveLayoutPreset stores the current UI layout under name.
func (c *Client) SaveLayoutPreset(ctx context.Context, name string) (bool, error) {
	return c.callBool(ctx, "", "SaveLayoutPreset", name)
}

// LoadLayoutPreset applies a stored UI layout.
func (c *Client) LoadLayoutPreset(ctx context.Context, name string) (bool, error) {
	return c.callBool(ctx, "", "LoadLayoutPreset", name)
}

// ExportLayoutPreset writes a stored UI layout to a file.
func (c *Client) ExportLayoutPreset(ctx context.Context, name, path string) (bool, error) {
	return c.callBool(ctx, "", "ExportLayoutPreset", name, path)
}

// ImportLayoutPreset loads a UI layout file under name.
func (c *Client) ImportLayoutPreset(ctx context.Context, path, name string) (bool, error) {
	return c.callBool(ctx, "", "ImportLayoutPreset", path, name)
}

// DeleteLayoutPreset removes a stored UI layout.
func (c *Client) DeleteLayoutPreset(ctx context.Context, name string) (bool, error) {
	return c.callBool(ctx, "", "DeleteLayoutPreset", name)
}

// ProjectManager returns the vendor project manager.
func (c *Client) ProjectManager(ctx context.Context) (*ProjectManager, error) {
	const op = "resolve.Client.ProjectManager"
	h, err := c.callHandle(ctx, "", "GetProjectManager")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "project manager is not available")
	}
	return &ProjectManager{c: c, h: h}, nil
}

// ProjectManager wraps the vendor project manager object.
type ProjectManager struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (pm *ProjectManager) Release(ctx context.Context) { pm.c.release(ctx, pm.h) }

// ProjectNames lists projects in the current project folder.
func (pm *ProjectManager) ProjectNames(ctx context.Context) ([]string, error) {
	return pm.c.callStrings(ctx, pm.h, "GetProjectListInCurrentFolder")
}

// CurrentProject returns the open project.
func (pm *ProjectManager) CurrentProject(ctx context.Context) (*Project, error) {
	const op = "resolve.ProjectManager.CurrentProject"
	h, err := pm.c.callHandle(ctx, pm.h, "GetCurrentProject")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "no project is open")
	}
	return &Project{c: pm.c, h: h}, nil
}

// CreateProject creates and opens a new project.
func (pm *ProjectManager) CreateProject(ctx context.Context, name string) (*Project, error) {
	const op = "resolve.ProjectManager.CreateProject"
	h, err := pm.c.callHandle(ctx, pm.h, "CreateProject", name)
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Vendor(op, fmt.Sprintf("CreateProject(%q) returned nothing; the name may be taken", name))
	}
	return &Project{c: pm.c, h: h}, nil
}

// LoadProject opens an existing project by name.
func (pm *ProjectManager) LoadProject(ctx context.Context, name string) (*Project, error) {
	const op = "resolve.ProjectManager.LoadProject"
	h, err := pm.c.callHandle(ctx, pm.h, "LoadProject", name)
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.NotFound(op, fmt.Sprintf("project %q not found", name))
	}
	return &Project{c: pm.c, h: h}, nil
}

// SaveProject saves the open project.
func (pm *ProjectManager) SaveProject(ctx context.Context) (bool, error) {
	return pm.c.callBool(ctx, pm.h, "SaveProject")
}

// Project wraps a vendor project object.
type Project struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (p *Project) Release(ctx context.Context) { p.c.release(ctx, p.h) }

// Name returns the project name.
func (p *Project) Name(ctx context.Context) (string, error) {
	return p.c.callString(ctx, p.h, "GetName")
}

// MediaPool returns the project's media pool.
func (p *Project) MediaPool(ctx context.Context) (*MediaPool, error) {
	const op = "resolve.Project.MediaPool"
	h, err := p.c.callHandle(ctx, p.h, "GetMediaPool")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "media pool is not available")
	}
	return &MediaPool{c: p.c, h: h}, nil
}

// TimelineCount returns the number of timelines in the project.
func (p *Project) TimelineCount(ctx context.Context) (int, error) {
	return p.c.callInt(ctx, p.h, "GetTimelineCount")
}

// TimelineByIndex returns the 1-based indexed timeline.
func (p *Project) TimelineByIndex(ctx context.Context, index int) (*Timeline, error) {
	const op = "resolve.Project.TimelineByIndex"
	h, err := p.c.callHandle(ctx, p.h, "GetTimelineByIndex", index)
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.NotFound(op, fmt.Sprintf("no timeline at index %d", index))
	}
	return &Timeline{c: p.c, h: h}, nil
}

// CurrentTimeline returns the active timeline.
func (p *Project) CurrentTimeline(ctx context.Context) (*Timeline, error) {
	const op = "resolve.Project.CurrentTimeline"
	h, err := p.c.callHandle(ctx, p.h, "GetCurrentTimeline")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "no timeline is active")
	}
	return &Timeline{c: p.c, h: h}, nil
}

// SetCurrentTimeline makes a timeline the active one.
func (p *Project) SetCurrentTimeline(ctx context.Context, tl *Timeline) (bool, error) {
	return p.c.callBool(ctx, p.h, "SetCurrentTimeline", argHandle{H: tl.h})
}

// DeleteTimeline removes a timeline by name. Not every Resolve version
// exposes this on the project; callers fall back to the media pool.
func (p *Project) DeleteTimeline(ctx context.Context, name string) (bool, error) {
	return p.c.callBool(ctx, p.h, "DeleteTimeline", name)
}

// DuplicateTimeline duplicates a timeline under a new name.
func (p *Project) DuplicateTimeline(ctx context.Context, source, target string) (bool, error) {
	return p.c.callBool(ctx, p.h, "DuplicateTimeline", source, target)
}

// Setting reads a project setting.
func (p *Project) Setting(ctx context.Context, key string) (string, error) {
	return p.c.callString(ctx, p.h, "GetSetting", key)
}

// Settings reads all project settings.
func (p *Project) Settings(ctx context.Context) (map[string]any, error) {
	return p.c.callMap(ctx, p.h, "GetSetting")
}

// SetSetting writes a project setting.
func (p *Project) SetSetting(ctx context.Context, key, value string) (bool, error) {
	return p.c.callBool(ctx, p.h, "SetSetting", key, value)
}

// Render queue methods.

// RenderPresets lists the available render presets.
func (p *Project) RenderPresets(ctx context.Context) ([]string, error) {
	return p.c.callStrings(ctx, p.h, "GetRenderPresetList")
}

// RenderFormats maps render format names to file extensions.
func (p *Project) RenderFormats(ctx context.Context) (map[string]any, error) {
	return p.c.callMap(ctx, p.h, "GetRenderFormats")
}

// RenderCodecs maps codec names for a render format.
func (p *Project) RenderCodecs(ctx context.Context, format string) (map[string]any, error) {
	return p.c.callMap(ctx, p.h, "GetRenderCodecs", format)
}

// RenderJobs lists the jobs in the render queue.
func (p *Project) RenderJobs(ctx context.Context) ([]map[string]any, error) {
	resp, err := p.c.call(ctx, p.h, "GetRenderJobList")
	if err != nil {
		return nil, err
	}
	var jobs []map[string]any
	return jobs, decodeResult(resp, &jobs)
}

// LoadRenderPreset applies a named render preset.
func (p *Project) LoadRenderPreset(ctx context.Context, name string) (bool, error) {
	return p.c.callBool(ctx, p.h, "LoadRenderPreset", name)
}

// SetRenderSettings applies render settings for the next job.
func (p *Project) SetRenderSettings(ctx context.Context, settings map[string]any) (bool, error) {
	return p.c.callBool(ctx, p.h, "SetRenderSettings", settings)
}

// AddRenderJob queues a render job and returns its ID.
func (p *Project) AddRenderJob(ctx context.Context) (string, error) {
	return p.c.callString(ctx, p.h, "AddRenderJob")
}

// DeleteRenderJob removes a job from the render queue.
func (p *Project) DeleteRenderJob(ctx context.Context, jobID string) (bool, error) {
	return p.c.callBool(ctx, p.h, "DeleteRenderJob", jobID)
}

// StartRendering starts rendering the given jobs, or the whole queue
// when none are given.
func (p *Project) StartRendering(ctx context.Context, jobIDs []string, interactive bool) (bool, error) {
	if len(jobIDs) == 0 {
		return p.c.callBool(ctx, p.h, "StartRendering")
	}
	return p.c.callBool(ctx, p.h, "StartRendering", jobIDs, interactive)
}

// StopRendering stops the current render.
func (p *Project) StopRendering(ctx context.Context) error {
	_, err := p.c.call(ctx, p.h, "StopRendering")
	return err
}

// IsRendering reports whether a render is in progress.
func (p *Project) IsRendering(ctx context.Context) (bool, error) {
	return p.c.callBool(ctx, p.h, "IsRenderingInProgress")
}

// RenderJobStatus returns the status map of a render job.
func (p *Project) RenderJobStatus(ctx context.Context, jobID string) (map[string]any, error) {
	return p.c.callMap(ctx, p.h, "GetRenderJobStatus", jobID)
}

// Timeline wraps a vendor timeline object.
type Timeline struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (t *Timeline) Release(ctx context.Context) { t.c.release(ctx, t.h) }

// Name returns the timeline name.
func (t *Timeline) Name(ctx context.Context) (string, error) {
	return t.c.callString(ctx, t.h, "GetName")
}

// StartFrame returns the timeline's first frame number.
func (t *Timeline) StartFrame(ctx context.Context) (int, error) {
	return t.c.callInt(ctx, t.h, "GetStartFrame")
}

// EndFrame returns the timeline's last frame number.
func (t *Timeline) EndFrame(ctx context.Context) (int, error) {
	return t.c.callInt(ctx, t.h, "GetEndFrame")
}

// FrameRate returns the timeline frame rate from its settings.
func (t *Timeline) FrameRate(ctx context.Context) (float64, error) {
	const op = "resolve.Timeline.FrameRate"
	s, err := t.c.callString(ctx, t.h, "GetSetting", "timelineFrameRate")
	if err != nil {
		return 0, err
	}
	fps, err := strconv.ParseFloat(s, 64)
	if err != nil || fps < 1 {
		return 0, errors.Vendor(op, fmt.Sprintf("timeline reports frame rate %q", s))
	}
	return fps, nil
}

// TrackCount returns the number of tracks of the given type
// ("video", "audio", "subtitle").
func (t *Timeline) TrackCount(ctx context.Context, trackType string) (int, error) {
	return t.c.callInt(ctx, t.h, "GetTrackCount", trackType)
}

// ItemsInTrack lists the clips in a 1-based indexed track.
func (t *Timeline) ItemsInTrack(ctx context.Context, trackType string, index int) ([]*TimelineItem, error) {
	handles, err := t.c.callHandles(ctx, t.h, "GetItemListInTrack", trackType, index)
	if err != nil {
		return nil, err
	}
	items := make([]*TimelineItem, 0, len(handles))
	for _, h := range handles {
		items = append(items, &TimelineItem{c: t.c, h: h})
	}
	return items, nil
}

// markerInfo is the wire shape of one vendor marker entry.
type markerInfo struct {
	Color      string `json:"color"`
	Name       string `json:"name"`
	Note       string `json:"note"`
	Duration   int    `json:"duration"`
	CustomData string `json:"customData"`
}

// Markers returns the timeline's markers keyed by frame.
func (t *Timeline) Markers(ctx context.Context) ([]marker.Marker, error) {
	const op = "resolve.Timeline.Markers"
	resp, err := t.c.call(ctx, t.h, "GetMarkers")
	if err != nil {
		return nil, err
	}
	raw := map[string]markerInfo{}
	if err := decodeResult(resp, &raw); err != nil {
		return nil, err
	}
	markers := make([]marker.Marker, 0, len(raw))
	for frameStr, info := range raw {
		frame, err := strconv.Atoi(frameStr)
		if err != nil {
			return nil, errors.Vendor(op, fmt.Sprintf("marker frame key %q is not a number", frameStr))
		}
		markers = append(markers, marker.Marker{
			Frame:      frame,
			Color:      info.Color,
			Name:       info.Name,
			Note:       info.Note,
			Duration:   info.Duration,
			CustomData: info.CustomData,
		})
	}
	return markers, nil
}

// AddMarker places a marker. The vendor returns false when the frame
// is out of range or already carries a marker.
func (t *Timeline) AddMarker(ctx context.Context, m marker.Marker) (bool, error) {
	return t.c.callBool(ctx, t.h, "AddMarker",
		m.Frame, m.Color, m.Name, m.Note, m.Duration, m.CustomData)
}

// DeleteMarkerAtFrame removes the marker at a frame.
func (t *Timeline) DeleteMarkerAtFrame(ctx context.Context, frame int) (bool, error) {
	return t.c.callBool(ctx, t.h, "DeleteMarkerAtFrame", frame)
}

// DeleteMarkersByColor removes all markers of one color, or every
// marker when color is "All".
func (t *Timeline) DeleteMarkersByColor(ctx context.Context, color string) (bool, error) {
	return t.c.callBool(ctx, t.h, "DeleteMarkersByColor", color)
}

// CurrentVideoItem returns the clip under the playhead on the color page.
func (t *Timeline) CurrentVideoItem(ctx context.Context) (*TimelineItem, error) {
	const op = "resolve.Timeline.CurrentVideoItem"
	h, err := t.c.callHandle(ctx, t.h, "GetCurrentVideoItem")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "no current video item; is the color page open?")
	}
	return &TimelineItem{c: t.c, h: h}, nil
}

// Export writes the timeline to a file in a vendor export format
// (EDL, AAF, XML and friends).
func (t *Timeline) Export(ctx context.Context, path, exportType, exportSubtype string) (bool, error) {
	if exportSubtype == "" {
		return t.c.callBool(ctx, t.h, "Export", path, exportType)
	}
	return t.c.callBool(ctx, t.h, "Export", path, exportType, exportSubtype)
}

// SetSelection selects the given clips in the timeline.
func (t *Timeline) SetSelection(ctx context.Context, items []*TimelineItem) (bool, error) {
	refs := make([]any, 0, len(items))
	for _, it := range items {
		refs = append(refs, argHandle{H: it.h})
	}
	return t.c.callBool(ctx, t.h, "SetSelection", refs)
}

// Setting reads a timeline setting.
func (t *Timeline) Setting(ctx context.Context, key string) (string, error) {
	return t.c.callString(ctx, t.h, "GetSetting", key)
}

// Settings reads all timeline settings.
func (t *Timeline) Settings(ctx context.Context) (map[string]any, error) {
	return t.c.callMap(ctx, t.h, "GetSetting")
}

// SetSetting writes a timeline setting.
func (t *Timeline) SetSetting(ctx context.Context, key, value string) (bool, error) {
	return t.c.callBool(ctx, t.h, "SetSetting", key, value)
}

// TimelineItem wraps a clip placed in a timeline.
type TimelineItem struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (i *TimelineItem) Release(ctx context.Context) { i.c.release(ctx, i.h) }

// Name returns the clip name.
func (i *TimelineItem) Name(ctx context.Context) (string, error) {
	return i.c.callString(ctx, i.h, "GetName")
}

// Start returns the clip's first frame on the timeline.
func (i *TimelineItem) Start(ctx context.Context) (int, error) {
	return i.c.callInt(ctx, i.h, "GetStart")
}

// End returns the frame after the clip's last frame on the timeline.
func (i *TimelineItem) End(ctx context.Context) (int, error) {
	return i.c.callInt(ctx, i.h, "GetEnd")
}

// Duration returns the clip length in frames.
func (i *TimelineItem) Duration(ctx context.Context) (int, error) {
	return i.c.callInt(ctx, i.h, "GetDuration")
}

// LeftOffset returns how far into the source media the clip starts.
func (i *TimelineItem) LeftOffset(ctx context.Context) (int, error) {
	return i.c.callInt(ctx, i.h, "GetLeftOffset")
}

// MediaPoolItem returns the source media of the clip, or nil for
// generated clips (titles, generators) with no source.
func (i *TimelineItem) MediaPoolItem(ctx context.Context) (*MediaPoolItem, error) {
	h, err := i.c.callHandle(ctx, i.h, "GetMediaPoolItem")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, nil
	}
	return &MediaPoolItem{c: i.c, h: h}, nil
}

// AddFlag flags the clip with a color.
func (i *TimelineItem) AddFlag(ctx context.Context, color string) (bool, error) {
	return i.c.callBool(ctx, i.h, "AddFlag", color)
}

// NodeGraph returns the clip's grading node graph.
func (i *TimelineItem) NodeGraph(ctx context.Context) (*NodeGraph, error) {
	const op = "resolve.TimelineItem.NodeGraph"
	h, err := i.c.callHandle(ctx, i.h, "GetNodeGraph")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "clip has no node graph")
	}
	return &NodeGraph{c: i.c, h: h}, nil
}

// MediaPool wraps the vendor media pool object.
type MediaPool struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (mp *MediaPool) Release(ctx context.Context) { mp.c.release(ctx, mp.h) }

// RootFolder returns the top-level media pool folder.
func (mp *MediaPool) RootFolder(ctx context.Context) (*Folder, error) {
	const op = "resolve.MediaPool.RootFolder"
	h, err := mp.c.callHandle(ctx, mp.h, "GetRootFolder")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "media pool has no root folder")
	}
	return &Folder{c: mp.c, h: h}, nil
}

// CurrentFolder returns the selected media pool folder.
func (mp *MediaPool) CurrentFolder(ctx context.Context) (*Folder, error) {
	const op = "resolve.MediaPool.CurrentFolder"
	h, err := mp.c.callHandle(ctx, mp.h, "GetCurrentFolder")
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Unavailable(op, "no media pool folder is selected")
	}
	return &Folder{c: mp.c, h: h}, nil
}

// SetCurrentFolder selects a media pool folder.
func (mp *MediaPool) SetCurrentFolder(ctx context.Context, f *Folder) (bool, error) {
	return mp.c.callBool(ctx, mp.h, "SetCurrentFolder", argHandle{H: f.h})
}

// AddSubFolder creates a bin under parent.
func (mp *MediaPool) AddSubFolder(ctx context.Context, parent *Folder, name string) (*Folder, error) {
	const op = "resolve.MediaPool.AddSubFolder"
	h, err := mp.c.callHandle(ctx, mp.h, "AddSubFolder", argHandle{H: parent.h}, name)
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Vendor(op, fmt.Sprintf("AddSubFolder(%q) returned nothing", name))
	}
	return &Folder{c: mp.c, h: h}, nil
}

// ImportMedia imports files into the current folder.
func (mp *MediaPool) ImportMedia(ctx context.Context, paths []string) ([]*MediaPoolItem, error) {
	handles, err := mp.c.callHandles(ctx, mp.h, "ImportMedia", paths)
	if err != nil {
		return nil, err
	}
	items := make([]*MediaPoolItem, 0, len(handles))
	for _, h := range handles {
		items = append(items, &MediaPoolItem{c: mp.c, h: h})
	}
	return items, nil
}

// AppendToTimeline appends clips to the current timeline.
func (mp *MediaPool) AppendToTimeline(ctx context.Context, items []*MediaPoolItem) (bool, error) {
	refs := make([]any, 0, len(items))
	for _, it := range items {
		refs = append(refs, argHandle{H: it.h})
	}
	resp, err := mp.c.call(ctx, mp.h, "AppendToTimeline", refs)
	if err != nil {
		return false, err
	}
	// The vendor returns the created timeline items on success.
	if len(resp.Handles) > 0 || resp.Handle != "" {
		return true, nil
	}
	var ok bool
	return ok, decodeResult(resp, &ok)
}

// CreateEmptyTimeline creates a new empty timeline.
func (mp *MediaPool) CreateEmptyTimeline(ctx context.Context, name string) (*Timeline, error) {
	const op = "resolve.MediaPool.CreateEmptyTimeline"
	h, err := mp.c.callHandle(ctx, mp.h, "CreateEmptyTimeline", name)
	if err != nil {
		return nil, err
	}
	if h == "" {
		return nil, errors.Vendor(op, fmt.Sprintf("CreateEmptyTimeline(%q) returned nothing; the name may be taken", name))
	}
	return &Timeline{c: mp.c, h: h}, nil
}

// DeleteTimelines deletes the given timelines.
func (mp *MediaPool) DeleteTimelines(ctx context.Context, timelines []*Timeline) (bool, error) {
	refs := make([]any, 0, len(timelines))
	for _, tl := range timelines {
		refs = append(refs, argHandle{H: tl.h})
	}
	return mp.c.callBool(ctx, mp.h, "DeleteTimelines", refs)
}

// DuplicateTimeline duplicates a timeline under a new name. Not every
// Resolve version exposes this on the media pool.
func (mp *MediaPool) DuplicateTimeline(ctx context.Context, tl *Timeline, target string) (bool, error) {
	return mp.c.callBool(ctx, mp.h, "DuplicateTimeline", argHandle{H: tl.h}, target)
}

// MoveClips moves clips into a folder.
func (mp *MediaPool) MoveClips(ctx context.Context, items []*MediaPoolItem, target *Folder) (bool, error) {
	refs := make([]any, 0, len(items))
	for _, it := range items {
		refs = append(refs, argHandle{H: it.h})
	}
	return mp.c.callBool(ctx, mp.h, "MoveClips", refs, argHandle{H: target.h})
}

// Folder wraps a media pool folder (bin).
type Folder struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (f *Folder) Release(ctx context.Context) { f.c.release(ctx, f.h) }

// Name returns the folder name.
func (f *Folder) Name(ctx context.Context) (string, error) {
	return f.c.callString(ctx, f.h, "GetName")
}

// Clips lists the media items in the folder.
func (f *Folder) Clips(ctx context.Context) ([]*MediaPoolItem, error) {
	handles, err := f.c.callHandles(ctx, f.h, "GetClipList")
	if err != nil {
		return nil, err
	}
	items := make([]*MediaPoolItem, 0, len(handles))
	for _, h := range handles {
		items = append(items, &MediaPoolItem{c: f.c, h: h})
	}
	return items, nil
}

// SubFolders lists the folder's child bins.
func (f *Folder) SubFolders(ctx context.Context) ([]*Folder, error) {
	handles, err := f.c.callHandles(ctx, f.h, "GetSubFolderList")
	if err != nil {
		return nil, err
	}
	folders := make([]*Folder, 0, len(handles))
	for _, h := range handles {
		folders = append(folders, &Folder{c: f.c, h: h})
	}
	return folders, nil
}

// MediaPoolItem wraps a media pool clip.
type MediaPoolItem struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (m *MediaPoolItem) Release(ctx context.Context) { m.c.release(ctx, m.h) }

// Name returns the clip name.
func (m *MediaPoolItem) Name(ctx context.Context) (string, error) {
	return m.c.callString(ctx, m.h, "GetName")
}

// ClipProperty reads one clip property ("Start TC", "File Path", ...).
func (m *MediaPoolItem) ClipProperty(ctx context.Context, key string) (string, error) {
	return m.c.callString(ctx, m.h, "GetClipProperty", key)
}

// ClipProperties reads all clip properties.
func (m *MediaPoolItem) ClipProperties(ctx context.Context) (map[string]any, error) {
	return m.c.callMap(ctx, m.h, "GetClipProperty")
}

// SetClipProperty writes a clip property.
func (m *MediaPoolItem) SetClipProperty(ctx context.Context, key, value string) (bool, error) {
	return m.c.callBool(ctx, m.h, "SetClipProperty", key, value)
}

// NodeGraph wraps a clip's grading node graph.
type NodeGraph struct {
	c *Client
	h string
}

// Release frees the bridge-side handle.
func (g *NodeGraph) Release(ctx context.Context) { g.c.release(ctx, g.h) }

// NumNodes returns the number of nodes in the graph.
func (g *NodeGraph) NumNodes(ctx context.Context) (int, error) {
	return g.c.callInt(ctx, g.h, "GetNumNodes")
}

// CurrentNode returns the 1-based index of the selected node.
func (g *NodeGraph) CurrentNode(ctx context.Context) (int, error) {
	return g.c.callInt(ctx, g.h, "GetCurrentNode")
}

// SetCurrentNode selects a node by 1-based index.
func (g *NodeGraph) SetCurrentNode(ctx context.Context, index int) (bool, error) {
	return g.c.callBool(ctx, g.h, "SetCurrentNode", index)
}

// AddSerialNode appends a serial node after the current node.
func (g *NodeGraph) AddSerialNode(ctx context.Context) (bool, error) {
	return g.c.callBool(ctx, g.h, "AddSerialNode")
}

// AddParallelNode adds a parallel node to the current node.
func (g *NodeGraph) AddParallelNode(ctx context.Context) (bool, error) {
	return g.c.callBool(ctx, g.h, "AddParallelNode")
}

// AddLayerNode adds a layer node to the current node.
func (g *NodeGraph) AddLayerNode(ctx context.Context) (bool, error) {
	return g.c.callBool(ctx, g.h, "AddLayerNode")
}

// DeleteCurrentNode removes the selected node.
func (g *NodeGraph) DeleteCurrentNode(ctx context.Context) (bool, error) {
	return g.c.callBool(ctx, g.h, "DeleteCurrentNode")
}

// ResetCurrentNode clears the selected node's grade.
func (g *NodeGraph) ResetCurrentNode(ctx context.Context) (bool, error) {
	return g.c.callBool(ctx, g.h, "ResetCurrentNode")
}

// NodeLabel returns the label of a 1-based indexed node.
func (g *NodeGraph) NodeLabel(ctx context.Context, index int) (string, error) {
	return g.c.callString(ctx, g.h, "GetNodeLabel", index)
}

// SetNodeLabel sets the label of a 1-based indexed node.
func (g *NodeGraph) SetNodeLabel(ctx context.Context, index int, label string) (bool, error) {
	return g.c.callBool(ctx, g.h, "SetNodeLabel", index, label)
}

// SetNodeColor tints a node in the graph view.
func (g *NodeGraph) SetNodeColor(ctx context.Context, index int, r, gg, b float64) (bool, error) {
	return g.c.callBool(ctx, g.h, "SetNodeColor", index, r, gg, b)
}

// PrimaryCorrection reads the lift/gamma/gain/contrast/saturation
// values of a node.
func (g *NodeGraph) PrimaryCorrection(ctx context.Context, index int) (map[string]any, error) {
	return g.c.callMap(ctx, g.h, "GetPrimaryCorrection", index)
}

// SetPrimaryCorrection writes primary correction values on a node.
func (g *NodeGraph) SetPrimaryCorrection(ctx context.Context, index int, params map[string]any) (bool, error) {
	return g.c.callBool(ctx, g.h, "SetPrimaryCorrection", index, params)
}

// SetLUT assigns a LUT file to a node.
func (g *NodeGraph) SetLUT(ctx context.Context, index int, path string) (bool, error) {
	return g.c.callBool(ctx, g.h, "SetLUT", index, path)
}
