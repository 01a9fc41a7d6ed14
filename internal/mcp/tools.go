package mcp

// toolSpec carries the agent-facing description and input schema for
// one operation.
type toolSpec struct {
	description string
	schema      InputSchema
}

func objSchema(required []string, props map[string]Property) InputSchema {
	return InputSchema{Type: "object", Properties: props, Required: required}
}

var emptySchema = InputSchema{Type: "object"}

// mutatingOps marks operations that change host state. A successful
// call invalidates the state-dependent resource cache entries.
var mutatingOps = map[string]bool{
	"create_project":       true,
	"open_project":         true,
	"save_project":         true,
	"create_timeline":      true,
	"set_current_timeline": true,
	"delete_timeline":      true,
	"duplicate_timeline":   true,
	"select_clips_by_name": true,

	"add_timeline_marker":     true,
	"update_marker":           true,
	"delete_marker":           true,
	"delete_markers_by_color": true,

	"import_media":         true,
	"create_bin":           true,
	"move_clip_to_bin":     true,
	"add_clip_to_timeline": true,
	"set_clip_property":    true,

	"set_current_node_index": true,
	"add_serial_node":        true,
	"add_parallel_node":      true,
	"add_layer_node":         true,
	"delete_current_node":    true,
	"reset_current_node":     true,
	"set_primary_correction": true,
	"set_node_label":         true,
	"set_node_color":         true,
	"apply_lut":              true,

	"add_render_job":    true,
	"render_project":    true,
	"delete_render_job": true,
	"start_rendering":   true,
	"stop_rendering":    true,

	"set_project_setting":  true,
	"set_timeline_setting": true,

	"save_layout_preset":   true,
	"load_layout_preset":   true,
	"delete_layout_preset": true,
}

var toolSpecs = map[string]toolSpec{
	"get_projects": {
		description: "List project names in the current project manager folder",
		schema:      emptySchema,
	},
	"get_project_info": {
		description: "Get the open project's name, timelines, and current timeline",
		schema:      emptySchema,
	},
	"create_project": {
		description: "Create a new project and open it",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Project name, must not already exist"},
		}),
	},
	"open_project": {
		description: "Open an existing project by name",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Project name"},
		}),
	},
	"save_project": {
		description: "Save the open project",
		schema:      emptySchema,
	},
	"get_api_capabilities": {
		description: "Connect to the host and report the probed scripting API surface",
		schema:      emptySchema,
	},

	"get_timeline_info": {
		description: "Get the current timeline's frame range, frame rate, tracks, and marker count",
		schema:      emptySchema,
	},
	"list_timelines": {
		description: "List every timeline in the open project",
		schema:      emptySchema,
	},
	"create_timeline": {
		description: "Create an empty timeline",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Timeline name, must not already exist"},
		}),
	},
	"set_current_timeline": {
		description: "Switch the current timeline by name",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Timeline name"},
		}),
	},
	"delete_timeline": {
		description: "Delete a timeline by name, switching away first if it is current",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Timeline name"},
		}),
	},
	"duplicate_timeline": {
		description: "Duplicate a timeline under a new name; may fall back to an empty timeline (partial_success)",
		schema: objSchema([]string{"source"}, map[string]Property{
			"source": {Type: "string", Description: "Timeline to copy"},
			"target": {Type: "string", Description: "Name for the copy", Default: "<source> Copy"},
		}),
	},
	"get_timeline_clips": {
		description: "List clips on the current timeline with track and frame positions",
		schema: objSchema(nil, map[string]Property{
			"track_type": {Type: "string", Description: "video or audio", Default: "video"},
		}),
	},
	"select_clips_by_name": {
		description: "Select timeline clips whose names contain a substring (case-insensitive); falls back to flagging",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name":       {Type: "string", Description: "Substring to match against clip names"},
			"track_type": {Type: "string", Description: "video or audio", Default: "video"},
		}),
	},
	"export_timeline": {
		description: "Export the current timeline to a file (edl, xml, aaf, or drt)",
		schema: objSchema([]string{"path"}, map[string]Property{
			"path":   {Type: "string", Description: "Destination file path on the host machine"},
			"format": {Type: "string", Description: "edl, xml, aaf, or drt", Default: "edl"},
		}),
	},

	"get_timeline_markers": {
		description: "List markers on the current timeline",
		schema:      emptySchema,
	},
	"add_timeline_marker": {
		description: "Add a marker to the current timeline; the frame defaults to the timeline start",
		schema: objSchema(nil, map[string]Property{
			"frame":       {Type: "integer", Description: "Timeline frame for the marker"},
			"color":       {Type: "string", Description: "Marker color from the host palette", Default: "Blue"},
			"name":        {Type: "string", Description: "Marker name"},
			"note":        {Type: "string", Description: "Marker note"},
			"duration":    {Type: "integer", Description: "Duration in frames", Default: 1},
			"custom_data": {Type: "string", Description: "Opaque data attached to the marker"},
		}),
	},
	"update_marker": {
		description: "Update a marker in place by frame; unset fields keep their values",
		schema: objSchema([]string{"frame"}, map[string]Property{
			"frame":       {Type: "integer", Description: "Frame of the marker to update"},
			"color":       {Type: "string", Description: "New color"},
			"name":        {Type: "string", Description: "New name"},
			"note":        {Type: "string", Description: "New note"},
			"duration":    {Type: "integer", Description: "New duration in frames"},
			"custom_data": {Type: "string", Description: "New custom data"},
		}),
	},
	"delete_marker": {
		description: "Delete the marker at a frame",
		schema: objSchema([]string{"frame"}, map[string]Property{
			"frame": {Type: "integer", Description: "Frame of the marker"},
		}),
	},
	"delete_markers_by_color": {
		description: "Delete every marker of a color, or all markers with color \"All\"",
		schema: objSchema([]string{"color"}, map[string]Property{
			"color": {Type: "string", Description: "Palette color or All"},
		}),
	},

	"get_clip_source_timecode": {
		description: "Get the source in/out timecode of one timeline clip",
		schema: objSchema([]string{"clip_index"}, map[string]Property{
			"clip_index": {Type: "integer", Description: "Zero-based clip position in the track"},
			"track":      {Type: "integer", Description: "Track number", Default: 1},
			"track_type": {Type: "string", Description: "video or audio", Default: "video"},
		}),
	},
	"get_source_timecode_report": {
		description: "Build a source timecode report for every clip on the current timeline",
		schema:      emptySchema,
	},
	"export_source_timecode_report": {
		description: "Write the source timecode report to a file as csv, json, or edl",
		schema: objSchema([]string{"path"}, map[string]Property{
			"path":   {Type: "string", Description: "Destination file path"},
			"format": {Type: "string", Description: "csv, json, or edl; inferred from the extension when omitted"},
		}),
	},

	"get_media_pool_items": {
		description: "List clips in the media pool root or a named bin",
		schema: objSchema(nil, map[string]Property{
			"bin": {Type: "string", Description: "Bin name; the root folder when omitted"},
		}),
	},
	"import_media": {
		description: "Import media files into the current media pool folder",
		schema: objSchema([]string{"paths"}, map[string]Property{
			"paths": {Type: "array", Description: "Absolute file paths on the host machine"},
		}),
	},
	"create_bin": {
		description: "Create a media pool bin",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name":   {Type: "string", Description: "Bin name"},
			"parent": {Type: "string", Description: "Parent bin; the root folder when omitted"},
		}),
	},
	"list_bins": {
		description: "List media pool bins as slash-separated paths",
		schema:      emptySchema,
	},
	"move_clip_to_bin": {
		description: "Move a media pool clip into a bin",
		schema: objSchema([]string{"clip", "bin"}, map[string]Property{
			"clip": {Type: "string", Description: "Clip name"},
			"bin":  {Type: "string", Description: "Destination bin name"},
		}),
	},
	"add_clip_to_timeline": {
		description: "Append a media pool clip to the current timeline",
		schema: objSchema([]string{"clip"}, map[string]Property{
			"clip": {Type: "string", Description: "Clip name"},
		}),
	},
	"get_clip_info": {
		description: "Get the media pool properties of a clip",
		schema: objSchema([]string{"clip"}, map[string]Property{
			"clip": {Type: "string", Description: "Clip name"},
		}),
	},
	"set_clip_property": {
		description: "Set one media pool clip property",
		schema: objSchema([]string{"clip", "key", "value"}, map[string]Property{
			"clip":  {Type: "string", Description: "Clip name"},
			"key":   {Type: "string", Description: "Property name"},
			"value": {Type: "string", Description: "Property value"},
		}),
	},

	"get_node_list": {
		description: "List grading nodes of the clip under the playhead (color page)",
		schema:      emptySchema,
	},
	"get_current_node_index": {
		description: "Get the selected grading node index",
		schema:      emptySchema,
	},
	"set_current_node_index": {
		description: "Select a grading node by index",
		schema: objSchema([]string{"index"}, map[string]Property{
			"index": {Type: "integer", Description: "One-based node index"},
		}),
	},
	"add_serial_node":     {description: "Append a serial grading node after the current node", schema: emptySchema},
	"add_parallel_node":   {description: "Add a parallel grading node beside the current node", schema: emptySchema},
	"add_layer_node":      {description: "Add a layer grading node", schema: emptySchema},
	"delete_current_node": {description: "Delete the selected grading node", schema: emptySchema},
	"reset_current_node":  {description: "Reset the selected grading node to defaults", schema: emptySchema},
	"get_primary_correction": {
		description: "Read primary correction parameters of a node",
		schema: objSchema(nil, map[string]Property{
			"index": {Type: "integer", Description: "Node index; the current node when omitted"},
		}),
	},
	"set_primary_correction": {
		description: "Write primary correction parameters (lift, gamma, gain, saturation and friends)",
		schema: objSchema([]string{"correction"}, map[string]Property{
			"correction": {Type: "object", Description: "Parameter name to value map"},
			"index":      {Type: "integer", Description: "Node index; the current node when omitted"},
		}),
	},
	"set_node_label": {
		description: "Label a grading node",
		schema: objSchema([]string{"label"}, map[string]Property{
			"label": {Type: "string", Description: "Node label"},
			"index": {Type: "integer", Description: "Node index; the current node when omitted"},
		}),
	},
	"set_node_color": {
		description: "Tint a grading node in the node graph",
		schema: objSchema(nil, map[string]Property{
			"red":   {Type: "number", Description: "Red component 0..1"},
			"green": {Type: "number", Description: "Green component 0..1"},
			"blue":  {Type: "number", Description: "Blue component 0..1"},
			"index": {Type: "integer", Description: "Node index; the current node when omitted"},
		}),
	},
	"apply_lut": {
		description: "Apply a LUT file to a grading node",
		schema: objSchema([]string{"path"}, map[string]Property{
			"path":  {Type: "string", Description: "LUT file path visible to the host"},
			"index": {Type: "integer", Description: "Node index; the current node when omitted"},
		}),
	},

	"get_render_presets": {description: "List render presets", schema: emptySchema},
	"get_render_formats": {description: "List render output formats", schema: emptySchema},
	"get_render_codecs": {
		description: "List codecs available for a render format",
		schema: objSchema([]string{"format"}, map[string]Property{
			"format": {Type: "string", Description: "Render format name"},
		}),
	},
	"get_render_jobs": {description: "List queued render jobs", schema: emptySchema},
	"add_render_job": {
		description: "Queue the current timeline for render",
		schema: objSchema(nil, map[string]Property{
			"preset":      {Type: "string", Description: "Render preset to load first"},
			"target_dir":  {Type: "string", Description: "Output directory; the configured default when omitted"},
			"custom_name": {Type: "string", Description: "Output file name"},
			"settings":    {Type: "object", Description: "Raw render settings overriding the preset"},
		}),
	},
	"render_project": {
		description: "Queue the current timeline and start rendering it in one call",
		schema: objSchema(nil, map[string]Property{
			"preset":      {Type: "string", Description: "Render preset to load first"},
			"target_dir":  {Type: "string", Description: "Output directory; the configured default when omitted"},
			"custom_name": {Type: "string", Description: "Output file name"},
			"settings":    {Type: "object", Description: "Raw render settings overriding the preset"},
		}),
	},
	"delete_render_job": {
		description: "Remove a render job from the queue",
		schema: objSchema([]string{"job_id"}, map[string]Property{
			"job_id": {Type: "string", Description: "Render job id"},
		}),
	},
	"start_rendering": {
		description: "Start rendering queued jobs",
		schema: objSchema(nil, map[string]Property{
			"job_ids":     {Type: "array", Description: "Job ids; the whole queue when omitted"},
			"interactive": {Type: "boolean", Description: "Leave the deliver page interactive", Default: false},
		}),
	},
	"stop_rendering": {description: "Stop the active render", schema: emptySchema},
	"get_render_job_status": {
		description: "Get the status and completion of one render job",
		schema: objSchema([]string{"job_id"}, map[string]Property{
			"job_id": {Type: "string", Description: "Render job id"},
		}),
	},

	"get_project_setting": {
		description: "Read one project setting, or the whole table when key is omitted",
		schema: objSchema(nil, map[string]Property{
			"key": {Type: "string", Description: "Setting key"},
		}),
	},
	"set_project_setting": {
		description: "Write one project setting",
		schema: objSchema([]string{"key", "value"}, map[string]Property{
			"key":   {Type: "string", Description: "Setting key"},
			"value": {Type: "string", Description: "Setting value; numbers and booleans are accepted"},
		}),
	},
	"get_timeline_setting": {
		description: "Read one current-timeline setting, or the whole table when key is omitted",
		schema: objSchema(nil, map[string]Property{
			"key": {Type: "string", Description: "Setting key"},
		}),
	},
	"set_timeline_setting": {
		description: "Write one current-timeline setting",
		schema: objSchema([]string{"key", "value"}, map[string]Property{
			"key":   {Type: "string", Description: "Setting key"},
			"value": {Type: "string", Description: "Setting value; numbers and booleans are accepted"},
		}),
	},

	"list_layout_presets": {description: "List saved UI layout presets", schema: emptySchema},
	"save_layout_preset": {
		description: "Save the current UI layout under a name and export it to the preset directory",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Preset name"},
		}),
	},
	"load_layout_preset": {
		description: "Apply a saved UI layout, importing the exported file when needed",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Preset name"},
		}),
	},
	"delete_layout_preset": {
		description: "Delete a UI layout preset from the host and the preset directory",
		schema: objSchema([]string{"name"}, map[string]Property{
			"name": {Type: "string", Description: "Preset name"},
		}),
	},
}

// listTools builds the tool list from the registry so the surface can
// never drift from what Dispatch accepts.
func (s *Server) listTools() []Tool {
	supported := s.registry.Supported()
	tools := make([]Tool, 0, len(supported))
	for _, op := range supported {
		spec, ok := toolSpecs[op]
		if !ok {
			spec = toolSpec{schema: emptySchema}
		}
		tools = append(tools, Tool{
			Name:        toolPrefix + op,
			Description: spec.description,
			InputSchema: spec.schema,
		})
	}
	return tools
}
