package resolve

// Capabilities records which vendor entry points responded during the
// connection probe. Operations consult it to fail fast with a precise
// message instead of a nil hop deep in a handler, and every error
// payload carries it so callers can see what the running installation
// supports.
type Capabilities struct {
	GetProjectManager  bool `json:"get_project_manager"`
	GetProjectList     bool `json:"get_project_list"`
	GetCurrentProject  bool `json:"get_current_project"`
	GetProjectName     bool `json:"get_project_name"`
	GetTimelineNames   bool `json:"get_timeline_names"`
	GetCurrentTimeline bool `json:"get_current_timeline"`
	GetTimelineByIndex bool `json:"get_timeline_by_index"`
	GetMediaPool       bool `json:"get_media_pool"`
	GetRootFolder      bool `json:"get_root_folder"`
	GetClipList        bool `json:"get_clip_list"`
}

// Count returns how many probed entry points responded.
func (c Capabilities) Count() int {
	n := 0
	for _, ok := range []bool{
		c.GetProjectManager, c.GetProjectList, c.GetCurrentProject,
		c.GetProjectName, c.GetTimelineNames, c.GetCurrentTimeline,
		c.GetTimelineByIndex, c.GetMediaPool, c.GetRootFolder, c.GetClipList,
	} {
		if ok {
			n++
		}
	}
	return n
}

// Full reports whether every probed entry point responded.
func (c Capabilities) Full() bool {
	return c.Count() == 10
}
