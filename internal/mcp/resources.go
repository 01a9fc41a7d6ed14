package mcp

import "context"

// resourceSpec binds a resource URI to the operation that produces it.
// trim, when set, projects the operation result down to the fields the
// resource advertises.
type resourceSpec struct {
	name        string
	description string
	op          string
	trim        func(map[string]any) map[string]any
}

var resourceSpecs = []struct {
	uri  string
	spec resourceSpec
}{
	{"resolve://version", resourceSpec{
		name:        "Host version",
		description: "Version string of the connected editing host",
		op:          "get_api_capabilities",
		trim: func(result map[string]any) map[string]any {
			out := map[string]any{"state": result["state"]}
			if v, ok := result["resolve_version"]; ok {
				out["resolve_version"] = v
			}
			return out
		},
	}},
	{"resolve://capabilities", resourceSpec{
		name:        "API capabilities",
		description: "Probed scripting API surface of the connected host",
		op:          "get_api_capabilities",
	}},
	{"resolve://project", resourceSpec{
		name:        "Current project",
		description: "Open project with its timelines",
		op:          "get_project_info",
	}},
	{"resolve://timelines", resourceSpec{
		name:        "Current timeline",
		description: "Frame range, frame rate, and track counts of the current timeline",
		op:          "get_timeline_info",
	}},
	{"resolve://markers", resourceSpec{
		name:        "Timeline markers",
		description: "Markers on the current timeline",
		op:          "get_timeline_markers",
	}},
	{"resolve://media-pool", resourceSpec{
		name:        "Media pool",
		description: "Clips in the media pool root folder",
		op:          "get_media_pool_items",
	}},
	{"resolve://render-queue", resourceSpec{
		name:        "Render queue",
		description: "Queued render jobs",
		op:          "get_render_jobs",
	}},
}

func (s *Server) listResources() []Resource {
	resources := make([]Resource, 0, len(resourceSpecs))
	for _, entry := range resourceSpecs {
		resources = append(resources, Resource{
			URI:         entry.uri,
			Name:        entry.spec.name,
			Description: entry.spec.description,
			MIMEType:    "application/json",
		})
	}
	return resources
}

// readResource resolves a resource URI through the operation registry.
// A nil result with nil error means the URI is not one of ours.
func (s *Server) readResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	for _, entry := range resourceSpecs {
		if entry.uri != uri {
			continue
		}
		result, err := s.registry.Dispatch(ctx, entry.spec.op, nil)
		if err != nil {
			return nil, err
		}
		if entry.spec.trim != nil {
			result = entry.spec.trim(result)
		}
		content, err := NewJSONResourceContent(uri, result)
		if err != nil {
			return nil, err
		}
		return &ReadResourceResult{Contents: []ResourceContent{content}}, nil
	}
	return nil, nil
}
