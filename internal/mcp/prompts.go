package mcp

import (
	"context"
	"fmt"
)

var promptList = []Prompt{
	{
		Name:        "grading-review",
		Description: "Walk the timeline and review the grade of each clip",
		Arguments: []PromptArgument{
			{Name: "focus", Description: "Aspect to concentrate on, such as skin tones or matching"},
		},
	},
	{
		Name:        "marker-summary",
		Description: "Summarize timeline markers into an editor-facing note list",
		Arguments: []PromptArgument{
			{Name: "color", Description: "Only include markers of this color"},
		},
	},
	{
		Name:        "render-handoff",
		Description: "Prepare a render queue handoff checklist for delivery",
	},
}

func (s *Server) listPrompts() []Prompt {
	return promptList
}

func (s *Server) getPrompt(ctx context.Context, name string, args map[string]string) (*GetPromptResult, error) {
	switch name {
	case "grading-review":
		focus := args["focus"]
		text := "Review the grade of the current timeline. " +
			"Use resolve.get_timeline_clips to walk the clips, then for each clip inspect the node " +
			"graph with resolve.get_node_list and resolve.get_primary_correction. Flag clips whose " +
			"correction looks unfinished or inconsistent with their neighbors, and add a Red marker " +
			"with resolve.add_timeline_marker at each one explaining the issue."
		if focus != "" {
			text += fmt.Sprintf(" Concentrate on %s.", focus)
		}
		return &GetPromptResult{
			Description: "Clip-by-clip grading review",
			Messages:    []PromptMessage{NewPromptMessage(text)},
		}, nil

	case "marker-summary":
		text := "Read resolve://markers and produce a concise note list for the editor: " +
			"one line per marker with its timecode position, color, name, and note. Group the lines " +
			"by color and order them by frame."
		if color := args["color"]; color != "" {
			text += fmt.Sprintf(" Only include %s markers.", color)
		}
		return &GetPromptResult{
			Description: "Marker note list",
			Messages:    []PromptMessage{NewPromptMessage(text)},
		}, nil

	case "render-handoff":
		text := "Prepare a delivery handoff. Read resolve://render-queue and resolve://timelines, then " +
			"report for each queued job its id, status, and completion, and call out anything that " +
			"blocks delivery: an empty queue, failed jobs, or a timeline frame rate that does not " +
			"match the project setting from resolve.get_project_setting with key timelineFrameRate."
		return &GetPromptResult{
			Description: "Render queue handoff checklist",
			Messages:    []PromptMessage{NewPromptMessage(text)},
		}, nil
	}
	return nil, nil
}
