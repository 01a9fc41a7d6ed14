package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/postflow/resolve-mcp/internal/resolve"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection to DaVinci Resolve",
	Long: `Connect to the local DaVinci Resolve instance and report what it
supports.

This command shows:
  - Connection state (connected, degraded, or unreachable)
  - Resolve version
  - Which scripting entry points responded to the probe
  - The open project, if any

Examples:
  # Check the connection
  resolve-mcp status

  # Output as JSON
  resolve-mcp status --json`,
	RunE: runStatus,
}

// StatusOutput represents the status command output.
type StatusOutput struct {
	Connected      bool                 `json:"connected"`
	State          string               `json:"state"`
	ResolveVersion string               `json:"resolve_version,omitempty"`
	Capabilities   resolve.Capabilities `json:"capabilities"`
	Project        string               `json:"project,omitempty"`
	Error          string               `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Resolve.ConnectTimeout)
	defer cancel()

	slogger := slogLogger()
	_, client, _, err := buildRegistry(slogger)
	if err != nil {
		return err
	}
	defer client.Close()

	output := &StatusOutput{}
	if err := client.Connect(ctx); err != nil {
		output.Error = err.Error()
	}
	output.Connected = client.Connected()
	output.State = string(client.State())
	output.ResolveVersion = client.Version()
	output.Capabilities = client.Capabilities()

	if output.Connected {
		if pm, err := client.ProjectManager(ctx); err == nil {
			if project, err := pm.CurrentProject(ctx); err == nil {
				if name, err := project.Name(ctx); err == nil {
					output.Project = name
				}
				project.Release(ctx)
			}
			pm.Release(ctx)
		}
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(output)
	}
	printStatus(output)
	return nil
}

func printStatus(output *StatusOutput) {
	fmt.Println(styles.Title.Render("DaVinci Resolve"))

	switch {
	case output.Connected && output.State == string(resolve.StateDegraded):
		fmt.Printf("  %s %s\n", styles.Warning.Render("●"), "connected (degraded)")
	case output.Connected:
		fmt.Printf("  %s %s\n", styles.Success.Render("●"), "connected")
	default:
		fmt.Printf("  %s %s\n", styles.Error.Render("●"), "unreachable")
		if output.Error != "" {
			fmt.Printf("  %s\n", styles.Subtle.Render(output.Error))
		}
		fmt.Println()
		fmt.Println(styles.Subtle.Render("Is Resolve running with external scripting set to Local?"))
		return
	}

	if output.ResolveVersion != "" {
		fmt.Printf("  %s %s\n", styles.Bold.Render("version:"), output.ResolveVersion)
	}
	if output.Project != "" {
		fmt.Printf("  %s %s\n", styles.Bold.Render("project:"), output.Project)
	}
	fmt.Printf("  %s %d of %d entry points responded\n",
		styles.Bold.Render("api:"), output.Capabilities.Count(), 10)
}
