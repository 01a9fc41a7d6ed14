package resolve

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
)

// fuscriptCandidates returns the OS-specific install locations of the
// fuscript binary, most likely first.
func fuscriptCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/DaVinci Resolve/DaVinci Resolve.app/Contents/Libraries/Fusion/fuscript",
			"/Library/Application Support/Blackmagic Design/DaVinci Resolve/Fusion/fuscript",
		}
	case "windows":
		programFiles := os.Getenv("PROGRAMFILES")
		if programFiles == "" {
			programFiles = `C:\Program Files`
		}
		return []string{
			programFiles + `\Blackmagic Design\DaVinci Resolve\fuscript.exe`,
		}
	default:
		return []string{
			"/opt/resolve/libs/Fusion/fuscript",
			"/home/resolve/libs/Fusion/fuscript",
		}
	}
}

// findFuscript resolves the fuscript binary path. An explicit override
// wins; otherwise install locations are probed in order.
func findFuscript(override string) (string, error) {
	const op = "resolve.findFuscript"

	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", errors.ConnectionWrap(err, op, fmt.Sprintf("configured fuscript path %q", override))
		}
		return override, nil
	}

	candidates := fuscriptCandidates()
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Connection(op, fmt.Sprintf(
		"fuscript not found; is DaVinci Resolve installed? (searched %s)",
		strings.Join(candidates, ", ")))
}
