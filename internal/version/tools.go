package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// versionRegex matches output like "Python 3.12.1" or "git version 2.43.0".
var versionRegex = regexp.MustCompile(`v?\d+\.\d+(?:\.\d+)?(?:[-+][a-zA-Z0-9.]+)?`)

// MinPython is the oldest interpreter generated projects support.
const MinPython = "3.9"

// detectTimeout bounds each "<tool> --version" call.
const detectTimeout = 5 * time.Second

// Tool describes an external program used by the task runner.
type Tool struct {
	Name string
	// Candidates are tried in order; the first found in PATH wins.
	Candidates []string
	// MinVersion is the oldest supported MAJOR.MINOR, or "" for any.
	MinVersion string
}

// Tools lists the programs tasks shell out to.
var Tools = []Tool{
	{Name: "python", Candidates: []string{"python3", "python"}, MinVersion: MinPython},
	{Name: "git", Candidates: []string{"git"}},
	{Name: "docker", Candidates: []string{"docker"}},
}

// ToolInfo contains the detection result for one tool.
type ToolInfo struct {
	Name       string `json:"name"`
	Version    string `json:"version,omitempty"`
	Path       string `json:"path,omitempty"`
	Found      bool   `json:"found"`
	Compatible bool   `json:"compatible"`
	Message    string `json:"message,omitempty"`
}

// String returns a one-line summary.
func (t ToolInfo) String() string {
	if !t.Found {
		return fmt.Sprintf("  %-8s not found", t.Name)
	}
	status := "compatible"
	if !t.Compatible {
		status = t.Message
	}
	return fmt.Sprintf("  %-8s %s (%s)  %s", t.Name, t.Version, status, t.Path)
}

// DetectTools detects every entry of Tools.
func DetectTools(ctx context.Context) []ToolInfo {
	infos := make([]ToolInfo, 0, len(Tools))
	for _, t := range Tools {
		infos = append(infos, Detect(ctx, t))
	}
	return infos
}

// Detect finds a tool in PATH and checks its version.
func Detect(ctx context.Context, t Tool) ToolInfo {
	info := ToolInfo{Name: t.Name}

	for _, c := range t.Candidates {
		if path, err := exec.LookPath(c); err == nil {
			info.Path = path
			break
		}
	}
	if info.Path == "" {
		info.Message = "not found in PATH"
		return info
	}
	info.Found = true

	version, err := toolVersion(ctx, info.Path)
	if err != nil {
		info.Message = "failed to get version: " + err.Error()
		return info
	}
	info.Version = version
	info.Compatible, info.Message = checkMinimum(t.MinVersion, version)
	return info
}

func toolVersion(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "--version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return extractVersion(out.String())
}

// extractVersion pulls the first version number out of tool output.
func extractVersion(output string) (string, error) {
	match := versionRegex.FindString(output)
	if match == "" {
		return "", &versionParseError{output: strings.TrimSpace(output)}
	}
	return strings.TrimPrefix(match, "v"), nil
}

// checkMinimum compares MAJOR.MINOR against a minimum.
func checkMinimum(minimum, version string) (bool, string) {
	if minimum == "" {
		return true, "compatible"
	}
	haveMajor, haveMinor, ok := majorMinor(version)
	wantMajor, wantMinor, ok2 := majorMinor(minimum)
	if !ok || !ok2 {
		return false, "incompatible - invalid version format"
	}
	if haveMajor != wantMajor {
		return false, "incompatible - MAJOR version mismatch"
	}
	if haveMinor < wantMinor {
		return false, "incompatible - requires " + minimum + " or newer"
	}
	return true, "compatible"
}

func majorMinor(v string) (int, int, bool) {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err := strconv.Atoi(strings.TrimFunc(parts[1], func(r rune) bool { return r < '0' || r > '9' }))
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// versionParseError indicates failure to parse tool version output.
type versionParseError struct {
	output string
}

func (e *versionParseError) Error() string {
	return "failed to parse version from output: " + e.output
}
