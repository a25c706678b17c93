// Package prerequisites checks that the external tools a command spawns
// are installed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

var (
	toolSSH = Tool{
		Name:        "ssh",
		Required:    true,
		Description: "Required to reach cell nodes and run the SOCKS proxy",
		InstallURL:  "https://www.openssh.com/portable.html",
	}
	toolTmux = Tool{
		Name:        "tmux",
		Required:    true,
		Description: "Required by mux to open one pane per node",
		InstallURL:  "https://github.com/tmux/tmux/wiki/Installing",
	}
	toolMux = Tool{
		Name:        "mux",
		Required:    true,
		Description: "tmuxinator launcher used by the mux command",
		InstallURL:  "https://github.com/tmuxinator/tmuxinator",
	}
	toolI2CSSH = Tool{
		Name:        "i2cssh",
		Required:    true,
		Description: "iTerm2 cluster ssh used by the i2cssh command",
		InstallURL:  "https://github.com/wouterdebie/i2cssh",
	}
	toolDCOS = Tool{
		Name:        "dcos",
		Required:    true,
		Description: "Package manager CLI driven by the dcos command",
		InstallURL:  "https://github.com/dcos/dcos-cli",
	}
)

// SSHTools returns the tools needed by ssh and proxy.
func SSHTools() []Tool { return []Tool{toolSSH} }

// MuxTools returns the tools needed by mux.
func MuxTools() []Tool { return []Tool{toolSSH, toolTmux, toolMux} }

// I2CSSHTools returns the tools needed by i2cssh.
func I2CSSHTools() []Tool { return []Tool{toolSSH, toolI2CSSH} }

// DCOSTools returns the tools needed by dcos.
func DCOSTools() []Tool { return []Tool{toolDCOS} }

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// LookPath resolves a binary name. It is a variable for tests.
var LookPath = exec.LookPath

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}
		if path, err := LookPath(tool.Name); err == nil {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}
		results.Results = append(results.Results, result)
	}

	return results
}

// Require checks tools and returns an error naming every missing required one.
func Require(tools []Tool) error {
	return Check(tools).Error()
}
