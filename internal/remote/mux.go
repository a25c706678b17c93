package remote

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/inventory"
	"github.com/cellos/cell/internal/util/prerequisites"
)

// MuxProject is a tmuxinator project file.
type MuxProject struct {
	Name    string                 `yaml:"name"`
	Root    string                 `yaml:"root"`
	Windows []map[string]MuxWindow `yaml:"windows"`
}

// MuxWindow is one tmux window; every pane is labeled with the node's
// private IP and runs its commands in order.
type MuxWindow struct {
	Layout string                `yaml:"layout"`
	Panes  []map[string][]string `yaml:"panes"`
}

// MuxProjectPath is the tmuxinator file of the cell.
func (a *Access) MuxProjectPath() string {
	return filepath.Join(a.TmuxinatorDir, a.cfg.Cell.FullName()+".yml")
}

// BuildMuxProject lays out one window per role and one pane per node.
func (a *Access) BuildMuxProject(ctx context.Context, role cell.Role) (*MuxProject, error) {
	field, err := a.addressField(ctx)
	if err != nil {
		return nil, err
	}

	selected := roles(role)
	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })

	project := &MuxProject{Name: a.cfg.Cell.FullName(), Root: "~/"}
	for _, r := range selected {
		rows, err := a.backend.Instances(ctx, r, []inventory.Field{inventory.FieldPrivateIP, field})
		if err != nil {
			return nil, err
		}
		window := MuxWindow{Layout: "tiled", Panes: []map[string][]string{}}
		for _, row := range rows {
			if len(row) < 2 || row[1] == "" {
				continue
			}
			sshCmd := "ssh " + strings.Join(a.SSHArgs(row[1]), " ")
			window.Panes = append(window.Panes, map[string][]string{row[0]: {sshCmd, "clear"}})
		}
		project.Windows = append(project.Windows, map[string]MuxWindow{string(r): window})
	}
	return project, nil
}

// Mux writes the tmuxinator project of the cell and starts it.
func (a *Access) Mux(ctx context.Context, role cell.Role) error {
	if err := prerequisites.Require(prerequisites.MuxTools()); err != nil {
		return err
	}
	if err := a.configs.Ensure(ctx); err != nil {
		return err
	}
	project, err := a.BuildMuxProject(ctx, role)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal mux project: %w", err)
	}
	if err := os.MkdirAll(a.TmuxinatorDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", a.TmuxinatorDir, err)
	}
	if err := os.WriteFile(a.MuxProjectPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.MuxProjectPath(), err)
	}
	return a.Runner.Run(ctx, Command{Name: "mux", Args: []string{a.cfg.Cell.FullName()}})
}
