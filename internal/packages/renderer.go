package packages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cellos/cell/internal/cellconfig"
)

// ErrPackageUnsupported is the sentinel matched by *PackageUnsupportedError.
var ErrPackageUnsupported = errors.New("unsupported package")

// PackageUnsupportedError is returned when no options file can be built
// for an install command. The command should run with its arguments unchanged.
type PackageUnsupportedError struct {
	Package string
	Args    []string
}

func (e *PackageUnsupportedError) Error() string {
	if e.Package == "" {
		return fmt.Sprintf("unsupported package or bad command: %s", strings.Join(e.Args, " "))
	}
	return fmt.Sprintf("unsupported package or bad command: %s", e.Package)
}

// Is makes errors.Is(err, ErrPackageUnsupported) match.
func (e *PackageUnsupportedError) Is(target error) bool { return target == ErrPackageUnsupported }

// Describer prints the configuration schema of a package.
type Describer interface {
	DescribeConfig(ctx context.Context, pkg string) ([]byte, error)
}

// CLIDescriber runs `dcos package describe --config <pkg>`.
type CLIDescriber struct {
	Binary string
	// Env is appended to the current environment.
	Env []string
}

// DescribeConfig implements Describer.
func (d *CLIDescriber) DescribeConfig(ctx context.Context, pkg string) ([]byte, error) {
	binary := d.Binary
	if binary == "" {
		binary = "dcos"
	}
	cmd := exec.CommandContext(ctx, binary, "package", "describe", "--config", pkg)
	cmd.Env = append(os.Environ(), d.Env...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to describe package %s: %w", pkg, err)
	}
	return out, nil
}

// SnapshotSource provides the generic cell configuration.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*cellconfig.Snapshot, error)
}

// Renderer prepares package install commands.
type Renderer struct {
	Describer    Describer
	Snapshots    SnapshotSource
	Replacements Replacements
	// Dir receives <pkg>.json.template and <pkg>.json.
	Dir  string
	Logf func(format string, v ...interface{})
}

// NewRenderer returns a Renderer writing into dir with the default replacements.
func NewRenderer(d Describer, snapshots SnapshotSource, dir string) *Renderer {
	return &Renderer{
		Describer:    d,
		Snapshots:    snapshots,
		Replacements: DefaultReplacements,
		Dir:          dir,
		Logf:         log.Printf,
	}
}

// TemplatePath is where the options template of pkg is written.
func (r *Renderer) TemplatePath(pkg string) string {
	return filepath.Join(r.Dir, pkg+".json.template")
}

// OptionsPath is where the rendered options of pkg are written.
func (r *Renderer) OptionsPath(pkg string) string {
	return filepath.Join(r.Dir, pkg+".json")
}

// PrepareInstall rewrites a `package install ... <pkg>` command so it
// installs with cell-specific options. Other commands are returned as is.
// The returned slice is always a copy; on error args should be used.
func (r *Renderer) PrepareInstall(ctx context.Context, args []string) ([]string, error) {
	out := append([]string(nil), args...)
	if len(args) < 2 || args[0] != "package" || args[1] != "install" {
		return out, nil
	}

	pkg := args[len(args)-1]
	if strings.HasPrefix(pkg, "--") {
		return out, &PackageUnsupportedError{Args: args}
	}
	if contains(args, "--cli") && !contains(args, "--app") {
		r.Logf("Not using options for cli install")
		return out, nil
	}

	schema, err := r.Describer.DescribeConfig(ctx, pkg)
	if err != nil {
		return out, err
	}
	node, err := ParseSchema(schema)
	if err != nil {
		return out, err
	}
	tmpl := Compile(node, r.Replacements)
	if len(tmpl) == 0 {
		return out, &PackageUnsupportedError{Package: pkg, Args: args}
	}
	if err := writeJSON(r.TemplatePath(pkg), tmpl); err != nil {
		return out, err
	}

	r.Logf("Found supported package %s, rendering options file", pkg)
	snap, err := r.Snapshots.Snapshot(ctx)
	if err != nil {
		return out, err
	}
	options, err := Render(tmpl, snap.Values())
	if err != nil {
		return out, err
	}

	optionsPath := r.OptionsPath(pkg)
	idx, userPath := optionsArg(args)
	if idx < 0 {
		if err := writeJSON(optionsPath, options); err != nil {
			return out, err
		}
		r.Logf("Adding package install options %s", optionsPath)
		out = append(out[:len(out)-1], "--options="+optionsPath, pkg)
		return out, nil
	}

	r.Logf("Command already contains --options, merging options file %s", userPath)
	user, err := readJSON(userPath)
	if err != nil {
		return out, err
	}
	if err := writeJSON(optionsPath, Merge(options, user)); err != nil {
		return out, err
	}
	if strings.HasPrefix(out[idx], "--options=") {
		out[idx] = "--options=" + optionsPath
	} else {
		out[idx+1] = optionsPath
	}
	return out, nil
}

// optionsArg finds a user supplied options file. idx points at the
// argument to rewrite: the flag itself for --options=<file>, the flag
// (value at idx+1) for --options <file>.
func optionsArg(args []string) (int, string) {
	for i, a := range args {
		if strings.HasPrefix(a, "--options=") {
			return i, strings.TrimPrefix(a, "--options=")
		}
		if a == "--options" && i+1 < len(args) {
			return i, args[i+1]
		}
	}
	return -1, ""
}

func contains(args []string, s string) bool {
	for _, a := range args {
		if a == s {
			return true
		}
	}
	return false
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	var v map[string]interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse options file %s: %w", path, err)
	}
	return v, nil
}
