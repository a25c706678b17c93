package cellconfig

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cellos/cell/internal/cell"
	"github.com/cellos/cell/internal/inventory"
)

// Snapshot is the generic cell configuration. Its keys are the
// placeholders package options are rendered against.
type Snapshot struct {
	ZK       string `yaml:"zk"`
	Mesos    string `yaml:"mesos"`
	Marathon string `yaml:"marathon"`
	Cell     string `yaml:"cell"`
	DNS      string `yaml:"dns"`
}

// Values returns the snapshot as a template context.
func (s *Snapshot) Values() map[string]interface{} {
	return map[string]interface{}{
		"zk":       s.ZK,
		"mesos":    s.Mesos,
		"marathon": s.Marathon,
		"cell":     s.Cell,
		"dns":      s.DNS,
	}
}

// EnsureGeneric writes config.yaml unless it is fresh. It returns
// ErrNotReady, and writes nothing, while no nucleus node is listed.
func (s *Synthesizer) EnsureGeneric(ctx context.Context) error {
	path := s.cfg.Tmp(GenericFile)
	if s.IsFresh(path) {
		return nil
	}

	rows, err := s.backend.Instances(ctx, cell.RoleNucleus, []inventory.Field{inventory.FieldPrivateIP})
	if err != nil {
		return fmt.Errorf("failed to list nucleus nodes: %w", err)
	}
	ips := inventory.Flatten(rows)
	if len(ips) == 0 {
		return ErrNotReady
	}
	zk := make([]string, 0, len(ips))
	for _, ip := range ips {
		zk = append(zk, ip+":2181")
	}

	snap := Snapshot{
		ZK:       strings.Join(zk, ","),
		Mesos:    s.backend.Gateway("mesos"),
		Marathon: s.backend.Gateway("marathon"),
		Cell:     s.cfg.Cell.Name,
		DNS:      s.backend.DNSName(),
	}
	data, err := yaml.Marshal(&snap)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", GenericFile, err)
	}
	return writeFile(path, data)
}

// Snapshot ensures config.yaml and reads it back.
func (s *Synthesizer) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := os.MkdirAll(s.cfg.TmpDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.cfg.TmpDir(), err)
	}
	if err := s.EnsureGeneric(ctx); err != nil {
		return nil, err
	}
	return LoadSnapshot(s.cfg.Tmp(GenericFile))
}

// LoadSnapshot parses a generated config.yaml.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &snap, nil
}
