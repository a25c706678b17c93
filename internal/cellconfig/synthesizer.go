// Package cellconfig generates the local client configuration of a cell:
// the generic config.yaml, the ssh_config used for node access and the
// dcos.toml of the package manager. Files are cached in the cell tmp dir
// and regenerated once older than the cache expiry.
package cellconfig

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/cellos/cell/internal/backend"
	"github.com/cellos/cell/internal/config"
)

// Generated file names inside the cell tmp dir.
const (
	GenericFile = "config.yaml"
	SSHFile     = "ssh_config"
	DCOSFile    = "dcos.toml"
	DCOSCache   = "dcos_tmp"
)

// ErrNotReady is returned when the cell has no node to build access
// configuration for yet.
var ErrNotReady = errors.New("cell has no reachable nodes yet, is the cell fully up?")

// Synthesizer writes the generated configuration of one cell.
type Synthesizer struct {
	cfg     *config.Config
	backend backend.Inspector

	// KeyDirs are searched for a key file left by older releases.
	KeyDirs []string

	now  func() time.Time
	logf func(format string, v ...interface{})
}

// New returns a Synthesizer for cfg reading cell state from b.
func New(cfg *config.Config, b backend.Inspector) *Synthesizer {
	s := &Synthesizer{
		cfg:     cfg,
		backend: b,
		now:     time.Now,
		logf:    log.Printf,
	}
	if home, err := os.UserHomeDir(); err == nil {
		s.KeyDirs = append(s.KeyDirs, filepath.Join(home, ".ssh"))
	}
	if dir := os.Getenv("KEYPATH"); dir != "" {
		s.KeyDirs = append(s.KeyDirs, dir)
	}
	return s
}

// SetLogger replaces the printf sink.
func (s *Synthesizer) SetLogger(logf func(format string, v ...interface{})) {
	s.logf = logf
}

// Ensure regenerates every stale artifact and migrates a legacy key file.
func (s *Synthesizer) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.TmpDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.cfg.TmpDir(), err)
	}
	if err := s.EnsureGeneric(ctx); err != nil {
		return err
	}
	if err := s.EnsureDCOS(ctx); err != nil {
		return err
	}
	if err := s.EnsureSSH(ctx); err != nil {
		return err
	}
	return s.MigrateKey()
}

// IsFresh reports whether path exists and was modified within the cache expiry.
func (s *Synthesizer) IsFresh(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.now().Sub(info.ModTime()) < s.cfg.CacheExpiry()
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
