// Package seed builds the seed tarball every cell node downloads at boot:
// the static seed tree from the assets directory plus the network
// whitelist the cell's security groups are derived from.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mholt/archiver/v3"

	"github.com/cellos/cell/internal/config"
)

const (
	// ArchiveName is the tarball produced in the cell tmp dir.
	ArchiveName = "seed.tar.gz"
	// WhitelistName is the converted whitelist, written next to the tarball
	// and into seed/config/.
	WhitelistName = "net-whitelist.json"

	stageDir = "seed"
)

// ErrEmptyWhitelist is returned when the whitelist holds no networks.
var ErrEmptyWhitelist = errors.New("empty networks whitelist file, cannot continue; please check the user guide on how to create it")

// Network is one whitelisted network in the seed format.
type Network struct {
	Addr string `json:"addr"`
	Mask string `json:"mask"`
}

type sourceWhitelist struct {
	Networks []struct {
		Address string `json:"net_address"`
		Mask    string `json:"net_mask"`
	} `json:"networks"`
}

// ParseWhitelist converts a {"networks":[{"net_address","net_mask"}]}
// document into seed networks. An empty list is an error.
func ParseWhitelist(data []byte) ([]Network, error) {
	var src sourceWhitelist
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse networks whitelist: %w", err)
	}
	if len(src.Networks) == 0 {
		return nil, ErrEmptyWhitelist
	}
	nets := make([]Network, 0, len(src.Networks))
	for _, n := range src.Networks {
		nets = append(nets, Network{Addr: n.Address, Mask: n.Mask})
	}
	return nets, nil
}

// Builder assembles the seed for one cell.
type Builder struct {
	// SourceDir is the seed tree copied into the tarball.
	SourceDir string
	// TmpDir receives the tarball and the converted whitelist.
	TmpDir string
	// WhitelistURL is fetched first; FallbackWhitelist is read when the
	// fetch fails or no URL is set.
	WhitelistURL      string
	FallbackWhitelist string

	HTTPClient *http.Client
	Logf       func(format string, v ...interface{})
}

// NewBuilder returns a Builder wired to the cell's asset and tmp dirs.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		SourceDir:         cfg.Asset(filepath.Join("deploy", "seed")),
		TmpDir:            cfg.TmpDir(),
		WhitelistURL:      cfg.NetWhitelistURL,
		FallbackWhitelist: cfg.Asset(filepath.Join("deploy", "config", WhitelistName)),
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		Logf:              log.Printf,
	}
}

// ArchivePath is where Build writes the tarball.
func (b *Builder) ArchivePath() string {
	return filepath.Join(b.TmpDir, ArchiveName)
}

// WhitelistPath is where Build writes the converted whitelist.
func (b *Builder) WhitelistPath() string {
	return filepath.Join(b.TmpDir, WhitelistName)
}

// Build stages the seed tree, writes the whitelist into it, archives it
// and removes the staged copy. It returns the tarball path.
func (b *Builder) Build(ctx context.Context) (string, error) {
	staged := filepath.Join(b.TmpDir, stageDir)
	if err := os.RemoveAll(staged); err != nil {
		return "", fmt.Errorf("failed to clean %s: %w", staged, err)
	}
	if err := copyTree(b.SourceDir, staged); err != nil {
		return "", fmt.Errorf("failed to stage seed: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(staged)
	}()

	if err := b.writeWhitelist(ctx, staged); err != nil {
		return "", err
	}

	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true
	if err := tgz.Archive([]string{staged}, b.ArchivePath()); err != nil {
		return "", fmt.Errorf("failed to archive seed: %w", err)
	}
	return b.ArchivePath(), nil
}

func (b *Builder) writeWhitelist(ctx context.Context, staged string) error {
	data, err := b.whitelist(ctx)
	if err != nil {
		return err
	}
	nets, err := ParseWhitelist(data)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(nets, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode networks whitelist: %w", err)
	}

	for _, path := range []string{b.WhitelistPath(), filepath.Join(staged, "config", WhitelistName)} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// whitelist returns the remote whitelist, or the local fallback when the
// remote one cannot be fetched.
func (b *Builder) whitelist(ctx context.Context) ([]byte, error) {
	if b.WhitelistURL != "" {
		data, err := b.fetch(ctx, b.WhitelistURL)
		if err == nil {
			return data, nil
		}
		b.logf("ERROR: downloading networks whitelist from %s: %v, using %s", b.WhitelistURL, err, b.FallbackWhitelist)
	}
	data, err := os.ReadFile(b.FallbackWhitelist)
	if err != nil {
		return nil, fmt.Errorf("failed to read networks whitelist: %w", err)
	}
	return data, nil
}

func (b *Builder) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := b.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Builder) logf(format string, v ...interface{}) {
	if b.Logf != nil {
		b.Logf(format, v...)
	}
}

// copyTree copies the directory src to dst, preserving file modes.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
