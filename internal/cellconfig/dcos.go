package cellconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// VersionBundleFile is the version bundle inside the assets directory.
const VersionBundleFile = "cell-os-base.yaml"

const (
	universeVersionKey = "cell-os-universe::version"
	universeMarker     = "cell-os/cell-os-universe"
)

// DCOSConfig is the layout of dcos.toml.
type DCOSConfig struct {
	Core     DCOSCore     `toml:"core"`
	Marathon DCOSMarathon `toml:"marathon"`
	Package  DCOSPackage  `toml:"package"`
}

// DCOSCore is the [core] table.
type DCOSCore struct {
	MesosMasterURL string `toml:"mesos_master_url"`
	Reporting      bool   `toml:"reporting"`
	CellURL        string `toml:"cell_url"`
}

// DCOSMarathon is the [marathon] table.
type DCOSMarathon struct {
	URL string `toml:"url"`
}

// DCOSPackage is the [package] table.
type DCOSPackage struct {
	Sources []string `toml:"sources"`
	Cache   string   `toml:"cache"`
}

// EnsureDCOS writes dcos.toml unless it is fresh. Existing package
// sources are kept; the universe source is pinned to the bundle version.
func (s *Synthesizer) EnsureDCOS(ctx context.Context) error {
	path := s.cfg.Tmp(DCOSFile)
	if s.IsFresh(path) {
		return nil
	}

	version, err := UniverseVersion(s.cfg.Asset(VersionBundleFile))
	if err != nil {
		return err
	}
	universe := fmt.Sprintf("%s/cell-os/cell-os-universe-%s.zip", s.cfg.RepositoryHTTPS(), version)

	sources, err := existingSources(path)
	if err != nil {
		s.logf("generating %s with default sources [%s]", path, universe)
	}

	dcos := DCOSConfig{
		Core: DCOSCore{
			MesosMasterURL: s.backend.Gateway("mesos"),
			CellURL:        "http://{service}." + s.backend.DNSName(),
		},
		Marathon: DCOSMarathon{URL: s.backend.Gateway("marathon")},
		Package: DCOSPackage{
			Sources: PinUniverse(sources, universe),
			Cache:   s.cfg.Tmp(DCOSCache),
		},
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(dcos); err != nil {
		return fmt.Errorf("failed to encode %s: %w", DCOSFile, err)
	}
	return writeFile(path, buf.Bytes())
}

// PinUniverse replaces the first universe source with universe, or
// appends it when none is present. sources is not modified.
func PinUniverse(sources []string, universe string) []string {
	out := append([]string(nil), sources...)
	for i, src := range out {
		if strings.Contains(src, universeMarker) {
			out[i] = universe
			return out
		}
	}
	return append(out, universe)
}

// UniverseVersion reads the universe version pinned by the version bundle.
func UniverseVersion(bundlePath string) (string, error) {
	data, err := os.ReadFile(bundlePath)
	if err != nil {
		return "", fmt.Errorf("failed to read version bundle: %w", err)
	}
	var bundle map[string]interface{}
	if err := yaml.Unmarshal(data, &bundle); err != nil {
		return "", fmt.Errorf("failed to parse version bundle %s: %w", bundlePath, err)
	}
	v, ok := bundle[universeVersionKey]
	if !ok || v == nil {
		return "", fmt.Errorf("version bundle %s has no %s", bundlePath, universeVersionKey)
	}
	return fmt.Sprint(v), nil
}

func existingSources(path string) ([]string, error) {
	var existing DCOSConfig
	if _, err := toml.DecodeFile(path, &existing); err != nil {
		return nil, err
	}
	if len(existing.Package.Sources) == 0 {
		return nil, errors.New("no package sources")
	}
	return existing.Package.Sources, nil
}
