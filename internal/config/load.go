package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/ini.v1"

	"github.com/cellos/cell/internal/cell"
)

// DefaultProfile is the INI section consulted after the per-cell section.
const DefaultProfile = "default"

// DevVersion is the version of an unreleased build. Such builds read the
// cell-os version from the VERSION file of the assets directory.
const DevVersion = "dev"

// envBindings maps configuration keys to the environment variables that
// override them.
var envBindings = map[string]string{
	"region":                     "AWS_DEFAULT_REGION",
	"bucket":                     "CELL_BUCKET",
	"proxy_port":                 "PROXY_PORT",
	"ssh_user":                   "SSH_USER",
	"ssh_timeout":                "SSH_TIMEOUT",
	"ssh_options":                "SSH_OPTIONS",
	"repository":                 "REPOSITORY",
	"net_whitelist_url":          "NET_WHITELIST_URL",
	"cache_expiry_seconds":       "CACHE_EXPIRY_SECONDS",
	"saasbase_access_key_id":     "SAASBASE_ACCESS_KEY_ID",
	"saasbase_secret_access_key": "SAASBASE_SECRET_ACCESS_KEY",
	"backend":                    "CELL_BACKEND",
	"dns_domain":                 "CELL_DNS_DOMAIN",
	"eip_allocation":             "CELL_EIP_ALLOCATION",
	"assets_dir":                 "CELL_ASSETS_DIR",
	"hcloud_token":               "HCLOUD_TOKEN",
	"hcloud_location":            "HCLOUD_LOCATION",
	"hcloud_server_type":         "HCLOUD_SERVER_TYPE",
	"hcloud_image":               "HCLOUD_IMAGE",
	"hcloud_s3_endpoint":         "HCLOUD_S3_ENDPOINT",
	"hcloud_s3_access_key":       "HCLOUD_S3_ACCESS_KEY",
	"hcloud_s3_secret_key":       "HCLOUD_S3_SECRET_KEY",
}

var defaults = map[string]string{
	"backend":                    "aws",
	"region":                     "us-west-1",
	"proxy_port":                 "1234",
	"ssh_user":                   "centos",
	"ssh_timeout":                "5",
	"repository":                 "s3://saasbase-repo",
	"net_whitelist_url":          "https://s3.amazonaws.com/cell-os/config/whitelist.json",
	"cache_expiry_seconds":       "180",
	"saasbase_access_key_id":     "XXXXXXXXXXXXXXXXXXXX",
	"saasbase_secret_access_key": "xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
	"dns_domain":                 "metal-cell.io",
	"hcloud_location":            "fsn1",
	"hcloud_server_type":         "cx22",
	"hcloud_image":               "centos-stream-9",
	"hcloud_s3_endpoint":         "https://fsn1.your-objectstorage.com",
}

// LoadOptions controls where Load looks for its inputs.
type LoadOptions struct {
	// CellName may be empty for commands that span all cells.
	CellName    string
	Version     string
	TemplateURL string

	// HomeDir defaults to $CELLOS_HOME or ~/.cellos.
	HomeDir string
	// Files defaults to ~/.aws/config and ~/.cellos/config. Missing files are skipped.
	Files []string
}

// Load resolves the configuration for one invocation. Each key is looked
// up in the environment, then in the [<cell>] section, then in [default],
// then falls back to a built-in default.
func Load(opts LoadOptions) (*Config, error) {
	var c cell.Cell
	if opts.CellName != "" {
		var err error
		if c, err = cell.New(opts.CellName); err != nil {
			return nil, err
		}
	}

	home, err := homeDir(opts.HomeDir)
	if err != nil {
		return nil, err
	}

	files := opts.Files
	if files == nil {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		files = []string{
			filepath.Join(userHome, ".aws", "config"),
			filepath.Join(userHome, ".cellos", "config"),
		}
	}

	r, err := newResolver(files, c.Name)
	if err != nil {
		return nil, err
	}

	proxyPort, err := strconv.Atoi(r.get("proxy_port"))
	if err != nil {
		return nil, fmt.Errorf("invalid proxy_port %q: %w", r.get("proxy_port"), err)
	}

	timeouts := LoadTimeouts()
	timeouts.SSHConnect = secondsOr(r.get("ssh_timeout"), timeouts.SSHConnect)
	timeouts.CacheExpiry = secondsOr(r.get("cache_expiry_seconds"), timeouts.CacheExpiry)

	bucket := r.get("bucket")
	cfg := &Config{
		Cell:                    c,
		Version:                 opts.Version,
		Backend:                 r.get("backend"),
		Region:                  r.get("region"),
		Bucket:                  bucket,
		ExternalBucket:          bucket != "",
		Repository:              r.get("repository"),
		NetWhitelistURL:         r.get("net_whitelist_url"),
		SaaSBaseAccessKeyID:     r.get("saasbase_access_key_id"),
		SaaSBaseSecretAccessKey: r.get("saasbase_secret_access_key"),
		DNSDomain:               r.get("dns_domain"),
		EIPAllocation:           r.get("eip_allocation"),
		TemplateURL:             opts.TemplateURL,
		AWS: AWSConfig{
			AccessKeyID:     r.get("aws_access_key_id"),
			SecretAccessKey: r.get("aws_secret_access_key"),
		},
		SSH: SSHConfig{
			User:      r.get("ssh_user"),
			Options:   strings.Fields(r.get("ssh_options")),
			ProxyPort: proxyPort,
		},
		Hcloud: HcloudConfig{
			Token:       r.get("hcloud_token"),
			Location:    r.get("hcloud_location"),
			ServerType:  r.get("hcloud_server_type"),
			Image:       r.get("hcloud_image"),
			S3Endpoint:  r.get("hcloud_s3_endpoint"),
			S3AccessKey: r.get("hcloud_s3_access_key"),
			S3SecretKey: r.get("hcloud_s3_secret_key"),
			Counts:      make(map[cell.Role]int),
		},
		HomeDir:   home,
		AssetsDir: home,
		Timeouts:  timeouts,
	}
	if cfg.Bucket == "" {
		cfg.Bucket = c.FullName()
	}
	if dir := r.get("assets_dir"); dir != "" {
		cfg.AssetsDir = dir
	}
	if cfg.Version == "" || cfg.Version == DevVersion {
		if data, err := os.ReadFile(cfg.Asset("VERSION")); err == nil {
			cfg.Version = strings.TrimSpace(string(data))
		}
	}
	for _, role := range cell.AllRoles() {
		cfg.Hcloud.Counts[role] = 1
		key := "hcloud_" + strings.ReplaceAll(string(role), "-", "_") + "_count"
		if v := r.get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid %s %q", key, v)
			}
			cfg.Hcloud.Counts[role] = n
		}
	}

	return cfg, nil
}

func homeDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	if env := os.Getenv("CELLOS_HOME"); env != "" {
		return env, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".cellos"), nil
}

// resolver layers environment, profile sections and defaults.
type resolver struct {
	v        *viper.Viper
	profiles []string
}

func newResolver(files []string, cellName string) (*resolver, error) {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	sections, err := readProfiles(files)
	if err != nil {
		return nil, err
	}
	if err := v.MergeConfigMap(sections); err != nil {
		return nil, fmt.Errorf("failed to merge profiles: %w", err)
	}

	profiles := []string{DefaultProfile}
	if cellName != "" {
		profiles = []string{cellName, DefaultProfile}
	}
	return &resolver{v: v, profiles: profiles}, nil
}

func (r *resolver) get(key string) string {
	if val := r.v.GetString(key); val != "" {
		return val
	}
	for _, profile := range r.profiles {
		k := profile + "." + key
		if r.v.IsSet(k) {
			return r.v.GetString(k)
		}
	}
	return defaults[key]
}

// readProfiles parses the INI files into a section -> key -> value map.
// Later files win over earlier ones.
func readProfiles(files []string) (map[string]any, error) {
	sources := make([]any, 0, len(files))
	for _, f := range files {
		sources = append(sources, f)
	}
	if len(sources) == 0 {
		return map[string]any{}, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{Loose: true}, sources[0], sources[1:]...)
	if err != nil {
		return nil, fmt.Errorf("failed to read config profiles: %w", err)
	}

	out := make(map[string]any)
	for _, section := range f.Sections() {
		if section.Name() == ini.DefaultSection {
			continue
		}
		keys := make(map[string]any)
		for _, key := range section.Keys() {
			keys[key.Name()] = key.String()
		}
		out[section.Name()] = keys
	}
	return out, nil
}
