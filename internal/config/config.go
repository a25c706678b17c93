// Package config builds the immutable runtime configuration of one cell
// invocation from the AWS/cellos INI profiles and environment overrides.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/cellos/cell/internal/cell"
)

// Config holds everything a command needs to know about its environment.
// It is built once per invocation by Load and never modified afterwards.
type Config struct {
	Cell    cell.Cell
	Version string // cell-os version, burned into the stack tags and the version bundle name

	Backend string
	Region  string

	// Bucket is the resolved bucket name. ExternalBucket is true when the
	// operator supplied it, in which case only the cell prefix is ever touched.
	Bucket         string
	ExternalBucket bool

	Repository              string
	NetWhitelistURL         string
	SaaSBaseAccessKeyID     string
	SaaSBaseSecretAccessKey string
	DNSDomain               string
	EIPAllocation           string
	TemplateURL             string

	AWS    AWSConfig
	SSH    SSHConfig
	Hcloud HcloudConfig

	// HomeDir is the work directory (~/.cellos), AssetsDir holds the seed,
	// version bundle and template sources.
	HomeDir   string
	AssetsDir string

	Timeouts *Timeouts
}

// AWSConfig holds optional static credentials read from the profiles.
// Empty values fall back to the SDK default credential chain.
type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
}

// SSHConfig configures node access.
type SSHConfig struct {
	User      string
	Options   []string
	ProxyPort int
}

// HcloudConfig configures the Hetzner backend.
type HcloudConfig struct {
	Token      string
	Location   string
	ServerType string
	Image      string
	// Object storage used as the cell bucket.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	// Counts maps a role to its initial server count.
	Counts map[cell.Role]int
}

// TmpDir returns the per-cell generated files directory.
func (c *Config) TmpDir() string {
	return filepath.Join(c.HomeDir, ".generated", c.Cell.Name)
}

// Tmp returns path inside the per-cell generated files directory.
func (c *Config) Tmp(path string) string {
	return filepath.Join(c.TmpDir(), path)
}

// KeyFile is the private key of the cell keypair.
func (c *Config) KeyFile() string {
	return c.Tmp(c.Cell.KeyFileName())
}

// Asset returns path inside the assets directory.
func (c *Config) Asset(path string) string {
	return filepath.Join(c.AssetsDir, path)
}

// VersionBundle is the name of the version bundle, e.g. "cell-os-base-1.2.0".
func (c *Config) VersionBundle() string {
	return "cell-os-base-" + c.Version
}

// DNSName is the gateway domain of the cell.
func (c *Config) DNSName() string {
	return "gw." + c.Cell.Name + "." + c.DNSDomain
}

// Gateway returns the public endpoint of a cell service.
func (c *Config) Gateway(service string) string {
	return "http://" + service + "." + c.DNSName()
}

// RepositoryHTTPS converts an s3:// repository into its public HTTPS form.
func (c *Config) RepositoryHTTPS() string {
	return strings.Replace(c.Repository, "s3://", "https://s3.amazonaws.com/", 1)
}

// CacheExpiry is the freshness window of the generated configuration files.
func (c *Config) CacheExpiry() time.Duration {
	return c.Timeouts.CacheExpiry
}
