// Package config loads and validates the zmigrate.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAdminPort is the mail stores' administrative port used when no
// explicit port mapping exists for a host.
const DefaultAdminPort = 7071

// Config represents the zmigrate.yaml configuration file.
type Config struct {
	Source      Cluster        `yaml:"source"`
	Destination Cluster        `yaml:"destination"`
	Global      Global         `yaml:"global"`
	Stores      []string       `yaml:"stores,omitempty"`
	Ports       map[string]int `yaml:"ports,omitempty"`
}

// Cluster describes one mail-server cluster and its directory service.
type Cluster struct {
	Host          string    `yaml:"host"`
	AdminUser     string    `yaml:"admin_user"`
	AdminPassword string    `yaml:"admin_password"`
	LDAP          Directory `yaml:"ldap"`
}

// Directory holds the connection settings for a cluster's LDAP service.
type Directory struct {
	Protocol     string `yaml:"protocol"` // "ldap://" or "ldaps://"
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	BindUser     string `yaml:"bind_user"`
	BindPassword string `yaml:"bind_password"`
	BaseDN       string `yaml:"base_dn"`
	Filter       string `yaml:"filter,omitempty"`
}

// URL returns the directory service URL, e.g. "ldaps://dir.example.com:636".
func (d Directory) URL() string {
	return fmt.Sprintf("%s%s:%d", d.Protocol, d.Host, d.Port)
}

// Global holds run-wide settings.
type Global struct {
	RootFolder   string `yaml:"root_folder"`
	SessionFile  string `yaml:"session_file"`
	LogFile      string `yaml:"log_file,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`
	FallbackHost string `yaml:"fallback_host,omitempty"`
}

// SessionPath returns the session ledger path under the root folder.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Global.RootFolder, c.Global.SessionFile)
}

// AdminPort returns the administrative port for a store host.
func (c *Config) AdminPort(host string) int {
	if p, ok := c.Ports[host]; ok {
		return p
	}
	return DefaultAdminPort
}

// Load reads and validates a zmigrate.yaml configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	return &cfg, nil
}

// ValidationError holds multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks a Config for semantic correctness.
// Returns a list of validation error messages (empty if valid).
func Validate(cfg *Config) []string {
	var errs []string

	errs = append(errs, validateCluster(cfg.Source, "source")...)
	errs = append(errs, validateCluster(cfg.Destination, "destination")...)

	if cfg.Global.RootFolder == "" {
		errs = append(errs, "global: 'root_folder' is required")
	}
	if cfg.Global.SessionFile == "" {
		errs = append(errs, "global: 'session_file' is required")
	}

	for host, port := range cfg.Ports {
		if port <= 0 || port > 65535 {
			errs = append(errs, fmt.Sprintf("ports: invalid port %d for host '%s'", port, host))
		}
	}

	return errs
}

func validateCluster(cl Cluster, prefix string) []string {
	var errs []string

	if cl.Host == "" {
		errs = append(errs, fmt.Sprintf("%s: 'host' is required", prefix))
	}
	if cl.AdminUser == "" {
		errs = append(errs, fmt.Sprintf("%s: 'admin_user' is required", prefix))
	}
	if cl.AdminPassword == "" {
		errs = append(errs, fmt.Sprintf("%s: 'admin_password' is required", prefix))
	}

	switch cl.LDAP.Protocol {
	case "ldap://", "ldaps://":
		// valid
	case "":
		errs = append(errs, fmt.Sprintf("%s.ldap: 'protocol' is required, must be 'ldap://' or 'ldaps://'", prefix))
	default:
		errs = append(errs, fmt.Sprintf("%s.ldap: invalid protocol '%s', must be 'ldap://' or 'ldaps://'", prefix, cl.LDAP.Protocol))
	}

	if cl.LDAP.Host == "" {
		errs = append(errs, fmt.Sprintf("%s.ldap: 'host' is required", prefix))
	}
	if cl.LDAP.Port <= 0 || cl.LDAP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("%s.ldap: invalid port %d", prefix, cl.LDAP.Port))
	}
	if cl.LDAP.BindUser == "" {
		errs = append(errs, fmt.Sprintf("%s.ldap: 'bind_user' is required", prefix))
	}
	if cl.LDAP.BaseDN == "" {
		errs = append(errs, fmt.Sprintf("%s.ldap: 'base_dn' is required", prefix))
	}

	return errs
}
