package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grocky/dhcp-dns-sync/internal/domain"
	"github.com/grocky/dhcp-dns-sync/internal/pfsense"
	"github.com/grocky/dhcp-dns-sync/internal/reconcile"
	"github.com/grocky/dhcp-dns-sync/internal/transport"
)

// PiholeConfig locates the Pi-hole admin interface.
type PiholeConfig struct {
	Protocol string `yaml:"protocol"`
	Address  string `yaml:"address"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Insecure bool   `yaml:"insecure"`
}

// PfSenseConfig locates the pfSense REST API.
type PfSenseConfig struct {
	Protocol    string `yaml:"protocol"`
	Address     string `yaml:"address"`
	Port        int    `yaml:"port"`
	ClientID    string `yaml:"client_id"`
	ClientToken string `yaml:"client_token"`
	Interface   string `yaml:"interface"`
	Insecure    bool   `yaml:"insecure"`
}

// Config holds all configuration for dhcp-dns-sync.
type Config struct {
	Pihole  PiholeConfig  `yaml:"pihole"`
	PfSense PfSenseConfig `yaml:"pfsense"`

	// Domain is appended to every DHCP hostname. A leading dot is dropped.
	Domain string `yaml:"domain"`

	Timeout        time.Duration `yaml:"timeout"`
	Concurrency    int           `yaml:"concurrency"`
	DryRun         bool          `yaml:"dry_run"`
	VerifyDNS      string        `yaml:"verify_dns"`
	PushgatewayURL string        `yaml:"pushgateway_url"`
	Verbose        bool          `yaml:"verbose"`
	LogFormat      string        `yaml:"log_format"`

	// ConfigFile is the optional YAML file the values were read from.
	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() Config {
	return Config{
		Pihole: PiholeConfig{
			Protocol: "http",
			Address:  "pi.hole",
			Port:     80,
			Insecure: true,
		},
		PfSense: PfSenseConfig{
			Protocol:  "https",
			Port:      443,
			Interface: pfsense.DefaultInterface,
			Insecure:  true,
		},
		Timeout:     transport.DefaultTimeout,
		Concurrency: reconcile.DefaultConcurrency,
		LogFormat:   "text",
	}
}

// bindFlags defines every flag on fs, writing into cfg.
func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")

	fs.StringVar(&cfg.Pihole.Protocol, "pihole-protocol", cfg.Pihole.Protocol, "Pi-hole protocol (http or https)")
	fs.StringVar(&cfg.Pihole.Address, "pihole-address", cfg.Pihole.Address, "Pi-hole host name or address")
	fs.IntVar(&cfg.Pihole.Port, "pihole-port", cfg.Pihole.Port, "Pi-hole admin port")
	fs.StringVar(&cfg.Pihole.Password, "pihole-password", cfg.Pihole.Password, "Pi-hole admin password (prefer PIHOLE_PASSWORD)")
	fs.BoolVar(&cfg.Pihole.Insecure, "pihole-insecure", cfg.Pihole.Insecure, "Skip TLS verification for Pi-hole")

	fs.StringVar(&cfg.PfSense.Protocol, "pfsense-protocol", cfg.PfSense.Protocol, "pfSense protocol (http or https)")
	fs.StringVar(&cfg.PfSense.Address, "pfsense-address", cfg.PfSense.Address, "pfSense host name or address")
	fs.IntVar(&cfg.PfSense.Port, "pfsense-port", cfg.PfSense.Port, "pfSense API port")
	fs.StringVar(&cfg.PfSense.ClientID, "pfsense-client-id", cfg.PfSense.ClientID, "pfSense API client id")
	fs.StringVar(&cfg.PfSense.ClientToken, "pfsense-client-token", cfg.PfSense.ClientToken, "pfSense API client token (prefer PFSENSE_CLIENT_TOKEN)")
	fs.StringVar(&cfg.PfSense.Interface, "pfsense-interface", cfg.PfSense.Interface, "DHCP interface to read static mappings from")
	fs.BoolVar(&cfg.PfSense.Insecure, "pfsense-insecure", cfg.PfSense.Insecure, "Skip TLS verification for pfSense")

	fs.StringVar(&cfg.Domain, "domain", cfg.Domain, "Domain suffix appended to DHCP hostnames")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request HTTP timeout")
	fs.IntVar(&cfg.Concurrency, "concurrency", cfg.Concurrency, "Maximum actions applied at once")
	fs.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Show what would be changed without making changes")
	fs.StringVar(&cfg.VerifyDNS, "verify-dns", cfg.VerifyDNS, "DNS server (host[:port]) to resolve applied records against")
	fs.StringVar(&cfg.PushgatewayURL, "pushgateway-url", cfg.PushgatewayURL, "Prometheus Pushgateway URL")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Enable verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log output format (text or json)")
}

func newFlagSet(cfg *Config, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("dhcp-dns-sync", flag.ContinueOnError)
	fs.SetOutput(output)
	bindFlags(fs, cfg)
	fs.Usage = func() {
		fmt.Fprintln(output, `dhcp-dns-sync - Copy pfSense DHCP static mappings into Pi-hole local DNS

Usage:
  dhcp-dns-sync [flags]

Records missing from Pi-hole are added, records with a different IP are
replaced. Records that only exist in Pi-hole are left alone.

Configuration is read in this order, later sources winning:
  defaults, --config YAML file, environment (and .env), flags.

Environment Variables:
  PIHOLE_PROTOCOL, PIHOLE_ADDRESS, PIHOLE_PORT, PIHOLE_PASSWORD
  PFSENSE_PROTOCOL, PFSENSE_ADDRESS, PFSENSE_PORT, PFSENSE_INTERFACE
  PFSENSE_CLIENT_ID, PFSENSE_CLIENT_TOKEN
  SYNC_DOMAIN

Flags:`)
		fs.PrintDefaults()
		fmt.Fprintln(output, `
Examples:
  # One-shot sync
  export PIHOLE_PASSWORD=...
  export PFSENSE_CLIENT_ID=... PFSENSE_CLIENT_TOKEN=...
  dhcp-dns-sync --pfsense-address 192.168.1.1 --domain home.lan

  # See what would change
  dhcp-dns-sync --config /etc/dhcp-dns-sync.yaml --dry-run`)
	}
	return fs
}

// LoadConfig builds the configuration from defaults, the optional YAML file,
// the environment and args. Flags take precedence over everything else.
func LoadConfig(args []string, getenv func(string) string, output io.Writer) (Config, error) {
	// First pass only discovers --config.
	probe := DefaultConfig()
	if err := newFlagSet(&probe, io.Discard).Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			newFlagSet(&probe, output).Usage()
		}
		return Config{}, err
	}

	cfg := DefaultConfig()
	if probe.ConfigFile != "" {
		if err := loadFile(probe.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	if err := newFlagSet(&cfg, output).Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Domain = domain.NormalizeDomain(cfg.Domain)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q", key, v)
		}
		*dst = n
		return nil
	}

	setString("PIHOLE_PROTOCOL", &cfg.Pihole.Protocol)
	setString("PIHOLE_ADDRESS", &cfg.Pihole.Address)
	setString("PIHOLE_PASSWORD", &cfg.Pihole.Password)
	if err := setInt("PIHOLE_PORT", &cfg.Pihole.Port); err != nil {
		return err
	}

	setString("PFSENSE_PROTOCOL", &cfg.PfSense.Protocol)
	setString("PFSENSE_ADDRESS", &cfg.PfSense.Address)
	setString("PFSENSE_CLIENT_ID", &cfg.PfSense.ClientID)
	setString("PFSENSE_CLIENT_TOKEN", &cfg.PfSense.ClientToken)
	setString("PFSENSE_INTERFACE", &cfg.PfSense.Interface)
	if err := setInt("PFSENSE_PORT", &cfg.PfSense.Port); err != nil {
		return err
	}

	setString("SYNC_DOMAIN", &cfg.Domain)
	return nil
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.Pihole.Address == "" {
		return errors.New("pihole address is required (set PIHOLE_ADDRESS or use --pihole-address)")
	}
	if c.Pihole.Password == "" {
		return errors.New("pihole password is required (set PIHOLE_PASSWORD or use --pihole-password)")
	}
	if c.PfSense.Address == "" {
		return errors.New("pfsense address is required (set PFSENSE_ADDRESS or use --pfsense-address)")
	}
	if c.PfSense.ClientID == "" || c.PfSense.ClientToken == "" {
		return errors.New("pfsense client id and token are required (set PFSENSE_CLIENT_ID and PFSENSE_CLIENT_TOKEN)")
	}
	if c.Domain == "" {
		return errors.New("domain is required (set SYNC_DOMAIN or use --domain)")
	}

	if err := validateProtocol("pihole", c.Pihole.Protocol); err != nil {
		return err
	}
	if err := validateProtocol("pfsense", c.PfSense.Protocol); err != nil {
		return err
	}

	if c.Concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}

	return nil
}

func validateProtocol(name, proto string) error {
	if proto != "http" && proto != "https" {
		return fmt.Errorf("%s protocol must be http or https, got %q", name, proto)
	}
	return nil
}

// PiholeURL returns the Pi-hole base URL.
func (c Config) PiholeURL() string {
	return transport.BaseURL(c.Pihole.Protocol, c.Pihole.Address, c.Pihole.Port)
}

// PfSenseURL returns the pfSense API base URL.
func (c Config) PfSenseURL() string {
	return transport.BaseURL(c.PfSense.Protocol, c.PfSense.Address, c.PfSense.Port)
}

// LogValue implements slog.LogValuer with secrets left out.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("pihole", c.PiholeURL()),
		slog.String("pfsense", c.PfSenseURL()),
		slog.String("interface", c.PfSense.Interface),
		slog.String("domain", c.Domain),
		slog.Int("concurrency", c.Concurrency),
		slog.Bool("dryRun", c.DryRun),
		slog.String("verifyDNS", c.VerifyDNS),
	)
}
