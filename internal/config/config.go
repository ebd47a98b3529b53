// Package config handles TOML configuration parsing for dhcp4d.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for dhcp4d.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Pool      PoolConfig      `toml:"pool"`
	Conflict  ConflictConfig  `toml:"conflict_detection"`
}

// ServerConfig holds the core listening and identity settings.
type ServerConfig struct {
	Interface   string `toml:"interface"`
	BindAddress string `toml:"bind_address"`
	ServerID    string `toml:"server_id"`
	SubnetMask  string `toml:"subnet_mask"`
	LogLevel    string `toml:"log_level"`
}

// RateLimitConfig holds anti-starvation settings (RFC 5765).
type RateLimitConfig struct {
	Enabled               bool `toml:"enabled"`
	MaxDiscoversPerSecond int  `toml:"max_discovers_per_second"`
	MaxPerMACPerSecond    int  `toml:"max_per_mac_per_second"`
}

// PoolConfig describes the example allocator's address range and lease options.
type PoolConfig struct {
	Start      string   `toml:"start"`
	End        string   `toml:"end"`
	SubnetMask string   `toml:"subnet_mask"`
	Routers    []string `toml:"routers"`
	DNS        []string `toml:"dns"`
	LeaseTime  string   `toml:"lease_time"`
}

// ConflictConfig controls the example allocator's ICMP probing.
type ConflictConfig struct {
	Enabled   bool   `toml:"enabled"`
	ProbeWait string `toml:"probe_wait"`
}

// Load reads and parses a TOML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = "info"
	}
	if cfg.RateLimit.MaxDiscoversPerSecond <= 0 {
		cfg.RateLimit.MaxDiscoversPerSecond = 100
	}
	if cfg.RateLimit.MaxPerMACPerSecond <= 0 {
		cfg.RateLimit.MaxPerMACPerSecond = 10
	}
	if cfg.Pool.LeaseTime == "" {
		cfg.Pool.LeaseTime = "1h"
	}
	if cfg.Conflict.ProbeWait == "" {
		cfg.Conflict.ProbeWait = "300ms"
	}
}

// ServerIP returns the parsed server identifier address, or nil if unset.
func (cfg *Config) ServerIP() net.IP {
	if cfg.Server.ServerID == "" {
		return nil
	}
	return net.ParseIP(cfg.Server.ServerID).To4()
}

// SubnetMaskIP returns the parsed subnet mask, or nil if unset.
func (cfg *Config) SubnetMaskIP() net.IPMask {
	if cfg.Server.SubnetMask == "" {
		return nil
	}
	ip := net.ParseIP(cfg.Server.SubnetMask).To4()
	if ip == nil {
		return nil
	}
	return net.IPMask(ip)
}

// LeaseDuration parses Pool.LeaseTime, falling back to one hour.
func (p PoolConfig) LeaseDuration() time.Duration {
	d, err := time.ParseDuration(p.LeaseTime)
	if err != nil {
		return time.Hour
	}
	return d
}

// ProbeDuration parses Conflict.ProbeWait, falling back to 300ms.
func (c ConflictConfig) ProbeDuration() time.Duration {
	d, err := time.ParseDuration(c.ProbeWait)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// IPs parses a list of dotted-quad strings, skipping anything invalid.
func IPs(addrs []string) []net.IP {
	out := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		if ip := net.ParseIP(a).To4(); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}
