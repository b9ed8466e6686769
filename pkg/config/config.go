// Package config loads commitgraph settings from a TOML file.
//
// The file is optional. Every field has a default, and command-line flags
// override whatever the file sets:
//
//	[graph]
//	sort = "linear-bek"
//	missing_timestamp = 0
//	max_commits = 0
//
//	[render]
//	palette = ["#e06c75", "#98c379"]
//	selected_marker = "@"
//
//	[server]
//	addr = ":7700"
//	page_size = 200
//	max_page_size = 2000
//
//	[cache]
//	backend = "file"
//	ttl = "720h"
//	key_prefix = ""
package config

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/commitgraph/pkg/errors"
)

const appName = "commitgraph"

// Defaults applied by ValidateAndSetDefaults.
const (
	DefaultSort           = "linear-bek"
	DefaultSelectedMarker = "@"
	DefaultAddr           = ":7700"
	DefaultPageSize       = 200
	DefaultMaxPageSize    = 2000
	DefaultCacheBackend   = CacheFile
	DefaultCacheTTL       = 30 * 24 * time.Hour
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// DefaultPalette is used when the file sets no palette.
var DefaultPalette = []string{
	"#e06c75", "#98c379", "#e5c07b", "#61afef", "#c678dd", "#56b6c2", "#d19a66", "#be5046",
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Config is the decoded configuration file.
type Config struct {
	Graph  GraphConfig  `toml:"graph"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`

	validated bool
}

// GraphConfig controls how visible graphs are built.
type GraphConfig struct {
	Sort             string `toml:"sort"`
	MissingTimestamp int64  `toml:"missing_timestamp"`
	// MaxCommits caps how many commits are read from a repository. Zero
	// uses the source default.
	MaxCommits int `toml:"max_commits"`
}

// RenderConfig controls terminal and export rendering.
type RenderConfig struct {
	Palette        []string `toml:"palette"`
	SelectedMarker string   `toml:"selected_marker"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string `toml:"addr"`
	PageSize    int    `toml:"page_size"`
	MaxPageSize int    `toml:"max_page_size"`
	// SessionTTL is how long an idle graph session lives.
	SessionTTL Duration `toml:"session_ttl"`
}

// CacheConfig selects where Bek orders are cached.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	// KeyPrefix scopes every key, so deployments sharing one Redis
	// instance keep separate orders.
	KeyPrefix string `toml:"key_prefix"`
}

// Duration is a time.Duration written as a Go duration string ("720h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	_ = c.ValidateAndSetDefaults()
	return c
}

// Decode reads a TOML configuration. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	var c Config
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the configuration at path. An empty path loads the default
// location, where a missing file yields the defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()
	return Decode(f)
}

// DefaultPath returns $XDG_CONFIG_HOME/commitgraph/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/commitgraph, falling back to
// ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// ValidateAndSetDefaults checks every section and fills in defaults.
// It is idempotent.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}

	if c.Graph.Sort == "" {
		c.Graph.Sort = DefaultSort
	}
	if err := errors.ValidateSortMode(c.Graph.Sort); err != nil {
		return err
	}
	if c.Graph.MaxCommits < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "graph.max_commits must not be negative")
	}

	if len(c.Render.Palette) == 0 {
		c.Render.Palette = append([]string(nil), DefaultPalette...)
	}
	for _, col := range c.Render.Palette {
		if !hexColor.MatchString(col) {
			return errors.New(errors.ErrCodeInvalidConfig, "render.palette: %q is not a #rrggbb color", col)
		}
	}
	if c.Render.SelectedMarker == "" {
		c.Render.SelectedMarker = DefaultSelectedMarker
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxPageSize == 0 {
		c.Server.MaxPageSize = DefaultMaxPageSize
	}
	if c.Server.PageSize == 0 {
		c.Server.PageSize = min(DefaultPageSize, c.Server.MaxPageSize)
	}
	if c.Server.PageSize < 0 || c.Server.MaxPageSize < 0 || c.Server.PageSize > c.Server.MaxPageSize {
		return errors.New(errors.ErrCodeInvalidConfig,
			"server.page_size %d must be within [1, max_page_size %d]", c.Server.PageSize, c.Server.MaxPageSize)
	}
	if c.Server.SessionTTL.Duration == 0 {
		c.Server.SessionTTL.Duration = time.Hour
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = DefaultCacheBackend
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q must be file, redis or none", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == CacheFile && c.Cache.Dir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			c.Cache.Dir = dir
		} else {
			c.Cache.Backend = CacheNone
		}
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = DefaultCacheTTL
	}

	c.validated = true
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
