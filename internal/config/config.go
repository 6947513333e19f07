package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/emotion-geometry/internal/classify"
	"github.com/danielpatrickdp/emotion-geometry/internal/completion"
	"github.com/danielpatrickdp/emotion-geometry/internal/engine"
	"github.com/danielpatrickdp/emotion-geometry/internal/logging"
	"github.com/danielpatrickdp/emotion-geometry/internal/store"
)

// #region types
// Config holds all service configuration.
type Config struct {
	Server     ServerConfig         `yaml:"server"`
	Store      StoreConfig          `yaml:"store"`
	Audit      AuditConfig          `yaml:"audit"`
	Completion CompletionConfig     `yaml:"completion"`
	Engine     EngineConfig         `yaml:"engine"`
	Log        logging.LoggerConfig `yaml:"log"`
}

// ServerConfig configures the HTTP and gRPC listeners.
type ServerConfig struct {
	HTTPAddr        string   `yaml:"http_addr"`
	GRPCAddr        string   `yaml:"grpc_addr"` // empty disables gRPC
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// StoreConfig selects the session store.
type StoreConfig struct {
	Kind        string `yaml:"kind"` // sqlite | redis
	SQLitePath  string `yaml:"sqlite_path"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	TTL         string `yaml:"ttl"` // redis only; empty = no expiry
}

// AuditConfig configures the assessment log. An empty Path shares the
// SQLite session database.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CompletionConfig configures the completion service. No API key means
// replies always come from the fallback set.
type CompletionConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Timeout     string `yaml:"timeout"`
	MaxAttempts int    `yaml:"max_attempts"`
}

// EngineConfig selects the classification rules and crisis hysteresis.
type EngineConfig struct {
	RuleSet    string `yaml:"rule_set"`
	HoldCrisis bool   `yaml:"hold_crisis"`
}
// #endregion types

// #region defaults
// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":9090",
			ShutdownTimeout: "10s",
			AllowedOrigins:  []string{"*"},
		},
		Store: StoreConfig{
			Kind:        string(store.KindSQLite),
			SQLitePath:  "affect.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "affect",
		},
		Audit: AuditConfig{Enabled: true},
		Completion: CompletionConfig{
			Model:       "gpt-4o",
			Timeout:     "30s",
			MaxAttempts: 3,
		},
		Engine: EngineConfig{RuleSet: classify.DefaultRuleSet().Version},
		Log:    logging.LoggerConfig{Level: "info"},
	}
}
// #endregion defaults

// #region load
// Load reads a YAML file over the defaults, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("AFFECT_DB"); v != "" {
		c.Store.SQLitePath = v
	}
	if v := os.Getenv("AFFECT_STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("AFFECT_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv("AFFECT_GRPC_ADDR"); v != "" {
		c.Server.GRPCAddr = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Completion.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Completion.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.Completion.Model = v
	}
	if v := os.Getenv("AFFECT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}
// #endregion load

// #region validate
// Validate checks values that would otherwise fail at startup.
func (c *Config) Validate() error {
	var problems []string

	switch store.Kind(c.Store.Kind) {
	case store.KindSQLite:
		if c.Store.SQLitePath == "" {
			problems = append(problems, "store.sqlite_path is required for the sqlite store")
		}
	case store.KindRedis:
		if c.Store.RedisAddr == "" {
			problems = append(problems, "store.redis_addr is required for the redis store")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid store.kind %q (valid: sqlite, redis)", c.Store.Kind))
	}

	if _, ok := classify.RuleSetByVersion(c.Engine.RuleSet); !ok {
		problems = append(problems, fmt.Sprintf("unknown engine.rule_set %q", c.Engine.RuleSet))
	}
	if c.Server.HTTPAddr == "" {
		problems = append(problems, "server.http_addr is required")
	}
	if c.Completion.MaxAttempts < 1 {
		problems = append(problems, "completion.max_attempts must be at least 1")
	}
	for name, d := range map[string]string{
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"store.ttl":               c.Store.TTL,
		"completion.timeout":      c.Completion.Timeout,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
// #endregion validate

// #region accessors
// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// StoreOptions translates the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Kind:        store.Kind(c.Store.Kind),
		SQLitePath:  c.Store.SQLitePath,
		RedisAddr:   c.Store.RedisAddr,
		RedisPrefix: c.Store.RedisPrefix,
		TTL:         parseDuration(c.Store.TTL, 0),
	}
}

// AuditPath returns the SQLite file holding the assessment log, or "" when
// the log is disabled.
func (c *Config) AuditPath() string {
	if !c.Audit.Enabled {
		return ""
	}
	if c.Audit.Path != "" {
		return c.Audit.Path
	}
	return c.Store.SQLitePath
}

// CompletionConfig translates the completion section, keeping the client's
// default retry waits.
func (c *Config) CompletionConfig() completion.Config {
	cc := completion.DefaultConfig()
	cc.APIKey = c.Completion.APIKey
	cc.BaseURL = c.Completion.BaseURL
	if c.Completion.Model != "" {
		cc.Model = c.Completion.Model
	}
	cc.Timeout = parseDuration(c.Completion.Timeout, cc.Timeout)
	if c.Completion.MaxAttempts > 0 {
		cc.MaxAttempts = c.Completion.MaxAttempts
	}
	return cc
}

// EngineConfig translates the engine section. Unknown rule sets fall back
// to the default; Validate reports them.
func (c *Config) EngineConfig() engine.Config {
	ec := engine.DefaultConfig()
	if rules, ok := classify.RuleSetByVersion(c.Engine.RuleSet); ok {
		ec.Rules = rules
	}
	ec.Selector.HoldCrisis = c.Engine.HoldCrisis
	return ec
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
// #endregion accessors
