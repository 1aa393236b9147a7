// Package config reads the settings shared by the server and the
// command line tools. Values come from, in increasing priority, the
// defaults here, a yaml file, PDBMAP_* environment variables and
// finally whatever flags a main() sets.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"

	"github.com/andrew-torda/pdbmap/pdb"
	"github.com/andrew-torda/pdbmap/pkg/aligndb"
	"github.com/andrew-torda/pdbmap/pkg/posmap"
)

// EnvPrefix goes in front of the upper case yaml key to give the name
// of the environment variable, like PDBMAP_LOG_LEVEL.
const EnvPrefix = "PDBMAP_"

// DBDriver is the database/sql driver we register.
const DBDriver = "sqlite"

type Config struct {
	Listen       string        `yaml:"listen"`
	Database     string        `yaml:"database"`
	PdbBase      string        `yaml:"pdb_base"`
	MirrorDir    string        `yaml:"mirror_dir"` // if set, read headers from here, not the web
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	FetchRetries int           `yaml:"fetch_retries"`
	FetchBackoff time.Duration `yaml:"fetch_backoff"`
	FetchPar     int           `yaml:"fetch_parallel"`
	MergePolicy  string        `yaml:"merge_policy"`
	LogLevel     string        `yaml:"log_level"`
}

// Default has a value for everything.
func Default() *Config {
	return &Config{
		Listen:       ":8080",
		Database:     "pdbmap.db",
		PdbBase:      pdb.DefaultBase,
		FetchTimeout: 20 * time.Second,
		FetchRetries: 2,
		FetchBackoff: 500 * time.Millisecond,
		FetchPar:     4,
		MergePolicy:  posmap.LastWins.String(),
		LogLevel:     "info",
	}
}

// Parse reads yaml on top of the defaults. Unknown keys are an error,
// since they are usually typing mistakes.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	return c, nil
}

// Load reads a file, then the environment, and checks the result. An
// empty path means defaults and environment only.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if c, err = Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := c.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func envName(key string) string { return EnvPrefix + strings.ToUpper(key) }

// ApplyEnv overrides fields from the environment. getenv is os.Getenv,
// except in tests. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	strs := []struct {
		key string
		p   *string
	}{
		{"listen", &c.Listen}, {"database", &c.Database}, {"pdb_base", &c.PdbBase},
		{"mirror_dir", &c.MirrorDir}, {"merge_policy", &c.MergePolicy}, {"log_level", &c.LogLevel},
	}
	for _, s := range strs {
		if v := getenv(envName(s.key)); v != "" {
			*s.p = v
		}
	}
	ints := []struct {
		key string
		p   *int
	}{
		{"fetch_retries", &c.FetchRetries}, {"fetch_parallel", &c.FetchPar},
	}
	for _, s := range ints {
		if v := getenv(envName(s.key)); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", envName(s.key), err)
			}
			*s.p = n
		}
	}
	durs := []struct {
		key string
		p   *time.Duration
	}{
		{"fetch_timeout", &c.FetchTimeout}, {"fetch_backoff", &c.FetchBackoff},
	}
	for _, s := range durs {
		if v := getenv(envName(s.key)); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("config: %s: %w", envName(s.key), err)
			}
			*s.p = d
		}
	}
	return nil
}

// Validate catches values that would only fail later.
func (c *Config) Validate() error {
	var errs []error
	if _, err := posmap.ParsePolicy(c.MergePolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.FetchPar < 1 {
		errs = append(errs, fmt.Errorf("fetch_parallel must be at least 1, not %d", c.FetchPar))
	}
	if c.FetchRetries < 0 || c.FetchTimeout < 0 || c.FetchBackoff < 0 {
		errs = append(errs, errors.New("fetch retries, timeout and backoff cannot be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Policy is the merge policy. Call Validate first.
func (c *Config) Policy() posmap.Policy {
	p, _ := posmap.ParsePolicy(c.MergePolicy)
	return p
}

// NewLogger makes the one logger that gets passed around.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "pdbmap",
	}), nil
}

// Source is the local mirror if there is one, otherwise the web.
func (c *Config) Source(logger *log.Logger) pdb.Source {
	if c.MirrorDir != "" {
		return &pdb.MirrorSource{Dir: c.MirrorDir}
	}
	s := pdb.NewHTTPSource(c.PdbBase, logger)
	s.Timeout = c.FetchTimeout
	s.Retries = c.FetchRetries
	s.Backoff = c.FetchBackoff
	return s
}

// busyWait makes sqlite wait for a lock instead of failing at once,
// since the header cache is written from several goroutines.
const busyWait = "_pragma=busy_timeout(5000)"

// DSN is the database file name plus the options we always want.
func (c *Config) DSN() string {
	if strings.Contains(c.Database, "?") {
		return c.Database + "&" + busyWait
	}
	return c.Database + "?" + busyWait
}

// OpenDB opens the database and creates the tables if needed.
func (c *Config) OpenDB(ctx context.Context) (*aligndb.DB, error) {
	return aligndb.Open(ctx, DBDriver, c.DSN())
}
