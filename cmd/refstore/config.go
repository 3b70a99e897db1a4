package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jacentio/refstore/hydrate"
	"github.com/jacentio/refstore/internal/refpath"
	"github.com/jacentio/refstore/internal/telemetry"
	"github.com/jacentio/refstore/schema"
	"github.com/jacentio/refstore/watch"
)

// Config is the refstore YAML configuration.
//
//	logLevel: info
//	roots: [shared/]
//	table:
//	  name: symbols
//	  region: eu-west-1
//	  segments: 8
//	workspaces:
//	  - path: /home/me/ws1
//	    reference: ws1/
//	metrics:
//	  exporter: prometheus
//	  listenAddr: localhost:9464
type Config struct {
	LogLevel string `yaml:"logLevel"`

	// Roots are registered in order, before the workspace references.
	Roots []string `yaml:"roots"`

	Table      TableConfig       `yaml:"table"`
	Schema     SchemaConfig      `yaml:"schema"`
	Workspaces []WorkspaceConfig `yaml:"workspaces"`
	Metrics    MetricsConfig     `yaml:"metrics"`

	// ReportInterval is how often serve logs the store size (0 disables).
	ReportInterval time.Duration `yaml:"reportInterval"`
}

// TableConfig selects the DynamoDB table to hydrate from.
type TableConfig struct {
	Name           string  `yaml:"name"`
	Region         string  `yaml:"region"`
	Segments       int     `yaml:"segments"`
	PageSize       int32   `yaml:"pageSize"`
	PagesPerSecond float64 `yaml:"pagesPerSecond"`
}

// SchemaConfig overrides the item attribute names.
type SchemaConfig struct {
	CategoryAttr  string `yaml:"categoryAttr"`
	IDAttr        string `yaml:"idAttr"`
	ReferenceAttr string `yaml:"referenceAttr"`
	TTLAttr       string `yaml:"ttlAttr"`
}

// MetricsConfig selects the OpenTelemetry metric exporter.
type MetricsConfig struct {
	Exporter   string        `yaml:"exporter"` // none, stdout, prometheus
	Interval   time.Duration `yaml:"interval"`
	ListenAddr string        `yaml:"listenAddr"`
}

// WorkspaceConfig maps a local directory to a reference root.
type WorkspaceConfig struct {
	Path      string        `yaml:"path"`
	Reference string        `yaml:"reference"`
	Debounce  time.Duration `yaml:"debounce"`
	Ignore    []string      `yaml:"ignore"`
}

// LoadConfig reads and validates the config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Config{
		LogLevel:       "info",
		ReportInterval: time.Minute,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	for i, ws := range c.Workspaces {
		if ws.Path == "" {
			errs = append(errs, fmt.Errorf("workspace %d: path is required", i))
		}
		if ws.Reference == "" {
			errs = append(errs, fmt.Errorf("workspace %d: reference is required", i))
		}
	}
	switch c.Metrics.Exporter {
	case "", telemetry.ExporterNone, telemetry.ExporterStdout, telemetry.ExporterPrometheus:
	default:
		errs = append(errs, fmt.Errorf("metrics: unknown exporter %q", c.Metrics.Exporter))
	}
	if c.ReportInterval < 0 {
		c.ReportInterval = 0
	}
	return errors.Join(errs...)
}

// AllRoots returns Roots followed by each workspace's folder reference, without
// duplicates.
func (c Config) AllRoots() []string {
	roots := slices.Clone(c.Roots)
	for _, ws := range c.Workspaces {
		root := refpath.FolderPrefix(ws.Reference)
		if !slices.Contains(roots, root) {
			roots = append(roots, root)
		}
	}
	return roots
}

func (c Config) schemaConfig() schema.Config {
	return schema.Config{
		CategoryAttr:  c.Schema.CategoryAttr,
		IDAttr:        c.Schema.IDAttr,
		ReferenceAttr: c.Schema.ReferenceAttr,
		TTLAttr:       c.Schema.TTLAttr,
	}
}

func (c Config) telemetryConfig() telemetry.Config {
	tc := telemetry.DefaultConfig()
	if c.Metrics.Exporter != "" {
		tc.Exporter = c.Metrics.Exporter
	}
	if c.Metrics.Interval > 0 {
		tc.Interval = c.Metrics.Interval
	}
	if c.Metrics.ListenAddr != "" {
		tc.ListenAddr = c.Metrics.ListenAddr
	}
	return tc
}

func (c Config) hydrateConfig() hydrate.Config {
	hc := hydrate.DefaultConfig()
	hc.TableName = c.Table.Name
	if c.Table.Segments > 0 {
		hc.Segments = c.Table.Segments
	}
	if c.Table.PageSize > 0 {
		hc.PageSize = c.Table.PageSize
	}
	hc.PagesPerSecond = c.Table.PagesPerSecond
	return hc
}

func (c Config) watchConfigs() []watch.Config {
	out := make([]watch.Config, 0, len(c.Workspaces))
	for _, ws := range c.Workspaces {
		wc := watch.DefaultConfig()
		wc.Root = ws.Path
		wc.ReferenceRoot = refpath.FolderPrefix(ws.Reference)
		if ws.Debounce > 0 {
			wc.Debounce = ws.Debounce
		}
		wc.IgnorePatterns = append(wc.IgnorePatterns, ws.Ignore...)
		out = append(out, wc)
	}
	return out
}
