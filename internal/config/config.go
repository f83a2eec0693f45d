package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Config is the application configuration, loaded from an HCL file.
type Config struct {
	ReadOnlyStrict bool        `hcl:"read_only_strict,optional"`
	MaxOpenConns   int         `hcl:"max_open_conns,optional"`
	Database       *Database   `hcl:"database,block"`
	Watches        []Watch     `hcl:"watch,block"`
}

// Database points at the target relational store.
type Database struct {
	Driver string `hcl:"driver"`
	DSN    string `hcl:"dsn"`
}

// Watch configures one ingestion drop directory. Files created or changed
// under Dir are ingested automatically; Schedule optionally re-scans the
// directory on a cron expression.
type Watch struct {
	Dir      string `hcl:"dir"`
	Table    string `hcl:"table,optional"`    // override; default derives from file name
	Schedule string `hcl:"schedule,optional"` // cron expression, e.g. "@hourly"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ReadOnlyStrict: true,
		MaxOpenConns:   4,
	}
}

// Load reads and validates the configuration from the given HCL file.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse config file: %s", diags.Error())
	}

	cfg := DefaultConfig()
	diags = gohcl.DecodeBody(file.Body, nil, cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode config: %s", diags.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if c.Database == nil {
		return fmt.Errorf("config: database block is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("config: unsupported driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database dsn is required")
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("config: max_open_conns must not be negative")
	}
	for i, w := range c.Watches {
		if w.Dir == "" {
			return fmt.Errorf("config: watch block %d: dir is required", i+1)
		}
	}
	return nil
}

// Export writes a starter configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("read_only_strict", cty.BoolVal(cfg.ReadOnlyStrict))
	root.SetAttributeValue("max_open_conns", cty.NumberIntVal(int64(cfg.MaxOpenConns)))
	root.AppendNewline()

	db := root.AppendNewBlock("database", nil).Body()
	driver, dsn := "sqlite", "datadeck.db"
	if cfg.Database != nil {
		driver, dsn = cfg.Database.Driver, cfg.Database.DSN
	}
	db.SetAttributeValue("driver", cty.StringVal(driver))
	db.SetAttributeValue("dsn", cty.StringVal(dsn))

	for _, w := range cfg.Watches {
		root.AppendNewline()
		wb := root.AppendNewBlock("watch", nil).Body()
		wb.SetAttributeValue("dir", cty.StringVal(w.Dir))
		if w.Table != "" {
			wb.SetAttributeValue("table", cty.StringVal(w.Table))
		}
		if w.Schedule != "" {
			wb.SetAttributeValue("schedule", cty.StringVal(w.Schedule))
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(f.Bytes()); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
