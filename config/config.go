// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jjtimmons/tpfasta/internal/curate"
	"github.com/jjtimmons/tpfasta/internal/tpf"
	"github.com/spf13/viper"
)

const (
	// DefaultGapLength is the number of N's placed between joined fragments
	DefaultGapLength = curate.DefaultGapLength

	// DefaultLineWidth is the number of bases per FASTA sequence line
	DefaultLineWidth = curate.DefaultLineWidth

	// DefaultReportName is the provenance report's file name when no
	// report path is set. It's written beside the output FASTA
	DefaultReportName = curate.DefaultReportName
)

// CurateConfig are the settings for re-assembling a FASTA from a TPF
type CurateConfig struct {
	// path to the input FASTA
	Fasta string `mapstructure:"fasta"`

	// path to the tiling path file
	TPF string `mapstructure:"tpf"`

	// path to the FASTA to write
	Output string `mapstructure:"output"`

	// path to the provenance report. Empty means DefaultReportName
	// in the output's directory
	Report string `mapstructure:"report"`

	// length of the N run between two fragments of a scaffold
	GapLength int `mapstructure:"gap-length"`

	// bases per line in the output FASTA
	LineWidth int `mapstructure:"line-width"`

	// destination name prefix that's rewritten, ex: "RL_"
	RenameFrom string `mapstructure:"rename-from"`

	// prefix that replaces RenameFrom, ex: "SUPER_"
	RenameTo string `mapstructure:"rename-to"`

	// how to treat orientations other than PLUS and MINUS: "plus" or "strict"
	Orientation string `mapstructure:"orientation"`

	// size sort the output. Accepted but not applied
	Sort bool `mapstructure:"sort"`
}

// IndexConfig settings about the FASTA positional index
type IndexConfig struct {
	// write a missing .fai next to the FASTA after building it
	Write bool `mapstructure:"write-index"`
}

// Config is the root-level settings struct and is a mix
// of settings available in a settings file and those
// available from the command line
type Config struct {
	// Curate settings
	Curate CurateConfig `mapstructure:"curate"`

	// Index settings
	Index IndexConfig `mapstructure:"index"`

	// Verbose is whether to log at debug level
	Verbose bool `mapstructure:"verbose"`
}

// SetDefaults registers the default settings on a viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("curate.output", curate.DefaultOutput)
	v.SetDefault("curate.gap-length", DefaultGapLength)
	v.SetDefault("curate.line-width", DefaultLineWidth)
	v.SetDefault("curate.rename-from", tpf.DefaultRename.From)
	v.SetDefault("curate.rename-to", tpf.DefaultRename.To)
	v.SetDefault("curate.orientation", "plus")
	v.SetDefault("curate.sort", false)
	v.SetDefault("index.write-index", true)
	v.SetDefault("verbose", false)
}

// New returns a new Config struct populated by the global Viper
// settings: the settings file (if one was read), environment and
// command line arguments
func New() (*Config, error) {
	return FromViper(viper.GetViper())
}

// FromViper unmarshals and checks the settings of a viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ReportPath returns where the provenance report is written.
func (c CurateConfig) ReportPath() string {
	if c.Report != "" {
		return c.Report
	}
	return filepath.Join(filepath.Dir(c.Output), DefaultReportName)
}

func (c *Config) validate() error {
	if c.Curate.GapLength < 0 {
		return fmt.Errorf("gap-length must be >= 0, got %d", c.Curate.GapLength)
	}
	if c.Curate.LineWidth < 1 {
		return fmt.Errorf("line-width must be > 0, got %d", c.Curate.LineWidth)
	}

	c.Curate.Orientation = strings.ToLower(strings.TrimSpace(c.Curate.Orientation))
	switch c.Curate.Orientation {
	case "plus", "strict":
	default:
		return fmt.Errorf(`orientation must be "plus" or "strict", got %q`, c.Curate.Orientation)
	}

	return nil
}
