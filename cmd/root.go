// Package cmd is for command line interactions with the tpfasta application
package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jjtimmons/tpfasta/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)

	// logger is built before every command runs
	logger = zap.NewNop()

	// settingsFile is an optional YAML file of settings
	settingsFile string
)

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "tpfasta",
	Short: "Re-assemble genome assembly FASTA files from curated tiling paths",
	Long: `Re-assemble genome assembly FASTA files from curated tiling paths.

A tiling path (TPF) lists, in order, the cuts of the original scaffolds that
make up each new scaffold and the strand each cut is placed on. tpfasta cuts,
flips and joins those fragments into a new FASTA and writes a report of
where each new scaffold came from.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if settingsFile != "" {
			viper.SetConfigFile(settingsFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read settings %s: %w", settingsFile, err)
			}
		}

		l, err := newLogger(viper.GetBool("verbose"))
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		stderr.Fatalf("%v", err)
	}
}

// newLogger logs human readable lines to stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	c := zap.NewProductionConfig()
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.DisableStacktrace = true
	if verbose {
		c.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return c.Build()
}

func init() {
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("tpfasta")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	RootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "YAML file of settings (flags take precedence)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug messages")
	viper.BindPFlag("verbose", RootCmd.PersistentFlags().Lookup("verbose"))
}
