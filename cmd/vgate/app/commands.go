// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the vgate command-line
// application.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/vgate/pkg/gwconfig"
	"github.com/stacklok/vgate/pkg/gwlogging"
	"github.com/stacklok/vgate/pkg/orchestrator"
)

// version is overwritten at build time via -ldflags "-X ...app.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:               "vgate",
	DisableAutoGenTag: true,
	Short:             "vgate - Model Context Protocol gateway and tool-routing fabric",
	Long: `vgate aggregates local capability-file tools and external MCP servers behind
a single unified catalog, resolving name conflicts, routing calls by agent
identity, and exposing the result over stdio, Streamable HTTP, HTTP+SSE and
WebSocket — all from one capability and server configuration.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := cmd.Help(); err != nil {
			gwlogging.Errorf("displaying help: %v", err)
		}
	},
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		gwlogging.Initialize(viper.GetBool("debug"))
		_ = cmd
	},
}

// NewRootCmd creates the root command for the vgate CLI.
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		gwlogging.Errorf("binding debug flag: %v", err)
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the vgate configuration file")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		gwlogging.Errorf("binding config flag: %v", err)
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.SilenceUsage = true
	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway",
		Long: `Start the gateway: load the capability directories and external server list
from the configuration file, bring up the unified catalog, and serve it over
every configured transport until the process receives a shutdown signal.`,
		RunE: runServe,
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			gwlogging.Infof("vgate version: %s", version)
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a gateway configuration file",
		Long: `Validate checks the configuration file named by --config for syntax errors
and semantic problems: missing name, no catalog sources, no enabled
transport, an unknown conflict policy, duplicate or misconfigured external
server entries, and discovery weights that do not sum to 1.0.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadAndValidateConfig(viper.GetString("config"))
			if err != nil {
				return err
			}
			gwlogging.Infof("configuration is valid")
			gwlogging.Infof("  name: %s", cfg.Name)
			gwlogging.Infof("  capability dirs: %v", cfg.CapabilityDirs)
			gwlogging.Infof("  external servers: %d", len(cfg.ExternalServers))
			gwlogging.Infof("  conflict policy: %s", cfg.ConflictPolicy)
			gwlogging.Infof("  discovery mode: %s", cfg.Discovery.Mode)
			return nil
		},
	}
}

// loadAndValidateConfig loads and validates the gateway configuration file.
func loadAndValidateConfig(configPath string) (*gwconfig.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("no configuration file specified, use --config")
	}

	loader := gwconfig.NewYAMLLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if err := gwconfig.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}
	return cfg, nil
}

// runServe implements the serve command: build the gateway from
// configuration and run it until ctx is cancelled.
func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadAndValidateConfig(viper.GetString("config"))
	if err != nil {
		return err
	}
	if viper.GetBool("debug") {
		cfg.Debug = true
	}

	gw, err := orchestrator.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("build gateway: %w", err)
	}

	gwlogging.Infof("starting %s", cfg.Name)
	return gw.Run(ctx)
}
