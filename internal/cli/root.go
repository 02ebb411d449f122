/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli holds the labdesigner commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"labdesigner/internal/config"
	"labdesigner/internal/domain"
	applog "labdesigner/internal/log"
	"labdesigner/internal/version"
)

// loadConfig is swapped by tests to keep the OS keyring out of the picture.
var loadConfig = config.Load

// settings is the configuration resolved by the root command before any subcommand runs.
type settings struct {
	cfg    config.AppConfig
	secret string
}

var current settings

// RootCmd builds the command tree.
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "labdesigner",
		Short:         "Layout designer for the lab landing page",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `labdesigner edits, validates and serves the layout document of the lab landing page:
per-breakpoint positions, sizes, stacking and locks of the fixed UI entities plus the
free-floating clouds.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, secret, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			applog.Init(applog.Options{
				Level:     cfg.Logging.Level,
				Format:    cfg.Logging.Format,
				AddSource: cfg.Logging.Source,
				File:      cfg.Logging.File,
			})
			current = settings{cfg: cfg, secret: secret}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return applog.Close()
		},
	}

	root.AddCommand(VersionCmd())
	root.AddCommand(DefaultsCmd())
	root.AddCommand(ValidateCmd())
	root.AddCommand(ImportCmd())
	root.AddCommand(PreviewCmd())
	root.AddCommand(HistoryCmd())
	root.AddCommand(ServeCmd())
	root.AddCommand(RemoteCmd())
	root.AddCommand(ConfigCmd())
	return root
}

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "labdesigner", version.String())
		},
	}
}

func parseBreakpoint(s string) (domain.Breakpoint, error) {
	switch domain.Breakpoint(strings.ToLower(strings.TrimSpace(s))) {
	case domain.Desktop:
		return domain.Desktop, nil
	case domain.Mobile:
		return domain.Mobile, nil
	default:
		return "", fmt.Errorf("unknown breakpoint %q (want desktop or mobile)", s)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
