/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"labdesigner/internal/config"
)

// ConfigCmd shows the effective configuration and manages the API secret.
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show configuration or manage the API secret",
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.ConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(current.cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			for _, key := range []string{
				"designer.mobile_breakpoint", "designer.id_strategy", "storage.layout_path",
				"server.addr", "server.database_url", "backend.base_url",
				"general.telemetry_opt_in", "logging.level", "logging.format", "logging.file",
			} {
				if env, ok := config.EnvOverrideFor(key); ok {
					fmt.Fprintf(cmd.OutOrStdout(), "# %s overridden by %s\n", key, env)
				}
			}
			if current.secret != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "# api secret: set (keyring)")
			}
			return nil
		},
	}

	setSecret := &cobra.Command{
		Use:   "set-secret",
		Short: "Read the API signing secret from stdin and store it in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			secret := strings.TrimSpace(line)
			if secret == "" {
				if err != nil {
					return fmt.Errorf("read secret: %w", err)
				}
				return fmt.Errorf("empty secret")
			}
			if err := config.Save(current.cfg, secret); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "secret stored")
			return nil
		},
	}

	clearSecret := &cobra.Command{
		Use:   "clear-secret",
		Short: "Remove the API secret from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.DeleteSecret(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "secret removed")
			return nil
		},
	}

	cmd.AddCommand(path, show, setSecret, clearSecret)
	return cmd
}
