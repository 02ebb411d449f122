/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"labdesigner/internal/backend"
	"labdesigner/internal/snapshot"
)

// RemoteCmd talks to a running labdesigner server.
func RemoteCmd() *cobra.Command {
	var (
		baseURL string
		subject string
	)
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Publish or fetch layouts on a running server",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", "", "server base URL (default from config)")
	cmd.PersistentFlags().StringVar(&subject, "subject", "cli", "token subject")

	client := func() *backend.Client {
		u := baseURL
		if u == "" {
			u = current.cfg.Backend.BaseURL
		}
		return backend.NewClient(u, "", current.cfg.Backend.Timeout())
	}

	publish := &cobra.Command{
		Use:   "publish",
		Short: "Store the server's current layout as the next published version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client()
			if _, err := c.Login(cmd.Context(), subject); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			p, err := c.Publish(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published version %d (%d entities, %d clouds)\n", p.Version, len(p.Document.UI), len(p.Document.Clouds))
			return nil
		},
	}

	var out string
	latest := &cobra.Command{
		Use:   "latest",
		Short: "Fetch the latest published layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := client().Latest(cmd.Context())
			if err != nil {
				return err
			}
			data, err := snapshot.Marshal(p.Document)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote version %d to %s\n", p.Version, out)
			return nil
		},
	}
	latest.Flags().StringVarP(&out, "out", "o", "", "write the document to a file")

	cmd.AddCommand(publish, latest)
	return cmd
}
