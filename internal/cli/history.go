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
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"labdesigner/internal/domain"
	"labdesigner/internal/storage"
)

// HistoryCmd groups the snapshot history subcommands.
func HistoryCmd() *cobra.Command {
	var (
		layoutPath string
		bpName     string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the snapshot history kept next to the layout file",
	}
	cmd.PersistentFlags().StringVar(&layoutPath, "layout", "", "layout file (default from config)")
	cmd.PersistentFlags().StringVar(&bpName, "bp", string(domain.Desktop), "breakpoint")

	open := func(cmd *cobra.Command) (*storage.History, domain.Breakpoint, error) {
		bp, err := parseBreakpoint(bpName)
		if err != nil {
			return nil, "", err
		}
		h := &storage.LayoutHandle{Path: layoutPathOr(layoutPath)}
		hist, rebuilt, err := storage.RecoverHistory(cmd.Context(), h.Dir())
		if err != nil {
			return nil, "", err
		}
		if rebuilt {
			fmt.Fprintln(cmd.ErrOrStderr(), "history was unreadable and has been rebuilt; a backup was kept")
		}
		return hist, bp, nil
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, bp, err := open(cmd)
			if err != nil {
				return err
			}
			defer hist.Close()
			entries, err := hist.List(cmd.Context(), bp, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no %s snapshots\n", bp)
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTIME\tBYTES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%d\n", e.ID, e.TS.Local().Format(time.DateTime), len(e.Doc))
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, bp, err := open(cmd)
			if err != nil {
				return err
			}
			defer hist.Close()
			if keep <= 0 {
				keep = current.cfg.Storage.HistoryKeep
			}
			n, err := hist.Prune(cmd.Context(), bp, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d %s snapshots (kept %d)\n", n, bp, keep)
			return nil
		},
	}
	prune.Flags().IntVar(&keep, "keep", 0, "snapshots to keep (default from config)")

	latest := &cobra.Command{
		Use:   "latest",
		Short: "Print the newest snapshot document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, bp, err := open(cmd)
			if err != nil {
				return err
			}
			defer hist.Close()
			e, ok, err := hist.Latest(cmd.Context(), bp)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no %s snapshots", bp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(e.Doc))
			return err
		},
	}

	cmd.AddCommand(list, prune, latest)
	return cmd
}
