// Package main provides the sheetbot entry point: the Telegram bot plus offline helpers.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/sheetbot/core/bootstrap"
	"github.com/m3rciful/sheetbot/core/buildinfo"
	corecmd "github.com/m3rciful/sheetbot/core/cmd"
	coreconfig "github.com/m3rciful/sheetbot/core/config"
	"github.com/m3rciful/sheetbot/internal/bot"
	"github.com/m3rciful/sheetbot/internal/links"
	"github.com/m3rciful/sheetbot/internal/table"
	"github.com/m3rciful/sheetbot/internal/viewer"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	runBot := func(cmd *cobra.Command, _ []string) error {
		return corecmd.Run(corecmd.Options{
			ConfigPath:        configPath,
			ConfigEnvVar:      "CONFIG_PATH",
			DefaultConfigPath: defaultConfigPath,
			LoadConfig:        coreconfig.Load,
			Bootstrap:         bootstrapApp,
		})
	}

	root := &cobra.Command{
		Use:          "sheetbot",
		Short:        "Telegram bot for t.me links and spreadsheet paging",
		Version:      buildinfo.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runBot,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: $CONFIG_PATH or config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run the Telegram bot (default)",
		Args:  cobra.NoArgs,
		RunE:  runBot,
	})
	root.AddCommand(newLinksCmd(), newViewCmd())
	return root
}

func bootstrapApp(ctx context.Context, cfg *coreconfig.Config) (corecmd.TelegramApp, error) {
	infra, err := bootstrap.Run(ctx, bootstrap.Options{Config: cfg})
	if err != nil {
		return nil, err
	}
	b, err := bot.New(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return b, nil
}

func newLinksCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "links [list...]",
		Short: "Convert numbers or usernames to t.me links",
		Long: `Convert a list of phone numbers or usernames to t.me links.
Entries come from the arguments, or from stdin when no arguments are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := links.ParseMode(mode)
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}
			urls, err := links.Generate(text, m)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), links.Join(urls))
			return err
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(links.ModeNumber), "Link mode: number or username")
	return cmd
}

func newViewCmd() *cobra.Command {
	var (
		page     int
		column   int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "view [input.xlsx]",
		Short: "Print one page of a spreadsheet column the way the bot shows it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			t, err := table.NewLoader().Load(cmd.Context(), data, filepath.Base(path))
			if err != nil {
				return err
			}
			v, err := navigate(t, pageSize, page, column)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Col %d of %d | Page %d/%d | Rows %d to %d (of %d)\n\n",
				v.Column, v.Columns, v.Page, v.Pages, v.StartRow, v.EndRow, v.TotalRows)
			_, err = fmt.Fprintln(out, v.Content)
			return err
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "1-based page number")
	cmd.Flags().IntVar(&column, "column", 0, "1-based column (default: second column when present)")
	cmd.Flags().IntVar(&pageSize, "page-size", coreconfig.DefaultPageSize, "Rows per page")
	return cmd
}

// navigate drives a throwaway session to the requested page and column.
func navigate(t *table.Table, pageSize, page, column int) (viewer.View, error) {
	if pageSize < 1 || pageSize > coreconfig.MaxPageSize {
		return viewer.View{}, fmt.Errorf("page size must be within 1..%d", coreconfig.MaxPageSize)
	}
	const chat = 0
	store := viewer.NewStore(viewer.Options{PageSize: pageSize})
	v, err := store.Load(chat, t)
	if err != nil {
		return viewer.View{}, err
	}
	if column < 0 || column > v.Columns {
		return viewer.View{}, fmt.Errorf("column %d out of range 1..%d", column, v.Columns)
	}
	if page < 1 || page > v.Pages {
		return viewer.View{}, fmt.Errorf("page %d out of range 1..%d", page, v.Pages)
	}
	for column != 0 && v.Column != column {
		if v, err = store.NextColumn(chat); err != nil {
			return viewer.View{}, err
		}
	}
	for v.Page < page {
		if v, err = store.NextPage(chat); err != nil {
			return viewer.View{}, err
		}
	}
	return v, nil
}
