package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"Vidshelf/config"
	"Vidshelf/logger"
	"Vidshelf/models"
)

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "vidshelf",
		Short:         "Personal movie and TV catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg = config.Load()
			logger.Init(cfg.Environment, cfg.Debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	configValue := func() *config.Config { return cfg }

	rootCmd.AddCommand(newServeCommand(configValue))
	rootCmd.AddCommand(newInitDBCommand(configValue))
	rootCmd.AddCommand(newScanCommand(configValue))
	rootCmd.AddCommand(newSourcesCommand(configValue))

	return rootCmd
}

func newServeCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg())
		},
	}
}

func newInitDBCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cfg())
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(cmd.OutOrStdout(), "Database ready (%s)\n", a.db.Dialect())
			return nil
		},
	}
}

func newScanCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan all media sources once and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := openApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.worker.Run(ctx)
			if err != nil {
				return fmt.Errorf("scan %s: %w", report.Run.Status, err)
			}

			r := report.Result
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "Added", "Removed"},
				[][]string{
					{"Movies", strconv.Itoa(r.MoviesAdded), strconv.Itoa(r.MoviesRemoved)},
					{"Shows", strconv.Itoa(r.ShowsAdded), strconv.Itoa(r.ShowsRemoved)},
					{"Episodes", strconv.Itoa(r.EpisodesAdded), strconv.Itoa(r.EpisodesRemoved)},
				},
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d sources (%d skipped) in %s\n",
				r.LocationsScanned, r.LocationsSkipped, report.Run.Duration().Round(time.Millisecond))
			return nil
		},
	}
}

func newSourcesCommand(cfg func() *config.Config) *cobra.Command {
	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage media sources",
	}

	sourcesCmd.AddCommand(&cobra.Command{
		Use:   "add <movie|tv> <path>",
		Short: "Add a directory as a media source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg(), func(ctx context.Context, a *app) error {
				loc, err := a.locations.Add(ctx, models.MediaType(args[0]), args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s source #%d (%s)\n", loc.Type, loc.ID, loc.Path)
				return nil
			})
		},
	})

	sourcesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List media sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), cfg(), func(ctx context.Context, a *app) error {
				locations, err := a.locations.List(ctx)
				if err != nil {
					return err
				}
				if len(locations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No media sources")
					return nil
				}

				rows := make([][]string, 0, len(locations))
				for _, loc := range locations {
					rows = append(rows, []string{
						strconv.FormatInt(loc.ID, 10),
						string(loc.Type),
						loc.Path,
						loc.CreatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Type", "Path", "Added"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	})

	sourcesCmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a media source and its catalog entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid source id %q", args[0])
			}
			return withApp(cmd.Context(), cfg(), func(ctx context.Context, a *app) error {
				if err := a.locations.Remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed source #%d\n", id)
				return nil
			})
		},
	})

	return sourcesCmd
}

func withApp(ctx context.Context, cfg *config.Config, fn func(context.Context, *app) error) error {
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}
