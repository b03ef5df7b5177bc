package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/Siqu/shpParser/shp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "shpparser",
		Short:        "Decode ESRI shapefiles and load them into a database",
		SilenceUsage: true,
	}

	root.AddCommand(newServeCommand(), newLoadCommand(), newDumpCommand())

	return root
}

func newServeCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the configured sources and serve the load status over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configFile)

			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "The config file")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func serve(ctx context.Context, cfg *config) error {
	l, flush, err := newLogger(&cfg.Log)

	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer flush()

	store, err := openStore(cfg.Database.Path)

	if err != nil {
		return err
	}

	defer store.Close()

	status := newLoadStatusManager(cfg.Sources)
	exporter := newWebExporter(status, store, l.newSubLogger("web"))
	loaders := newLoaderManager(cfg.Sources, store, status, l.newSubLogger("loader"))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Web.Address != "" {
		server := exporter.newServer(&cfg.Web)

		g.Go(func() error {
			err := server.ListenAndServe()

			if err == http.ErrServerClosed {
				return nil
			}

			return err
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			return server.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return loaders.run(ctx)
	})

	err = g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		l.Errorf("subsystem returned error: %v", err)
		return err
	}

	return nil
}

func newLoadCommand() *cobra.Command {
	var databasePath string
	var workers int
	var logLevel string

	cmd := &cobra.Command{
		Use:   "load <file.shp>...",
		Short: "Load shapefiles into the database once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, paths []string) error {
			l, flush, err := newLogger(&logConfig{Level: logLevel})

			if err != nil {
				return err
			}

			defer flush()

			store, err := openStore(databasePath)

			if err != nil {
				return err
			}

			defer store.Close()

			source := sourceConfig{Id: "cli", Workers: workers}

			if source.Workers < 1 {
				source.Workers = 1
			}

			status := newLoadStatusManager([]sourceConfig{source})
			instance := &loaderInstance{
				config: source,
				loader: &fileLoader{store: store},
				status: status,
				logger: l.newSubLogger("load"),
			}

			instance.loadFiles(cmd.Context(), paths)

			return summarize(cmd.OutOrStdout(), status.get().Sources[source.Id])
		},
	}

	cmd.Flags().StringVar(&databasePath, "db", defaultDatabasePath, "The database file")
	cmd.Flags().IntVar(&workers, "workers", 1, "Files decoded in parallel")
	cmd.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "Log level")

	return cmd
}

func summarize(w io.Writer, s sourceStatus) error {
	failed := 0

	for _, path := range slices.Sorted(maps.Keys(s.Files)) {
		f := s.Files[path]

		switch f.State {
		case fileFailed:
			failed++
			fmt.Fprintf(w, "%s: failed: %s\n", path, f.Error)
		case fileSkipped:
			fmt.Fprintf(w, "%s: already loaded\n", path)
		default:
			fmt.Fprintf(w, "%s: loaded %d records\n", path, f.Records)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to load", failed, len(s.Files))
	}

	return nil
}

func newDumpCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dump <file.shp>",
		Short: "Decode a shapefile and print its contents for debugging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpFile(cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the header and records as JSON")

	return cmd
}

func dumpFile(w io.Writer, filePath string, asJSON bool) error {
	f, err := os.OpenFile(filePath, os.O_RDONLY, 0)

	if err != nil {
		return fmt.Errorf("failed to load file to dump: %w", err)
	}

	defer f.Close()

	reader := shp.NewReader(f)

	h, err := reader.Header()

	if err != nil {
		return err
	}

	if asJSON {
		fmt.Fprintln(w, h.String())
	} else {
		fmt.Fprintf(w, "header: %v, version %d, %d words\n  box: %v\n", h.ShapeType, h.Version, h.FileLength, h.Box)
	}

	count := 0

	for rec, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed after %d records: %w", count, err)
		}

		count++

		if asJSON {
			fmt.Fprintln(w, rec.StringPretty())
		} else {
			fmt.Fprintln(w, rec)
		}
	}

	fmt.Fprintf(w, "%d records\n", count)

	return nil
}
