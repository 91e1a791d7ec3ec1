package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"weather-widget/api"
	"weather-widget/collector"
	"weather-widget/config"
	"weather-widget/console"
	"weather-widget/datasource"
	"weather-widget/render"
	"weather-widget/storage"
	"weather-widget/widget"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// InitLogger parses the level string and configures the standard logrus logger
func InitLogger(logLevel string) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	return nil
}

// app is what every subcommand needs, built once in PersistentPreRunE
type app struct {
	cfg       *config.Config
	store     storage.Store
	collector *collector.Collector
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	a := &app{}
	var (
		configFile string
		ephemeral  bool
	)

	root := &cobra.Command{
		Use:           "weather-widget",
		Short:         "Current weather and a 5-day forecast for a city, with saved favorites",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			if err := InitLogger(cfg.Log.Level); err != nil {
				return fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
			}

			if ephemeral {
				cfg.Storage.Driver = storage.DriverMemory
			}
			store, err := storage.Open(cmd.Context(), storage.Options{
				Driver:    cfg.Storage.Driver,
				Path:      cfg.Storage.Path,
				RedisAddr: cfg.Storage.RedisAddr,
				RedisDB:   cfg.Storage.RedisDB,
			})
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			log.WithFields(log.Fields{"driver": cfg.Storage.Driver, "path": cfg.Storage.Path}).Debug("storage opened")

			provider := datasource.NewOpenWeatherMapProvider(cfg.OpenWeatherMap.APIKey,
				datasource.WithBaseURL(cfg.OpenWeatherMap.BaseURL),
				datasource.WithHTTPClient(&http.Client{Timeout: cfg.OpenWeatherMap.Timeout}),
				datasource.WithLogger(log.StandardLogger()),
			)

			a.cfg = cfg
			a.store = store
			a.collector = collector.NewCollector(provider, provider)
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a config file (yaml, json or toml)")
	flags.BoolVar(&ephemeral, "ephemeral", false, "keep favorites in memory only")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("storage", "file", "favorites storage driver (file, sqlite, redis, memory)")
	flags.String("storage-path", "", "file or sqlite path for favorites storage")
	flags.String("redis-addr", "", "redis address when --storage=redis")
	mustBind(v, "log.level", flags.Lookup("log-level"))
	mustBind(v, "storage.driver", flags.Lookup("storage"))
	mustBind(v, "storage.path", flags.Lookup("storage-path"))
	mustBind(v, "storage.redis_addr", flags.Lookup("redis-addr"))

	root.AddCommand(
		newSearchCommand(a),
		newConsoleCommand(a),
		newFavoritesCommand(a),
		newServeCommand(a, v),
	)
	return root
}

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <city>",
		Short: "Look up current conditions and the forecast once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			w := widget.New(cmd.Context(), a.collector, a.store)
			w.Search(cmd.Context(), strings.Join(args, " "))
			w.Wait()

			s := w.Snapshot()
			if err := render.WriteText(cmd.OutOrStdout(), render.Build(s, time.Now())); err != nil {
				return err
			}
			if s.Error {
				return errors.New(render.ErrorMessage)
			}
			return nil
		},
	}
}

func newConsoleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive widget: type a city and press Enter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			screen := console.NewScreen(cmd.OutOrStdout())
			w := widget.New(cmd.Context(), a.collector, a.store, widget.WithOnChange(screen.Render))
			err := console.Run(cmd.Context(), w, screen, cmd.InOrStdin())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newFavoritesCommand(a *app) *cobra.Command {
	favorites := &cobra.Command{
		Use:   "favorites",
		Short: "List or add favorite cities",
	}

	favorites.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the saved favorites",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				list, err := widget.LoadFavorites(cmd.Context(), a.store)
				if err != nil {
					return err
				}
				for _, city := range list {
					fmt.Fprintln(cmd.OutOrStdout(), city)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <city>",
			Short: "Save a favorite city",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				w := widget.New(cmd.Context(), a.collector, a.store)
				return w.AddFavorite(cmd.Context(), strings.Join(args, " "))
			},
		},
	)
	return favorites
}

func newServeCommand(a *app, v *viper.Viper) *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the widget API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			w := widget.New(cmd.Context(), a.collector, a.store)
			server := api.NewServer(a.collector, w, a.cfg.Server.Port, log.StandardLogger())

			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			log.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(ctx)
		},
	}
	serve.Flags().Int("port", 8080, "port to listen on")
	mustBind(v, "server.port", serve.Flags().Lookup("port"))
	return serve
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Error(err)
		stop()
		os.Exit(1)
	}
}
