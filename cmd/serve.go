// file: cmd/serve.go
// version: 1.0.0
// guid: 08aa9961-429d-4dc4-b192-b40d548be4a2

package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/config"
	"github.com/jdfalk/newsdeck/internal/feed"
	"github.com/jdfalk/newsdeck/internal/prefetch"
	"github.com/jdfalk/newsdeck/internal/realtime"
	"github.com/jdfalk/newsdeck/internal/search"
	"github.com/jdfalk/newsdeck/internal/server"
	"github.com/jdfalk/newsdeck/internal/sports"
	"github.com/jdfalk/newsdeck/internal/watcher"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the JSON API and Server-Sent Events stream. The feed, weather
and sports views load immediately; sports scores are polled while serving.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(config.AppConfig)
		if err != nil {
			return err
		}
		defer a.Close()

		cfg := server.ServerConfig{
			Port:            config.AppConfig.Port,
			Host:            config.AppConfig.Host,
			RateLimitPerMin: config.AppConfig.APIRateLimitPerMin,
			RateBurst:       config.AppConfig.APIRateBurst,
		}
		if rt := cmd.Flag("read-timeout").Value.String(); rt != "" {
			if d, err := time.ParseDuration(rt); err == nil {
				cfg.ReadTimeout = d
			}
		}
		if wt := cmd.Flag("write-timeout").Value.String(); wt != "" {
			if d, err := time.ParseDuration(wt); err == nil {
				cfg.WriteTimeout = d
			}
		}
		if it := cmd.Flag("idle-timeout").Value.String(); it != "" {
			if d, err := time.ParseDuration(it); err == nil {
				cfg.IdleTimeout = d
			}
		}

		index, err := search.NewIndex()
		if err != nil {
			return fmt.Errorf("failed to create search index: %w", err)
		}
		defer index.Close()

		orchestrator := feed.NewOrchestrator(a.news, index, a.sup)
		tracker := sports.NewTracker(a.sports, a.sup, config.AppConfig.SportsPollInterval)
		hub := realtime.NewEventHub()

		srv := server.NewServer(server.Deps{
			Feed:       orchestrator,
			News:       a.news,
			Weather:    a.weather,
			Sports:     tracker,
			Hub:        hub,
			Supervisor: a.sup,
		}, cfg)

		orchestrator.SetSelection(config.AppConfig.DefaultCategory, config.AppConfig.DefaultCountry)
		if _, err := tracker.Select(config.AppConfig.DefaultSport, config.AppConfig.DefaultLeague); err != nil {
			log.Printf("[WARN] Default sport %q: %v", config.AppConfig.DefaultSport, err)
		}
		a.weather.Start()

		live := &liveConfig{cfg: config.AppConfig}

		scheduler := prefetch.NewScheduler(a.news, prefetch.Options{Mirror: mirrorFor(a)}, live.prefetch)
		if scheduler.Start() {
			defer scheduler.Stop()
		}

		w := watcher.New(func(changed []string) {
			live.reload(changed, envFile)
			a.weather.SetLocateTimeout(live.get().GeolocationTimeout)
		}, 0)
		if err := w.Start(viper.ConfigFileUsed(), envFile); err != nil {
			log.Printf("[WARN] Config watcher disabled: %v", err)
		} else {
			defer w.Stop()
		}

		return srv.Start(context.Background())
	},
}

func init() {
	serveCmd.Flags().String("port", "8080", "port to run the web server on")
	serveCmd.Flags().String("host", "localhost", "host to bind the web server to")
	serveCmd.Flags().String("read-timeout", "15s", "read timeout (e.g. 15s, 1m)")
	serveCmd.Flags().String("write-timeout", "0s", "write timeout; 0 keeps event streams open")
	serveCmd.Flags().String("idle-timeout", "60s", "idle timeout (e.g. 60s, 2m)")
	serveCmd.Flags().Duration("prefetch-interval", 0, "warm the news cache on this interval (0 disables)")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("prefetch_interval", serveCmd.Flags().Lookup("prefetch-interval"))
}

// liveConfig guards the configuration that may change while serving.
type liveConfig struct {
	mu  sync.RWMutex
	cfg config.Config
}

func (l *liveConfig) get() config.Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

func (l *liveConfig) prefetch() prefetch.SchedulerConfig {
	cfg := l.get()
	return prefetch.SchedulerConfig{
		Enabled:  cfg.PrefetchInterval > 0,
		Interval: cfg.PrefetchInterval,
		Jobs:     prefetch.Jobs(cfg.PrefetchCategories, cfg.PrefetchCountries),
	}
}

// reload re-reads the environment file and the config file. Settings that
// need a restart (ports, storage) only take effect on the next start.
func (l *liveConfig) reload(changed []string, env string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	envAbs, _ := filepath.Abs(env)
	for _, path := range changed {
		if env != "" && path == envAbs {
			if err := godotenv.Overload(env); err != nil {
				log.Printf("[WARN] Reloading %s: %v", env, err)
			}
		}
	}
	if err := config.Reload(); err != nil {
		log.Printf("[WARN] Config reload failed, keeping previous settings: %v", err)
		return
	}
	l.cfg = config.AppConfig
	log.Printf("[INFO] Configuration reloaded")
}

// mirrorFor returns the fallback store as a prefetch mirror, or nil.
func mirrorFor(a *app) prefetch.Mirror {
	if a.fallback == nil {
		return nil
	}
	return a.fallback
}
