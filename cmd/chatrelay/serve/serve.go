package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatrelay/pkg/config"
	"github.com/papercomputeco/chatrelay/pkg/logger"
	"github.com/papercomputeco/chatrelay/proxy"
)

const serveLongDesc string = `Start the chat relay server.

Configuration is read from the TOML file given by --config, then the
.env file, then the environment, then flags. The upstream API key is only
read from the file or the AI_API_KEY environment variable.

With --watch, changes to the upstream URL and API key in the config
file apply to the next request. Listen address, route and timeout are
fixed at startup.

Examples:
  AI_API_URL=https://api.openai.com/v1/chat/completions AI_API_KEY=sk-... chatrelay serve
  chatrelay serve --config chatrelay.toml --watch
  chatrelay serve --listen :9000 --timeout 30s --debug`

const serveShortDesc string = "Start the relay server"

type serveCommander struct {
	configPath string
	envFile    string
	listen     string
	route      string
	upstream   string
	timeout    time.Duration
	debug      bool
	jsonLogs   bool
	watch      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().StringVar(&cmder.envFile, "env-file", ".env", "Path to dotenv file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default \":8080\")")
	cmd.Flags().StringVar(&cmder.route, "route", "", "Route the relay is served on (default \"/api/chat\")")
	cmd.Flags().StringVarP(&cmder.upstream, "upstream", "u", "", "Upstream completion API URL")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 0, "Upstream request timeout (default 2m)")
	cmd.Flags().BoolVarP(&cmder.debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().BoolVar(&cmder.jsonLogs, "json-logs", false, "Emit logs as JSON")
	cmd.Flags().BoolVarP(&cmder.watch, "watch", "w", false, "Reload the config file when it changes")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	if c.watch && c.configPath == "" {
		return errors.New("--watch requires --config")
	}

	loader := config.Loader{
		Path:    c.configPath,
		EnvFile: c.envFile,
		Override: func(cfg *config.Config) {
			c.applyFlags(cfg, cmd.Flags())
		},
	}

	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	var logOpts []logger.Option
	if c.jsonLogs {
		logOpts = append(logOpts, logger.WithJSON())
	}
	logOpts = append(logOpts, logger.WithOutput(cmd.OutOrStdout()))
	log := logger.NewLogger(cfg.Debug, logOpts...)
	defer log.Sync()

	store := config.NewStore(cfg)

	p, err := proxy.New(proxy.Config{
		ListenAddr: cfg.Listen,
		Route:      cfg.Route,
		Timeout:    cfg.Timeout.Duration,
	}, store, log)
	if err != nil {
		return fmt.Errorf("could not create relay: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.watch {
		go func() {
			if err := config.Watch(ctx, loader, store, log); err != nil {
				log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down relay server")
		if err := p.Shutdown(); err != nil {
			return fmt.Errorf("could not shut down relay: %w", err)
		}
		return <-errCh
	}
}

// applyFlags overrides config values with flags that were set explicitly.
func (c *serveCommander) applyFlags(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("listen") {
		cfg.Listen = c.listen
	}
	if flags.Changed("route") {
		cfg.Route = c.route
	}
	if flags.Changed("upstream") {
		cfg.Upstream.URL = c.upstream
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration{Duration: c.timeout}
	}
	if flags.Changed("debug") {
		cfg.Debug = c.debug
	}
}
