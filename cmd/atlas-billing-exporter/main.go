package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/clock"

	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/atlas"
	"github.com/kubernetes-reporting/atlas-billing-exporter/pkg/exporter"
)

const (
	programName     = "atlas-billing-exporter"
	envPrefix       = "ATLAS_BILLING_EXPORTER"
	shutdownTimeout = 5 * time.Second
)

var (
	cfg            exporter.Config
	timeoutSeconds int

	logLevelStr      string
	logFormat        string
	logFullTimestamp bool

	// environment variable names used by earlier releases
	legacyEnv = map[string]string{
		"port": envPrefix + "_LISTEN_PORT",
		"org":  envPrefix + "_ORG_ID",
	}
)

var rootCmd = &cobra.Command{
	Use:   programName,
	Short: "exports the pending MongoDB Atlas invoice as Prometheus metrics",
	Run:   startExporter,
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "starts the exporter",
	Run:   startExporter,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "prints version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Println(version.Print(programName))
	},
}

func AddCommands() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevelStr, "log-level", log.InfoLevel.String(), "log level")
	flags.StringVar(&logFormat, "log-format", "json", "log format, one of: json, text")
	flags.BoolVar(&logFullTimestamp, "log-timestamp", true, "log full timestamp if true, otherwise log time since startup")

	flags.IntVarP(&cfg.Port, "port", "p", exporter.DefaultPort, "port to listen on")
	flags.IntVarP(&timeoutSeconds, "timeout", "t", int(exporter.DefaultTimeout/time.Second), "timeout in seconds for requests to the Atlas API")
	flags.StringVarP(&cfg.PublicKey, "public-key", "k", "", "MongoDB Atlas programmatic API public key")
	flags.StringVarP(&cfg.PrivateKey, "private-key", "s", "", "MongoDB Atlas programmatic API private key")
	flags.StringVarP(&cfg.OrgID, "org", "o", "", "MongoDB Atlas organization id")
	flags.StringVar(&cfg.BaseURL, "url", atlas.DefaultBaseURL, "base URL of the Atlas admin API")
	flags.StringVar(&cfg.PollSchedule, "poll-schedule", "", "if set, also fetch the invoice on this schedule, for example \"@every 5m\"")
	flags.BoolVar(&cfg.ScrapeOnRequest, "scrape-on-request", true, "fetch the invoice on every request to /metrics")
}

func main() {
	AddCommands()

	rootCmd.ParseFlags(os.Args[1:])

	if err := SetFlagsFromEnv(rootCmd.PersistentFlags(), envPrefix, legacyEnv); err != nil {
		log.WithError(err).Fatalf("error setting flags from environment variables: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Fatalf("error executing command: %v", err)
	}
}

func startExporter(cmd *cobra.Command, args []string) {
	logger := newLogger()

	if !exporter.ValidPort(cfg.Port) {
		logger.Warnf("port %d isn't in a valid range, setting to %d", cfg.Port, exporter.DefaultPort)
		cfg.Port = exporter.DefaultPort
	}
	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second
	if err := cfg.Valid(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	redacted := cfg
	redacted.PrivateKey = "<redacted>"
	logger.Debugf("config: %s", spew.Sprintf("%+v", redacted))

	signalStopCtx := setupSignals()
	if err := runExporter(signalStopCtx, logger, cfg, helpFlags(cmd.Flags())); err != nil {
		logger.WithError(err).Fatal("error occurred while the exporter was running")
	}
	logger.Infof("%s has stopped", programName)
}

func runExporter(ctx context.Context, logger log.FieldLogger, cfg exporter.Config, flags []exporter.HelpFlag) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		version.NewCollector("atlas_billing_exporter"),
	)

	client, err := atlas.NewClient(logger, atlas.ClientConfig{
		BaseURL:    cfg.BaseURL,
		PublicKey:  cfg.PublicKey,
		PrivateKey: cfg.PrivateKey,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		return err
	}

	exp, err := exporter.NewExporter(logger, client, registry, clock.RealClock{}, cfg.OrgID, cfg.Timeout)
	if err != nil {
		return err
	}

	help, err := exporter.RenderHelp(exporter.HelpContext{
		Program:   programName,
		Version:   version.Version,
		OrgID:     cfg.OrgID,
		EnvPrefix: envPrefix,
		Flags:     flags,
	})
	if err != nil {
		return err
	}

	router, err := exporter.NewRouter(logger, rand.New(rand.NewSource(time.Now().UnixNano())), exp, registry, exporter.RouterConfig{
		Credentials: exporter.Credentials{
			Username: cfg.PublicKey,
			Password: cfg.PrivateKey,
		},
		ScrapeOnRequest: cfg.ScrapeOnRequest,
		Help:            help,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.PollSchedule != "" {
		poller, err := exporter.NewPoller(logger, exp, cfg.PollSchedule)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return poller.Run(ctx)
		})
	}

	return g.Wait()
}

func helpFlags(fs *pflag.FlagSet) []exporter.HelpFlag {
	var flags []exporter.HelpFlag
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		flags = append(flags, exporter.HelpFlag{Name: f.Name})
	})
	return flags
}

func setupSignals() context.Context {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := <-sigs
		log.Infof("got signal %s, performing shutdown", sig)
		cancel()
	}()
	return ctx
}

func newLogger() log.FieldLogger {
	switch logFormat {
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: logFullTimestamp})
	default:
		log.SetFormatter(&log.JSONFormatter{})
	}
	log.SetOutput(os.Stdout)

	logger := log.WithFields(log.Fields{
		"app": programName,
	})
	logLevel, err := log.ParseLevel(logLevelStr)
	if err != nil {
		logger.WithError(err).Fatalf("invalid log level: %s", logLevelStr)
	}
	logger.Infof("setting log level to %s", logLevel.String())
	logger.Logger.Level = logLevel
	return logger
}
