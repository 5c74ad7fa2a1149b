// Package main provides the sitac command: it logs into the SITAC portal,
// opens a protocol queue and exports its table to a spreadsheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/browser/pwdriver"
	"github.com/entrhq/sitac/pkg/config"
	"github.com/entrhq/sitac/pkg/flows"
	"github.com/entrhq/sitac/pkg/logging"
	"github.com/entrhq/sitac/pkg/spreadsheet"
)

const (
	version = "0.1.0"

	defaultPreviewRows = 20
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	EnvFile     string
	Browser     string
	Headed      bool
	Category    string
	Paginate    bool
	Output      string
	Sheet       string
	Append      bool
	Clipboard   bool
	Prompt      bool
	MetricsAddr string
	LogLevel    string
	Verbose     bool
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("sitac v%s\n", version)
		return
	}

	// Create context with signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\nShutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, cli); err != nil {
		cancel()
		log.Printf("sitac failed: %v", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", config.DefaultConfigPath, "Path to configuration file (YAML)")
	flag.StringVar(&cli.EnvFile, "env", config.DefaultEnvFile, "Path to .env file")
	flag.StringVar(&cli.Browser, "browser", "", "Browser to drive: chrome or firefox (overrides BROWSER)")
	flag.BoolVar(&cli.Headed, "headed", false, "Show the browser window (overrides HEADLESS)")
	flag.StringVar(&cli.Category, "category", string(flows.Dispatch), "Protocol queue: despacho, fiscalizacao or pre-envio-camaras")
	flag.BoolVar(&cli.Paginate, "paginate", true, "Show every row of the queue before extracting")
	flag.StringVar(&cli.Output, "output", "", "Spreadsheet to write (overrides OUTPUT_PATH)")
	flag.StringVar(&cli.Sheet, "sheet", "Resultados", "Sheet name")
	flag.BoolVar(&cli.Append, "append", false, "Append to the sheet instead of overwriting the file")
	flag.BoolVar(&cli.Clipboard, "clipboard", false, "Copy the table to the clipboard as TSV")
	flag.BoolVar(&cli.Prompt, "prompt", false, "Ask for credentials instead of reading SITAC_USERNAME/SITAC_PASSWORD")
	flag.StringVar(&cli.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flag.StringVar(&cli.LogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")
	flag.BoolVar(&cli.Verbose, "v", false, "Mirror the log to stderr")
	flag.DurationVar(&cli.Timeout, "timeout", 5*time.Minute, "Overall timeout")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sitac - SITAC protocol report exporter\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sitac [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Export the dispatch queue with credentials from .env\n")
		fmt.Fprintf(os.Stderr, "  sitac -category despacho -output saida.xlsx\n\n")
		fmt.Fprintf(os.Stderr, "  # Watch the browser and type credentials interactively\n")
		fmt.Fprintf(os.Stderr, "  sitac -headed -prompt -category fiscalizacao\n\n")
	}

	flag.Parse()
	return cli
}

// overrides maps flags that were given onto configuration keys.
func (c *CLIConfig) overrides() config.Map {
	m := config.Map{
		config.KeyBrowser:    c.Browser,
		config.KeyOutputPath: c.Output,
		config.KeyLogLevel:   c.LogLevel,
	}
	if c.Headed {
		m[config.KeyHeadless] = strconv.FormatBool(false)
	}
	return m
}

// run executes one export
//
//nolint:gocyclo
func run(ctx context.Context, cli *CLIConfig) error {
	category, err := flows.ParseCategory(cli.Category)
	if err != nil {
		return err
	}

	base, err := config.Load(config.Options{ConfigPath: cli.ConfigFile, EnvFile: cli.EnvFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := base.With(cli.overrides())

	browserCfg, err := cfg.Browser()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logging.ParseLevel(browserCfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logOpts := logging.Options{Dir: cfg.Get(config.KeyLogDir, logging.DefaultDir), Level: level}
	if cli.Verbose {
		logOpts.Console = os.Stderr
	}
	logger, logErr := logging.New("cli", logOpts)
	if logErr != nil {
		log.Printf("Warning: %v", logErr)
	}
	defer logger.Close()

	creds := flows.Credentials{Username: cfg.Username(), Password: cfg.Password()}
	if cli.Prompt || creds.Username == "" || creds.Password == "" {
		creds, err = promptCredentials(ctx, creds.Username)
		if err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	metrics := browser.NewMetrics(registry)
	if cli.MetricsAddr != "" {
		stop := serveMetrics(cli.MetricsAddr, registry, logger)
		defer stop()
	}

	if cli.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cli.Timeout)
		defer cancel()
	}

	b, err := browser.New(browserCfg, pwdriver.NewLauncher(logger.With("playwright")),
		browser.WithLogger(logger.With("browser")),
		browser.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	defer b.Quit()

	flow, err := flows.NewProtocolsFlow(b, logger.With("flows"))
	if err != nil {
		return err
	}

	log.Printf("Logging in as %s...", creds.Username)
	if err := flow.Run(ctx, creds, category); err != nil {
		return err
	}

	table, err := flow.ExtractReport(ctx, flows.ReportOptions{Paginate: cli.Paginate})
	if err != nil {
		return fmt.Errorf("failed to extract report: %w", err)
	}

	output := cfg.OutputPath()
	sheet := toSheet(table)
	write := spreadsheet.Write
	if cli.Append {
		write = spreadsheet.Append
	}
	if err := write(output, cli.Sheet, sheet); err != nil {
		return err
	}
	logger.Infof("wrote %d rows to %s (%s)", table.Len(), output, cli.Sheet)

	fmt.Println(renderTable(table, defaultPreviewRows))
	fmt.Printf("%d protocols written to %s\n", table.Len(), output)

	if cli.Clipboard {
		if err := clipboard.WriteAll(toTSV(table)); err != nil {
			logger.Warnf("clipboard unavailable: %v", err)
		} else {
			fmt.Println("Table copied to clipboard.")
		}
	}
	return nil
}

// serveMetrics exposes reg on addr until the returned stop is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Infof("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("metrics server: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
