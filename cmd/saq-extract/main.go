package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/regdata/saqextract/internal/config"
	"github.com/regdata/saqextract/internal/export"
	"github.com/regdata/saqextract/internal/extract"
	"github.com/regdata/saqextract/internal/mcp"
	"github.com/regdata/saqextract/internal/pdfio"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures the logger based on the run mode
func setupLogging(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	// Logs always go to stderr so stdio mode never corrupts the MCP protocol
	// stream on stdout.
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsStdioMode() && !cfg.IsDebug() {
		// Reduce noise while a parent process drives us over stdio.
		log.SetLevel(logrus.WarnLevel)
	}

	return log
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, log *logrus.Logger, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("initiating graceful shutdown")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.WithError(err).Error("server shutdown with error")
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}

	log.Info("server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, log *logrus.Logger, server *mcp.Server) {
	// In stdio mode, the parent process controls our lifecycle; exit cleanly
	// when stdin closes or on error.
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
}

// runExtractMode runs a one-shot extraction and writes the result
func runExtractMode(cfg *config.Config, log *logrus.Logger, extractor *extract.Service) {
	req := extract.ExtractFileRequest{
		Path:     cfg.InputPath,
		Language: cfg.Language,
	}

	if cfg.ProfilePath != "" {
		profile, err := extract.LoadProfile(cfg.ProfilePath)
		if err != nil {
			log.WithError(err).Fatal("failed to load language profile")
		}
		req.Profile = profile
	}

	result, err := extractor.ExtractFromFile(req)
	if err != nil {
		log.WithError(err).Fatal("extraction failed")
	}

	summary := result.Summary
	log.WithFields(logrus.Fields{
		"language":     result.Language,
		"requirements": summary.TotalRequirements,
		"tests":        summary.TotalTests,
		"withGuidance": summary.WithGuidance,
	}).Info("extraction complete")

	if cfg.OutputPath == "" {
		var writeErr error
		if cfg.OutputFormat == "json" {
			writeErr = export.WriteJSON(os.Stdout, result.Requirements)
		} else {
			writeErr = export.WriteCSV(os.Stdout, result.Requirements)
		}
		if writeErr != nil {
			log.WithError(writeErr).Fatal("failed to write output")
		}
		return
	}

	if err := export.WriteFile(cfg.OutputPath, cfg.OutputFormat, result.Requirements); err != nil {
		log.WithError(err).Fatal("failed to write output file")
	}
	log.WithField("path", cfg.OutputPath).Info("output written")
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.WithField("config", cfg.String()).Debug("starting")
	}

	reader := pdfio.NewReader(cfg.MaxFileSize)
	validator := pdfio.NewValidator(cfg.MaxFileSize)
	extractor := extract.NewService(reader, log)

	if cfg.IsExtractMode() {
		runExtractMode(cfg, log, extractor)
		return
	}

	server, err := mcp.NewServer(cfg, extractor, validator, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create MCP server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, log, server)
	} else {
		runStdioMode(ctx, log, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("SAQ Extract\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
