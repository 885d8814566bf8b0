package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/mapmedia/mapview/internal/cluster"
	"github.com/mapmedia/mapview/internal/config"
	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/interaction"
	"github.com/mapmedia/mapview/internal/logging"
	"github.com/mapmedia/mapview/internal/model/core"
	intOtel "github.com/mapmedia/mapview/internal/otel"
	"github.com/mapmedia/mapview/internal/overlay"
	"github.com/mapmedia/mapview/internal/parser"
	"github.com/mapmedia/mapview/internal/pipeline"
	"github.com/mapmedia/mapview/internal/render"
	"github.com/mapmedia/mapview/internal/server"
	"github.com/mapmedia/mapview/internal/storage"
)

// app holds everything one command invocation sets up.
type app struct {
	flags        *pflag.FlagSet
	stdout       io.Writer
	stderr       io.Writer
	sessionStart time.Time

	SlogManager  *logging.SlogManager
	Logger       *slog.Logger
	OTelProvider *intOtel.Provider

	logFile  *os.File
	otelFile *os.File

	buildID string
}

// buildFlags registers the flags shared by build and serve. Defaults mirror
// the config defaults so an unset flag never masks a config file value.
func buildFlags(name string) *pflag.FlagSet {
	config.SetDefaults()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", ".", "directory containing "+config.FileName)
	fs.String("media", config.GetString("input.media"), "media markers CSV")
	fs.String("events", config.GetString("input.events"), "master events CSV (optional unless set explicitly)")
	fs.String("media-root", config.GetString("input.mediaRoot"), "directory media paths are relative to")
	fs.String("out", config.GetString("storage.outputDir"), "output directory")
	fs.String("name", config.GetString("storage.outputName"), "output name without extension")
	fs.String("storage", config.GetString("storage.type"), "output sink: html, json, sqlite or postgres")
	fs.Bool("no-overlays", false, "do not draw accuracy circles")
	fs.String("log-level", config.GetString("logLevel"), "DEBUG, INFO, WARN or ERROR")
	return fs
}

// newApp parses args, loads the config file and sets up logging and
// telemetry. Call close when done.
func newApp(ctx context.Context, fs *pflag.FlagSet, args []string, stdout, stderr io.Writer) (*app, error) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	a := &app{flags: fs, stdout: stdout, stderr: stderr, sessionStart: time.Now()}

	configDir, _ := fs.GetString("config")
	configMissing := false
	if err := config.Load(configDir); err != nil {
		if !errors.Is(err, config.ErrNotFound) {
			return nil, err
		}
		configMissing = true
	}
	if err := config.BindFlags(fs); err != nil {
		return nil, err
	}
	if off, _ := fs.GetBool("no-overlays"); off {
		config.Set("overlay.enabled", false)
	}

	if err := a.setupLogging(ctx); err != nil {
		a.close()
		return nil, err
	}
	if configMissing {
		a.Logger.Warn("Config file not found, using defaults", "dir", configDir, "file", config.FileName)
	}
	return a, nil
}

func (a *app) setupLogging(ctx context.Context) error {
	bcfg := config.GetBuildConfig()

	if bcfg.LogsDir != "" {
		if err := os.MkdirAll(bcfg.LogsDir, 0o755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
		f, err := os.Create(logging.LogFilePath(bcfg.LogsDir, "mapview", a.sessionStart))
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		a.logFile = f
	}

	ocfg := config.GetOTelConfig()
	otelCfg := intOtel.Config{
		Enabled:      ocfg.Enabled,
		ServiceName:  ocfg.ServiceName,
		Version:      BuildVersion,
		BatchTimeout: ocfg.BatchTimeout,
		Endpoint:     ocfg.Endpoint,
		Insecure:     ocfg.Insecure,
	}
	if ocfg.Enabled && bcfg.LogsDir != "" {
		f, err := os.Create(logging.LogFilePath(bcfg.LogsDir, "mapview.otel", a.sessionStart))
		if err != nil {
			return fmt.Errorf("failed to create otel log file: %w", err)
		}
		a.otelFile = f
		otelCfg.LogWriter = f
	}
	provider, err := intOtel.New(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	a.OTelProvider = provider

	opts := logging.Options{
		Console:  a.stderr,
		Level:    bcfg.LogLevel,
		Provider: provider.LoggerProvider(),
		Context: func() []slog.Attr {
			if a.buildID == "" {
				return nil
			}
			return []slog.Attr{slog.String("buildId", a.buildID)}
		},
	}
	if a.logFile != nil {
		opts.File = a.logFile
	}

	a.SlogManager = logging.NewSlogManager(ocfg.ServiceName)
	a.SlogManager.Setup(opts)
	a.Logger = a.SlogManager.Logger()
	return nil
}

// close flushes telemetry and closes log files.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.SlogManager != nil {
		_ = a.SlogManager.Flush(ctx)
	}
	if a.OTelProvider != nil {
		_ = a.OTelProvider.Shutdown(ctx)
	}
	if a.otelFile != nil {
		_ = a.otelFile.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}

// mediaBaseURL is the media root as seen from the output directory.
func mediaBaseURL(outDir, mediaRoot string) string {
	if mediaRoot == "" {
		return ""
	}
	if rel, err := filepath.Rel(outDir, mediaRoot); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(mediaRoot)
}

// build runs the pipeline with the current configuration.
func (a *app) build(ctx context.Context, mediaBase string) (*core.View, *diag.Report, error) {
	bcfg := config.GetBuildConfig()
	loc, err := bcfg.Location()
	if err != nil {
		return nil, nil, err
	}
	ocfg := config.GetOverlayConfig()
	ccfg := config.GetClusterConfig()

	p := parser.NewParser(a.Logger, parser.Config{
		Location:     loc,
		PrimaryMatch: bcfg.PrimaryMatch,
		MediaRoot:    bcfg.Input.MediaRoot,
	})
	ob := overlay.NewBuilder(a.Logger, overlay.Options{
		Enabled:       ocfg.Enabled,
		FillOpacity:   ocfg.FillOpacity,
		StrokeOpacity: ocfg.StrokeOpacity,
		Weight:        ocfg.Weight,
	})
	mgr, err := pipeline.NewManager(pipeline.Dependencies{
		Logger:       a.Logger,
		Parser:       p,
		Overlays:     ob,
		Cluster:      cluster.Options(ccfg.MaxClusterRadius, ccfg.DisableClusteringAtZoom, ccfg.SpiderfyDistanceMultiplier),
		MediaBaseURL: mediaBase,
		Meter:        a.OTelProvider.Meter("mapview"),
	})
	if err != nil {
		return nil, nil, err
	}

	// only the built-in default events path may be absent
	eventsExplicit := a.flags.Changed("events") || config.InFile("input.events")
	a.Logger.Info("Building map",
		"media", bcfg.Input.Media,
		"events", bcfg.Input.Events,
		"mediaRoot", bcfg.Input.MediaRoot)

	view, report, err := mgr.Build(ctx, pipeline.Inputs{
		MediaPath:      bcfg.Input.Media,
		EventsPath:     bcfg.Input.Events,
		EventsOptional: !eventsExplicit,
	})
	if view != nil {
		a.buildID = view.BuildID
	}
	if report != nil {
		report.Log(a.Logger)
	}
	return view, report, err
}

func (a *app) policy() interaction.Policy {
	return interaction.Policy{UndatedInRange: config.GetInteractionConfig().UndatedInRange}
}

func (a *app) renderOptions() render.Options {
	return render.Options{Version: BuildVersion, Policy: a.policy()}
}

// runBuild implements "mapview build".
func runBuild(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a, err := newApp(ctx, buildFlags("build"), args, stdout, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.close()

	scfg := config.GetStorageConfig()
	view, report, err := a.build(ctx, mediaBaseURL(scfg.OutputDir, config.GetBuildConfig().Input.MediaRoot))
	if err != nil {
		a.Logger.Error("Build failed", "error", err)
		return diag.ExitCode(err)
	}

	var dbLog io.Writer
	if a.logFile != nil {
		dbLog = a.logFile
	}
	sink, err := storage.NewSink(scfg, storage.Dependencies{
		Logger:      a.Logger,
		DBLogOutput: dbLog,
		LogLevel:    config.GetBuildConfig().LogLevel,
		Render:      a.renderOptions(),
		Segments:    config.GetOverlayConfig().Segments,
		Version:     BuildVersion,
	})
	if err != nil {
		a.Logger.Error("Invalid storage", "error", err)
		return 1
	}
	if err := writeSink(ctx, sink, view, report); err != nil {
		a.Logger.Error("Failed to write output", "type", scfg.Type, "error", err)
		return 1
	}

	fmt.Fprintf(stdout, "%d markers (%d rejected rows, %d overlays, %d timeline entries)\n",
		view.Stats.Total, view.Stats.Rejected, view.Stats.Overlays, view.Stats.TimelineEntries)
	if exported, ok := sink.(storage.Exported); ok && exported.ExportedPath() != "" {
		fmt.Fprintf(stdout, "written to %s\n", exported.ExportedPath())
	}
	return 0
}

func writeSink(ctx context.Context, sink storage.Sink, view *core.View, report *diag.Report) error {
	if err := sink.Init(); err != nil {
		return err
	}
	if err := sink.Write(ctx, view, report); err != nil {
		_ = sink.Close()
		return err
	}
	return sink.Close()
}

// runServe implements "mapview serve".
func runServe(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := buildFlags("serve")
	fs.String("address", config.GetString("server.address"), "listen address")
	a, err := newApp(ctx, fs, args, stdout, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer a.close()

	srvCfg := config.GetServerConfig()
	view, _, err := a.build(ctx, srvCfg.MediaPrefix)
	if err != nil {
		a.Logger.Error("Build failed", "error", err)
		return diag.ExitCode(err)
	}

	srv := server.New(server.Config{
		Address:     srvCfg.Address,
		MediaPrefix: srvCfg.MediaPrefix,
		MediaRoot:   config.GetBuildConfig().Input.MediaRoot,
		Render:      a.renderOptions(),
	}, a.Logger, logging.NewZerolog(stderr, config.GetBuildConfig().LogLevel))
	if err := srv.SetView(view, a.policy()); err != nil {
		a.Logger.Error("Failed to load view", "error", err)
		return 1
	}
	fmt.Fprintf(stdout, "serving %d markers at http://%s/\n", len(view.Records), srvCfg.Address)
	if err := srv.Run(ctx); err != nil {
		a.Logger.Error("Server error", "error", err)
		return 1
	}
	return 0
}
