// Package cmd provides CLI commands for the mscribe tool.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/otherjamesbrown/meetscribe-cli/client"
	"github.com/otherjamesbrown/meetscribe-cli/config"
	"github.com/otherjamesbrown/meetscribe-cli/credentials"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/cache"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/delivery"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/export"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/logging"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/session"
)

// Export command flags.
var (
	exportStdout    bool
	exportNoCache   bool
	exportSourceURL string
	exportOutput    string
	exportFollow    bool
)

// ExportCommandDeps holds the dependencies for the export command.
type ExportCommandDeps struct {
	Config     *config.CLIConfig
	LoadConfig func() (*config.CLIConfig, error)

	// NewExporter builds the exporter for one invocation. cleanup may be nil.
	NewExporter func(ctx context.Context, cfg *config.CLIConfig, log logging.Logger, deliverer export.Deliverer) (*export.Exporter, func(), error)

	// Stdin is the source of locations in --follow mode.
	Stdin io.Reader
}

// DefaultExportDeps returns the default dependencies for production use.
func DefaultExportDeps() *ExportCommandDeps {
	return &ExportCommandDeps{
		LoadConfig:  config.LoadConfig,
		NewExporter: buildExporter,
		Stdin:       os.Stdin,
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(deps *ExportCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultExportDeps()
	}

	cmd := &cobra.Command{
		Use:   "export <location-or-id>",
		Short: "Export a meeting transcript to the clipboard",
		Long: `Fetch a meeting's captions and export a formatted transcript.

The argument can be a full meeting URL or a bare meeting id; the id is
extracted from the last path segment, ignoring any query string or fragment.
The transcript is grouped into timestamped speaker runs under a header with
the meeting title, date, and attendees, and copied to the system clipboard.

A missing or incomplete meeting record produces a diagnostic message and a
non-zero exit; the diagnostic is never copied to the clipboard.

Examples:
  # Export by meeting URL (copied to clipboard)
  mscribe export https://meet.example.com/abc-defg-hij

  # Export by bare id, print to stdout instead of the clipboard
  mscribe export abc-defg-hij --stdout

  # Bypass the record cache
  mscribe export abc-defg-hij --no-cache

  # Machine-readable result envelope
  mscribe export abc-defg-hij --output json

  # Re-export on every location read from stdin (one per line)
  tail -f locations.log | mscribe export --follow`,
		Args: func(cmd *cobra.Command, args []string) error {
			if exportFollow {
				return cobra.MaximumNArgs(0)(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportFollow {
				return runExportFollow(cmd, deps)
			}
			return runExport(cmd, deps, args[0])
		},
	}

	cmd.Flags().BoolVar(&exportStdout, "stdout", false, "Print the transcript to stdout instead of the clipboard")
	cmd.Flags().BoolVar(&exportNoCache, "no-cache", false, "Bypass the meeting record cache")
	cmd.Flags().StringVar(&exportSourceURL, "source-url", "", "Source URL to include in the transcript header")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&exportFollow, "follow", false, "Read locations from stdin and re-export on each change")

	return cmd
}

// runExport handles a single export invocation.
func runExport(cmd *cobra.Command, deps *ExportCommandDeps, location string) error {
	cfg, log, err := exportSetup(deps)
	if err != nil {
		return err
	}

	deliverer := chooseDeliverer(cmd, cfg)
	exporter, cleanup, err := deps.NewExporter(cmd.Context(), cfg, log, deliverer)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	result, err := exporter.Export(ctx, location, sourceLocation(location))
	if err != nil {
		if result != nil && export.IsMissingData(err) {
			// Keep the diagnostic text on stderr; the exit code carries the failure.
			fmt.Fprintln(cmd.ErrOrStderr(), result.Document)
		}
		return err
	}

	return printExportResult(cmd, cfg, result)
}

// runExportFollow reads locations from stdin (one per line) and re-exports
// whenever the meeting id changes.
func runExportFollow(cmd *cobra.Command, deps *ExportCommandDeps) error {
	cfg, log, err := exportSetup(deps)
	if err != nil {
		return err
	}

	deliverer := chooseDeliverer(cmd, cfg)
	exporter, cleanup, err := deps.NewExporter(cmd.Context(), cfg, log, deliverer)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Navigations can overlap a still-running export; serialize them so
	// delivery and result printing never interleave.
	var exportMu sync.Mutex
	controller := session.NewController(func(ctx context.Context, meetingID string) error {
		exportMu.Lock()
		defer exportMu.Unlock()

		exportCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		result, err := exporter.Export(exportCtx, meetingID, "")
		if err != nil {
			if result != nil && export.IsMissingData(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), result.Document)
			}
			return err
		}
		return printExportResult(cmd, cfg, result)
	}, log)
	defer controller.Close()

	stdin := deps.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		location := strings.TrimSpace(scanner.Text())
		if location == "" {
			continue
		}
		controller.HandleLocationChange(cmd.Context(), location)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading locations: %w", err)
	}

	return nil
}

// exportSetup loads configuration and builds the command logger.
func exportSetup(deps *ExportCommandDeps) (*config.CLIConfig, logging.Logger, error) {
	cfg := deps.Config
	if cfg == nil {
		loaded, err := deps.LoadConfig()
		if err != nil {
			return nil, nil, fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
	}

	if exportOutput != "" {
		format := config.OutputFormat(exportOutput)
		if !format.IsValid() {
			return nil, nil, fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", exportOutput)
		}
		cfg.OutputFormat = format
	}

	return cfg, commandLogger(cfg), nil
}

// chooseDeliverer returns the stdout writer or the platform clipboard.
func chooseDeliverer(cmd *cobra.Command, cfg *config.CLIConfig) export.Deliverer {
	if exportStdout {
		return writerDeliverer{w: cmd.OutOrStdout()}
	}

	var opts []delivery.Option
	if cfg.Clipboard.Command != "" {
		opts = append(opts, delivery.WithCommand(cfg.Clipboard.Command, cfg.Clipboard.Args...))
	}
	return delivery.NewClipboard(opts...)
}

// writerDeliverer delivers the transcript to an io.Writer.
type writerDeliverer struct {
	w io.Writer
}

func (d writerDeliverer) Write(text string) error {
	_, err := io.WriteString(d.w, text+"\n")
	return err
}

// sourceLocation decides what goes into the transcript header's location
// line: the --source-url flag wins, otherwise the argument when it is a URL.
func sourceLocation(location string) string {
	if exportSourceURL != "" {
		return exportSourceURL
	}
	if strings.Contains(location, "://") {
		return location
	}
	return ""
}

// printExportResult prints the result envelope in the configured format.
func printExportResult(cmd *cobra.Command, cfg *config.CLIConfig, result *export.Result) error {
	switch cfg.OutputFormat {
	case config.OutputFormatJSON:
		return outputJSON(cmd.OutOrStdout(), result)
	case config.OutputFormatYAML:
		return outputYAML(cmd.OutOrStdout(), result)
	}

	out := cmd.OutOrStdout()
	if result.Delivered && !exportStdout {
		fmt.Fprintf(out, "Transcript for meeting %s copied to clipboard (%d bytes).\n",
			result.MeetingID, len(result.Document))
	}
	if result.FromCache {
		fmt.Fprintln(out, "  (served from cache)")
	}
	return nil
}

// buildExporter wires the production exporter: API client, optional Redis
// record cache, and the chosen deliverer.
func buildExporter(ctx context.Context, cfg *config.CLIConfig, log logging.Logger, deliverer export.Deliverer) (*export.Exporter, func(), error) {
	token := activeToken(log)

	apiClient := client.NewClient(&client.Options{
		BaseURL: cfg.ServerURL,
		Timeout: cfg.Timeout,
		Token:   token,
		Logger:  log,
	})

	var recordCache export.Cache
	cleanup := func() {}
	if cfg.Cache.Enabled() && !exportNoCache {
		rc, err := cache.New(ctx, cache.Config{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			TTL:      cfg.Cache.TTL,
		}, log)
		if err != nil {
			// The cache is an optimization; a dead Redis never blocks an export.
			log.Warn("record cache unavailable", logging.Err(err))
		} else {
			recordCache = rc
			cleanup = func() { _ = rc.Close() }
		}
	}

	return export.New(apiClient, recordCache, deliverer, log), cleanup, nil
}

// activeToken resolves the API token from the environment or the credential
// store. A missing token is not an error here; the server rejects
// unauthenticated requests for meetings that require it.
func activeToken(log logging.Logger) string {
	store, err := credentials.NewStore()
	if err != nil {
		log.Debug("credential store unavailable", logging.Err(err))
		return ""
	}

	creds, err := store.GetActiveCredential()
	if err != nil {
		if !errors.Is(err, credentials.ErrNoCredentials) {
			log.Debug("loading credentials", logging.Err(err))
		}
		return ""
	}
	return creds.Token
}

// commandLogger builds the logger for one command invocation.
func commandLogger(cfg *config.CLIConfig) logging.Logger {
	logCfg := logging.DefaultConfig()
	if cfg.Debug {
		logCfg.Level = logging.LevelDebug
	}
	logCfg.JSONFormat = cfg.LogJSON
	return logging.NewLogger(logCfg)
}
