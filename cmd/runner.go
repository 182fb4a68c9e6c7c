package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/plman/internal/formatter"
	"github.com/desertthunder/plman/internal/services"
	"github.com/desertthunder/plman/internal/shared"
	"github.com/desertthunder/plman/internal/tasks"
	"github.com/desertthunder/plman/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	spotify     services.SpotifyAPI
	session     *services.Session
	manager     *tasks.PlaylistManager
	logger      *log.Logger
	output      io.Writer
	dryRun      bool
	openBrowser func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.SpotifyAPI
	Logger     *log.Logger
	Output     io.Writer
	// OpenBrowser opens the authorization URL. Defaults to [shared.OpenBrowser].
	OpenBrowser func(string) error
}

// NewRunner creates a new Runner with the provided configuration.
//
// A nil Config is loaded from the --config path before the first command runs.
// A nil Spotify service is built from the stored token on first use.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		spotify:     opts.Spotify,
		logger:      opts.Logger,
		output:      opts.Output,
		openBrowser: opts.OpenBrowser,
	}
}

// App returns the root command with every subcommand registered.
func (r *Runner) App() *cli.Command {
	return &cli.Command{
		Name:      "plman",
		Usage:     "Manage Spotify playlists: find duplicates, add tracks from a file",
		Version:   "0.3.0",
		Writer:    r.output,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Never modify a playlist, even with --apply",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		After:    r.after,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		duplicatesCommand, addFromFileCommand, playlistsCommand, tracksCommand, repeatsCommand,
		trackCommand, authCommand, browseCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before applies the global flags and loads the configuration.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	r.dryRun = cmd.Bool("dry-run")

	if r.configPath == "" || cmd.IsSet("config") {
		r.configPath = cmd.String("config")
	}

	if r.config == nil {
		config, err := shared.LoadOrDefault(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	r.logger.Debug("configuration loaded", "path", r.configPath, "dry_run", r.dryRun)
	return ctx, nil
}

func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	if r.session != nil {
		return r.session.Close()
	}
	return nil
}

// SetLogger replaces the runner's logger, along with the one used by the playlist manager.
// The current level carries over.
func (r *Runner) SetLogger(logger *log.Logger) {
	logger.SetLevel(r.logger.GetLevel())
	r.logger = logger
	if r.manager != nil {
		r.manager = r.newManager()
	}
}

func (r *Runner) newManager() *tasks.PlaylistManager {
	logger := shared.WithLogger(r.logger, "service", r.spotify.Name())
	return tasks.NewPlaylistManager(r.spotify, r.config.Credentials.Spotify.Username, logger)
}

// connect returns the playlist manager, opening an authenticated session on first use.
func (r *Runner) connect(ctx context.Context) (*tasks.PlaylistManager, error) {
	if r.manager != nil {
		return r.manager, nil
	}
	if r.config == nil {
		return nil, fmt.Errorf("%w: configuration not loaded", shared.ErrMissingConfig)
	}

	if r.spotify == nil {
		auth, err := services.NewAuthenticator(r.config.Credentials.Spotify)
		if err != nil {
			return nil, err
		}

		session, err := services.NewSession(ctx, auth, r.config.Credentials.Spotify.Token(), r.saveToken)
		if err != nil {
			return nil, err
		}
		r.session = session
		r.spotify = services.NewSpotifyService(session.Client())
	}

	r.manager = r.newManager()
	return r.manager, nil
}

// saveToken persists a refreshed token so the next run does not need to refresh again.
func (r *Runner) saveToken(token *oauth2.Token) {
	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		r.logger.Warn("failed to store refreshed token", "error", err)
		return
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		r.logger.Warn("failed to save refreshed token", "path", r.configPath, "error", err)
		return
	}
	r.logger.Debug("refreshed token saved", "path", r.configPath, "expiry", token.Expiry)
}

// format parses the --format flag of cmd.
func (r *Runner) format(cmd *cli.Command) (formatter.Format, error) {
	return formatter.ParseFormat(cmd.String("format"))
}

// emit writes a rendered report to path, or to the runner's output when path is empty.
func (r *Runner) emit(data []byte, path string) error {
	if path == "" {
		_, err := r.output.Write(data)
		if err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := formatter.WriteFile(path, data); err != nil {
		return err
	}
	r.logger.Info("report written", "path", path)
	return r.writePlain("%s %s\n", ui.Success("✓ Wrote"), path)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", ui.Title(title))
	r.writePlain("═══════════════════════════════════════\n")
}
