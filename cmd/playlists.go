package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/plman/internal/formatter"
	"github.com/desertthunder/plman/internal/models"
	"github.com/desertthunder/plman/internal/shared"
	"github.com/desertthunder/plman/internal/tasks"
	"github.com/desertthunder/plman/internal/ui"
	"github.com/urfave/cli/v3"
)

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: <%s>", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// Duplicates prints the tracks of playlist_b whose name also appears in playlist_a.
func (r *Runner) Duplicates(ctx context.Context, cmd *cli.Command) error {
	nameA, err := requireArg(cmd, "playlist_a")
	if err != nil {
		return err
	}
	nameB, err := requireArg(cmd, "playlist_b")
	if err != nil {
		return err
	}
	f, err := r.format(cmd)
	if err != nil {
		return err
	}

	manager, err := r.connect(ctx)
	if err != nil {
		return err
	}

	records, err := manager.FindDuplicates(ctx, nameA, nameB)
	if err != nil {
		return err
	}

	data, err := formatter.RenderDuplicates(f, nameA, nameB, records)
	if err != nil {
		return err
	}
	return r.emit(data, cmd.String("output"))
}

// AddFromFile adds the tracks listed in a file that are missing from the target playlist.
//
// Nothing is written unless --apply is given and --dry-run is not.
func (r *Runner) AddFromFile(ctx context.Context, cmd *cli.Command) error {
	path, err := requireArg(cmd, "file")
	if err != nil {
		return err
	}
	f, err := r.format(cmd)
	if err != nil {
		return err
	}

	name := cmd.String("playlist-name")
	if name == "" {
		name = r.config.Playlists.DefaultTarget
	}
	if name == "" {
		return fmt.Errorf("%w: --playlist-name (or playlists.default_target in the config)", shared.ErrMissingArgument)
	}

	queries, err := shared.ParseTrackFile(path)
	if err != nil {
		return err
	}
	r.logger.Info("parsed track file", "path", path, "tracks", len(queries))

	manager, err := r.connect(ctx)
	if err != nil {
		return err
	}

	apply := cmd.Bool("apply") && !r.dryRun
	if cmd.Bool("apply") && r.dryRun {
		r.logger.Warn("--dry-run overrides --apply, nothing will be written")
	}

	result, err := r.addTracks(ctx, manager, queries, name, apply)
	if err != nil {
		return err
	}

	data, err := formatter.RenderAddition(f, result)
	if err != nil {
		return err
	}
	if err := r.emit(data, ""); err != nil {
		return err
	}

	if !result.Applied && len(result.Plan.TrackIDs) > 0 && f == formatter.Text {
		return r.writePlainln("%s", ui.Hint("re-run with --apply to add these tracks"))
	}
	return nil
}

// addTracks runs the addition while logging progress updates at debug level.
func (r *Runner) addTracks(ctx context.Context, manager *tasks.PlaylistManager, queries []models.TrackQuery, name string, apply bool) (*models.AdditionResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := manager.AddMissingTracks(ctx, progress, queries, name, apply)
	close(progress)
	<-done

	return result, err
}

// Playlists lists the playlists owned by the user.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	f, err := r.format(cmd)
	if err != nil {
		return err
	}

	manager, err := r.connect(ctx)
	if err != nil {
		return err
	}

	playlists, err := manager.ListOwnedPlaylists(ctx)
	if err != nil {
		return err
	}

	if f == formatter.Text {
		r.writePlainHeader(fmt.Sprintf("Found %d playlists", len(playlists)))
	}

	data, err := formatter.RenderPlaylists(f, playlists)
	if err != nil {
		return err
	}
	return r.emit(data, "")
}

// Tracks prints every track of a playlist, following pagination to the end.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	f, err := r.format(cmd)
	if err != nil {
		return err
	}

	manager, err := r.connect(ctx)
	if err != nil {
		return err
	}

	tracks, err := manager.ListPlaylistTracks(ctx, name)
	if err != nil {
		return err
	}

	data, err := formatter.RenderTracks(f, name, tracks)
	if err != nil {
		return err
	}
	return r.emit(data, cmd.String("output"))
}

// Repeats prints the tracks whose name occurs more than once in a playlist.
func (r *Runner) Repeats(ctx context.Context, cmd *cli.Command) error {
	name, err := requireArg(cmd, "name")
	if err != nil {
		return err
	}
	f, err := r.format(cmd)
	if err != nil {
		return err
	}

	manager, err := r.connect(ctx)
	if err != nil {
		return err
	}

	report, err := manager.FindRepeats(ctx, name)
	if err != nil {
		return err
	}

	data, err := formatter.RenderRepeats(f, report)
	if err != nil {
		return err
	}
	return r.emit(data, cmd.String("output"))
}

// Track prints a single track.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "id")
	if err != nil {
		return err
	}
	f, err := r.format(cmd)
	if err != nil {
		return err
	}

	manager, err := r.connect(ctx)
	if err != nil {
		return err
	}

	track, err := manager.TrackInfo(ctx, id)
	if err != nil {
		return err
	}

	if f == formatter.JSON {
		return r.writeJSON(track, true)
	}
	if f != formatter.Text {
		data, err := formatter.RenderTracks(f, track.Name, []models.Track{*track})
		if err != nil {
			return err
		}
		return r.emit(data, "")
	}

	r.writePlain("Name:    %s\n", track.Name)
	r.writePlain("Artists: %s\n", track.Artists)
	r.writePlain("Album:   %s\n", track.Album)
	return r.writePlain("ID:      %s\n", track.ID)
}
