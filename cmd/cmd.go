// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: text, csv, markdown or json",
		Value:   "text",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write the report to a file instead of stdout",
	}
}

// duplicatesCommand compares two playlists by track name
func duplicatesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "duplicates",
		Aliases:   []string{"dupes"},
		Usage:     "List tracks of the second playlist whose name also appears in the first",
		ArgsUsage: "<playlist_a> <playlist_b>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist_a"},
			&cli.StringArg{Name: "playlist_b"},
		},
		Flags:  []cli.Flag{formatFlag(), outputFlag()},
		Action: r.Duplicates,
	}
}

// addFromFileCommand adds tracks listed in a text file to a playlist
func addFromFileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "add_from_file",
		Aliases:   []string{"add"},
		Usage:     "Add tracks listed as 'artist - album - name' lines to a playlist",
		ArgsUsage: "<file>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "playlist-name",
				Aliases: []string{"p"},
				Usage:   "Target playlist (defaults to playlists.default_target)",
			},
			&cli.BoolFlag{
				Name:  "apply",
				Usage: "Write the missing tracks; without it only the plan is shown",
			},
			formatFlag(),
		},
		Action: r.AddFromFile,
	}
}

// playlistsCommand lists the playlists owned by the user
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"ls"},
		Usage:   "List playlists owned by the user",
		Flags:   []cli.Flag{formatFlag()},
		Action:  r.Playlists,
	}
}

// tracksCommand prints every track of a playlist
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tracks",
		Usage:     "List every track of a playlist",
		ArgsUsage: "<playlist_name>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Flags:  []cli.Flag{formatFlag(), outputFlag()},
		Action: r.Tracks,
	}
}

// repeatsCommand finds track names occurring more than once in a playlist
func repeatsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "repeats",
		Usage:     "List tracks whose name occurs more than once in a playlist",
		ArgsUsage: "<playlist_name>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name"},
		},
		Flags:  []cli.Flag{formatFlag(), outputFlag()},
		Action: r.Repeats,
	}
}

// trackCommand shows a single track
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Show a track by Spotify ID",
		ArgsUsage: "<track_id>",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags:  []cli.Flag{formatFlag()},
		Action: r.Track,
	}
}

// authCommand runs the OAuth2 flow
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with Spotify using OAuth2 and store the token in the config file",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: 2 * time.Minute,
			},
		},
		Action: r.Auth,
	}
}

// browseCommand launches the TUI
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"tui"},
		Usage:   "Browse playlists interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/plman-tui.log",
			},
		},
		Action: r.Browse,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration with secrets masked",
				Action: r.ConfigShow,
			},
		},
	}
}
