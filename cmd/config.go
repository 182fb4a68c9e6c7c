package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/plman/internal/shared"
	"github.com/desertthunder/plman/internal/ui"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("%s %s\n", ui.Success("✓ Created"), r.configPath)
	return r.writePlain("  Fill in client_id and client_secret, then run `plman auth`\n")
}

// ConfigShow prints the effective configuration, after environment overrides, with secrets masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify

	r.writePlainHeader("Configuration: " + r.configPath)
	r.writePlain("client_id:      %s\n", mask(creds.ClientID))
	r.writePlain("client_secret:  %s\n", mask(creds.ClientSecret))
	r.writePlain("redirect_uri:   %s\n", creds.RedirectURI)
	r.writePlain("username:       %s\n", creds.Username)
	r.writePlain("server:         %s:%d\n", r.config.Server.Host, r.config.Server.Port)
	r.writePlain("default_target: %s\n", r.config.Playlists.DefaultTarget)

	switch token := creds.Token(); {
	case token == nil:
		return r.writePlain("token:          %s\n", ui.Warning("none, run `plman auth`"))
	case !token.Valid():
		return r.writePlain("token:          expired %s (refreshed on next use)\n", token.Expiry.Format("2006-01-02 15:04"))
	default:
		return r.writePlain("token:          valid until %s\n", token.Expiry.Format("2006-01-02 15:04"))
	}
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return fmt.Sprintf("%q", secret)
	}
	return secret[:4] + "…"
}
