package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/plman/internal/server"
	"github.com/desertthunder/plman/internal/services"
	"github.com/desertthunder/plman/internal/shared"
	"github.com/desertthunder/plman/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth runs the authorization code flow and stores the resulting token in the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	token, err := r.doOAuth(ctx, cmd.Duration("timeout"))
	if err != nil {
		return err
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return err
	}
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	r.logger.Info("token saved", "path", r.configPath, "expiry", token.Expiry)
	r.writePlain("%s\n", ui.Success("✓ Authorization successful"))
	return r.writePlain("  Token saved to %s\n", r.configPath)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, timeout time.Duration) (*oauth2.Token, error) {
	creds := r.config.Credentials.Spotify
	auth, err := services.NewAuthenticator(creds)
	if err != nil {
		return nil, err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	oauthHandler := server.NewOAuthHandler(auth, state, callbackPath(creds.RedirectURI))
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(oauthHandler)

	addr := net.JoinHostPort(r.config.Server.Host, strconv.Itoa(r.config.Server.Port))
	callbackServer, err := server.Start(addr, router)
	if err != nil {
		return nil, err
	}
	r.logger.Info("starting OAuth server", "addr", callbackServer.Addr())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := callbackServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	authURL := auth.AuthURL(state)
	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("%s", ui.Warning("⚠ Could not open browser automatically."))
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err, ok := <-callbackServer.Err():
		if ok && err != nil {
			return nil, fmt.Errorf("server error: %w", err)
		}
		return nil, fmt.Errorf("%w: callback server stopped", shared.ErrAuthFailed)
	case <-timer.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// callbackPath returns the path component of the redirect URI the callback is served on.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return "/callback"
	}
	return u.Path
}
