// Package enroll implements the one-shot interactive OAuth flow that
// produces the (instance, token) pair internal/config persists,
// matching original_source/conduit/src/config.rs's enrollment
// sequence (SPEC_FULL.md §4.7).
package enroll

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/heffalump/conduit/internal/config"
	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/mastoclient"
)

// redirectURI is the out-of-band redirect used for the authorization
// code exchange; no local callback server is involved.
const redirectURI = "urn:ietf:wg:oauth:2.0:oob"

// OpenBrowser is the default browser-launch step: log the URL rather
// than shelling out to an OS browser command, since none of the
// reference repos carry a browser-launch dependency.
func OpenBrowser(log *hflog.Logger) func(string) error {
	return func(url string) error {
		log.Infof("open this URL in a browser to authorize: %s", url)
		return nil
	}
}

// Deps bundles enrollment's I/O and network dependencies so the flow
// is testable without a terminal or live server.
type Deps struct {
	Prompt      io.Reader
	Output      io.Writer
	Log         *hflog.Logger
	RegisterApp mastoclient.RegisterAppFunc
	OpenBrowser func(url string) error
	NewClient   func(instanceHostname, clientID, clientSecret string) mastoclient.Client
}

// Run executes the enrollment flow and, on success, persists the
// resulting config to dir. Each step's failure aborts the flow; no
// partial config is written.
func Run(ctx context.Context, dir string, deps Deps) error {
	reader := bufio.NewReader(deps.Prompt)

	fmt.Fprint(deps.Output, "Mastodon instance hostname: ")
	instance, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("reading instance hostname: %w", err)
	}

	app, err := deps.RegisterApp(ctx, instance)
	if err != nil {
		return fmt.Errorf("registering application: %w", err)
	}

	authURL := app.AuthURI
	if err := deps.OpenBrowser(authURL); err != nil {
		deps.Log.Warnf("could not open browser automatically: %v", err)
	}

	fmt.Fprintf(deps.Output, "Authorization URL: %s\nEnter the authorization code: ", authURL)
	code, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("reading authorization code: %w", err)
	}

	client := deps.NewClient(instance, app.ClientID, app.ClientSecret)
	if err := client.AuthenticateToken(ctx, code, redirectURI); err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}

	if _, err := client.GetAccountCurrentUser(ctx); err != nil {
		return fmt.Errorf("verifying credentials: %w", err)
	}

	cfg := config.Config{
		InstanceHostname: instance,
		AccessToken:      client.AccessToken(),
	}
	if err := config.Save(dir, cfg); err != nil {
		return fmt.Errorf("persisting config: %w", err)
	}

	deps.Log.Infof("enrolled against %s", instance)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
