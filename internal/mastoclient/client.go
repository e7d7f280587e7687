// Package mastoclient states the fixed Mastodon capability the
// fetcher, writer, and enrollment flow consume (see SPEC_FULL.md §4.8
// / §9's "opaque polymorphic client" design note). New/NewUnauthenticated
// wrap *mastodon.Client (github.com/mattn/go-mastodon) to satisfy
// Client; tests substitute a scripted fake instead, so none of those
// three packages ever touches the network.
package mastoclient

import (
	"context"

	"github.com/mattn/go-mastodon"
)

// Client is the capability surface the rest of this module depends on,
// once an application (client id/secret) already exists. It intentionally
// names only the per-session operations SPEC_FULL.md §6 lists: fetch
// access token, verify credentials, get home timeline, get account
// statuses, get status context, favorite, reblog, and post status.
// Application registration has no session yet, so it is handled
// separately by RegisterApp below.
//
// AccessToken exposes the token AuthenticateToken negotiated, so
// callers (internal/enroll) never need to reach past this interface
// into the concrete *mastodon.Client to persist it.
type Client interface {
	GetTimelineHome(ctx context.Context, pg *mastodon.Pagination) ([]*mastodon.Status, error)
	GetAccountCurrentUser(ctx context.Context) (*mastodon.Account, error)
	GetAccountStatuses(ctx context.Context, id mastodon.ID, pg *mastodon.Pagination) ([]*mastodon.Status, error)
	GetStatusContext(ctx context.Context, id mastodon.ID) (*mastodon.Context, error)
	Favourite(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	Reblog(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
	PostStatus(ctx context.Context, toot *mastodon.Toot) (*mastodon.Status, error)
	AuthenticateToken(ctx context.Context, authCode, redirectURI string) error
	AccessToken() string
}

// AppName is the fixed application name the original implementation
// registers under.
const AppName = "Heffalump 0.2 (PalmOS)"

// RegisterAppFunc registers a new OAuth application against an
// instance, returning its client id/secret and authorization URL. It
// is a free function (rather than a Client method) because no
// authenticated session exists yet at registration time.
type RegisterAppFunc func(ctx context.Context, instanceHostname string) (*mastodon.Application, error)

// RegisterApp is the production RegisterAppFunc, backed by
// github.com/mattn/go-mastodon's package-level RegisterApp call.
func RegisterApp(ctx context.Context, instanceHostname string) (*mastodon.Application, error) {
	return mastodon.RegisterApp(ctx, &mastodon.AppConfig{
		Server:     "https://" + instanceHostname + "/",
		ClientName: AppName,
		Scopes:     "read write follow",
		Website:    "",
	})
}

// client wraps *mastodon.Client to satisfy Client, adding the
// AccessToken accessor the interface needs but the library doesn't
// expose as a method.
type client struct {
	*mastodon.Client
}

func (c *client) AccessToken() string { return c.Config.AccessToken }

// New builds a Client for the given instance hostname and access
// token, the same way the teacher's main() builds its Mastodon client.
func New(instanceHostname, accessToken string) Client {
	return &client{mastodon.NewClient(&mastodon.Config{
		Server:      "https://" + instanceHostname + "/",
		AccessToken: accessToken,
	})}
}

// NewUnauthenticated builds a Client with no access token, for use
// during enrollment before a token exists.
func NewUnauthenticated(instanceHostname, clientID, clientSecret string) Client {
	return &client{mastodon.NewClient(&mastodon.Config{
		Server:       "https://" + instanceHostname + "/",
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})}
}

// IsRateLimited reports whether err represents an HTTP 429 response.
// go-mastodon does not expose a typed rate-limit error, so this mirrors
// the original implementation's status-code check against the
// underlying HTTP response text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	return containsStatus429(err.Error())
}

func containsStatus429(s string) bool {
	const marker = "429"
	for i := 0; i+len(marker) <= len(s); i++ {
		if s[i:i+len(marker)] == marker {
			return true
		}
	}
	return false
}
