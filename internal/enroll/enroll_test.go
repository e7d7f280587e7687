package enroll

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mattn/go-mastodon"
	"github.com/stretchr/testify/require"

	"github.com/heffalump/conduit/internal/config"
	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/mastoclient"
)

func quietLog() *hflog.Logger { return hflog.New(hflog.LevelError, nil) }

// fakeClient is a scripted mastoclient.Client used so enrollment tests
// never touch the network, matching the fake built for
// internal/mwrite/writer_test.go.
type fakeClient struct {
	clientID, clientSecret string
	accessToken            string
	authenticateErr        error
	verifyErr              error
}

func (c *fakeClient) GetTimelineHome(context.Context, *mastodon.Pagination) ([]*mastodon.Status, error) {
	return nil, nil
}
func (c *fakeClient) GetAccountCurrentUser(context.Context) (*mastodon.Account, error) {
	if c.verifyErr != nil {
		return nil, c.verifyErr
	}
	return &mastodon.Account{ID: "self-id"}, nil
}
func (c *fakeClient) GetAccountStatuses(context.Context, mastodon.ID, *mastodon.Pagination) ([]*mastodon.Status, error) {
	return nil, nil
}
func (c *fakeClient) GetStatusContext(context.Context, mastodon.ID) (*mastodon.Context, error) {
	return nil, nil
}
func (c *fakeClient) Favourite(context.Context, mastodon.ID) (*mastodon.Status, error) { return nil, nil }
func (c *fakeClient) Reblog(context.Context, mastodon.ID) (*mastodon.Status, error)     { return nil, nil }
func (c *fakeClient) PostStatus(context.Context, *mastodon.Toot) (*mastodon.Status, error) {
	return nil, nil
}
func (c *fakeClient) AuthenticateToken(_ context.Context, authCode, _ string) error {
	if c.authenticateErr != nil {
		return c.authenticateErr
	}
	c.accessToken = "token-for-" + authCode
	return nil
}
func (c *fakeClient) AccessToken() string { return c.accessToken }

func fakeDeps(t *testing.T, input string) (Deps, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer

	return Deps{
		Prompt: strings.NewReader(input),
		Output: &out,
		Log:    quietLog(),
		RegisterApp: func(ctx context.Context, instance string) (*mastodon.Application, error) {
			return &mastodon.Application{
				ClientID:     "client-id",
				ClientSecret: "client-secret",
				AuthURI:      "https://" + instance + "/oauth/authorize",
			}, nil
		},
		OpenBrowser: func(string) error { return nil },
		NewClient: func(instanceHostname, clientID, clientSecret string) mastoclient.Client {
			return &fakeClient{clientID: clientID, clientSecret: clientSecret}
		},
	}, &out
}

func TestRunPersistsConfigOnSuccess(t *testing.T) {
	dir := t.TempDir()
	deps, out := fakeDeps(t, "example.social\nauth-code-123\n")

	err := Run(context.Background(), dir, deps)
	require.NoError(t, err)
	require.Contains(t, out.String(), "Authorization URL")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	require.Equal(t, "example.social", cfg.InstanceHostname)
	require.Equal(t, "token-for-auth-code-123", cfg.AccessToken)
}

func TestRunAbortsWithoutPersistingOnRegisterAppFailure(t *testing.T) {
	dir := t.TempDir()
	deps, _ := fakeDeps(t, "example.social\ncode\n")
	deps.RegisterApp = func(context.Context, string) (*mastodon.Application, error) {
		return nil, errFake
	}

	err := Run(context.Background(), dir, deps)
	require.Error(t, err)

	_, loadErr := config.Load(dir)
	require.Error(t, loadErr)
}

func TestRunAbortsWithoutPersistingOnAuthenticateFailure(t *testing.T) {
	dir := t.TempDir()
	deps, _ := fakeDeps(t, "example.social\nbad-code\n")
	deps.NewClient = func(instanceHostname, clientID, clientSecret string) mastoclient.Client {
		return &fakeClient{clientID: clientID, clientSecret: clientSecret, authenticateErr: errFake}
	}

	err := Run(context.Background(), dir, deps)
	require.Error(t, err)

	_, loadErr := config.Load(dir)
	require.Error(t, loadErr)
}

func TestRunAbortsWithoutPersistingOnVerifyFailure(t *testing.T) {
	dir := t.TempDir()
	deps, _ := fakeDeps(t, "example.social\ncode\n")
	deps.NewClient = func(instanceHostname, clientID, clientSecret string) mastoclient.Client {
		return &fakeClient{clientID: clientID, clientSecret: clientSecret, verifyErr: errFake}
	}

	err := Run(context.Background(), dir, deps)
	require.Error(t, err)

	_, loadErr := config.Load(dir)
	require.Error(t, loadErr)
}

var errFake = errFakeType{}

type errFakeType struct{}

func (errFakeType) Error() string { return "fake failure" }
