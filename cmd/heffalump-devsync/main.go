// Command heffalump-devsync drives a single sync session against a
// plain directory on disk, standing in for the HotSync manager during
// development. Configuration comes from the environment, in the
// teacher's own envdecode style (see Conf below).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"

	"github.com/heffalump/conduit/internal/enroll"
	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/hostsync"
	"github.com/heffalump/conduit/internal/mastoclient"
	"github.com/heffalump/conduit/internal/syncengine"
)

// Conf is this harness's configuration, read from the environment.
type Conf struct {
	SyncDir string `env:"HEFFALUMP_SYNC_DIR,required"`

	// FeedCount, SelfCount, and RepliesEach override the orchestrator's
	// defaults (100, 40, 10) when non-zero.
	FeedCount   int `env:"HEFFALUMP_FEED_COUNT,default=0"`
	SelfCount   int `env:"HEFFALUMP_SELF_COUNT,default=0"`
	RepliesEach int `env:"HEFFALUMP_REPLIES_EACH,default=0"`
}

type dirProperties struct{ dir string }

func (p dirProperties) SyncDirPath() string { return p.dir }

// noopRunner stands in for the host: it never performs device I/O, so
// the writes sink is simply never invoked.
type noopRunner struct{}

func (noopRunner) Run(*hostsync.Session) error { return nil }

func main() {
	var conf Conf
	if err := envdecode.Decode(&conf); err != nil {
		die(fmt.Sprintf("error decoding conf from env: %v", err))
	}

	if err := os.MkdirAll(conf.SyncDir, 0o755); err != nil {
		die(fmt.Sprintf("error creating sync dir: %v", err))
	}

	log := hflog.New(hflog.LevelTrace, os.Stdout)

	deps := syncengine.Deps{
		SyncDir: conf.SyncDir,
		Log:     log,
		NewClient: func(instanceHostname, accessToken string) mastoclient.Client {
			return mastoclient.New(instanceHostname, accessToken)
		},
		Enroll: func(ctx context.Context, dir string) error {
			return enroll.Run(ctx, dir, enroll.Deps{
				Prompt:      os.Stdin,
				Output:      os.Stdout,
				Log:         log,
				RegisterApp: mastoclient.RegisterApp,
				OpenBrowser: enroll.OpenBrowser(log),
				NewClient:   mastoclient.NewUnauthenticated,
			})
		},
		Runner:      noopRunner{},
		Properties:  dirProperties{dir: conf.SyncDir},
		FeedCount:   conf.FeedCount,
		SelfCount:   conf.SelfCount,
		RepliesEach: conf.RepliesEach,
	}

	code := syncengine.Run(context.Background(), deps)
	os.Exit(-code)
}

func die(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
