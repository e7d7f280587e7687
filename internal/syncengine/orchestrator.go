// Package syncengine wires one sync session end-to-end: config/
// enrollment, concurrent feed+self fetch, sequential replies fetch,
// canonical-order record encoding, host handler registration, and
// cache rotation (SPEC_FULL.md §4.6).
package syncengine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/heffalump/conduit/internal/cache"
	"github.com/heffalump/conduit/internal/config"
	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/hhrecord"
	"github.com/heffalump/conduit/internal/hostsync"
	"github.com/heffalump/conduit/internal/mastoclient"
	"github.com/heffalump/conduit/internal/mfetch"
	"github.com/heffalump/conduit/internal/mpost"
	"github.com/heffalump/conduit/internal/mwrite"
)

const (
	defaultFeedCount    = 100
	defaultSelfCount    = 40
	defaultRepliesEach  = 10
	authorDBCreator     = "Auth"
	contentDBCreator    = "Toot"
	writesDBCreator     = "Writ"
	prefsID             = 0
	// createDBsFeedCap is the upper bound on the home-feed count: a
	// FeedCount above it is clamped to it. The value is the feed size
	// original_source/conduit/src/lib.rs's create_dbs passes to feed();
	// the per-sync default stays defaultFeedCount.
	createDBsFeedCap = 1000
)

// Deps bundles everything Run needs, so it can run without a live host
// or network in tests.
type Deps struct {
	SyncDir string
	Log     *hflog.Logger

	NewClient func(instanceHostname, accessToken string) mastoclient.Client
	// Enroll runs the interactive enrollment flow when no config
	// exists yet; it must persist a config to SyncDir on success.
	Enroll     func(ctx context.Context, dir string) error
	Runner     hostsync.HostRunner
	Properties hostsync.SessionProperties

	// FeedCount, SelfCount, and RepliesEach default to 100, 40, and 10
	// respectively when zero.
	FeedCount   int
	SelfCount   int
	RepliesEach int
}

func (d Deps) feedCount() int {
	n := defaultFeedCount
	if d.FeedCount > 0 {
		n = d.FeedCount
	}
	if n > createDBsFeedCap {
		n = createDBsFeedCap
	}
	return n
}

func (d Deps) selfCount() int {
	if d.SelfCount > 0 {
		return d.SelfCount
	}
	return defaultSelfCount
}

func (d Deps) repliesEach() int {
	if d.RepliesEach > 0 {
		return d.RepliesEach
	}
	return defaultRepliesEach
}

// Run performs one full sync session and returns 0 on success, -1 on
// any failure. It recovers panics from the body so cmd/heffalump_conduit
// never has to unwind across the host boundary.
func Run(ctx context.Context, deps Deps) (code int) {
	defer func() {
		if r := recover(); r != nil {
			deps.Log.Errorf("recovered panic during sync: %v", r)
			code = -1
		}
	}()

	if _, err := config.Load(deps.SyncDir); err != nil {
		if !errors.Is(err, config.ErrMissing) {
			deps.Log.Errorf("loading config: %v", err)
			return -1
		}
		deps.Log.Infof("no config found, running enrollment")
		if err := deps.Enroll(ctx, deps.SyncDir); err != nil {
			deps.Log.Errorf("enrollment failed: %v", err)
			return -1
		}
	}

	cfg, err := config.Load(deps.SyncDir)
	if err != nil {
		deps.Log.Errorf("loading config after enrollment: %v", err)
		return -1
	}

	client := deps.NewClient(cfg.InstanceHostname, cfg.AccessToken)
	fetcher := mfetch.New(client, deps.Log)

	var feedPosts, selfPosts []*mpost.Post
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		posts, err := fetcher.Feed(gctx, deps.feedCount())
		feedPosts = posts
		return err
	})
	g.Go(func() error {
		posts, err := fetcher.SelfPosts(gctx, deps.selfCount())
		selfPosts = posts
		return err
	})
	if err := g.Wait(); err != nil {
		deps.Log.Errorf("fetching timeline: %v", err)
		return -1
	}

	topLevel := make([]*mpost.Post, 0, len(feedPosts)+len(selfPosts))
	topLevel = append(topLevel, feedPosts...)
	topLevel = append(topLevel, selfPosts...)

	replySets, err := fetcher.Replies(ctx, topLevel, deps.repliesEach())
	if err != nil {
		deps.Log.Errorf("fetching replies: %v", err)
		return -1
	}

	all := make([]*mpost.Post, 0, len(topLevel))
	all = append(all, topLevel...)
	for _, rs := range replySets {
		all = append(all, rs...)
	}

	rendered := make([]mpost.Rendered, len(all))
	for i, p := range all {
		rendered[i] = mpost.Render(p)
	}

	authors := distinctSortedAuthors(rendered)
	authorIndex := make(map[string]uint16, len(authors))
	for i, a := range authors {
		authorIndex[a] = uint16(i)
	}

	repliesStart := make([]uint16, len(topLevel))
	offset := len(topLevel)
	for i, rs := range replySets {
		if len(rs) > 0 {
			repliesStart[i] = uint16(offset)
		}
		offset += len(rs)
	}

	contentRecords := make([][]byte, len(all))
	for i := range topLevel {
		c := hhrecord.Content{
			Author:       authorIndex[rendered[i].Author],
			IsReplyTo:    0,
			RepliesStart: repliesStart[i],
			Contents:     mpost.EncodeLatin1(rendered[i].Body),
		}
		b, err := hhrecord.EncodeContent(c)
		if err != nil {
			deps.Log.Errorf("encoding content record %d: %v", i, err)
			return -1
		}
		contentRecords[i] = b
	}

	idx := len(topLevel)
	for parentIdx, rs := range replySets {
		for range rs {
			c := hhrecord.Content{
				Author:       authorIndex[rendered[idx].Author],
				IsReplyTo:    uint16(parentIdx) + 1,
				RepliesStart: 0,
				Contents:     mpost.EncodeLatin1(rendered[idx].Body),
			}
			b, err := hhrecord.EncodeContent(c)
			if err != nil {
				deps.Log.Errorf("encoding reply content record %d: %v", idx, err)
				return -1
			}
			contentRecords[idx] = b
			idx++
		}
	}

	authorRecords := make([][]byte, len(authors))
	for i, a := range authors {
		rec, err := hhrecord.EncodeAuthor(hhrecord.Author{Name: hhrecord.TruncateAuthorName(mpost.EncodeLatin1(a))})
		if err != nil {
			deps.Log.Errorf("encoding author record %d: %v", i, err)
			return -1
		}
		authorRecords[i] = rec
	}

	prefs := hhrecord.Prefs{
		HomeTimelineLen: uint16(len(feedPosts)),
		SelfTimelineLen: uint16(len(selfPosts)),
		ReplyContentLen: uint16(len(all) - len(topLevel)),
	}

	session := hostsync.NewSession(deps.Properties)
	session.OverwriteAuthorDB(authorDBCreator, authorRecords)
	session.OverwriteContentDB(contentDBCreator, contentRecords)
	session.InstallPrefs(prefsID, hhrecord.EncodePrefs(prefs))

	oldSnapshot, oldErr := cache.LoadOld(deps.SyncDir)
	hadOld := true
	if oldErr != nil {
		if !errors.Is(oldErr, cache.ErrMissing) {
			deps.Log.Errorf("loading old cache: %v", oldErr)
			return -1
		}
		hadOld = false
	}

	session.RegisterWritesSink(writesDBCreator, func(records []hostsync.WriteRecord) error {
		raw := make([][]byte, len(records))
		for i, r := range records {
			raw[i] = r.Bytes
		}
		writes, err := mwrite.ParseWrites(deps.Log, raw)
		if err != nil {
			return err
		}
		if !hadOld {
			if len(writes) == 0 {
				return nil
			}
			return fmt.Errorf("%w: no previous cache snapshot to resolve %d uploaded writes against", mwrite.ErrCacheInconsistent, len(writes))
		}
		return mwrite.ExecuteWrites(ctx, client, deps.Log, writes, oldSnapshot)
	})

	if err := deps.Runner.Run(session); err != nil {
		deps.Log.Errorf("host session failed: %v", err)
		return -1
	}

	postIDs := make([]string, len(all))
	for i, p := range all {
		postIDs[i] = p.ID
	}
	newSnapshot := cache.Snapshot{Prefs: prefs, PostIDs: postIDs}
	if err := cache.Save(deps.SyncDir, newSnapshot); err != nil {
		deps.Log.Errorf("saving cache: %v", err)
		return -1
	}

	return 0
}

func distinctSortedAuthors(rendered []mpost.Rendered) []string {
	seen := make(map[string]struct{})
	for _, r := range rendered {
		seen[r.Author] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
