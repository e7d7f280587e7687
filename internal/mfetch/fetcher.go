// Package mfetch drives the Mastodon read operations the sync engine
// needs: the home timeline, the account's own statuses, and reply
// context for a set of posts. Every operation retries on HTTP 429
// unboundedly (sleeping 100ms between attempts) and returns any other
// error to the caller (SPEC_FULL.md §4.3).
package mfetch

import (
	"context"
	"time"

	"github.com/mattn/go-mastodon"

	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/mastoclient"
	"github.com/heffalump/conduit/internal/mpost"
)

// rateLimitSleep is the backoff applied after a 429 before retrying.
var rateLimitSleep = 100 * time.Millisecond

// Fetcher drives reads against a mastoclient.Client.
type Fetcher struct {
	Client mastoclient.Client
	Log    *hflog.Logger
}

func New(client mastoclient.Client, log *hflog.Logger) *Fetcher {
	return &Fetcher{Client: client, Log: log}
}

func toPost(s *mastodon.Status) *mpost.Post {
	if s == nil {
		return nil
	}
	p := &mpost.Post{
		ID:         string(s.ID),
		AuthorAcct: s.Account.Acct,
		HTML:       s.Content,
	}
	for _, a := range s.MediaAttachments {
		p.MediaAttachments = append(p.MediaAttachments, mpost.Attachment{Description: a.Description})
	}
	if s.Card != nil {
		p.Card = &mpost.Card{Description: s.Card.Description}
	}
	if s.Reblog != nil {
		p.Reblog = toPost(s.Reblog)
	}
	return p
}

// retryRateLimited calls op repeatedly, sleeping and retrying on a
// detected 429, until it returns a non-rate-limit result.
func retryRateLimited[T any](ctx context.Context, log *hflog.Logger, op func() (T, error)) (T, error) {
	for {
		result, err := op()
		if err == nil {
			return result, nil
		}
		if mastoclient.IsRateLimited(err) {
			log.Warnf("received 429, sleeping")
			select {
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			case <-time.After(rateLimitSleep):
			}
			continue
		}
		return result, err
	}
}

// Feed pages through the home timeline until count posts are
// accumulated or the server returns an empty page. Posts that are
// replies (in_reply_to_account_id set) are filtered out of the home
// view, matching the original implementation.
func (f *Fetcher) Feed(ctx context.Context, count int) ([]*mpost.Post, error) {
	var statuses []*mastodon.Status
	var lastID mastodon.ID

	for len(statuses) < count {
		pg := &mastodon.Pagination{Limit: int64(count - len(statuses))}
		if lastID != "" {
			pg.MaxID = lastID
		}

		page, err := retryRateLimited(ctx, f.Log, func() ([]*mastodon.Status, error) {
			return f.Client.GetTimelineHome(ctx, pg)
		})
		if err != nil {
			f.Log.Errorf("error while downloading timeline posts: %v", err)
			return nil, err
		}

		if len(page) == 0 {
			break
		}
		lastID = page[len(page)-1].ID

		for _, s := range page {
			if s.InReplyToAccountID == nil {
				statuses = append(statuses, s)
			}
		}
	}

	return toPosts(statuses), nil
}

// SelfPosts pages through the authenticated account's own statuses
// until count posts are accumulated or the server returns an empty
// page.
func (f *Fetcher) SelfPosts(ctx context.Context, count int) ([]*mpost.Post, error) {
	account, err := retryRateLimited(ctx, f.Log, func() (*mastodon.Account, error) {
		return f.Client.GetAccountCurrentUser(ctx)
	})
	if err != nil {
		f.Log.Errorf("error getting current user account: %v", err)
		return nil, err
	}

	var statuses []*mastodon.Status
	for len(statuses) < count {
		pg := &mastodon.Pagination{Limit: int64(count - len(statuses))}
		if len(statuses) > 0 {
			pg.MaxID = statuses[len(statuses)-1].ID
		}

		page, err := retryRateLimited(ctx, f.Log, func() ([]*mastodon.Status, error) {
			return f.Client.GetAccountStatuses(ctx, account.ID, pg)
		})
		if err != nil {
			f.Log.Errorf("error while downloading self posts: %v", err)
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		statuses = append(statuses, page...)
	}

	return toPosts(statuses), nil
}

// Replies fetches, for each given post, its descendants and keeps at
// most maxEach of them.
func (f *Fetcher) Replies(ctx context.Context, posts []*mpost.Post, maxEach int) ([][]*mpost.Post, error) {
	f.Log.Infof("getting replies")

	out := make([][]*mpost.Post, len(posts))
	for i, post := range posts {
		rep, err := retryRateLimited(ctx, f.Log, func() (*mastodon.Context, error) {
			return f.Client.GetStatusContext(ctx, mastodon.ID(post.ID))
		})
		if err != nil {
			f.Log.Errorf("error while downloading replies: %v", err)
			return nil, err
		}

		descendants := rep.Descendants
		if len(descendants) > maxEach {
			descendants = descendants[:maxEach]
		}
		out[i] = toPosts(descendants)
	}

	return out, nil
}

func toPosts(statuses []*mastodon.Status) []*mpost.Post {
	posts := make([]*mpost.Post, len(statuses))
	for i, s := range statuses {
		posts[i] = toPost(s)
	}
	return posts
}
