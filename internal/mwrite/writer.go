// Package mwrite decodes the handheld's uploaded Write records and
// replays them as Mastodon actions, resolving on-device indices
// against the previous sync's cache snapshot (SPEC_FULL.md §4.4).
package mwrite

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-mastodon"

	"github.com/heffalump/conduit/internal/cache"
	"github.com/heffalump/conduit/internal/hflog"
	"github.com/heffalump/conduit/internal/hhrecord"
	"github.com/heffalump/conduit/internal/mastoclient"
	"github.com/heffalump/conduit/internal/mpost"
)

// ErrCacheInconsistent is returned when a write references a snapshot
// index that the cache cannot resolve.
var ErrCacheInconsistent = errors.New("cache inconsistent")

// ErrTranscode is returned when a Toot write's content bytes are not
// valid ISO-8859-1. For the ISO-8859-1 alphabet this is structurally
// unreachable (every byte 0x00-0xFF decodes validly) but the sentinel
// is kept to preserve the error taxonomy's shape.
var ErrTranscode = errors.New("transcode error")

// ParseWrites decodes each raw write blob in order, stopping at the
// first malformed record. A decoded Toot write with an empty content
// body is valid and logged at debug rather than treated as an error.
func ParseWrites(log *hflog.Logger, raw [][]byte) ([]hhrecord.Write, error) {
	writes := make([]hhrecord.Write, 0, len(raw))
	for i, b := range raw {
		w, err := hhrecord.DecodeWrite(b)
		if err != nil {
			return nil, fmt.Errorf("write %d: %w", i, err)
		}
		if w.Kind == hhrecord.WriteToot && len(w.Toot.Contents) == 0 {
			log.Debugf("write %d: toot content_len == 0, decoding as empty body", i)
		}
		writes = append(writes, w)
	}
	return writes, nil
}

// ExecuteWrites replays writes in order against client, resolving
// Favorite/Reblog/Toot-reply targets through snapshot. It returns on
// the first irrecoverable error; writes already applied on the server
// stay applied, matching the non-transactional contract.
func ExecuteWrites(ctx context.Context, client mastoclient.Client, log *hflog.Logger, writes []hhrecord.Write, snapshot cache.Snapshot) error {
	for i, w := range writes {
		if err := executeSingle(ctx, client, log, w, snapshot); err != nil {
			return fmt.Errorf("write %d (kind %d): %w", i, w.Kind, err)
		}
	}
	return nil
}

func executeSingle(ctx context.Context, client mastoclient.Client, log *hflog.Logger, w hhrecord.Write, snapshot cache.Snapshot) error {
	switch w.Kind {
	case hhrecord.WriteFavorite:
		id, err := resolvePostID(snapshot, int(w.Favorite))
		if err != nil {
			return err
		}
		_, err = client.Favourite(ctx, mastodon.ID(id))
		return err

	case hhrecord.WriteReblog:
		id, err := resolvePostID(snapshot, int(w.Reblog))
		if err != nil {
			return err
		}
		_, err = client.Reblog(ctx, mastodon.ID(id))
		return err

	case hhrecord.WriteFollow:
		log.Infof("ignoring follow write (reserved for future use)")
		return nil

	case hhrecord.WriteToot:
		text := mpost.DecodeLatin1Strict(w.Toot.Contents)

		toot := &mastodon.Toot{Status: text}
		if w.Toot.IsReplyTo != 0 {
			id, err := resolvePostID(snapshot, int(w.Toot.IsReplyTo)-1)
			if err != nil {
				return err
			}
			toot.InReplyToID = mastodon.ID(id)
		}

		_, err := client.PostStatus(ctx, toot)
		return err

	default:
		return fmt.Errorf("%w: unknown write kind %d", hhrecord.ErrMalformedRecord, w.Kind)
	}
}

func resolvePostID(snapshot cache.Snapshot, index int) (string, error) {
	id, ok := snapshot.PostAt(index)
	if !ok {
		return "", fmt.Errorf("%w: index %d not in snapshot of %d posts", ErrCacheInconsistent, index, len(snapshot.PostIDs))
	}
	return id, nil
}
