package mpost

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderPlainPost(t *testing.T) {
	p := &Post{AuthorAcct: "alice", HTML: "<p>hello</p>"}

	r := Render(p)
	require.Equal(t, "@alice", r.Author)
	require.Equal(t, "hello", r.Body)
}

func TestRenderRemoteAuthorDropsInstanceSuffix(t *testing.T) {
	p := &Post{AuthorAcct: "alice@other.social", HTML: "<p>hi</p>"}

	r := Render(p)
	require.Equal(t, "@alice", r.Author)
}

func TestRenderReblogUsesOriginalAuthorLine(t *testing.T) {
	p := &Post{
		AuthorAcct: "booster",
		Reblog:     &Post{AuthorAcct: "original", HTML: "<p>boosted content</p>"},
	}

	r := Render(p)
	require.Equal(t, "@booster via @original", r.Author)
	require.Equal(t, "boosted content", r.Body)
}

func TestRenderAppendsMediaAltText(t *testing.T) {
	p := &Post{
		AuthorAcct:       "alice",
		HTML:             "<p>look</p>",
		MediaAttachments: []Attachment{{Description: "a sunset"}},
	}

	r := Render(p)
	require.Equal(t, "look\n[img] (Alt Text: a sunset)", r.Body)
}

func TestRenderMediaWithoutDescriptionUsesPlaceholder(t *testing.T) {
	p := &Post{
		AuthorAcct:       "alice",
		HTML:             "<p>look</p>",
		MediaAttachments: []Attachment{{}},
	}

	r := Render(p)
	require.Equal(t, "look\n[img] (Alt Text: No Alt Text)", r.Body)
}

func TestRenderAppendsCardTrailer(t *testing.T) {
	p := &Post{
		AuthorAcct: "alice",
		HTML:       "<p>a link</p>",
		Card:       &Card{Description: "An article"},
	}

	r := Render(p)
	require.Equal(t, "a link\n[media] (Alt Text: An article)", r.Body)
}

func TestRenderReblogIncludesBoostedMedia(t *testing.T) {
	p := &Post{
		AuthorAcct: "booster",
		Reblog: &Post{
			AuthorAcct:       "original",
			HTML:             "<p>boosted</p>",
			MediaAttachments: []Attachment{{Description: "photo"}},
		},
	}

	r := Render(p)
	require.Equal(t, "boosted\n[img] (Alt Text: photo)", r.Body)
}
