// Package mpost holds the server-side Post domain type, its rendering
// into an author line / body text pair, and the narrowing of that text
// to the ISO-8859-1 byte sequence the handheld can display.
package mpost

import "strings"

// Attachment is a media attachment on a Post: only the alt text matters
// to rendering.
type Attachment struct {
	Description string
}

// Card is a link preview attached to a Post.
type Card struct {
	Description string
}

// Post is the conduit's view of a single Mastodon status: enough to
// render it and enough to correlate it with an on-device index later.
type Post struct {
	ID               string
	AuthorAcct       string
	HTML             string
	Reblog           *Post
	MediaAttachments []Attachment
	Card             *Card
}

// Rendered is the (author-line, body-text) pair produced by rendering
// a Post.
type Rendered struct {
	Author string
	Body   string
}

// Render turns a Post into its on-device text representation: boosted
// content renders the reblog's body, the author line follows the
// "@reblogger via @original" convention, and any media/card alt text is
// appended as trailer lines.
func Render(p *Post) Rendered {
	source := p
	if p.Reblog != nil {
		source = p.Reblog
	}

	body := RenderHTML(source.HTML)

	var author string
	if p.Reblog != nil {
		author = "@" + handle(p.AuthorAcct) + " via @" + handle(p.Reblog.AuthorAcct)
	} else {
		author = "@" + handle(p.AuthorAcct)
	}

	attachments := p.MediaAttachments
	if p.Reblog != nil {
		attachments = append(append([]Attachment{}, attachments...), p.Reblog.MediaAttachments...)
	}
	for _, media := range attachments {
		alt := media.Description
		if alt == "" {
			alt = "No Alt Text"
		}
		body += "\n[img] (Alt Text: " + alt + ")"
	}

	if p.Card != nil {
		desc := p.Card.Description
		if desc == "" {
			desc = "No Alt Text"
		}
		body += "\n[media] (Alt Text: " + desc + ")"
	}

	return Rendered{Author: author, Body: body}
}

// handle returns the portion of acct before '@' (the local handle,
// dropping any "@instance" suffix for remote accounts).
func handle(acct string) string {
	if i := strings.IndexByte(acct, '@'); i >= 0 {
		return acct[:i]
	}
	return acct
}
