// Package hhrecord encodes and decodes the fixed, big-endian on-device
// record formats shared with the Heffalump PalmOS application: author
// records, content records, write records, and the prefs block.
//
// All multi-byte integers are big-endian. Every decode function rejects
// truncated input, an unknown discriminant, or a length mismatch with
// ErrMalformedRecord.
package hhrecord

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedRecord is returned (optionally wrapped for context) for any
// truncated, oversized, or otherwise invalid on-device record.
var ErrMalformedRecord = errors.New("malformed record")

// maxAuthorNameBytes is the device-side author name buffer, NUL included.
const maxAuthorNameBytes = 40

// WriteKind discriminates the four TootWrite variants. Values match the
// device's C enum exactly; do not reorder.
type WriteKind uint16

const (
	WriteFavorite WriteKind = 0
	WriteFollow   WriteKind = 1
	WriteReblog   WriteKind = 2
	WriteToot     WriteKind = 3
)

// Content is the on-device TootContent record.
//
//	author_index:u16 is_reply_to:u16 replies_start:u16 content_len:u16 content[content_len]
type Content struct {
	Author       uint16
	IsReplyTo    uint16
	RepliesStart uint16
	Contents     []byte
}

// Author is the on-device TootAuthor record: a u8 length followed by
// that many bytes. The u8-symmetric form is used on both encode and
// decode, matching the device's C layout (see SPEC_FULL.md §4.1).
type Author struct {
	Name []byte
}

// Prefs is the on-device HeffalumpPrefs record: three u16 counters
// telling the device how to segment the Content DB.
type Prefs struct {
	HomeTimelineLen uint16
	SelfTimelineLen uint16
	ReplyContentLen uint16
}

// Write is a decoded TootWrite record. Exactly one of Favorite, Follow,
// Reblog, or Toot is populated, selected by Kind.
type Write struct {
	Kind     WriteKind
	Favorite uint16
	Follow   uint16
	Reblog   uint16
	Toot     Content
}

// EncodeContent serializes a Content record. It fails if the content
// body would overflow the u16 length field; callers (the text
// transcoder) are expected to guarantee this never happens in practice.
func EncodeContent(c Content) ([]byte, error) {
	if len(c.Contents) > 0xFFFF {
		return nil, fmt.Errorf("%w: content length %d overflows uint16", ErrMalformedRecord, len(c.Contents))
	}

	buf := make([]byte, 8+len(c.Contents))
	binary.BigEndian.PutUint16(buf[0:2], c.Author)
	binary.BigEndian.PutUint16(buf[2:4], c.IsReplyTo)
	binary.BigEndian.PutUint16(buf[4:6], c.RepliesStart)
	binary.BigEndian.PutUint16(buf[6:8], uint16(len(c.Contents)))
	copy(buf[8:], c.Contents)
	return buf, nil
}

// DecodeContent parses a Content record. A zero content_len is valid
// (empty body); callers should log this case at debug level.
func DecodeContent(b []byte) (Content, error) {
	if len(b) < 8 {
		return Content{}, fmt.Errorf("%w: content header truncated (%d bytes)", ErrMalformedRecord, len(b))
	}
	author := binary.BigEndian.Uint16(b[0:2])
	isReplyTo := binary.BigEndian.Uint16(b[2:4])
	repliesStart := binary.BigEndian.Uint16(b[4:6])
	contentLen := binary.BigEndian.Uint16(b[6:8])

	rest := b[8:]
	if len(rest) < int(contentLen) {
		return Content{}, fmt.Errorf("%w: content body truncated (want %d, have %d)", ErrMalformedRecord, contentLen, len(rest))
	}

	contents := make([]byte, contentLen)
	copy(contents, rest[:contentLen])

	return Content{
		Author:       author,
		IsReplyTo:    isReplyTo,
		RepliesStart: repliesStart,
		Contents:     contents,
	}, nil
}

// EncodeAuthor serializes an Author record. The caller (the text
// transcoder) is responsible for pre-truncating Name to fit a u8
// length; EncodeAuthor only refuses lengths that plainly cannot fit.
func EncodeAuthor(a Author) ([]byte, error) {
	if len(a.Name) > 0xFF {
		return nil, fmt.Errorf("%w: author name length %d overflows uint8", ErrMalformedRecord, len(a.Name))
	}
	buf := make([]byte, 1+len(a.Name))
	buf[0] = byte(len(a.Name))
	copy(buf[1:], a.Name)
	return buf, nil
}

// DecodeAuthor parses an Author record, reading a u8 length prefix.
func DecodeAuthor(b []byte) (Author, error) {
	if len(b) < 1 {
		return Author{}, fmt.Errorf("%w: author record truncated", ErrMalformedRecord)
	}
	n := int(b[0])
	rest := b[1:]
	if len(rest) < n {
		return Author{}, fmt.Errorf("%w: author name truncated (want %d, have %d)", ErrMalformedRecord, n, len(rest))
	}
	name := make([]byte, n)
	copy(name, rest[:n])
	return Author{Name: name}, nil
}

// EncodePrefs serializes a Prefs record.
func EncodePrefs(p Prefs) []byte {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint16(buf[0:2], p.HomeTimelineLen)
	binary.BigEndian.PutUint16(buf[2:4], p.SelfTimelineLen)
	binary.BigEndian.PutUint16(buf[4:6], p.ReplyContentLen)
	return buf
}

// DecodePrefs parses a Prefs record.
func DecodePrefs(b []byte) (Prefs, error) {
	if len(b) < 6 {
		return Prefs{}, fmt.Errorf("%w: prefs record truncated (%d bytes)", ErrMalformedRecord, len(b))
	}
	return Prefs{
		HomeTimelineLen: binary.BigEndian.Uint16(b[0:2]),
		SelfTimelineLen: binary.BigEndian.Uint16(b[2:4]),
		ReplyContentLen: binary.BigEndian.Uint16(b[4:6]),
	}, nil
}

// EncodeWrite serializes a TootWrite record: a u16 discriminant
// followed by the variant body.
func EncodeWrite(w Write) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint16(w.Kind)); err != nil {
		return nil, err
	}

	switch w.Kind {
	case WriteFavorite:
		if err := binary.Write(&buf, binary.BigEndian, w.Favorite); err != nil {
			return nil, err
		}
	case WriteFollow:
		if err := binary.Write(&buf, binary.BigEndian, w.Follow); err != nil {
			return nil, err
		}
	case WriteReblog:
		if err := binary.Write(&buf, binary.BigEndian, w.Reblog); err != nil {
			return nil, err
		}
	case WriteToot:
		content, err := EncodeContent(w.Toot)
		if err != nil {
			return nil, err
		}
		buf.Write(content)
	default:
		return nil, fmt.Errorf("%w: invalid discriminant %d", ErrMalformedRecord, w.Kind)
	}

	return buf.Bytes(), nil
}

// DecodeWrite parses a TootWrite record: the discriminant selects which
// of the four variants to decode from the remaining bytes. An unknown
// discriminant is ErrMalformedRecord.
func DecodeWrite(b []byte) (Write, error) {
	r := bytes.NewReader(b)
	var discrim uint16
	if err := binary.Read(r, binary.BigEndian, &discrim); err != nil {
		return Write{}, fmt.Errorf("%w: missing discriminant", ErrMalformedRecord)
	}

	switch WriteKind(discrim) {
	case WriteFavorite:
		var target uint16
		if err := binary.Read(r, binary.BigEndian, &target); err != nil {
			return Write{}, fmt.Errorf("%w: truncated favorite target", ErrMalformedRecord)
		}
		return Write{Kind: WriteFavorite, Favorite: target}, nil
	case WriteFollow:
		var target uint16
		if err := binary.Read(r, binary.BigEndian, &target); err != nil {
			return Write{}, fmt.Errorf("%w: truncated follow target", ErrMalformedRecord)
		}
		return Write{Kind: WriteFollow, Follow: target}, nil
	case WriteReblog:
		var target uint16
		if err := binary.Read(r, binary.BigEndian, &target); err != nil {
			return Write{}, fmt.Errorf("%w: truncated reblog target", ErrMalformedRecord)
		}
		return Write{Kind: WriteReblog, Reblog: target}, nil
	case WriteToot:
		rest, err := io.ReadAll(r)
		if err != nil {
			return Write{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		content, err := DecodeContent(rest)
		if err != nil {
			return Write{}, err
		}
		return Write{Kind: WriteToot, Toot: content}, nil
	default:
		return Write{}, fmt.Errorf("%w: invalid discriminant %d", ErrMalformedRecord, discrim)
	}
}

// TruncateAuthorName caps name at 39 bytes and appends a trailing NUL,
// matching the device's fixed author buffer (see SPEC_FULL.md §4.2).
func TruncateAuthorName(name []byte) []byte {
	const maxContentBytes = maxAuthorNameBytes - 1
	if len(name) > maxContentBytes {
		name = name[:maxContentBytes]
	}
	out := make([]byte, len(name)+1)
	copy(out, name)
	return out
}
