package hhrecord

import (
	"errors"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestContentRoundTrip(t *testing.T) {
	c := Content{Author: 1, IsReplyTo: 2, RepliesStart: 3, Contents: []byte("hello")}

	encoded, err := EncodeContent(c)
	assert.NoError(t, err)

	decoded, err := DecodeContent(encoded)
	assert.NoError(t, err)
	assert.Equal(t, c, decoded)
}

func TestContentRoundTripEmptyBody(t *testing.T) {
	c := Content{Author: 0, IsReplyTo: 0, RepliesStart: 0, Contents: []byte{}}

	encoded, err := EncodeContent(c)
	assert.NoError(t, err)

	decoded, err := DecodeContent(encoded)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(decoded.Contents))
}

func TestContentTruncatedByOneByte(t *testing.T) {
	c := Content{Author: 1, IsReplyTo: 0, RepliesStart: 0, Contents: []byte("hello")}
	encoded, err := EncodeContent(c)
	assert.NoError(t, err)

	_, err = DecodeContent(encoded[:len(encoded)-1])
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestAuthorRoundTrip(t *testing.T) {
	a := Author{Name: []byte("alice")}

	encoded, err := EncodeAuthor(a)
	assert.NoError(t, err)
	assert.Equal(t, byte(len("alice")), encoded[0])

	decoded, err := DecodeAuthor(encoded)
	assert.NoError(t, err)
	assert.Equal(t, a, decoded)
}

func TestAuthorTruncatedByOneByte(t *testing.T) {
	a := Author{Name: []byte("alice")}
	encoded, err := EncodeAuthor(a)
	assert.NoError(t, err)

	_, err = DecodeAuthor(encoded[:len(encoded)-1])
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestPrefsRoundTrip(t *testing.T) {
	p := Prefs{HomeTimelineLen: 1, SelfTimelineLen: 2, ReplyContentLen: 3}
	decoded, err := DecodePrefs(EncodePrefs(p))
	assert.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestPrefsTruncated(t *testing.T) {
	p := Prefs{HomeTimelineLen: 1, SelfTimelineLen: 2, ReplyContentLen: 3}
	encoded := EncodePrefs(p)
	_, err := DecodePrefs(encoded[:len(encoded)-1])
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestWriteRoundTripAllVariants(t *testing.T) {
	cases := []Write{
		{Kind: WriteFavorite, Favorite: 42},
		{Kind: WriteFollow, Follow: 7},
		{Kind: WriteReblog, Reblog: 9},
		{Kind: WriteToot, Toot: Content{IsReplyTo: 0, Contents: []byte("hi")}},
		{Kind: WriteToot, Toot: Content{IsReplyTo: 3, Contents: []byte("a reply")}},
	}

	for _, c := range cases {
		encoded, err := EncodeWrite(c)
		assert.NoError(t, err)

		decoded, err := DecodeWrite(encoded)
		assert.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestWriteInvalidDiscriminant(t *testing.T) {
	// 0x0009 is not a valid TootWrite discriminant.
	_, err := DecodeWrite([]byte{0x00, 0x09, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestWriteTruncatedByOneByte(t *testing.T) {
	encoded, err := EncodeWrite(Write{Kind: WriteFavorite, Favorite: 42})
	assert.NoError(t, err)

	_, err = DecodeWrite(encoded[:len(encoded)-1])
	assert.True(t, errors.Is(err, ErrMalformedRecord))
}

func TestTruncateAuthorName(t *testing.T) {
	short := TruncateAuthorName([]byte("bob"))
	assert.Equal(t, []byte("bob\x00"), short)

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'x'
	}
	truncated := TruncateAuthorName(long)
	assert.Equal(t, 40, len(truncated))
	assert.Equal(t, byte(0), truncated[39])
}
