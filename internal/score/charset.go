package score

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Transcode encodes a UTF-8 lyric into the named charset. The empty name and
// any alias of UTF-8 return the lyric unchanged once it is valid UTF-8.
func Transcode(lyric, charset string) (string, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return "", err
	}
	return encodeLyric(enc, lyric)
}

// lookupCharset returns nil for UTF-8.
func lookupCharset(charset string) (encoding.Encoding, error) {
	name := strings.TrimSpace(charset)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown charset %q: %v", ErrCharset, charset, err)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

func encodeLyric(enc encoding.Encoding, lyric string) (string, error) {
	if enc == nil {
		if !utf8.ValidString(lyric) {
			return "", fmt.Errorf("%w: lyric %q is not valid UTF-8", ErrCharset, lyric)
		}
		return lyric, nil
	}
	out, err := enc.NewEncoder().String(lyric)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrCharset, lyric, err)
	}
	return out, nil
}

// lyricEncoder caches the encoder for the charset a singer last reported.
type lyricEncoder struct {
	name string
	enc  encoding.Encoding
	err  error
	set  bool
}

func (c *lyricEncoder) encode(charset, lyric string) (string, error) {
	if !c.set || c.name != charset {
		c.name, c.set = charset, true
		c.enc, c.err = lookupCharset(charset)
	}
	if c.err != nil {
		return "", c.err
	}
	return encodeLyric(c.enc, lyric)
}
