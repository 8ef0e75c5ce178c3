package stream

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// chunkDecoder turns network chunks into text. A multi-byte character split
// across two chunks is held back until the rest of it arrives; invalid bytes
// become U+FFFD.
type chunkDecoder struct {
	t       transform.Transformer
	pending []byte
}

func newChunkDecoder() *chunkDecoder {
	return &chunkDecoder{t: unicode.UTF8.NewDecoder()}
}

// Decode appends chunk to any held-back bytes and returns the text that is
// complete so far. Pass final=true once the stream has ended to flush the rest.
func (d *chunkDecoder) Decode(chunk []byte, final bool) (string, error) {
	src := append(d.pending, chunk...)
	d.pending = nil
	if len(src) == 0 {
		return "", nil
	}

	out := make([]byte, 0, len(src))
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, final)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			return string(out), nil
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
			return string(out), nil
		case errors.Is(err, transform.ErrShortDst):
			dst = make([]byte, 2*len(dst))
		default:
			return string(out), err
		}
	}
}
