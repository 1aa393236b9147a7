// brokenio is a wrapper around an io.ReadCloser which breaks on
// purpose. It is for testing code that reads from the network.
// Typical use: You get an http body or a file pointer. You write
// reader = brokenio.NewReader(reader) to wrap the old reader.
// Everything then functions as before, but with errors where you
// asked for them.
// Unlike a random failure, everything here is deterministic, so a
// test can say exactly how many bytes get through.

package brokenio

import (
	"errors"
	"fmt"
	"io"
)

// ErrBroken is what a deliberately failed read returns, possibly wrapped.
var ErrBroken = errors.New("brokenio: deliberate read failure")

// A BrknRdrClsr is modelled on the various Readers in the standard
// library, but gives up after a set number of bytes.
type BrknRdrClsr struct {
	rdrOrig   io.ReadCloser // Wrapped reader
	failAfter int           // fail once this many bytes are through. < 0 means never
	zeroFile  bool          // first read says EOF
	nCalled   int
	nByte     int
	closed    bool
}

// NewReader returns a new Reader, a wrapper around the old one which
// does not fail until you set something.
func NewReader(rIn io.ReadCloser) *BrknRdrClsr {
	return &BrknRdrClsr{rdrOrig: rIn, failAfter: -1}
}

// SetFailAfter makes reads fail with ErrBroken once n bytes have been
// handed out. n = 0 fails on the first read.
func (r *BrknRdrClsr) SetFailAfter(n int) *BrknRdrClsr { r.failAfter = n; return r }

// SetZeroFile makes the first read return EOF without data. This is
// what one often sees on a zero length file or a dropped connection.
func (r *BrknRdrClsr) SetZeroFile(z bool) *BrknRdrClsr { r.zeroFile = z; return r }

// Read passes data through until the limit, then fails.
func (r *BrknRdrClsr) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.zeroFile {
		r.nCalled++
		return 0, io.EOF
	}
	r.nCalled++
	if r.failAfter >= 0 {
		left := r.failAfter - r.nByte
		if left <= 0 {
			return 0, fmt.Errorf("after %d bytes: %w", r.nByte, ErrBroken)
		}
		if len(p) > left {
			p = p[:left]
		}
	}
	n, err = r.rdrOrig.Read(p)
	r.nByte += n
	return n, err
}

// NByte is how much data has gone through.
func (r *BrknRdrClsr) NByte() int { return r.nByte }

// Closed says if Close was called. Tests use it to check bodies are
// not leaked.
func (r *BrknRdrClsr) Closed() bool { return r.closed }

// Close wraps the original Close method.
func (r *BrknRdrClsr) Close() error {
	r.closed = true
	return r.rdrOrig.Close()
}
