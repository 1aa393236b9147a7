package brokenio_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/andrew-torda/pdbmap/brokenio"
)

var longstring = "0123456789012345678901234567890123456789"

func TestFailAfter(t *testing.T) {
	for _, n := range []int{0, 1, 10, 39} {
		rdr := brokenio.NewReader(io.NopCloser(strings.NewReader(longstring))).SetFailAfter(n)
		b, err := io.ReadAll(rdr)
		if !errors.Is(err, brokenio.ErrBroken) {
			t.Errorf("fail after %d: wanted ErrBroken, got %v", n, err)
		}
		if string(b) != longstring[:n] {
			t.Errorf("fail after %d: got %q", n, b)
		}
		if rdr.NByte() != n {
			t.Errorf("NByte %d, wanted %d", rdr.NByte(), n)
		}
	}
}

func TestNoFailure(t *testing.T) {
	rdr := brokenio.NewReader(io.NopCloser(strings.NewReader(longstring)))
	b, err := io.ReadAll(rdr)
	if err != nil || string(b) != longstring {
		t.Errorf("plain reader broken: %q %v", b, err)
	}
	// limit beyond the data never triggers
	rdr = brokenio.NewReader(io.NopCloser(strings.NewReader(longstring))).SetFailAfter(1000)
	if b, err = io.ReadAll(rdr); err != nil || string(b) != longstring {
		t.Errorf("big limit: %q %v", b, err)
	}
	if rdr.Closed() {
		t.Error("not closed yet")
	}
	rdr.Close()
	if !rdr.Closed() {
		t.Error("should be closed")
	}
}

func TestZeroFile(t *testing.T) {
	rdr := brokenio.NewReader(io.NopCloser(strings.NewReader(longstring))).SetZeroFile(true)
	b, err := io.ReadAll(rdr)
	if err != nil || len(b) != 0 {
		t.Errorf("zero file gave %q %v", b, err)
	}
}
