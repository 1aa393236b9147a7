// Package zwrap takes a file pointer or http body and optionally wraps
// it so reads come from a decompressor. Upon calling Close, the
// decompressor will be closed, followed by the underlying source.
// Some pdb servers and mirrors hand out gzipped files, some do not and
// some do it without saying so in the headers.

package zwrap

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
)

// gzip files start with these two bytes
var gzMagic = [2]byte{0x1f, 0x8b}

type FpGzip struct { // This is what we return.
	fp   io.ReadCloser
	rdr  io.Reader // what we read from if not compressed. May be buffered.
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying backing readCloser.
func (fc *FpGzip) Close() error {
	if fc.zrdr == nil {
		return fc.fp.Close()
	}
	return errors.Join(fc.zrdr.Close(), fc.fp.Close())
}

// Read makes sure we read from the compressed stream and
// not the underlying file stream.
func (fc *FpGzip) Read(p []byte) (int, error) {
	if fc.zrdr != nil {
		return fc.zrdr.Read(p)
	}
	return fc.rdr.Read(p)
}

// Compressed says if we are reading through gzip.
func (fc *FpGzip) Compressed() bool { return fc.zrdr != nil }

// Wrap takes a source like a file pointer or http stream which must
// be compressed. If it is not, you get an error.
func Wrap(fp io.ReadCloser) (*FpGzip, error) {
	fpz := FpGzip{fp: fp, rdr: fp}
	var err error
	fpz.zrdr, err = gzip.NewReader(fp)
	return &fpz, err
}

// ReadSeekCloser does not seem to be in the standard library
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// WrapMaybe will decide if the underlying stream is compressed
// and wrap the file pointer if necessary. It needs to seek back to
// the start if the data was not compressed.
func WrapMaybe(fpIn ReadSeekCloser) (*FpGzip, error) {
	if out, err := Wrap(fpIn); err == nil {
		return out, nil // It was compressed. Return compressed reader.
	}
	_, err := fpIn.Seek(0, io.SeekStart)
	return &FpGzip{fp: fpIn, rdr: fpIn}, err
}

// WrapPeek is for streams like http bodies which cannot seek. We look
// at the first two bytes through a buffer and only start gzip if they
// are the gzip magic number. A short or empty stream is not an error,
// it is just not compressed.
func WrapPeek(fpIn io.ReadCloser) (*FpGzip, error) {
	br := bufio.NewReader(fpIn)
	b, err := br.Peek(len(gzMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	out := &FpGzip{fp: fpIn, rdr: br}
	if len(b) == len(gzMagic) && b[0] == gzMagic[0] && b[1] == gzMagic[1] {
		if out.zrdr, err = gzip.NewReader(br); err != nil {
			return nil, err
		}
	}
	return out, nil
}
