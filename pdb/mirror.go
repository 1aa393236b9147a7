package pdb

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pdb/zwrap"
)

// MirrorSource reads headers from a local copy of the pdb. We look
// for flat files like 1ABC.pdb or 1abc.pdb.gz and for the divided
// layout of the wwpdb, ab/pdb1abc.ent.gz.
type MirrorSource struct {
	Dir string
}

// candidates lists the places a file might be, in the order we try them.
func (m *MirrorSource) candidates(id string) []string {
	up, lo := strings.ToUpper(id), strings.ToLower(id)
	var ret []string
	for _, base := range []string{up, lo} {
		ret = append(ret, filepath.Join(m.Dir, base+".pdb"), filepath.Join(m.Dir, base+".pdb.gz"))
	}
	if len(lo) == 4 {
		sub := filepath.Join(m.Dir, lo[1:3], "pdb"+lo+".ent")
		ret = append(ret, sub+".gz", sub)
	}
	return ret
}

// mappedFile is a memory mapped file which looks like a ReadSeekCloser.
// Empty files cannot be mapped, so they just get an empty reader.
type mappedFile struct {
	*bytes.Reader
	mm mmap.MMap
	fp *os.File
}

func (mf *mappedFile) Close() error {
	var err error
	if mf.mm != nil {
		err = mf.mm.Unmap()
	}
	return errors.Join(err, mf.fp.Close())
}

func openMapped(fname string) (*mappedFile, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, err
	}
	if info.Size() == 0 {
		return &mappedFile{Reader: bytes.NewReader(nil), fp: fp}, nil
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		fp.Close()
		return nil, err
	}
	return &mappedFile{Reader: bytes.NewReader(mm), mm: mm, fp: fp}, nil
}

// Header finds the file for id and pulls out the header lines. The
// context is not used, since local reads are quick.
func (m *MirrorSource) Header(_ context.Context, id string) (string, error) {
	for _, fname := range m.candidates(id) {
		mf, err := openMapped(fname)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", &FetchError{ID: id, URL: fname, Src: cmmn.FileSrc, Attempts: 1, Err: err}
		}
		rdr, err := zwrap.WrapMaybe(mf)
		if err != nil {
			mf.Close()
			return "", &FetchError{ID: id, URL: fname, Src: cmmn.FileSrc, Attempts: 1, Err: err}
		}
		text, err := HeaderLines(rdr)
		if cerr := rdr.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return "", &FetchError{ID: id, URL: fname, Src: cmmn.FileSrc, Attempts: 1, Err: err}
		}
		return text, nil
	}
	return "", &FetchError{ID: id, URL: m.Dir, Src: cmmn.FileSrc, Attempts: 1, Err: fs.ErrNotExist}
}
