// Package pdb goes to a pdb web site or a local mirror, gets the header
// of an entry and turns it into something we can send out. Results are
// memoised in a text cache, since headers never change.
//
// The rcsb will give us just the header if we ask for
//   https://files.rcsb.org/pub/pdb/... or {base}/1ABC.pdb?headerOnly=YES
// We only want the title, compnd and source lines from it.
package pdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/andrew-torda/pdbmap/pdb/cmmn"
	"github.com/andrew-torda/pdbmap/pdb/header"
	"github.com/andrew-torda/pdbmap/pdb/zwrap"
)

// DefaultBase is where the rcsb used to serve pdb format files.
const DefaultBase = "https://www.rcsb.org/pdb/files"

const (
	dfltTimeout = 20 * time.Second
	dfltRetries = 2
	dfltBackoff = 500 * time.Millisecond
	userAgent   = "pdbmap/1.0"
	maxLine     = 1024 * 1024 // longest line we will put up with
)

// Source is where header text comes from. Header returns the title,
// compnd and source lines for one pdb id.
type Source interface {
	Header(ctx context.Context, id string) (string, error)
}

// FetchError says we could not get the header for an id.
type FetchError struct {
	ID        string
	URL       string
	Src       byte // cmmn.FileSrc or cmmn.HTTPSrc
	Status    int  // http status, if we got that far
	Attempts  int
	Transient bool // worth trying again later
	Err       error
}

func (e *FetchError) Error() string {
	s := fmt.Sprintf("fetching %s from %s %s", e.ID, cmmn.SrcName(e.Src), e.URL)
	if e.Attempts > 1 {
		s += fmt.Sprintf(" (%d attempts)", e.Attempts)
	}
	return s + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }

// isHeaderLine says if a line is one of the records we keep.
func isHeaderLine(line string) bool {
	n := len(line)
	if n > 6 {
		n = 6
	}
	lc := strings.ToLower(line[:n])
	for _, r := range header.Records {
		if strings.HasPrefix(lc, r) {
			return true
		}
	}
	return false
}

// HeaderLines reads a whole pdb file or header and returns the title,
// compnd and source lines, each followed by a newline. We read to the
// end, even though the lines we want come first.
func HeaderLines(r io.Reader) (string, error) {
	var sb strings.Builder
	scnnr := bufio.NewScanner(r)
	scnnr.Buffer(make([]byte, 0, 4096), maxLine)
	for scnnr.Scan() {
		if line := scnnr.Text(); isHeaderLine(line) {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	if err := scnnr.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// HTTPSource gets headers from a web server. Each attempt has its own
// timeout. Network trouble, 429 and 5xx answers are tried again after
// a pause which grows with each attempt. Anything else, like a 404,
// is final.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration // per attempt. 0 means no limit
	Retries int           // attempts after the first
	Backoff time.Duration // pause before retry n is n * Backoff
	Log     *log.Logger
}

// NewHTTPSource has sensible defaults. An empty base gives DefaultBase.
func NewHTTPSource(base string, logger *log.Logger) *HTTPSource {
	if base == "" {
		base = DefaultBase
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPSource{
		BaseURL: base,
		Client:  &http.Client{},
		Timeout: dfltTimeout,
		Retries: dfltRetries,
		Backoff: dfltBackoff,
		Log:     logger,
	}
}

// URL is {base}/{ID}.pdb?headerOnly=YES with the id in upper case.
func (s *HTTPSource) URL(id string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/" + strings.ToUpper(id) + ".pdb?headerOnly=YES"
}

// transientStatus is true for answers where a later try might work
func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// attempt makes one request. The body is read completely inside the
// timeout, since a connection can also die half way through.
func (s *HTTPSource) attempt(ctx context.Context, url string) (text string, status int, transient bool, err error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, false, err
	}
	req.Header.Set("User-Agent", userAgent)
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", 0, true, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode, transientStatus(resp.StatusCode), errors.New("got " + resp.Status)
	}
	body, err := zwrap.WrapPeek(resp.Body)
	if err != nil {
		return "", resp.StatusCode, true, err
	}
	defer body.Close()
	s.Log.Debug("reading header", "url", url, "gzip", body.Compressed())
	if text, err = HeaderLines(body); err != nil {
		return "", resp.StatusCode, true, err
	}
	return text, resp.StatusCode, false, nil
}

// Header gets the header lines for one id, trying again on
// transient failures.
func (s *HTTPSource) Header(ctx context.Context, id string) (string, error) {
	url := s.URL(id)
	for n := 1; ; n++ {
		text, status, transient, err := s.attempt(ctx, url)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil { // caller gave up, not the server
			transient = false
		}
		ferr := &FetchError{ID: id, URL: url, Src: cmmn.HTTPSrc, Status: status,
			Attempts: n, Transient: transient, Err: err}
		if !transient || n > s.Retries {
			return "", ferr
		}
		pause := time.Duration(n) * s.Backoff
		s.Log.Debug("retrying header fetch", "id", id, "attempt", n, "pause", pause, "err", err)
		select {
		case <-ctx.Done():
			ferr.Transient = false
			return "", ferr
		case <-time.After(pause):
		}
	}
}
