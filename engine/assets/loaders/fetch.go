package loaders

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// ProgressFunc is called while an asset streams in. total is -1 when the
// size is unknown.
type ProgressFunc func(name string, loaded, total int64)

func isRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Open returns a reader over a local file or an http(s) URL together with
// its size, or -1 when the size is not known up front.
func Open(ctx context.Context, client *http.Client, path string) (io.ReadCloser, int64, error) {
	if isRemote(path) {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, 0, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, 0, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, 0, fmt.Errorf("fetch %s: unexpected status %s", path, resp.Status)
		}
		return resp.Body, resp.ContentLength, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

type progressReader struct {
	r      io.Reader
	name   string
	loaded int64
	total  int64
	onRead ProgressFunc
}

func newProgressReader(r io.Reader, name string, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, name: name, total: total, onRead: fn}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.loaded += int64(n)
		if pr.onRead != nil {
			pr.onRead(pr.name, pr.loaded, pr.total)
		}
	}
	return n, err
}
