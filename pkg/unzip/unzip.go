package unzip

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/KretovDmitry/storefront/pkg/logger"
)

// compressReader implements ReadCloser interface
// and replaces Read method with a decompression one.
type compressReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func newCompressReader(r io.ReadCloser) (*compressReader, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("new gzip reader: %w", err)
	}

	return &compressReader{r: r, zr: zr}, nil
}

func (c *compressReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

func (c *compressReader) Close() error {
	if err := c.r.Close(); err != nil {
		return fmt.Errorf("close failed: %w", err)
	}
	return c.zr.Close()
}

// Middleware transparently decompresses gzip encoded request bodies,
// e.g. form posts from the admin order screen.
func Middleware(logger logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Content-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			cr, err := newCompressReader(r.Body)
			if err != nil {
				logger.With(r.Context()).Errorf("unzip request body: %s", err)
				http.Error(w, "malformed gzip body", http.StatusBadRequest)
				return
			}
			defer cr.Close()

			r.Body = cr
			r.Header.Del("Content-Encoding")
			r.ContentLength = -1

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(f)
	}
}
