package unzip_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KretovDmitry/storefront/pkg/logger"
	"github.com/KretovDmitry/storefront/pkg/unzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUnzip(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		_, err := w.Write([]byte(r.PostFormValue("status")))
		require.NoError(t, err)
	})

	form := []byte("status=shipped")

	tests := []struct {
		name            string
		contentEncoding string
		payload         []byte
		wantCode        int
		wantBody        string
	}{
		{
			name:            "gzip",
			contentEncoding: "gzip",
			payload:         compress(form),
			wantCode:        http.StatusOK,
			wantBody:        "shipped",
		},
		{
			name:     "plain",
			payload:  form,
			wantCode: http.StatusOK,
			wantBody: "shipped",
		},
		{
			name:            "broken gzip",
			contentEncoding: "gzip",
			payload:         form,
			wantCode:        http.StatusBadRequest,
			wantBody:        "malformed gzip body\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(tt.payload))
			r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.contentEncoding != "" {
				r.Header.Set("Content-Encoding", tt.contentEncoding)
			}
			w := httptest.NewRecorder()

			unzip.Middleware(logger.NewWithZap(zap.NewNop()))(echo).ServeHTTP(w, r)

			result := w.Result()
			defer result.Body.Close()

			body, err := io.ReadAll(result.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, result.StatusCode)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func compress(data []byte) []byte {
	var b bytes.Buffer
	wr := gzip.NewWriter(&b)
	if _, err := wr.Write(data); err != nil {
		panic(err)
	}
	wr.Close() // DO NOT DEFER HERE

	return b.Bytes()
}
