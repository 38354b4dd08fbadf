package fileaccess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_FetchBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	data, err := Local{}.FetchBytes(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	_, err = Local{MaxBytes: 3}.FetchBytes(context.Background(), path)
	require.ErrorIs(t, err, common.ErrInvalidArgument)

	_, err = Local{}.FetchBytes(context.Background(), filepath.Join(dir, "missing.pdf"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRouter_DispatchesByScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "local.pdf")
	require.NoError(t, os.WriteFile(path, []byte("local bytes"), 0o644))

	r := NewRouter(0, nil)

	data, err := r.FetchBytes(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "remote bytes", string(data))

	data, err = r.FetchBytes(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "local bytes", string(data))

	_, err = r.FetchBytes(context.Background(), srv.URL+"/missing.pdf")
	require.Error(t, err)
}

func TestHTTP_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	_, err := HTTP{MaxBytes: 5}.FetchBytes(context.Background(), srv.URL)
	require.ErrorIs(t, err, common.ErrInvalidArgument)
}
