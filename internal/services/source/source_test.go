package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
)

var samplePDF = []byte("%PDF-1.4\n% pretend this is a document\n%%EOF\n")

func readBlob(t *testing.T, b *Blob) []byte {
	t.Helper()
	data, err := b.ReadAll(1 << 20)
	require.NoError(t, err)
	return data
}

func TestNormalize_Bytes(t *testing.T) {
	n := NewNormalizer(0)

	blob, err := n.Normalize(context.Background(), Bytes(samplePDF))
	require.NoError(t, err)

	assert.Equal(t, PDFContentType, blob.ContentType)
	assert.Equal(t, int64(len(samplePDF)), blob.Size)
	assert.Equal(t, samplePDF, readBlob(t, blob))
}

func TestNormalize_File(t *testing.T) {
	n := NewNormalizer(0)
	r := bytes.NewReader(samplePDF)

	blob, err := n.Normalize(context.Background(), File{R: r, Name: "doc.pdf"})
	require.NoError(t, err)

	// The handle is passed straight through, not copied.
	assert.Same(t, r, blob.Body.(*bytes.Reader))
	assert.Equal(t, samplePDF, readBlob(t, blob))
}

func TestNormalize_URLAndURLRef(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(samplePDF)
	}))
	defer srv.Close()

	n := NewNormalizerWithClient(srv.Client())

	tests := []struct {
		name string
		src  Source
	}{
		{"url string", URL(srv.URL + "/doc.pdf")},
		{"object with url field", URLRef{URL: srv.URL + "/doc.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := n.Normalize(context.Background(), tt.src)
			require.NoError(t, err)
			assert.Equal(t, "application/pdf", blob.ContentType)
			assert.Equal(t, samplePDF, readBlob(t, blob))
		})
	}
}

func TestNormalize_FetchFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	n := NewNormalizerWithClient(srv.Client())

	_, err := n.Normalize(context.Background(), URL(srv.URL+"/missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFetch))
	assert.Equal(t, models.KindFetch, models.KindOf(err))
	assert.Equal(t, 1, attempts, "fetch must not retry")

	// Nothing is listening on a closed server.
	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	_, err = n.Normalize(context.Background(), URLRef{URL: closed.URL})
	assert.True(t, errors.Is(err, models.ErrFetch))
}

func TestNormalize_InvalidInput(t *testing.T) {
	n := NewNormalizer(0)

	tests := []struct {
		name string
		src  Source
	}{
		{"nil source", nil},
		{"empty url", URL("")},
		{"blank url ref", URLRef{URL: "   "}},
		{"relative url", URL("docs/file.pdf")},
		{"nil file handle", File{Name: "x.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := n.Normalize(context.Background(), tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestBlob_ReadAllLimit(t *testing.T) {
	blob := &Blob{Body: bytes.NewReader(make([]byte, 11))}
	_, err := blob.ReadAll(10)
	assert.Error(t, err)

	blob = &Blob{Body: bytes.NewReader(make([]byte, 10))}
	data, err := blob.ReadAll(10)
	require.NoError(t, err)
	assert.Len(t, data, 10)
}

func TestBlob_ReadAllError(t *testing.T) {
	blob := &Blob{Body: io.MultiReader(bytes.NewReader([]byte("%PDF")), errReader{})}
	_, err := blob.ReadAll(1 << 10)
	assert.Error(t, err)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestSourceKinds(t *testing.T) {
	assert.Equal(t, "bytes", Bytes(nil).Kind())
	assert.Equal(t, "file", File{}.Kind())
	assert.Equal(t, "url", URL("").Kind())
	assert.Equal(t, "url_ref", URLRef{}.Kind())
}

func TestPublicNormalizer_RefusesInternalAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(samplePDF)
	}))
	defer srv.Close()

	blob, err := NewPublicNormalizer(0).Normalize(context.Background(), URL(srv.URL))
	require.Error(t, err)
	assert.Nil(t, blob)
	assert.True(t, errors.Is(err, models.ErrFetch))
	assert.Contains(t, err.Error(), "non-public address")
	assert.EqualValues(t, 0, hits.Load(), "no request reaches the server")
}

func TestIsPublicAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"8.8.8.8", true},
		{"2606:4700::1111", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::ffff:127.0.0.1", false},
		{"224.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPublicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}
