// Package source turns the different ways a PDF can be handed to us into a
// single Blob the extractor can read.
//
// Go Pattern: A "sealed" interface (one unexported method) gives us a sum
// type. Only this package can add variants, so the type switch in
// Normalize covers every case that can exist.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
)

// PDFContentType is the MIME type given to byte-buffer input.
const PDFContentType = "application/pdf"

// Source is one of Bytes, File, URL or URLRef.
type Source interface {
	// Kind is a short label for logs: "bytes", "file", "url", "url_ref".
	Kind() string
	isSource()
}

// Bytes is an in-memory PDF.
type Bytes []byte

// File is an open file handle. The caller keeps ownership and closes it.
type File struct {
	R    io.Reader
	Name string
}

// URL is a string to fetch with a single GET.
type URL string

// URLRef is an object that carries a URL field, e.g. {"url": "..."}.
type URLRef struct {
	URL string `json:"url"`
}

func (Bytes) Kind() string  { return "bytes" }
func (File) Kind() string   { return "file" }
func (URL) Kind() string    { return "url" }
func (URLRef) Kind() string { return "url_ref" }

func (Bytes) isSource()  {}
func (File) isSource()   {}
func (URL) isSource()    {}
func (URLRef) isSource() {}

// Blob is the normalized payload handed to the extractor.
type Blob struct {
	ContentType string
	Size        int64 // -1 when unknown (file handles)
	Body        io.Reader
}

// ReadAll reads the whole blob, refusing anything larger than max bytes.
func (b *Blob) ReadAll(max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(b.Body, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("blob exceeds %d bytes", max)
	}
	return data, nil
}

// Normalizer fetches remote sources and wraps local ones.
type Normalizer struct {
	client *http.Client
}

// NewNormalizer creates a Normalizer. A zero timeout leaves the client
// without one, so a slow server is waited on for as long as it takes.
func NewNormalizer(timeout time.Duration) *Normalizer {
	return &Normalizer{client: &http.Client{Timeout: timeout}}
}

// ErrBlockedAddress is returned when a fetch would connect to a loopback,
// private, link-local or otherwise internal address.
var ErrBlockedAddress = errors.New("refusing to connect to a non-public address")

// NewPublicNormalizer is NewNormalizer with a dialer that only connects to
// public addresses. The check runs on the resolved IP at connect time, so a
// hostname that resolves to 127.0.0.1 is refused as well, and so is every
// redirect hop.
func NewPublicNormalizer(timeout time.Duration) *Normalizer {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   refuseInternal,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &Normalizer{client: &http.Client{Timeout: timeout, Transport: transport}}
}

// refuseInternal is a net.Dialer Control hook; address is "ip:port".
func refuseInternal(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !IsPublicAddr(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

// IsPublicAddr reports whether ip is a routable public unicast address.
func IsPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsValid() &&
		ip.IsGlobalUnicast() &&
		!ip.IsPrivate() &&
		!ip.IsLoopback() &&
		!ip.IsLinkLocalUnicast() &&
		!cgnat.Contains(ip)
}

// cgnat is the shared address space (RFC 6598), internal in practice.
var cgnat = netip.MustParsePrefix("100.64.0.0/10")

// NewNormalizerWithClient lets tests and callers supply their own client.
func NewNormalizerWithClient(client *http.Client) *Normalizer {
	return &Normalizer{client: client}
}

// Normalize produces a Blob for src or fails. Remote sources get exactly one
// attempt.
func (n *Normalizer) Normalize(ctx context.Context, src Source) (*Blob, error) {
	switch s := src.(type) {
	case File:
		if s.R == nil {
			return nil, models.NewConversionError(models.KindInvalidInput, "file", fmt.Errorf("nil file handle"))
		}
		return &Blob{ContentType: PDFContentType, Size: -1, Body: s.R}, nil
	case Bytes:
		return &Blob{ContentType: PDFContentType, Size: int64(len(s)), Body: bytes.NewReader(s)}, nil
	case URL:
		return n.fetch(ctx, string(s))
	case URLRef:
		return n.fetch(ctx, s.URL)
	default:
		return nil, models.NewConversionError(models.KindInvalidInput, "normalize", fmt.Errorf("unsupported source %T", src))
	}
}

// fetch performs the GET and buffers the body, like a browser's res.blob().
func (n *Normalizer) fetch(ctx context.Context, raw string) (*Blob, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, models.NewConversionError(models.KindInvalidInput, "fetch", fmt.Errorf("empty URL"))
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, models.NewConversionError(models.KindInvalidInput, "fetch "+raw, fmt.Errorf("not an absolute URL"))
	}

	op := "fetch " + u.Redacted()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, models.NewConversionError(models.KindFetch, op, err)
	}
	req.Header.Set("Accept", PDFContentType+", */*")
	req.Header.Set("User-Agent", "pdf2json/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, models.NewConversionError(models.KindFetch, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, models.NewConversionError(models.KindFetch, op, fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewConversionError(models.KindFetch, op, fmt.Errorf("reading body: %w", err))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = PDFContentType
	}

	return &Blob{ContentType: contentType, Size: int64(len(data)), Body: bytes.NewReader(data)}, nil
}
