// Package emitter serializes extracted text to JSON and hands the result to
// whatever environment saves it (an HTTP response, a directory, stdout).
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// Filename is the name every artifact is saved under.
	Filename = "converted.json"
	// ContentType is the MIME type of every artifact.
	ContentType = "application/json"
)

// Record is the only thing we ever write: {"text": "..."}.
type Record struct {
	Text string `json:"text"`
}

// Artifact is a ready-to-save JSON file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Encode serializes text as a Record with two-space indentation. HTML
// characters are left alone and there is no trailing newline, so the same
// text always yields the same bytes.
func Encode(text string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Record{Text: text}); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// NewArtifact encodes text into a converted.json artifact.
func NewArtifact(text string) (*Artifact, error) {
	data, err := Encode(text)
	if err != nil {
		return nil, err
	}
	return &Artifact{Filename: Filename, ContentType: ContentType, Data: data}, nil
}

// Deliverer hands an artifact to the caller's environment for saving.
// Go Pattern: Small interface defined where it's used; the HTTP handler, the
// CLI and tests each bring their own implementation.
type Deliverer interface {
	Deliver(ctx context.Context, a *Artifact) error
}

// DeliverFunc adapts a function to the Deliverer interface.
type DeliverFunc func(ctx context.Context, a *Artifact) error

// Deliver calls f(ctx, a).
func (f DeliverFunc) Deliver(ctx context.Context, a *Artifact) error {
	return f(ctx, a)
}

// WriterDeliverer writes the artifact bytes to W.
type WriterDeliverer struct {
	W io.Writer
}

// Deliver writes the JSON followed by a newline.
func (d WriterDeliverer) Deliver(_ context.Context, a *Artifact) error {
	if _, err := d.W.Write(a.Data); err != nil {
		return err
	}
	_, err := io.WriteString(d.W, "\n")
	return err
}

// DirDeliverer saves the artifact into Dir under its filename. An existing
// file with the same name is replaced.
type DirDeliverer struct {
	Dir string
}

// Deliver writes a temp file in Dir and renames it into place. The temp
// file is removed whether or not the rename happened.
func (d DirDeliverer) Deliver(_ context.Context, a *Artifact) error {
	dir := d.Dir
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, ".converted-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	// CreateTemp opens with 0600; the saved file is an ordinary download.
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, a.Filename)); err != nil {
		return fmt.Errorf("failed to save %s: %w", a.Filename, err)
	}
	return nil
}
