package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "simple",
			text: "Hello World",
			want: "{\n  \"text\": \"Hello World\"\n}",
		},
		{
			name: "empty",
			text: "",
			want: "{\n  \"text\": \"\"\n}",
		},
		{
			name: "html characters are not escaped",
			text: "a < b && c > d",
			want: "{\n  \"text\": \"a < b && c > d\"\n}",
		},
		{
			name: "quotes and newlines are escaped",
			text: "say \"hi\"\nbye",
			want: "{\n  \"text\": \"say \\\"hi\\\"\\nbye\"\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			var rec Record
			require.NoError(t, json.Unmarshal(got, &rec))
			assert.Equal(t, tt.text, rec.Text)
		})
	}
}

func TestEncode_Idempotent(t *testing.T) {
	first, err := Encode("Hello World")
	require.NoError(t, err)
	second, err := Encode("Hello World")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestNewArtifact(t *testing.T) {
	a, err := NewArtifact("x")
	require.NoError(t, err)
	assert.Equal(t, "converted.json", a.Filename)
	assert.Equal(t, "application/json", a.ContentType)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(a.Data, &rec))
	assert.Len(t, rec, 1, "exactly one field")
	assert.Equal(t, "x", rec["text"])
}

func TestWriterDeliverer(t *testing.T) {
	a, err := NewArtifact("Hello")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriterDeliverer{W: &buf}.Deliver(context.Background(), a))
	assert.Equal(t, string(a.Data)+"\n", buf.String())
}

func TestDirDeliverer(t *testing.T) {
	dir := t.TempDir()
	a, err := NewArtifact("Hello")
	require.NoError(t, err)

	require.NoError(t, DirDeliverer{Dir: dir}.Deliver(context.Background(), a))

	got, err := os.ReadFile(filepath.Join(dir, "converted.json"))
	require.NoError(t, err)
	assert.Equal(t, a.Data, got)

	info, err := os.Stat(filepath.Join(dir, "converted.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDirDeliverer_ReplacesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "converted.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	a, err := NewArtifact("new")
	require.NoError(t, err)
	require.NoError(t, DirDeliverer{Dir: dir}.Deliver(context.Background(), a))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, a.Data, got)
}

func TestDirDeliverer_TempRemovedOnFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory squatting on the target name makes the rename fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "converted.json"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "converted.json", "keep"), nil, 0o644))

	a, err := NewArtifact("x")
	require.NoError(t, err)
	assert.Error(t, DirDeliverer{Dir: dir}.Deliver(context.Background(), a))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the squatting directory remains")
}

func TestDeliverFunc(t *testing.T) {
	var got *Artifact
	d := DeliverFunc(func(_ context.Context, a *Artifact) error {
		got = a
		return nil
	})

	a := &Artifact{Filename: Filename}
	require.NoError(t, d.Deliver(context.Background(), a))
	assert.Same(t, a, got)
}
