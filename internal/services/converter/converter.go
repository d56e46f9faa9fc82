// Package converter runs the three conversion stages in order:
// normalize the source, extract the text, encode the JSON artifact.
package converter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/pdf2json/internal/services/emitter"
	"github.com/Shimizu-Technology/pdf2json/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
)

// Converter turns any Source into a converted.json artifact. It keeps no
// per-conversion state, so it is safe for concurrent use.
type Converter struct {
	normalizer *source.Normalizer
	extractor  *pdf.Extractor
	log        zerolog.Logger
}

// New creates a Converter from its stages.
func New(n *source.Normalizer, e *pdf.Extractor, log zerolog.Logger) *Converter {
	return &Converter{normalizer: n, extractor: e, log: log}
}

// Convert runs a conversion under a fresh conversion ID.
func (c *Converter) Convert(ctx context.Context, src source.Source) (*emitter.Artifact, error) {
	return c.ConvertID(ctx, uuid.NewString(), src)
}

// ConvertID is Convert with a caller-chosen conversion ID, so the ID can be
// echoed back to the client before the work starts.
func (c *Converter) ConvertID(ctx context.Context, id string, src source.Source) (*emitter.Artifact, error) {
	log := c.log.With().Str("conversion_id", id).Str("source", src.Kind()).Logger()
	start := time.Now()

	blob, err := c.normalizer.Normalize(ctx, src)
	if err != nil {
		return nil, err
	}

	result, err := c.extractor.ExtractBlob(blob)
	if err != nil {
		return nil, err
	}

	artifact, err := emitter.NewArtifact(result.Text)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("pages", result.PageCount).
		Int("words", pdf.CountWords(result.Text)).
		Int("bytes", len(artifact.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("conversion complete")

	return artifact, nil
}
