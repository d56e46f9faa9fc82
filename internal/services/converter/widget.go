package converter

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
	"github.com/Shimizu-Technology/pdf2json/internal/services/emitter"
	"github.com/Shimizu-Technology/pdf2json/internal/services/source"
)

// State is what a Widget is doing right now.
type State int

const (
	Idle State = iota
	Converting
)

func (s State) String() string {
	if s == Converting {
		return "converting"
	}
	return "idle"
}

// Widget is a one-button converter: it is bound to a single source and a
// single place to save the result, and every Trigger converts that source
// again. Failures are logged and never reach the caller.
type Widget struct {
	conv      *Converter
	src       source.Source
	deliverer emitter.Deliverer
	log       zerolog.Logger

	// Go Pattern: An atomic counter instead of a mutex-guarded bool. Two
	// overlapping triggers both count, so State stays Converting until the
	// last one returns.
	inFlight atomic.Int32
}

// NewWidget binds src and d to a converter.
func NewWidget(conv *Converter, src source.Source, d emitter.Deliverer, log zerolog.Logger) *Widget {
	return &Widget{conv: conv, src: src, deliverer: d, log: log}
}

// State reports Converting while any Trigger is running.
func (w *Widget) State() State {
	if w.inFlight.Load() > 0 {
		return Converting
	}
	return Idle
}

// Trigger converts the bound source and delivers converted.json. Nothing is
// returned: a failure only goes to the log and nothing is delivered. Caller
// cancellation is ignored once the trigger has started.
func (w *Widget) Trigger(ctx context.Context) {
	w.inFlight.Add(1)
	defer w.inFlight.Add(-1)

	ctx = context.WithoutCancel(ctx)
	id := uuid.NewString()

	artifact, err := w.conv.ConvertID(ctx, id, w.src)
	if err != nil {
		w.log.Error().
			Err(err).
			Str("conversion_id", id).
			Str("kind", string(models.KindOf(err))).
			Msg("Error converting PDF to JSON")
		return
	}

	if err := w.deliverer.Deliver(ctx, artifact); err != nil {
		w.log.Error().Err(err).Str("conversion_id", id).Msg("Error saving converted.json")
	}
}
