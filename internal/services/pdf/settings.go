package pdf

import (
	"errors"
	"sync"
)

// Settings is the process-wide parser configuration. It is fixed by the
// first call to Init (or the first extractor created, whichever comes first)
// and never changes afterwards.
type Settings struct {
	// MaxPDFSize caps how many bytes of a blob are read into memory.
	MaxPDFSize int64
}

// DefaultSettings is used when Init is never called.
var DefaultSettings = Settings{MaxPDFSize: 50 << 20}

// ErrAlreadyInitialized is returned by Init once the settings are frozen.
var ErrAlreadyInitialized = errors.New("pdf: settings already initialized")

var (
	settingsOnce sync.Once
	settings     Settings
)

// Init freezes the parser settings. Call it once during startup, before the
// first conversion. Zero fields fall back to DefaultSettings.
func Init(s Settings) error {
	applied := false
	settingsOnce.Do(func() {
		if s.MaxPDFSize <= 0 {
			s.MaxPDFSize = DefaultSettings.MaxPDFSize
		}
		settings = s
		applied = true
	})
	if !applied {
		return ErrAlreadyInitialized
	}
	return nil
}

// CurrentSettings returns the frozen settings, freezing the defaults if Init
// was never called.
func CurrentSettings() Settings {
	settingsOnce.Do(func() {
		settings = DefaultSettings
	})
	return settings
}
