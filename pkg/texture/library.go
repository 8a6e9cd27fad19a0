package texture

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// LoadTimeout bounds a single background load.
const LoadTimeout = 30 * time.Second

// Preset names a bundled board material.
type Preset string

const (
	Cardboard  Preset = "cardboard"
	Paper      Preset = "paper"
	Pattern    Preset = "pattern"
	Corrugated Preset = "corrugated" // exposed flute edge of the mid layer
)

// presetFiles maps presets to files under the loader root.
var presetFiles = map[Preset]string{
	Cardboard:  "cardboard.jpg",
	Paper:      "paper.jpg",
	Pattern:    "pattern.jpg",
	Corrugated: "boxmid.jpg",
}

// PresetRef returns the reference a preset loads from and whether the
// preset is known.
func PresetRef(p Preset) (string, bool) {
	f, ok := presetFiles[p]
	return f, ok
}

func isPresetRef(ref string) bool {
	return lo.Contains(lo.Values(presetFiles), ref)
}

// Library is a concurrency-safe cache of texture handles. Each reference
// is loaded at most once; failures are cached and not retried.
type Library struct {
	mu     sync.RWMutex
	items  map[string]*Handle
	loader Loader
	log    zerolog.Logger
}

// NewLibrary creates a library backed by loader.
func NewLibrary(loader Loader, log zerolog.Logger) *Library {
	return &Library{
		items:  make(map[string]*Handle),
		loader: loader,
		log:    log,
	}
}

// Request returns the handle for ref, starting a background load on first
// use. The handle is usable immediately.
func (l *Library) Request(ref string) *Handle {
	// Fast path: read lock
	l.mu.RLock()
	if h, ok := l.items[ref]; ok {
		l.mu.RUnlock()
		return h
	}
	l.mu.RUnlock()

	// Write lock with double-check
	l.mu.Lock()
	if h, ok := l.items[ref]; ok {
		l.mu.Unlock()
		return h
	}
	h := newHandle(ref)
	l.items[ref] = h
	l.mu.Unlock()

	go l.fetch(h)
	return h
}

// Preset returns the handle for a bundled material, or nil for an unknown
// preset.
func (l *Library) Preset(p Preset) *Handle {
	ref, ok := PresetRef(p)
	if !ok {
		return nil
	}
	return l.Request(ref)
}

// Put registers an already decoded image under ref.
func (l *Library) Put(ref string, img *image.NRGBA) *Handle {
	h := Resolved(ref, img)
	l.mu.Lock()
	l.items[ref] = h
	l.mu.Unlock()
	return h
}

// Len returns the number of cached handles.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *Library) fetch(h *Handle) {
	ctx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
	defer cancel()

	start := time.Now()
	img, err := l.loader.Load(ctx, h.ref)
	if err != nil {
		l.log.Warn().Err(err).Str("ref", shortRef(h.ref)).Msg("texture unavailable, using fallback color")
		h.resolve(nil, err)
		return
	}
	l.log.Debug().
		Str("ref", shortRef(h.ref)).
		Int("width", img.Rect.Dx()).
		Int("height", img.Rect.Dy()).
		Dur("took", time.Since(start)).
		Msg("texture loaded")
	h.resolve(img, nil)
}

// shortRef keeps data URIs out of log lines.
func shortRef(ref string) string {
	if len(ref) > 64 {
		return ref[:61] + "..."
	}
	return ref
}
