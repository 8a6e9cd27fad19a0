package texture

import (
	"context"
	"image"
	"sync"
)

// Handle is a texture that may still be loading. A handle resolves once,
// either with an image or with an error; geometry that references it
// never changes when it resolves.
type Handle struct {
	ref  string
	done chan struct{}

	mu        sync.Mutex
	img       *image.NRGBA
	err       error
	callbacks []func(*Handle)
}

func newHandle(ref string) *Handle {
	return &Handle{ref: ref, done: make(chan struct{})}
}

// Resolved returns a handle that is already loaded with img.
func Resolved(ref string, img *image.NRGBA) *Handle {
	h := newHandle(ref)
	h.resolve(img, nil)
	return h
}

// Ref returns the reference the handle was requested with.
func (h *Handle) Ref() string {
	return h.ref
}

// Image returns the decoded image once available.
func (h *Handle) Image() (image.Image, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.img == nil {
		return nil, false
	}
	return h.img, true
}

// NRGBA returns the decoded image for direct sampling, or nil.
func (h *Handle) NRGBA() *image.NRGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.img
}

// Ready reports whether the load has finished, successfully or not.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Err returns the load error, if any.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Wait blocks until the handle resolves or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnReady registers fn to run when the handle resolves. If it already
// has, fn runs immediately on the caller's goroutine.
func (h *Handle) OnReady(fn func(*Handle)) {
	h.mu.Lock()
	if !h.Ready() {
		h.callbacks = append(h.callbacks, fn)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	fn(h)
}

func (h *Handle) resolve(img *image.NRGBA, err error) {
	h.mu.Lock()
	h.img, h.err = img, err
	callbacks := h.callbacks
	h.callbacks = nil
	close(h.done)
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(h)
	}
}
