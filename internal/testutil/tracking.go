package testutil

import (
	"errors"
	"sync"

	"github.com/roach88/plotcheck/internal/scene"
)

// TrackingScene wraps a scene and counts Close calls.
//
// Thread-safety: Closes and Close are safe for concurrent use.
type TrackingScene struct {
	scene.Scene

	// CloseErr is returned from every Close call when set.
	CloseErr error

	mu     sync.Mutex
	closes int
}

// Track wraps sc.
func Track(sc scene.Scene) *TrackingScene {
	return &TrackingScene{Scene: sc}
}

// Close records the call and closes the wrapped scene.
func (t *TrackingScene) Close() error {
	t.mu.Lock()
	t.closes++
	t.mu.Unlock()
	return errors.Join(t.Scene.Close(), t.CloseErr)
}

// Closes returns the number of Close calls so far.
func (t *TrackingScene) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

// Closed reports whether Close was called at least once.
func (t *TrackingScene) Closed() bool {
	return t.Closes() > 0
}
