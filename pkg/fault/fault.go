// Package fault provides a recoverable-error aggregator used across every
// fan-out stage of the sync pipelines: a single bad row, parser, or batch
// item should not abort the whole cycle.
package fault

import (
	"context"
	"sync"

	"github.com/alcionai/clues"
	"golang.org/x/exp/slices"

	"github.com/floorsync/core/internal/logger"
)

// Bus aggregates recoverable errors and skipped items across a single
// pipeline cycle or batch. It is safe for concurrent use.
type Bus struct {
	mu *sync.Mutex

	// failure is the non-recoverable error for this bus, if any. Once set,
	// callers are expected to abandon the in-flight cycle.
	failure error

	// recoverable accumulates errors that did not stop processing.
	recoverable []error

	// skipped accumulates items that were deliberately not processed.
	skipped []Skipped

	// failFast promotes the first recoverable error to failure.
	failFast bool
}

// Skipped records an item that was permanently, and deliberately, not
// processed (e.g. a spreadsheet row with a non-numeric stock column).
type Skipped struct {
	Namespace string
	ID        string
	Reason    string
}

// New constructs an empty Bus.
func New(failFast bool) *Bus {
	return &Bus{
		mu:          &sync.Mutex{},
		recoverable: []error{},
		failFast:    failFast,
	}
}

// Fail sets the bus's non-recoverable error. If one is already set, err is
// folded into the recoverable slice instead, so it is not silently dropped.
func (b *Bus) Fail(err error) *Bus {
	if err == nil {
		return b
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.setFailure(err)
}

func (b *Bus) setFailure(err error) *Bus {
	if b.failure == nil {
		b.failure = err
		return b
	}

	b.recoverable = append(b.recoverable, err)

	return b
}

// AddRecoverable logs and records an error that did not stop processing of
// the current batch.
func (b *Bus) AddRecoverable(ctx context.Context, err error) {
	if err == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	isFail := b.addRecoverableErr(err)

	log := logger.Ctx(ctx)
	if isFail {
		log.Errorw("recoverable error promoted to failure", "error", err)
	} else {
		log.Infow("recoverable error", "error", err)
	}
}

func (b *Bus) addRecoverableErr(err error) bool {
	var isFail bool

	if b.failure == nil && b.failFast {
		b.setFailure(err)
		isFail = true
	}

	b.recoverable = append(b.recoverable, err)

	return isFail
}

// AddSkip records a deliberately-skipped item.
func (b *Bus) AddSkip(ctx context.Context, s Skipped) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.skipped = append(b.skipped, s)

	logger.Ctx(ctx).Infow("skipped item", "namespace", s.Namespace, "id", s.ID, "reason", s.Reason)
}

// Failure returns the bus's non-recoverable error, or nil.
func (b *Bus) Failure() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.failure
}

// Recovered returns a copy of the recoverable errors collected so far.
func (b *Bus) Recovered() []error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.recoverable)
}

// Skipped returns a copy of the skipped items collected so far.
func (b *Bus) Skipped() []Skipped {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.skipped)
}

// Len returns the total count of recoverable errors and skipped items.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.recoverable) + len(b.skipped)
}

// Wrap is a thin helper around clues.Wrap, kept here so call sites that
// already import fault don't need a second import for the common case of
// annotating an error before handing it to AddRecoverable.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}

	return clues.Wrap(err, msg)
}
