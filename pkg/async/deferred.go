// Package async provides the deferred result handle used at every
// asynchronous boundary of lineup: row views fetched from a provider and
// statistics computed over a ranking's order.
//
// A Deferred is resolved exactly once. Consumers either block with Wait
// (honoring context cancellation) or select on Done. Nothing in the column
// model ever blocks on a Deferred; only the outer layers (CLI, renderers)
// wait for them.
//
// # Usage
//
//	d := async.Go(func() ([]model.Row, error) { return fetch(indices) })
//	rows, err := d.Wait(ctx)
package async

import (
	"context"
	"sync"
)

// Deferred is a promise-like handle for a value computed asynchronously.
// The zero value is not usable; create one with New, Go, Resolved or Rejected.
type Deferred[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

// New creates an unresolved Deferred. The producer resolves it with
// Resolve or Reject; later calls are ignored.
func New[T any]() *Deferred[T] {
	return &Deferred[T]{done: make(chan struct{})}
}

// Go runs fn on a new goroutine and resolves the returned Deferred with its result.
func Go[T any](fn func() (T, error)) *Deferred[T] {
	d := New[T]()
	go func() {
		v, err := fn()
		d.settle(v, err)
	}()
	return d
}

// Resolved returns a Deferred that already holds v.
func Resolved[T any](v T) *Deferred[T] {
	d := New[T]()
	d.Resolve(v)
	return d
}

// Rejected returns a Deferred that already holds err.
func Rejected[T any](err error) *Deferred[T] {
	d := New[T]()
	d.Reject(err)
	return d
}

// Resolve settles the Deferred with v. Only the first settle wins.
func (d *Deferred[T]) Resolve(v T) {
	d.settle(v, nil)
}

// Reject settles the Deferred with err. Only the first settle wins.
func (d *Deferred[T]) Reject(err error) {
	var zero T
	d.settle(zero, err)
}

func (d *Deferred[T]) settle(v T, err error) {
	d.once.Do(func() {
		d.val = v
		d.err = err
		close(d.done)
	})
}

// Done returns a channel that is closed once the Deferred is settled.
func (d *Deferred[T]) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the Deferred already holds a result.
func (d *Deferred[T]) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the Deferred is settled or ctx is done.
func (d *Deferred[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then returns a Deferred holding fn applied to the result of d.
// Errors from d are propagated without calling fn.
func Then[T, U any](d *Deferred[T], fn func(T) (U, error)) *Deferred[U] {
	return Go(func() (U, error) {
		<-d.done
		if d.err != nil {
			var zero U
			return zero, d.err
		}
		return fn(d.val)
	})
}
