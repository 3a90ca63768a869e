package jscanpartial

import "unsafe"

// Driver incrementally decodes a JSON document into a value of type T.
// After every call to Feed the value reflects all bytes fed so far.
// A Driver is not safe for concurrent use.
type Driver[T any] struct {
	value    T
	p        parser
	err      error
	finished bool
}

// NewDriver creates a driver decoding into the zero value of T.
// opts can be nil in which case DefaultOptions are applied.
func NewDriver[T any](opts *Options) *Driver[T] {
	var zero T
	return NewDriverFrom(zero, opts)
}

// NewDriverFrom creates a driver decoding into initial.
// opts can be nil in which case DefaultOptions are applied.
func NewDriverFrom[T any](initial T, opts *Options) *Driver[T] {
	if opts == nil {
		opts = DefaultOptions
	}
	d := &Driver[T]{value: initial}
	d.p.init(nodeOf(typeOf[T]()), unsafe.Pointer(&d.value), opts)
	return d
}

// Feed consumes b and returns the updated value.
// Errors are terminal: once Feed or Finish failed all further calls
// fail with the same error and the returned value must be discarded.
// Feeding an empty slice never changes the value.
func (d *Driver[T]) Feed(b []byte) (T, error) { return feedDriver(d, b) }

// FeedString is like Feed but consumes a string.
func (d *Driver[T]) FeedString(s string) (T, error) { return feedDriver(d, s) }

func feedDriver[T any, S []byte | string](d *Driver[T], s S) (T, error) {
	if d.err != nil {
		return d.value, d.err
	}
	if d.finished {
		return d.value, ErrAlreadyFinished
	}
	if err := feed(&d.p, s); err != nil {
		d.err = err
	}
	return d.value, d.err
}

// Finish ends the stream and returns the final value.
// It fails with ErrUnexpectedEOF if the document is incomplete
// unless Options.CompletePartialValues is set.
// Calling Finish more than once fails with ErrAlreadyFinished.
func (d *Driver[T]) Finish() (T, error) {
	if d.err != nil {
		return d.value, d.err
	}
	if d.finished {
		return d.value, ErrAlreadyFinished
	}
	d.finished = true
	if !d.p.finish() && !d.p.opts.CompletePartialValues {
		d.err = ErrorParse{Err: ErrUnexpectedEOF, Index: d.p.index}
		return d.value, d.err
	}
	return d.value, nil
}

// Value returns the current value.
func (d *Driver[T]) Value() T { return d.value }
