// Package bench compares the incremental driver against
// full-document JSON decoders.
package bench

import (
	json "encoding/json"

	jsonv2 "github.com/go-json-experiment/json"
	goccy "github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
	ffjson "github.com/pquerna/ffjson/ffjson"
	segmentio "github.com/segmentio/encoding/json"

	jscanpartial "github.com/romshark/jscan-partial"
)

// Decoder is a named decoding function producing a T.
type Decoder[T any] struct {
	Name   string
	Decode func(in []byte) (T, error)
}

// ChunkSizes are the chunk sizes the driver is fed with
// by the decoders returned from Decoders, 0 feeds the whole input at once.
var ChunkSizes = []int{1, 16, 0}

// Decoders returns the reflection based decoders of T
// followed by the driver fed in chunks of ChunkSizes.
func Decoders[T any]() []Decoder[T] {
	d := []Decoder[T]{
		{Name: "std", Decode: unmarshal[T](json.Unmarshal)},
		{Name: "jsoniter", Decode: unmarshal[T](
			jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		)},
		{Name: "goccy", Decode: unmarshal[T](goccy.Unmarshal)},
		{Name: "jsonv2", Decode: unmarshal[T](func(in []byte, v any) error {
			return jsonv2.Unmarshal(in, v)
		})},
		{Name: "segmentio", Decode: unmarshal[T](segmentio.Unmarshal)},
		{Name: "ffjson", Decode: unmarshal[T](ffjson.Unmarshal)},
	}
	for _, chunkSize := range ChunkSizes {
		chunkSize := chunkSize
		name := "jscanpartial/whole"
		switch chunkSize {
		case 0:
		case 1:
			name = "jscanpartial/bytewise"
		default:
			name = "jscanpartial/chunked"
		}
		d = append(d, Decoder[T]{Name: name, Decode: func(in []byte) (T, error) {
			return Feed[T](in, chunkSize)
		}})
	}
	return d
}

func unmarshal[T any](fn func([]byte, any) error) func([]byte) (T, error) {
	return func(in []byte) (v T, err error) {
		err = fn(in, &v)
		return v, err
	}
}

// Feed decodes in by feeding it to a new driver in chunks of chunkSize
// bytes. A chunkSize < 1 feeds all of in at once.
func Feed[T any](in []byte, chunkSize int) (v T, err error) {
	if chunkSize < 1 {
		chunkSize = len(in)
	}
	d := jscanpartial.NewDriver[T](nil)
	for len(in) > 0 {
		n := min(chunkSize, len(in))
		if _, err = d.Feed(in[:n]); err != nil {
			return v, err
		}
		in = in[n:]
	}
	return d.Finish()
}

// Snapshots feeds in chunks of chunkSize bytes and calls fn with
// the value after every chunk. Composite parts of the value are shared
// between calls and must not be retained by fn.
func Snapshots[T any](in []byte, chunkSize int, fn func(T)) error {
	d := jscanpartial.NewDriver[T](nil)
	for len(in) > 0 {
		n := min(chunkSize, len(in))
		v, err := d.Feed(in[:n])
		if err != nil {
			return err
		}
		fn(v)
		in = in[n:]
	}
	_, err := d.Finish()
	return err
}
