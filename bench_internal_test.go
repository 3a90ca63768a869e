package jscanpartial

import (
	"reflect"
	"runtime"
	"testing"
)

func BenchmarkNewDriver(b *testing.B) {
	b.Run("[][]bool", func(b *testing.B) {
		var d *Driver[[][]bool]
		for n := 0; n < b.N; n++ {
			d = NewDriver[[][]bool](nil)
		}
		runtime.KeepAlive(d)
	})
}

func BenchmarkNodeOf(b *testing.B) {
	type S struct {
		Name  string            `json:"name"`
		Tags  []string          `json:"tags"`
		Attrs map[string]string `json:"attrs"`
		Next  *S                `json:"next"`
	}
	t := reflect.TypeOf(S{})
	_ = nodeOf(t)
	b.ResetTimer()
	var n *node
	for i := 0; i < b.N; i++ {
		n = nodeOf(t)
	}
	runtime.KeepAlive(n)
}

func BenchmarkFeedNumber(b *testing.B) {
	input := []byte(`[123456789,-0.000123,1.5e300,42]`)
	b.SetBytes(int64(len(input)))
	for i := 0; i < b.N; i++ {
		d := NewDriver[[]float64](nil)
		for j := range input {
			if _, err := d.Feed(input[j : j+1]); err != nil {
				b.Fatal(err)
			}
		}
	}
}
