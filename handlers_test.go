package jscanpartial_test

import (
	"testing"

	jscanpartial "github.com/romshark/jscan-partial"

	"github.com/stretchr/testify/require"
)

// number keeps integers and floats in separate slots.
type number struct {
	I int64
	F float64
}

func (*number) RegisterHandlers(h *jscanpartial.Handlers[number]) {
	jscanpartial.Handle(h, func(n *number) *int64 { return &n.I })
	jscanpartial.Handle(h, func(n *number) *float64 { return &n.F })
}

// temperature accepts integers and floats in a single field.
type temperature struct{ Celsius float64 }

func (*temperature) RegisterHandlers(h *jscanpartial.Handlers[temperature]) {
	celsius := func(t *temperature) *float64 { return &t.Celsius }
	jscanpartial.HandleKind(h, jscanpartial.KindInt64, celsius)
	jscanpartial.Handle(h, celsius)
}

// oneOrMany accepts either a single string or an array of strings.
type oneOrMany struct {
	Single string
	Many   []string
}

func (*oneOrMany) RegisterHandlers(h *jscanpartial.Handlers[oneOrMany]) {
	jscanpartial.Handle(h, func(o *oneOrMany) *string { return &o.Single })
	jscanpartial.HandleSlice(h, func(o *oneOrMany) *[]string { return &o.Many })
}

type headers struct{ m map[string]string }

func (*headers) RegisterHandlers(h *jscanpartial.Handlers[headers]) {
	jscanpartial.HandleMap(h, func(x *headers) *map[string]string { return &x.m })
}

type optionalName struct{ v *string }

func (*optionalName) RegisterHandlers(h *jscanpartial.Handlers[optionalName]) {
	jscanpartial.HandleNullable(h, func(o *optionalName) **string { return &o.v })
}

type user struct {
	Name    string
	Age     uint8
	Tags    []string
	Attrs   map[string]int
	Manager *user
}

func (*user) RegisterHandlers(h *jscanpartial.Handlers[user]) {
	jscanpartial.HandleField(h, "name", func(u *user) *string { return &u.Name })
	jscanpartial.HandleField(h, "age", func(u *user) *uint8 { return &u.Age })
	jscanpartial.HandleField(h, "tags", func(u *user) *[]string { return &u.Tags })
	jscanpartial.HandleField(h, "attrs", func(u *user) *map[string]int { return &u.Attrs })
	jscanpartial.HandleField(h, "manager", func(u *user) **user { return &u.Manager })
}

// decodeOK decodes input in chunks of different sizes and makes sure
// all of them produce the same result.
func decodeOK[T any](t *testing.T, input string) (v T) {
	t.Helper()
	for i, chunkSize := range []int{1, 3, len(input) + 1} {
		x, err := decode[T](jscanpartial.DefaultOptions, input, chunkSize)
		require.NoError(t, err, "chunk size: %d", chunkSize)
		if i > 0 {
			require.Equal(t, v, x, "chunk size: %d", chunkSize)
		}
		v = x
	}
	return v
}

func TestHandlersKinds(t *testing.T) {
	require.Equal(t, []jscanpartial.Kind{
		jscanpartial.KindDouble, jscanpartial.KindInt64,
	}, jscanpartial.HandlersOf[number]().Kinds())
	require.Equal(t, []jscanpartial.Kind{
		jscanpartial.KindString,
	}, jscanpartial.HandlersOf[oneOrMany]().Kinds())
	require.Equal(t, []jscanpartial.Kind{
		jscanpartial.KindNull,
	}, jscanpartial.HandlersOf[optionalName]().Kinds())
	require.Equal(t, []jscanpartial.Kind{
		jscanpartial.KindInt32,
	}, jscanpartial.HandlersOf[int32]().Kinds())
	require.Equal(t, []jscanpartial.Kind{
		jscanpartial.KindNull,
	}, jscanpartial.HandlersOf[*int32]().Kinds())
	require.Nil(t, jscanpartial.HandlersOf[user]().Kinds())
}

func TestHandleNumberSlots(t *testing.T) {
	require.Equal(t, number{I: 12}, decodeOK[number](t, `12`))
	require.Equal(t, number{I: 1, F: 1.5}, decodeOK[number](t, `1.5`))
	require.Equal(t, number{I: 2, F: 2000}, decodeOK[number](t, `2e3`))

	requireSequence(t, []number{
		{I: 1},
		{I: 1},
		{I: 1, F: 1.5},
	}, feedBytewise[number](t, jscanpartial.DefaultOptions, `1.5`))

	s := newTestSetup[number]()
	s.testErr(t, "string", `"x"`, jscanpartial.ErrorParse{
		Err: jscanpartial.ErrTypeMismatch, Index: 0,
	})
	s.testErr(t, "object", `{}`, jscanpartial.ErrorParse{
		Err: jscanpartial.ErrTypeMismatch, Index: 0,
	})
}

func TestHandleKind(t *testing.T) {
	require.Equal(t, temperature{Celsius: 21}, decodeOK[temperature](t, `21`))
	require.Equal(t, temperature{Celsius: -3.5}, decodeOK[temperature](t, `-3.5`))

	type envelope struct {
		Temp temperature `json:"temp"`
	}
	require.Equal(t,
		envelope{Temp: temperature{Celsius: 7}},
		decodeOK[envelope](t, `{"temp":7}`))

	newTestSetup[temperature]().testErr(t, "bool", `true`, jscanpartial.ErrorParse{
		Err: jscanpartial.ErrTypeMismatch, Index: 0,
	})
}

func TestHandleSlice(t *testing.T) {
	require.Equal(t, oneOrMany{Single: "a"}, decodeOK[oneOrMany](t, `"a"`))
	require.Equal(t,
		oneOrMany{Many: []string{"a", "b"}},
		decodeOK[oneOrMany](t, `["a","b"]`))
	require.Equal(t, oneOrMany{Many: []string{}}, decodeOK[oneOrMany](t, `[]`))
}

func TestHandleMap(t *testing.T) {
	require.Equal(t,
		headers{m: map[string]string{"a": "x", "b": "y"}},
		decodeOK[headers](t, `{"a":"x","b":"y"}`))
	require.Equal(t,
		headers{m: map[string]string{}},
		decodeOK[headers](t, `{}`))

	newTestSetup[headers]().testErr(t, "null", `null`, jscanpartial.ErrorParse{
		Err: jscanpartial.ErrTypeMismatch, Index: 0,
	})
}

func TestHandleNullable(t *testing.T) {
	require.Equal(t, optionalName{}, decodeOK[optionalName](t, `null`))

	v := decodeOK[optionalName](t, `"x"`)
	require.NotNil(t, v.v)
	require.Equal(t, "x", *v.v)

	d := jscanpartial.NewDriverFrom(optionalName{v: new(string)}, nil)
	v, err := d.FeedString(`null`)
	require.NoError(t, err)
	require.Nil(t, v.v)
}

func TestHandleField(t *testing.T) {
	const input = `{
		"name": "Ann",
		"age": 30,
		"tags": ["a"],
		"attrs": {"k": 1},
		"unknown": [1, {"a": 2}],
		"MANAGER": {"name": "Bob", "manager": null}
	}`
	require.Equal(t, user{
		Name:    "Ann",
		Age:     30,
		Tags:    []string{"a"},
		Attrs:   map[string]int{"k": 1},
		Manager: &user{Name: "Bob"},
	}, decodeOK[user](t, input))

	newTestSetup[user]().testErr(t, "overflow", `{"age":300}`, jscanpartial.ErrorParse{
		Err: jscanpartial.ErrNumericOverflow, Index: 9,
	})
}

type duplicateKind struct{ A, B int64 }

func (*duplicateKind) RegisterHandlers(h *jscanpartial.Handlers[duplicateKind]) {
	jscanpartial.Handle(h, func(d *duplicateKind) *int64 { return &d.A })
	jscanpartial.Handle(h, func(d *duplicateKind) *int64 { return &d.B })
}

type duplicateField struct{ A, B string }

func (*duplicateField) RegisterHandlers(h *jscanpartial.Handlers[duplicateField]) {
	jscanpartial.HandleField(h, "a", func(d *duplicateField) *string { return &d.A })
	jscanpartial.HandleField(h, "a", func(d *duplicateField) *string { return &d.B })
}

type fieldsAndMap struct {
	A string
	M map[string]string
}

func (*fieldsAndMap) RegisterHandlers(h *jscanpartial.Handlers[fieldsAndMap]) {
	jscanpartial.HandleField(h, "a", func(f *fieldsAndMap) *string { return &f.A })
	jscanpartial.HandleMap(h, func(f *fieldsAndMap) *map[string]string { return &f.M })
}

type incompatibleKind struct{ S string }

func (*incompatibleKind) RegisterHandlers(h *jscanpartial.Handlers[incompatibleKind]) {
	jscanpartial.HandleKind(h, jscanpartial.KindInt8,
		func(i *incompatibleKind) *string { return &i.S })
}

func TestHandlersPanics(t *testing.T) {
	require.Panics(t, func() { jscanpartial.HandlersOf[duplicateKind]() })
	require.Panics(t, func() { jscanpartial.HandlersOf[duplicateField]() })
	require.Panics(t, func() { jscanpartial.HandlersOf[fieldsAndMap]() })
	require.Panics(t, func() { jscanpartial.HandlersOf[incompatibleKind]() })
}

func TestHandlersSealed(t *testing.T) {
	h := jscanpartial.HandlersOf[number]()
	require.Panics(t, func() {
		jscanpartial.Handle(h, func(n *number) *int64 { return &n.I })
	})
	require.Panics(t, func() {
		jscanpartial.Handle[number](nil, func(n *number) *int64 { return &n.I })
	})
	require.Panics(t, func() {
		var zero jscanpartial.Handlers[number]
		jscanpartial.HandleField(&zero, "x", func(n *number) *int64 { return &n.I })
	})
}
