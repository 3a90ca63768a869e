package jscanpartial

import (
	"reflect"
	"strconv"
	"unsafe"
)

// Handlers is the handler registry of target type T.
//
// Types provide their registry by implementing a registration routine
// on their pointer type:
//
//	func (*T) RegisterHandlers(h *Handlers[T])
//
// which registers field paths using Handle, HandleKind, HandleNullable,
// HandleField, HandleSlice and HandleMap. Types that don't implement
// a registration routine get a registry built through reflection.
// A registry is built once per type and is read-only afterwards.
type Handlers[T any] struct{ r *registration }

type registration struct {
	n *node
	b *builder // nil once sealed.
}

// HandlersOf returns the registry of T, building it on first use.
func HandlersOf[T any]() *Handlers[T] {
	return &Handlers[T]{r: &registration{n: nodeOf(typeOf[T]())}}
}

// Kinds returns the scalar kinds T directly accepts.
func (h *Handlers[T]) Kinds() []Kind {
	var k []Kind
	for i := Kind(1); i < kindCount; i++ {
		if h.r.n.kinds.Has(int(i)) {
			k = append(k, i)
		}
	}
	return k
}

// Leaf is the set of types that can be registered for scalar kinds.
type Leaf interface {
	~string | ~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		Int128 | Uint128
}

// Handle registers path as the destination of scalars of
// the natural kind of F, for example KindInt32 for int32.
func Handle[T any, F Leaf](h *Handlers[T], path func(*T) *F) {
	k, _, _ := leafSetter(typeOf[F]())
	HandleKind(h, k, path)
}

// HandleKind registers path as the destination of scalars of kind k.
// Scalars are converted to F with overflow checks.
// A field may be registered for several kinds.
func HandleKind[T any, F Leaf](h *Handlers[T], k Kind, path func(*T) *F) {
	r := registrationOf(h)
	natural, set, _ := leafSetter(typeOf[F]())
	if !compatibleKinds(natural, k) {
		panic("jscanpartial: can't handle " + k.String() + " with " + typeOf[F]().String())
	}
	r.n.setScalar(k, func(p unsafe.Pointer, v Scalar) error {
		return set(unsafe.Pointer(path((*T)(p))), v)
	})
}

// HandleNullable registers a nullable value at path.
// null sets it to nil, any other value allocates it if necessary
// and is handled by the registry of F.
func HandleNullable[T, F any](h *Handlers[T], path func(*T) **F) {
	r := registrationOf(h)
	r.n.setNullable(
		func(p unsafe.Pointer) { *path((*T)(p)) = nil },
		func(p unsafe.Pointer) unsafe.Pointer {
			pp := path((*T)(p))
			if *pp == nil {
				*pp = new(F)
			}
			return unsafe.Pointer(*pp)
		},
		r.b.node(typeOf[F]()),
	)
}

// HandleField registers the object field key at path.
// The value of the field is handled by the registry of F.
func HandleField[T, F any](h *Handlers[T], key string, path func(*T) *F) {
	r := registrationOf(h)
	if r.n.dict != nil {
		panic("jscanpartial: " + r.n.typ.String() + " is already handled as a map")
	}
	if r.n.fields == nil {
		r.n.fields = &fieldSet{}
	}
	r.n.fields.add(field{
		name: key,
		get: func(p unsafe.Pointer) unsafe.Pointer {
			return unsafe.Pointer(path((*T)(p)))
		},
		node: r.b.node(typeOf[F]()),
	})
}

// HandleSlice registers path as the destination of arrays.
func HandleSlice[T, E any](h *Handlers[T], path func(*T) *[]E) {
	r := registrationOf(h)
	if r.n.seq != nil {
		panic("jscanpartial: duplicate array handler on " + r.n.typ.String())
	}
	r.n.seq = &seqNode{
		elem: r.b.node(typeOf[E]()),
		reset: func(p unsafe.Pointer) {
			*path((*T)(p)) = []E{}
		},
		appendElem: func(p unsafe.Pointer) unsafe.Pointer {
			s := path((*T)(p))
			var zero E
			*s = append(*s, zero)
			return unsafe.Pointer(&(*s)[len(*s)-1])
		},
	}
}

// HandleMap registers path as the destination of objects
// decoded as dictionaries.
func HandleMap[T, V any](h *Handlers[T], path func(*T) *map[string]V) {
	r := registrationOf(h)
	if r.n.fields != nil {
		panic("jscanpartial: " + r.n.typ.String() + " already has field handlers")
	}
	if r.n.dict != nil {
		panic("jscanpartial: duplicate map handler on " + r.n.typ.String())
	}
	r.n.dict = &dictNode{
		elem: r.b.node(typeOf[V]()),
		init: func(p unsafe.Pointer) {
			if m := path((*T)(p)); *m == nil {
				*m = make(map[string]V)
			}
		},
		begin: func(p unsafe.Pointer, key string) unsafe.Pointer {
			return unsafe.Pointer(new(V))
		},
		commit: func(p unsafe.Pointer, key string, v unsafe.Pointer) {
			(*path((*T)(p)))[key] = *(*V)(v)
		},
	}
}

func registrationOf[T any](h *Handlers[T]) *registration {
	if h == nil || h.r == nil || h.r.b == nil {
		panic("jscanpartial: handlers can only be registered in RegisterHandlers")
	}
	if t := typeOf[T](); h.r.n.typ != t {
		panic("jscanpartial: registering handlers of " + t.String() +
			" for " + h.r.n.typ.String())
	}
	return h.r
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func compatibleKinds(natural, k Kind) bool {
	switch natural {
	case KindString, KindBool:
		return k == natural
	}
	return k.isInteger() || k.isFloat()
}

// leafSetter returns the natural kind of scalar type t
// and a function writing checked conversions of scalars to *t.
func leafSetter(t reflect.Type) (Kind, func(p unsafe.Pointer, v Scalar) error, bool) {
	switch t {
	case tpInt128:
		return KindInt128, func(p unsafe.Pointer, v Scalar) error {
			x, err := v.AsInt128()
			if err != nil {
				return err
			}
			*(*Int128)(p) = x
			return nil
		}, true
	case tpUint128:
		return KindUint128, func(p unsafe.Pointer, v Scalar) error {
			x, err := v.AsUint128()
			if err != nil {
				return err
			}
			*(*Uint128)(p) = x
			return nil
		}, true
	}
	switch t.Kind() {
	case reflect.String:
		return KindString, func(p unsafe.Pointer, v Scalar) error {
			x, err := v.AsString()
			if err != nil {
				return err
			}
			*(*string)(p) = x
			return nil
		}, true
	case reflect.Bool:
		return KindBool, func(p unsafe.Pointer, v Scalar) error {
			x, err := v.AsBool()
			if err != nil {
				return err
			}
			*(*bool)(p) = x
			return nil
		}, true
	case reflect.Int:
		k := KindInt64
		if strconv.IntSize == 32 {
			k = KindInt32
		}
		return k, intSetter[int], true
	case reflect.Int8:
		return KindInt8, intSetter[int8], true
	case reflect.Int16:
		return KindInt16, intSetter[int16], true
	case reflect.Int32:
		return KindInt32, intSetter[int32], true
	case reflect.Int64:
		return KindInt64, intSetter[int64], true
	case reflect.Uint:
		k := KindUint64
		if strconv.IntSize == 32 {
			k = KindUint32
		}
		return k, uintSetter[uint], true
	case reflect.Uint8:
		return KindUint8, uintSetter[uint8], true
	case reflect.Uint16:
		return KindUint16, uintSetter[uint16], true
	case reflect.Uint32:
		return KindUint32, uintSetter[uint32], true
	case reflect.Uint64:
		return KindUint64, uintSetter[uint64], true
	case reflect.Float32:
		return KindFloat, floatSetter[float32], true
	case reflect.Float64:
		return KindDouble, floatSetter[float64], true
	}
	return 0, nil, false
}

func intSetter[T int | int8 | int16 | int32 | int64](p unsafe.Pointer, v Scalar) error {
	x, err := ToInt[T](v)
	if err != nil {
		return err
	}
	*(*T)(p) = x
	return nil
}

func uintSetter[T uint | uint8 | uint16 | uint32 | uint64](p unsafe.Pointer, v Scalar) error {
	x, err := ToUint[T](v)
	if err != nil {
		return err
	}
	*(*T)(p) = x
	return nil
}

func floatSetter[T float32 | float64](p unsafe.Pointer, v Scalar) error {
	x, err := ToFloat[T](v)
	if err != nil {
		return err
	}
	*(*T)(p) = x
	return nil
}
