package jscanpartial

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unsafe"

	"github.com/romshark/jscan-partial/internal/bitvec"
)

// node is the type-erased handler table of a single target type.
// Pointers passed to its functions always point to a value of that type.
type node struct {
	typ    reflect.Type
	kinds  bitvec.Vector
	scalar [kindCount]func(p unsafe.Pointer, v Scalar) error

	// intKind and floatKind are the preferred numeric slots, 0 if none.
	intKind, floatKind Kind

	// Nullable values.
	null    func(p unsafe.Pointer)
	deref   func(p unsafe.Pointer) unsafe.Pointer // Allocates if nil.
	wrapped *node

	fields *fieldSet
	dict   *dictNode
	seq    *seqNode

	// reduce is set for Reducer implementations and dynamic values.
	reduce func(p unsafe.Pointer, a Action) error
}

type field struct {
	name string
	get  func(p unsafe.Pointer) unsafe.Pointer
	node *node
}

type fieldSet struct {
	byName map[string]int
	list   []field
}

func (s *fieldSet) add(f field) {
	if s.byName == nil {
		s.byName = make(map[string]int)
	}
	if _, ok := s.byName[f.name]; ok {
		panic("jscanpartial: duplicate field " + strconv.Quote(f.name))
	}
	s.byName[f.name] = len(s.list)
	s.list = append(s.list, f)
}

// lookup checks for exact matches first and falls back
// to case-insensitive matching.
func (s *fieldSet) lookup(name string) *field {
	if i, ok := s.byName[name]; ok {
		return &s.list[i]
	}
	for i := range s.list {
		if strings.EqualFold(s.list[i].name, name) {
			return &s.list[i]
		}
	}
	return nil
}

// dictNode handles string-keyed maps. Map values aren't addressable,
// entries are decoded into a temporary value and written back by commit.
type dictNode struct {
	elem   *node
	init   func(p unsafe.Pointer)
	begin  func(p unsafe.Pointer, key string) unsafe.Pointer
	commit func(p unsafe.Pointer, key string, v unsafe.Pointer)
}

// seqNode handles sequences. Slices set reset and appendElem,
// fixed-size arrays set elemAt which returns nil for indexes out of bounds
// and truncate which zeroes all elements from index n on.
type seqNode struct {
	elem       *node
	reset      func(p unsafe.Pointer)
	appendElem func(p unsafe.Pointer) unsafe.Pointer
	elemAt     func(p unsafe.Pointer, i int) unsafe.Pointer
	truncate   func(p unsafe.Pointer, n int)
}

func (n *node) setScalar(k Kind, fn func(p unsafe.Pointer, v Scalar) error) {
	if n.kinds.Has(int(k)) {
		panic("jscanpartial: duplicate handler for " + k.String() + " on " + n.typ.String())
	}
	n.kinds.Insert(int(k))
	n.scalar[k] = fn
}

func (n *node) setNullable(
	null func(p unsafe.Pointer),
	deref func(p unsafe.Pointer) unsafe.Pointer,
	wrapped *node,
) {
	if n.kinds.Has(int(KindNull)) {
		panic("jscanpartial: duplicate nullable handler on " + n.typ.String())
	}
	n.kinds.Insert(int(KindNull))
	n.null, n.deref, n.wrapped = null, deref, wrapped
}

// finalize selects the preferred numeric slots:
// the widest integer kind (signed first) and double over float.
func (n *node) finalize() {
	n.intKind, n.floatKind = 0, 0
	for k := KindInt8; k <= KindUint128; k++ {
		if !n.kinds.Has(int(k)) {
			continue
		}
		if n.intKind == 0 || k.bitSize() > n.intKind.bitSize() ||
			(k.bitSize() == n.intKind.bitSize() && k <= KindInt128 && n.intKind > KindInt128) {
			n.intKind = k
		}
	}
	switch {
	case n.kinds.Has(int(KindDouble)):
		n.floatKind = KindDouble
	case n.kinds.Has(int(KindFloat)):
		n.floatKind = KindFloat
	}
}

// accepts returns true if n can directly handle a value starting with c.
func (n *node) accepts(c byte) bool {
	switch c {
	case '{':
		return n.fields != nil || n.dict != nil
	case '[':
		return n.seq != nil
	case '"':
		return n.kinds.Has(int(KindString))
	case 't', 'f':
		return n.kinds.Has(int(KindBool))
	case 'n':
		return n.null != nil
	}
	return n.intKind != 0 || n.floatKind != 0
}

var (
	tpReg     = reflect.TypeOf((*registration)(nil))
	tpInt128  = reflect.TypeOf(Int128{})
	tpUint128 = reflect.TypeOf(Uint128{})
	tpAny     = reflect.TypeOf((*any)(nil)).Elem()
)

var (
	nodeCache sync.Map // reflect.Type -> *node
	buildLock sync.Mutex
)

// nodeOf returns the cached handler table for t or builds it.
func nodeOf(t reflect.Type) *node {
	if n, ok := nodeCache.Load(t); ok {
		return n.(*node)
	}
	buildLock.Lock()
	defer buildLock.Unlock()
	if n, ok := nodeCache.Load(t); ok {
		return n.(*node)
	}
	b := &builder{pending: make(map[reflect.Type]*node)}
	n := b.node(t)
	// Nodes must be complete before any of them becomes visible to Load.
	for _, n := range b.pending {
		n.finalize()
	}
	for t, n := range b.pending {
		nodeCache.Store(t, n)
	}
	return n
}

// builder builds the handler tables of a type and all types it references.
// Nodes are registered as pending before they're filled
// so that recursive types resolve to the same node.
type builder struct {
	pending map[reflect.Type]*node
}

func (b *builder) node(t reflect.Type) *node {
	if n, ok := nodeCache.Load(t); ok {
		return n.(*node)
	}
	if n, ok := b.pending[t]; ok {
		return n
	}
	n := &node{typ: t}
	b.pending[t] = n
	if !b.register(n) {
		b.reflectNode(n)
	}
	return n
}

// register calls the RegisterHandlers method of *T if T has one.
func (b *builder) register(n *node) bool {
	m, ok := reflect.PointerTo(n.typ).MethodByName("RegisterHandlers")
	if !ok {
		return false
	}
	mt := m.Type // Receiver is the first argument.
	if mt.NumIn() != 2 || mt.NumOut() != 0 {
		return false
	}
	arg := mt.In(1)
	if arg.Kind() != reflect.Pointer ||
		arg.Elem().Kind() != reflect.Struct ||
		arg.Elem().NumField() != 1 ||
		arg.Elem().Field(0).Type != tpReg {
		return false
	}
	r := &registration{n: n, b: b}
	h := reflect.New(arg.Elem())
	*(**registration)(h.UnsafePointer()) = r
	reflect.New(n.typ).MethodByName("RegisterHandlers").Call([]reflect.Value{h})
	r.b = nil // Seal.
	return true
}

// reflectNode builds the handler table of types
// that don't provide a registration routine.
func (b *builder) reflectNode(n *node) {
	t := n.typ
	if t == tpInt128 || t == tpUint128 {
		k, set, _ := leafSetter(t)
		n.setScalar(k, set)
		return
	}
	if reflect.PointerTo(t).Implements(tpReducer) {
		n.reduce = func(p unsafe.Pointer, a Action) error {
			return reflect.NewAt(t, p).Interface().(Reducer).Reduce(a)
		}
		return
	}

	switch t.Kind() {
	case reflect.Interface:
		if t == tpAny {
			n.reduce = reduceAnyAt
			return
		}
		n.reduce = reflectReducer(t)

	case reflect.Pointer:
		elem := t.Elem()
		n.setNullable(
			func(p unsafe.Pointer) { *(*unsafe.Pointer)(p) = nil },
			func(p unsafe.Pointer) unsafe.Pointer {
				pp := (*unsafe.Pointer)(p)
				if *pp == nil {
					*pp = reflect.New(elem).UnsafePointer()
				}
				return *pp
			},
			b.node(elem),
		)

	case reflect.Struct:
		n.fields = &fieldSet{}
		for _, f := range jsonFieldsOf(t) {
			offset := f.offset
			n.fields.add(field{
				name: f.name,
				get: func(p unsafe.Pointer) unsafe.Pointer {
					return unsafe.Add(p, offset)
				},
				node: b.node(f.typ),
			})
		}

	case reflect.Slice:
		n.setNullable(func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Elem().SetZero()
		}, nil, nil)
		n.seq = &seqNode{
			elem: b.node(t.Elem()),
			reset: func(p unsafe.Pointer) {
				reflect.NewAt(t, p).Elem().Set(reflect.MakeSlice(t, 0, 0))
			},
			appendElem: func(p unsafe.Pointer) unsafe.Pointer {
				s := reflect.NewAt(t, p).Elem()
				s.Set(reflect.Append(s, reflect.Zero(t.Elem())))
				return s.Index(s.Len() - 1).Addr().UnsafePointer()
			},
		}

	case reflect.Array:
		l, size := t.Len(), t.Elem().Size()
		n.seq = &seqNode{
			elem: b.node(t.Elem()),
			elemAt: func(p unsafe.Pointer, i int) unsafe.Pointer {
				if i >= l {
					return nil
				}
				return unsafe.Add(p, uintptr(i)*size)
			},
			truncate: func(p unsafe.Pointer, n int) {
				a := reflect.NewAt(t, p).Elem()
				for i := n; i < l; i++ {
					a.Index(i).SetZero()
				}
			},
		}

	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			n.reduce = reflectReducer(t)
			return
		}
		kt, vt := t.Key(), t.Elem()
		n.setNullable(func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Elem().SetZero()
		}, nil, nil)
		n.dict = &dictNode{
			elem: b.node(vt),
			init: func(p unsafe.Pointer) {
				if m := reflect.NewAt(t, p).Elem(); m.IsNil() {
					m.Set(reflect.MakeMap(t))
				}
			},
			begin: func(p unsafe.Pointer, key string) unsafe.Pointer {
				return reflect.New(vt).UnsafePointer()
			},
			commit: func(p unsafe.Pointer, key string, v unsafe.Pointer) {
				reflect.NewAt(t, p).Elem().SetMapIndex(
					reflect.ValueOf(key).Convert(kt),
					reflect.NewAt(vt, v).Elem(),
				)
			},
		}

	default:
		k, set, ok := leafSetter(t)
		if !ok {
			n.reduce = reflectReducer(t)
			return
		}
		n.setScalar(k, set)
	}
}

// reflectReducer returns a reduce function applying actions
// through the reflection reducer.
func reflectReducer(t reflect.Type) func(p unsafe.Pointer, a Action) error {
	return func(p unsafe.Pointer, a Action) error {
		return reduceValue(reflect.NewAt(t, p).Elem(), a)
	}
}

func reduceAnyAt(p unsafe.Pointer, a Action) error {
	v := (*any)(p)
	if r, ok := (*v).(Reducer); ok {
		return r.Reduce(a)
	}
	next, err := reduceDynamic(*v, a)
	if err != nil {
		return err
	}
	*v = next
	return nil
}

type jsonField struct {
	name   string
	index  []int
	offset uintptr
	typ    reflect.Type
}

var jsonFieldsCache sync.Map // reflect.Type -> []jsonField

// jsonFieldsOf returns the decodable fields of struct type t.
// Exported fields are named after their json tag if any,
// fields of embedded structs are promoted unless shadowed.
func jsonFieldsOf(t reflect.Type) []jsonField {
	if f, ok := jsonFieldsCache.Load(t); ok {
		return f.([]jsonField)
	}
	f := appendJSONFields(nil, t, nil, 0)
	jsonFieldsCache.Store(t, f)
	return f
}

func appendJSONFields(
	fields []jsonField, t reflect.Type, index []int, offset uintptr,
) []jsonField {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Name
		if jsonTag := f.Tag.Get("json"); jsonTag != "" {
			if i := strings.IndexByte(jsonTag, ','); i != -1 {
				jsonTag = jsonTag[:i]
			}
			switch jsonTag {
			case "":
				// No name specified in the tag.
			case "-":
				// Ignore this field.
				continue
			default:
				name = jsonTag
				if f.Anonymous {
					// Named embedded structs aren't promoted.
					f.Anonymous = false
				}
			}
		}
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			embedded = append(embedded, f)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if hasExactName(fields, name) {
			continue // Shadowed by a shallower field.
		}
		fields = append(fields, jsonField{
			name:   name,
			index:  append(append([]int(nil), index...), i),
			offset: offset + f.Offset,
			typ:    f.Type,
		})
	}
	for _, f := range embedded {
		fields = appendJSONFields(
			fields, f.Type,
			append(append([]int(nil), index...), f.Index...),
			offset+f.Offset,
		)
	}
	return fields
}

func hasExactName(fields []jsonField, name string) bool {
	for i := range fields {
		if fields[i].name == name {
			return true
		}
	}
	return false
}

// fieldIndexByName checks for exact matches first and falls back
// to case-insensitive matching. Returns -1 if no field matches.
func fieldIndexByName(fields []jsonField, name string) int {
	for i := range fields {
		if fields[i].name == name {
			return i
		}
	}
	for i := range fields {
		if strings.EqualFold(fields[i].name, name) {
			return i
		}
	}
	return -1
}
