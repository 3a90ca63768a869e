package jscanpartial

import (
	"math"
	"strconv"
	"unsafe"

	"github.com/romshark/jscan-partial/internal/atoi"
	"github.com/romshark/jscan-partial/internal/bitvec"
	"github.com/romshark/jscan-partial/internal/jsonnum"
	"github.com/romshark/jscan-partial/internal/unescape"
)

type state uint8

const (
	_ state = iota
	stateValue           // Top level or after a colon.
	stateValueOrEnd      // After '['.
	stateValueAfterComma // After ',' in an array.
	stateKeyOrEnd        // After '{'.
	stateKey             // After ',' in an object.
	stateColon
	stateCommaOrEnd
	stateString
	stateKeyString
	stateUnquotedKey
	stateNumber
	stateLiteral
	stateCommentStart
	stateLineComment
	stateBlockComment
	stateBlockCommentStar
	stateDone
)

type numPhase uint8

const (
	_ numPhase = iota
	numSign    // After '-'.
	numZero    // Leading zero.
	numInt     // Integer digits.
	numDot     // After '.'.
	numFrac    // Fraction digits.
	numExp     // After 'e' or 'E'.
	numExpSign // After the sign of the exponent.
	numExpDigits
)

type numMode uint8

const (
	numSkip  numMode = iota
	numTyped         // Emit scalars of the slot kind.
	numAuto          // Emit Int64 if integral and in range, Double otherwise.
)

// maxExponent saturates decimal exponents, values beyond it
// are infinite or zero anyway.
const maxExponent = 1 << 16

// target is the destination of the value being decoded.
// A nil node means the value is skipped.
type target struct {
	n *node
	p unsafe.Pointer
}

// frame is an open object or array.
type frame struct {
	target
	key   string
	index int
	tmp   unsafe.Pointer // Dictionary entry being decoded.
}

// parser is the resumable tokenizer state of a Driver.
type parser struct {
	opts     *Options
	maxDepth int
	root     target

	state state
	ret   state // State to return to after a comment.
	index int   // Offset of the next byte in the stream.

	frames  []frame
	objects bitvec.Vector // Bit i is set if frames[i] is an object.
	dicts   int           // Number of frames with a pending dictionary entry.

	// Value being decoded.
	cur target

	// Reducer receiving all actions of the value at depth redDepth.
	reducing bool
	red      target
	redDepth int

	dec      unescape.Decoder
	str      []byte
	strDirty bool
	key      []byte

	num        atoi.Buffer
	phase      numPhase
	mode       numMode
	kind       Kind
	fracDigits int
	exp        int
	expNeg     bool

	lit    string
	litPos int
}

func (p *parser) init(root *node, ptr unsafe.Pointer, opts *Options) {
	p.opts = opts
	p.maxDepth = opts.maxDepth()
	p.root = target{n: root, p: ptr}
	p.state = stateValue
}

// feed consumes s. The returned error position is the stream offset
// of the byte at which the error was detected.
func feed[S []byte | string](p *parser, s S) error {
	for i := 0; i < len(s); i++ {
		if err := p.step(s[i]); err != nil {
			return ErrorParse{Err: err, Index: p.index}
		}
		p.index++
	}
	if err := p.flushString(); err != nil {
		return ErrorParse{Err: err, Index: p.index - 1}
	}
	return nil
}

func (p *parser) step(c byte) error {
	switch p.state {
	case stateString:
		return p.stringByte(c)
	case stateNumber:
		return p.numberByte(c)
	case stateLiteral:
		if c != p.lit[p.litPos] {
			return ErrLiteralMismatch
		}
		if p.litPos++; p.litPos == len(p.lit) {
			p.valueDone()
		}
		return nil
	case stateKeyString:
		out, end, err := p.dec.Step(p.key, c)
		if err != nil {
			return stringError(err)
		}
		p.key = out
		if end {
			p.keyDone()
		}
		return nil
	case stateUnquotedKey:
		if isKeyChar(c) {
			p.key = append(p.key, c)
			return nil
		}
		p.keyDone()
		return p.step(c)
	case stateCommentStart:
		switch c {
		case '/':
			p.state = stateLineComment
		case '*':
			p.state = stateBlockComment
		default:
			return ErrUnexpectedByte
		}
		return nil
	case stateLineComment:
		if c == '\n' {
			p.state = p.ret
		}
		return nil
	case stateBlockComment:
		if c == '*' {
			p.state = stateBlockCommentStar
		}
		return nil
	case stateBlockCommentStar:
		switch c {
		case '/':
			p.state = p.ret
		case '*':
		default:
			p.state = stateBlockComment
		}
		return nil
	}

	switch c {
	case ' ', '\t', '\n', '\r':
		return nil
	case '/':
		if !p.opts.AllowComments {
			return ErrCommentNotAllowed
		}
		p.ret, p.state = p.state, stateCommentStart
		return nil
	}

	switch p.state {
	case stateValue:
		if len(p.frames) == 0 {
			return p.beginValue(c, p.root)
		}
		if !startsValue(c) {
			return ErrUnexpectedByte
		}
		t, err := p.child()
		if err != nil {
			return err
		}
		return p.beginValue(c, t)

	case stateValueOrEnd, stateValueAfterComma:
		if c == ']' {
			if p.state == stateValueAfterComma && !p.opts.AllowTrailingCommas {
				return ErrTrailingComma
			}
			return p.closeContainer()
		}
		if !startsValue(c) {
			return ErrUnexpectedByte
		}
		t, err := p.child()
		if err != nil {
			return err
		}
		return p.beginValue(c, t)

	case stateKeyOrEnd, stateKey:
		switch {
		case c == '}':
			if p.state == stateKey && !p.opts.AllowTrailingCommas {
				return ErrTrailingComma
			}
			return p.closeContainer()
		case c == '"':
			p.dec.Reset()
			p.key = p.key[:0]
			p.state = stateKeyString
			return nil
		case isKeyChar(c):
			if !p.opts.AllowUnquotedKeys {
				return ErrUnquotedKey
			}
			p.key = append(p.key[:0], c)
			p.state = stateUnquotedKey
			return nil
		}
		return ErrUnexpectedByte

	case stateColon:
		if c != ':' {
			return ErrUnexpectedByte
		}
		p.state = stateValue
		return nil

	case stateCommaOrEnd:
		top := len(p.frames) - 1
		object := p.objects.Has(top)
		switch {
		case c == ',':
			p.endEntry()
			if object {
				p.state = stateKey
			} else {
				p.state = stateValueAfterComma
			}
			return nil
		case c == '}' && object, c == ']' && !object:
			return p.closeContainer()
		}
		return ErrUnexpectedByte
	}
	// stateDone
	return ErrUnexpectedByte
}

// child materializes the next entry of the innermost container
// and returns its target.
func (p *parser) child() (target, error) {
	top := len(p.frames) - 1
	f := &p.frames[top]
	object := p.objects.Has(top)

	if p.reducing {
		var a Action = CreateUnkeyedValue{}
		if object {
			a = CreateKeyedValue{Key: f.key}
		} else {
			f.index++
		}
		return target{}, p.reduce(p.wrap(a, top))
	}

	if !object {
		f.index++
	}
	if f.n == nil {
		return target{}, nil
	}
	switch {
	case object && f.n.dict != nil:
		d := f.n.dict
		f.tmp = d.begin(f.p, f.key)
		p.dicts++
		p.commit()
		return target{n: d.elem, p: f.tmp}, nil
	case object:
		fld := f.n.fields.lookup(f.key)
		if fld == nil {
			return target{}, nil // Unknown fields are ignored.
		}
		return target{n: fld.node, p: fld.get(f.p)}, nil
	case f.n.seq.appendElem != nil:
		t := target{n: f.n.seq.elem, p: f.n.seq.appendElem(f.p)}
		p.commit()
		return t, nil
	}
	if e := f.n.seq.elemAt(f.p, f.index); e != nil {
		return target{n: f.n.seq.elem, p: e}, nil
	}
	return target{}, nil
}

// beginValue starts decoding a value with first byte c into t.
func (p *parser) beginValue(c byte, t target) error {
	if !p.reducing {
		// Unwrap nullables until a node handles c directly.
		for t.n != nil {
			if t.n.reduce != nil {
				p.reducing, p.red, p.redDepth = true, t, len(p.frames)
				break
			}
			if t.n.accepts(c) || t.n.wrapped == nil || c == 'n' {
				break
			}
			t = target{n: t.n.wrapped, p: t.n.deref(t.p)}
		}
	}
	p.cur = t

	switch c {
	case '{', '[':
		depth := len(p.frames)
		if depth >= p.maxDepth {
			return ErrMaxDepth
		}
		object := c == '{'
		f := frame{index: -1}
		switch {
		case p.reducing:
			var a Action = CreateArray{}
			if object {
				a = CreateObject{}
			}
			if err := p.reduce(p.wrap(a, depth)); err != nil {
				return err
			}
		case t.n == nil:
		case !t.n.accepts(c):
			return ErrTypeMismatch
		default:
			f.target = t
			if object && t.n.dict != nil {
				t.n.dict.init(t.p)
			} else if !object && t.n.seq.reset != nil {
				t.n.seq.reset(t.p)
			}
			p.commit()
		}
		p.frames = append(p.frames, f)
		if object {
			p.objects.Insert(depth)
			p.state = stateKeyOrEnd
		} else {
			p.objects.Remove(depth)
			p.state = stateValueOrEnd
		}
		return nil

	case '"':
		p.dec.Reset()
		p.str, p.strDirty = p.str[:0], false
		p.state = stateString
		return p.emit(Str(""))

	case 't':
		p.lit, p.litPos, p.state = "true", 1, stateLiteral
		return p.emit(Bool(true))
	case 'f':
		p.lit, p.litPos, p.state = "false", 1, stateLiteral
		return p.emit(Bool(false))
	case 'n':
		p.lit, p.litPos, p.state = "null", 1, stateLiteral
		return p.emit(Null())

	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return p.beginNumber(c)
	}
	return ErrUnexpectedByte
}

// valueDone is called once the current value is complete.
func (p *parser) valueDone() {
	if p.reducing && len(p.frames) == p.redDepth {
		p.reducing = false
	}
	if len(p.frames) == 0 {
		p.state = stateDone
		return
	}
	p.state = stateCommaOrEnd
}

// endEntry releases the dictionary entry of the innermost container.
func (p *parser) endEntry() {
	if f := &p.frames[len(p.frames)-1]; f.tmp != nil {
		f.tmp = nil
		p.dicts--
	}
}

func (p *parser) closeContainer() error {
	p.endEntry()
	top := len(p.frames) - 1
	if f := p.frames[top]; f.n != nil && f.n.seq != nil && f.n.seq.truncate != nil {
		// Elements past the end of the input array are zeroed.
		f.n.seq.truncate(f.p, f.index+1)
		p.commit()
	}
	p.frames = p.frames[:top]
	p.valueDone()
	return nil
}

func (p *parser) keyDone() {
	p.frames[len(p.frames)-1].key = p.opts.decodeKey(string(p.key))
	p.state = stateColon
}

// wrap wraps leaf into delegations along the entries of the
// containers from redDepth to end (exclusive).
func (p *parser) wrap(leaf Action, end int) Action {
	for i := end - 1; i >= p.redDepth; i-- {
		if p.objects.Has(i) {
			leaf = DelegateKeyed{Key: p.frames[i].key, Action: leaf}
		} else {
			leaf = DelegateUnkeyed{Index: p.frames[i].index, Action: leaf}
		}
	}
	return leaf
}

func (p *parser) reduce(a Action) error {
	if err := p.red.n.reduce(p.red.p, a); err != nil {
		return err
	}
	p.commit()
	return nil
}

// emit writes s to the current value.
func (p *parser) emit(s Scalar) error {
	if p.reducing {
		return p.reduce(p.wrap(SetValue{Value: s}, len(p.frames)))
	}
	n := p.cur.n
	if n == nil {
		return nil
	}
	if s.kind == KindNull {
		if n.null == nil {
			return ErrTypeMismatch
		}
		n.null(p.cur.p)
		p.commit()
		return nil
	}
	set := n.scalar[s.kind]
	if set == nil {
		return ErrTypeMismatch
	}
	if err := set(p.cur.p, s); err != nil {
		return err
	}
	p.commit()
	return nil
}

// commit writes pending dictionary entries back, innermost first.
func (p *parser) commit() {
	if p.dicts < 1 {
		return
	}
	for i := len(p.frames) - 1; i >= 0; i-- {
		if f := &p.frames[i]; f.tmp != nil {
			f.n.dict.commit(f.p, f.key, f.tmp)
		}
	}
}

func (p *parser) stringByte(c byte) error {
	out, end, err := p.dec.Step(p.str, c)
	if err != nil {
		return stringError(err)
	}
	if len(out) != len(p.str) {
		p.strDirty = true
	}
	p.str = out
	if !end {
		return nil
	}
	if err := p.flushString(); err != nil {
		return err
	}
	p.valueDone()
	return nil
}

// flushString emits the string decoded so far if it changed.
func (p *parser) flushString() error {
	if p.state != stateString || !p.strDirty {
		return nil
	}
	p.strDirty = false
	return p.emit(Str(string(p.str)))
}

func stringError(err error) error {
	switch err {
	case unescape.ErrInvalidUTF8:
		return ErrInvalidUTF8
	case unescape.ErrInvalidEscape:
		return ErrInvalidEscape
	case unescape.ErrControlChar:
		return ErrControlChar
	}
	return err
}

func (p *parser) beginNumber(c byte) error {
	p.num.Reset()
	_ = p.num.Push(c)
	p.fracDigits, p.exp, p.expNeg = 0, 0, false
	switch c {
	case '-':
		p.phase = numSign
	case '0':
		p.phase = numZero
	default:
		p.phase = numInt
	}
	p.state = stateNumber

	switch {
	case p.reducing:
		p.mode = numAuto
	case p.cur.n == nil:
		p.mode = numSkip
		return nil
	case p.cur.n.intKind != 0:
		p.mode, p.kind = numTyped, p.cur.n.intKind
	case p.cur.n.floatKind != 0:
		p.mode, p.kind = numTyped, p.cur.n.floatKind
	default:
		return ErrTypeMismatch
	}
	if p.phase == numSign {
		// The sign alone leaves the current value untouched.
		return nil
	}
	return p.emitNumber()
}

func (p *parser) numberByte(c byte) error {
	switch {
	case c >= '0' && c <= '9':
		switch p.phase {
		case numZero:
			return ErrInvalidNumber
		case numSign, numInt:
			if c == '0' && p.phase == numSign {
				p.phase = numZero
			} else {
				p.phase = numInt
			}
		case numDot, numFrac:
			p.phase = numFrac
			p.fracDigits++
		case numExp, numExpSign, numExpDigits:
			p.phase = numExpDigits
			if p.exp < maxExponent {
				p.exp = p.exp*10 + int(c-'0')
			}
			return p.emitNumber()
		}
		if err := p.num.Push(c); err != nil {
			return ErrDigitBufferFull
		}
		return p.emitNumber()

	case c == '.':
		if p.phase != numZero && p.phase != numInt {
			return ErrInvalidNumber
		}
		p.phase = numDot
		return p.toFloat()

	case c == 'e' || c == 'E':
		if p.phase != numZero && p.phase != numInt && p.phase != numFrac {
			return ErrInvalidNumber
		}
		p.phase = numExp
		return p.toFloat()

	case c == '+' || c == '-':
		if p.phase != numExp {
			return ErrInvalidNumber
		}
		p.phase, p.expNeg = numExpSign, c == '-'
		return nil
	}

	if !p.numberComplete() {
		return ErrInvalidNumber
	}
	p.valueDone()
	return p.step(c)
}

func (p *parser) numberComplete() bool {
	switch p.phase {
	case numZero, numInt, numFrac, numExpDigits:
		return true
	}
	return false
}

// toFloat switches typed integer assembly to the float slot.
func (p *parser) toFloat() error {
	if p.mode != numTyped || !p.kind.isInteger() {
		return nil
	}
	if p.cur.n.floatKind == 0 {
		return ErrTypeMismatch
	}
	p.kind = p.cur.n.floatKind
	return nil
}

func (p *parser) integral() bool { return p.phase <= numInt }

func (p *parser) emitNumber() error {
	switch p.mode {
	case numSkip:
		return nil
	case numAuto:
		if p.integral() {
			if v, overflow := atoi.Int(p.num.Bytes(), 64); !overflow {
				return p.emit(Int64(v))
			}
		}
		f, err := p.float()
		if err != nil {
			return err
		}
		return p.emit(Double(f))
	}

	b := p.num.Bytes()
	var s Scalar
	switch k := p.kind; {
	case k.isSigned():
		v, overflow := atoi.Int(b, k.bitSize())
		if overflow {
			return ErrNumericOverflow
		}
		s = Scalar{kind: k, lo: uint64(v)}
	case k.isUnsigned():
		v, overflow := atoi.Uint(b, k.bitSize())
		if overflow {
			return ErrNumericOverflow
		}
		s = Scalar{kind: k, lo: v}
	case k == KindInt128:
		hi, lo, overflow := atoi.Int128(b)
		if overflow {
			return ErrNumericOverflow
		}
		s = Int128Value(Int128{Hi: hi, Lo: lo})
	case k == KindUint128:
		hi, lo, overflow := atoi.Uint128(b)
		if overflow {
			return ErrNumericOverflow
		}
		s = Uint128Value(Uint128{Hi: hi, Lo: lo})
	case k == KindFloat:
		f, err := p.float()
		if err != nil {
			return err
		}
		v, overflow := jsonnum.Float32(f)
		if overflow {
			return ErrNumericOverflow
		}
		s = Float(v)
	default:
		f, err := p.float()
		if err != nil {
			return err
		}
		s = Double(f)
	}
	return p.emit(s)
}

// float composes the number decoded so far.
func (p *parser) float() (float64, error) {
	digits := p.num.Digits()
	for len(digits) > 0 && digits[0] == '0' {
		digits = digits[1:]
	}
	m, dropped := jsonnum.Mantissa(digits)
	e := p.exp
	if p.expNeg {
		e = -e
	}
	exp10 := e + dropped - p.fracDigits
	var f float64
	if m == 0 || (dropped == 0 && m < 1<<53 &&
		exp10 >= -jsonnum.MaxCachedExp && exp10 <= jsonnum.MaxCachedExp) {
		f = jsonnum.Compose(m, exp10, p.num.Negative())
	} else {
		// Outside the exact range, let strconv round correctly.
		b := make([]byte, 0, len(digits)+24)
		if p.num.Negative() {
			b = append(b, '-')
		}
		b = append(b, digits...)
		b = append(b, 'e')
		b = strconv.AppendInt(b, int64(e-p.fracDigits), 10)
		f, _ = strconv.ParseFloat(string(b), 64)
	}
	if math.IsInf(f, 0) {
		return 0, ErrNumericOverflow
	}
	return f, nil
}

// finish completes a number that ended with the input and reports
// whether the document is complete.
func (p *parser) finish() bool {
	if p.state == stateNumber && p.numberComplete() {
		p.valueDone()
	}
	switch p.state {
	case stateDone:
		return true
	case stateLineComment:
		return p.ret == stateDone
	}
	return false
}

func startsValue(c byte) bool {
	switch c {
	case '{', '[', '"', 't', 'f', 'n', '-':
		return true
	}
	return c >= '0' && c <= '9'
}

func isKeyChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '_' || c == '$'
}
