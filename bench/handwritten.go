package bench

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/romshark/jscan/v2"
	"github.com/tidwall/gjson"
	"github.com/valyala/fastjson"
)

var ErrInvalid = errors.New("invalid")

// tokenize runs fn on the tokens of src and returns
// the error set by fn if it aborted tokenization.
func tokenize[S []byte | string](
	t *jscan.Tokenizer[S], src S, fn func(tokens []jscan.Token[S]) error,
) error {
	var err error
	errk := t.Tokenize(src, func(tokens []jscan.Token[S]) bool {
		err = fn(tokens)
		return err != nil
	})
	if errk.IsErr() {
		if errk.Code == jscan.ErrorCodeCallback {
			return err
		}
		return errk
	}
	return nil
}

func unexpected[S []byte | string](tk jscan.Token[S], expected string) error {
	return fmt.Errorf(
		"at index %d: expected %s, received: %s",
		tk.Index, expected, tk.Type.String(),
	)
}

func JscanIntSlice[S []byte | string](t *jscan.Tokenizer[S], src S) (s []int, err error) {
	err = tokenize(t, src, func(tokens []jscan.Token[S]) error {
		if tokens[0].Type != jscan.TokenTypeArray {
			return unexpected(tokens[0], "array")
		}
		s = make([]int, 0, tokens[0].Elements)
		for ti := 1; tokens[ti].Type != jscan.TokenTypeArrayEnd; ti++ {
			if tokens[ti].Type != jscan.TokenTypeInteger {
				return unexpected(tokens[ti], "int")
			}
			v, err := tokens[ti].Int(src)
			if err != nil {
				return err
			}
			s = append(s, v)
		}
		return nil
	})
	return s, err
}

func JscanMapStringString[S []byte | string](
	t *jscan.Tokenizer[S], src S,
) (m map[string]string, err error) {
	err = tokenize(t, src, func(tokens []jscan.Token[S]) error {
		if tokens[0].Type != jscan.TokenTypeObject {
			return unexpected(tokens[0], "object")
		}
		m = make(map[string]string, tokens[0].Elements)
		for ti := 1; tokens[ti].Type != jscan.TokenTypeObjectEnd; ti += 2 {
			key := string(src[tokens[ti].Index+1 : tokens[ti].End-1])
			if tokens[ti+1].Type != jscan.TokenTypeString {
				return unexpected(tokens[ti+1], "string")
			}
			v, err := tokens[ti+1].String(src)
			if err != nil {
				return err
			}
			m[key] = v
		}
		return nil
	})
	return m, err
}

func JscanStruct3[S []byte | string](t *jscan.Tokenizer[S], src S) (s Struct3, err error) {
	err = tokenize(t, src, func(tokens []jscan.Token[S]) (err error) {
		if tokens[0].Type != jscan.TokenTypeObject {
			return unexpected(tokens[0], "object")
		}
		for ti := 1; tokens[ti].Type != jscan.TokenTypeObjectEnd; {
			key := src[tokens[ti].Index+1 : tokens[ti].End-1]
			ti++
			switch string(key) {
			case "name":
				if s.Name, err = tokens[ti].String(src); err != nil {
					return err
				}
				ti++
			case "number":
				if s.Number, err = tokens[ti].Int(src); err != nil {
					return err
				}
				ti++
			case "tags":
				if tokens[ti].Type != jscan.TokenTypeArray {
					return unexpected(tokens[ti], "array")
				}
				s.Tags = make([]string, 0, tokens[ti].Elements)
				for ti++; tokens[ti].Type != jscan.TokenTypeArrayEnd; ti++ {
					if tokens[ti].Type != jscan.TokenTypeString {
						return unexpected(tokens[ti], "string")
					}
					v, err := tokens[ti].String(src)
					if err != nil {
						return err
					}
					s.Tags = append(s.Tags, v)
				}
				ti++
			default:
				return ErrInvalid
			}
		}
		return nil
	})
	return s, err
}

func GJSONArrayInt(j []byte) ([]int, error) {
	if !gjson.ValidBytes(j) {
		return nil, ErrInvalid
	}
	l := gjson.ParseBytes(j).Array()
	a := make([]int, 0, len(l))
	for _, item := range l {
		a = append(a, int(item.Int()))
	}
	return a, nil
}

func GJSONMapStringString(j []byte) (map[string]string, error) {
	if !gjson.ValidBytes(j) {
		return nil, ErrInvalid
	}
	r := gjson.ParseBytes(j).Map()
	m := make(map[string]string, len(r))
	for key, val := range r {
		m[key] = val.Str
	}
	return m, nil
}

func GJSONStruct3(j []byte) (s Struct3, err error) {
	if !gjson.ValidBytes(j) {
		return s, ErrInvalid
	}
	v := gjson.ParseBytes(j)
	if !v.IsObject() {
		return s, ErrInvalid
	}
	v.ForEach(func(key, value gjson.Result) bool {
		switch key.Str {
		case "name":
			if value.Type != gjson.String {
				err = ErrInvalid
				return false
			}
			s.Name = value.Str
		case "number":
			if value.Type != gjson.Number {
				err = ErrInvalid
				return false
			}
			s.Number, err = strconv.Atoi(value.Raw)
			return err == nil
		case "tags":
			if !value.IsArray() {
				err = ErrInvalid
				return false
			}
			a := value.Array()
			s.Tags = make([]string, len(a))
			for i := range a {
				if a[i].Type != gjson.String {
					err = ErrInvalid
					return false
				}
				s.Tags[i] = a[i].Str
			}
		default:
			err = ErrInvalid
			return false
		}
		return true
	})
	return s, err
}

func FastjsonArrayInt(j []byte) ([]int, error) {
	v, err := fastjson.ParseBytes(j)
	if err != nil {
		return nil, err
	}
	va, err := v.Array()
	if err != nil {
		return nil, err
	}
	a := make([]int, len(va))
	for i := range va {
		if a[i], err = va[i].Int(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func FastjsonMapStringString(j []byte) (map[string]string, error) {
	v, err := fastjson.ParseBytes(j)
	if err != nil {
		return nil, err
	}
	o, err := v.Object()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, o.Len())
	o.Visit(func(key []byte, v *fastjson.Value) {
		if err != nil {
			return
		}
		var b []byte
		if b, err = v.StringBytes(); err == nil {
			m[string(key)] = string(b)
		}
	})
	return m, err
}

func FastjsonStruct3(j []byte) (s Struct3, err error) {
	v, err := fastjson.ParseBytes(j)
	if err != nil {
		return s, err
	}
	o, err := v.Object()
	if err != nil {
		return s, err
	}
	o.Visit(func(key []byte, v *fastjson.Value) {
		if err != nil {
			return
		}
		switch string(key) {
		case "name":
			var b []byte
			if b, err = v.StringBytes(); err == nil {
				s.Name = string(b)
			}
		case "number":
			s.Number, err = v.Int()
		case "tags":
			var a []*fastjson.Value
			if a, err = v.Array(); err != nil {
				return
			}
			s.Tags = make([]string, len(a))
			for i := range a {
				var b []byte
				if b, err = a[i].StringBytes(); err != nil {
					return
				}
				s.Tags[i] = string(b)
			}
		default:
			err = ErrInvalid
		}
	})
	return s, err
}
