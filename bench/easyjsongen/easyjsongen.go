// Package easyjsongen provides easyjson unmarshalers for the bench shapes,
// written in the form easyjson generates them.
package easyjsongen

import "github.com/mailru/easyjson/jlexer"

type IntArray []int

type MapStringString map[string]string

type Struct3 struct {
	Name   string   `json:"name"`
	Number int      `json:"number"`
	Tags   []string `json:"tags"`
}

func (v *IntArray) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		in.Skip()
		*v = nil
	} else {
		in.Delim('[')
		if *v == nil {
			if !in.IsDelim(']') {
				*v = make(IntArray, 0, 8)
			} else {
				*v = IntArray{}
			}
		} else {
			*v = (*v)[:0]
		}
		for !in.IsDelim(']') {
			*v = append(*v, in.Int())
			in.WantComma()
		}
		in.Delim(']')
	}
	if isTopLevel {
		in.Consumed()
	}
}

func (v *MapStringString) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		in.Skip()
	} else {
		in.Delim('{')
		if !in.IsDelim('}') {
			*v = make(MapStringString)
		} else {
			*v = nil
		}
		for !in.IsDelim('}') {
			key := in.String()
			in.WantColon()
			(*v)[key] = in.String()
			in.WantComma()
		}
		in.Delim('}')
	}
	if isTopLevel {
		in.Consumed()
	}
}

func (v *Struct3) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "name":
			v.Name = in.String()
		case "number":
			v.Number = in.Int()
		case "tags":
			in.Delim('[')
			if v.Tags == nil {
				if !in.IsDelim(']') {
					v.Tags = make([]string, 0, 4)
				} else {
					v.Tags = []string{}
				}
			} else {
				v.Tags = v.Tags[:0]
			}
			for !in.IsDelim(']') {
				v.Tags = append(v.Tags, in.String())
				in.WantComma()
			}
			in.Delim(']')
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}
