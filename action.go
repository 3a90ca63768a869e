package jscanpartial

import (
	"strconv"
	"strings"
)

// Action is a mutation instruction applied by a Reducer.
// The set of actions is closed, a delegation chain always bottoms out
// in SetValue or one of the Create actions.
type Action interface {
	String() string
	isAction()
}

type (
	// SetValue replaces the current leaf.
	SetValue struct{ Value Scalar }

	// DelegateKeyed applies Action to the field Key of an object.
	DelegateKeyed struct {
		Key    string
		Action Action
	}

	// DelegateUnkeyed applies Action to the element at Index of a sequence.
	DelegateUnkeyed struct {
		Index  int
		Action Action
	}

	// CreateKeyedValue materializes a zero value under Key.
	CreateKeyedValue struct{ Key string }

	// CreateUnkeyedValue appends a zero element.
	CreateUnkeyedValue struct{}

	// CreateObject initializes an empty object.
	CreateObject struct{}

	// CreateArray initializes an empty sequence.
	CreateArray struct{}
)

func (SetValue) isAction()           {}
func (DelegateKeyed) isAction()      {}
func (DelegateUnkeyed) isAction()    {}
func (CreateKeyedValue) isAction()   {}
func (CreateUnkeyedValue) isAction() {}
func (CreateObject) isAction()       {}
func (CreateArray) isAction()        {}

func (a SetValue) String() string { return "set(" + a.Value.String() + ")" }

func (a DelegateKeyed) String() string {
	var b strings.Builder
	b.WriteString("keyed(")
	b.WriteString(strconv.Quote(a.Key))
	b.WriteString(", ")
	writeAction(&b, a.Action)
	b.WriteByte(')')
	return b.String()
}

func (a DelegateUnkeyed) String() string {
	var b strings.Builder
	b.WriteString("unkeyed(")
	b.WriteString(strconv.Itoa(a.Index))
	b.WriteString(", ")
	writeAction(&b, a.Action)
	b.WriteByte(')')
	return b.String()
}

func (a CreateKeyedValue) String() string { return "create(" + strconv.Quote(a.Key) + ")" }
func (CreateUnkeyedValue) String() string { return "append()" }
func (CreateObject) String() string       { return "object()" }
func (CreateArray) String() string        { return "array()" }

func writeAction(b *strings.Builder, a Action) {
	if a == nil {
		b.WriteString("nil")
		return
	}
	b.WriteString(a.String())
}
