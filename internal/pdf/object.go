// Package pdf reads back the PDFs a browser emits: cross-reference tables
// and streams, Flate-compressed objects, ToUnicode CMaps, and the text
// operators of page content streams. It is not a general PDF library; it
// exists so conversion output can be verified without external tooling.
package pdf

// Kind identifies the type of a PDF object.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindReal
	KindString
	KindName
	KindArray
	KindDict
	KindStream
	KindRef
)

// Value holds any PDF object.
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Real   float64
	Str    []byte
	Name   string
	Array  []*Value
	Dict   Dict
	Stream []byte // raw stream bytes, still encoded
	Ref    Ref
}

// Ref is an indirect object reference (N G R).
type Ref struct {
	Num int
	Gen int
}

// Dict is a PDF dictionary, keyed by name.
type Dict map[string]*Value

// Int returns the integer value of a Dict entry.
func (d Dict) Int(key string) (int64, bool) {
	v, ok := d[key]
	if !ok {
		return 0, false
	}
	switch v.Kind {
	case KindInt:
		return v.Int, true
	case KindReal:
		return int64(v.Real), true
	}
	return 0, false
}

// Name returns the name value of a Dict entry.
func (d Dict) Name(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	if v.Kind == KindName {
		return v.Name, true
	}
	return "", false
}

// Items returns the array value of a Dict entry. A single object is treated
// as a one-element array, since keys like /Contents and /Filter may hold
// either form.
func (d Dict) Items(key string) ([]*Value, bool) {
	v, ok := d[key]
	if !ok {
		return nil, false
	}
	if v.Kind == KindArray {
		return v.Array, true
	}
	return []*Value{v}, true
}

// Sub returns the dictionary value of a Dict entry.
func (d Dict) Sub(key string) (Dict, bool) {
	v, ok := d[key]
	if !ok {
		return nil, false
	}
	if v.Kind == KindDict || v.Kind == KindStream {
		return v.Dict, true
	}
	return nil, false
}

// numeric returns the value as a float64 for int and real objects.
func numeric(v *Value) float64 {
	if v == nil {
		return 0
	}
	switch v.Kind {
	case KindReal:
		return v.Real
	case KindInt:
		return float64(v.Int)
	}
	return 0
}
