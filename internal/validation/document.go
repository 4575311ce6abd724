package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type kind int

const (
	kindNull kind = iota
	kindString
	kindNumber
	kindBool
	kindObject
	kindArray
)

func kindOf(raw json.RawMessage) kind {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return kindNull
	}
	switch raw[0] {
	case '"':
		return kindString
	case '{':
		return kindObject
	case '[':
		return kindArray
	case 't', 'f':
		return kindBool
	case 'n':
		return kindNull
	default:
		return kindNumber
	}
}

type member struct {
	key   string
	value json.RawMessage
}

// object keeps the members of a JSON object in document order so that
// unknown-key reporting is deterministic. Repeated keys keep their first
// position and their last value.
type object struct {
	members []member
	index   map[string]int
}

func (o *object) get(key string) (json.RawMessage, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].value, true
}

func (o *object) set(key string, value json.RawMessage) {
	if i, ok := o.index[key]; ok {
		o.members[i].value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, member{key: key, value: value})
}

var errNotObject = errors.New("not a JSON object")

// parseObject decodes raw as a JSON object. raw must be valid JSON.
func parseObject(raw json.RawMessage) (*object, error) {
	if kindOf(raw) != kindObject {
		return nil, errNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	obj := &object{index: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		obj.set(key, value)
	}
	return obj, nil
}
