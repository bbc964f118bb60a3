package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrUnsupportedKind is returned for values that cannot be represented as a
// string, number or boolean attribute.
var ErrUnsupportedKind = errors.New("unsupported attribute kind")

// Kind is the storage type tag of an attribute.
type Kind string

const (
	KindS    Kind = "S"
	KindN    Kind = "N"
	KindBOOL Kind = "BOOL"
)

// Attribute is a single typed value. Numbers travel as decimal text.
type Attribute struct {
	Kind Kind
	S    string
	N    string
	BOOL bool
}

// Item is one stored record: attribute name to typed value.
type Item map[string]Attribute

// Fields is the untagged view of an Item.
type Fields map[string]any

func String(s string) Attribute { return Attribute{Kind: KindS, S: s} }
func Bool(b bool) Attribute     { return Attribute{Kind: KindBOOL, BOOL: b} }
func Number(n int64) Attribute  { return Attribute{Kind: KindN, N: strconv.FormatInt(n, 10)} }

// Marshal tags a plain Go value.
func Marshal(v any) (Attribute, error) {
	switch t := v.(type) {
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Number(int64(t)), nil
	case int32:
		return Number(int64(t)), nil
	case int64:
		return Number(t), nil
	case uint32:
		return Number(int64(t)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Attribute{}, fmt.Errorf("%w: %v", ErrUnsupportedKind, t)
		}
		return Attribute{Kind: KindN, N: strconv.FormatFloat(t, 'f', -1, 64)}, nil
	case json.Number:
		if _, err := strconv.ParseFloat(t.String(), 64); err != nil {
			return Attribute{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, t)
		}
		return Attribute{Kind: KindN, N: t.String()}, nil
	default:
		return Attribute{}, fmt.Errorf("%w: %T", ErrUnsupportedKind, v)
	}
}

// Value returns the plain Go value of a. Integral numbers decode to int64,
// other numbers to float64.
func (a Attribute) Value() (any, error) {
	switch a.Kind {
	case KindS:
		return a.S, nil
	case KindBOOL:
		return a.BOOL, nil
	case KindN:
		if i, err := strconv.ParseInt(a.N, 10, 64); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(a.N, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", a.N, err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}
}

// MarshalJSON renders a in the DynamoDB JSON form, e.g. {"S":"x"}.
func (a Attribute) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case KindS:
		return json.Marshal(map[string]string{"S": a.S})
	case KindN:
		return json.Marshal(map[string]string{"N": a.N})
	case KindBOOL:
		return json.Marshal(map[string]bool{"BOOL": a.BOOL})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, a.Kind)
	}
}

func (a *Attribute) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, b)
	}
	for k, v := range raw {
		switch Kind(k) {
		case KindS:
			a.Kind = KindS
			return json.Unmarshal(v, &a.S)
		case KindN:
			a.Kind = KindN
			return json.Unmarshal(v, &a.N)
		case KindBOOL:
			a.Kind = KindBOOL
			return json.Unmarshal(v, &a.BOOL)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedKind, b)
}

// Tag converts fields into an Item. Nil values are rejected; callers that
// want removal semantics split them out first.
func Tag(fields Fields) (Item, error) {
	item := make(Item, len(fields))
	for name, v := range fields {
		a, err := Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		item[name] = a
	}
	return item, nil
}

// Untag converts an Item into plain values.
func Untag(item Item) (Fields, error) {
	fields := make(Fields, len(item))
	for name, a := range item {
		v, err := a.Value()
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields[name] = v
	}
	return fields, nil
}

// Equal reports whether two attributes carry the same kind and value.
func (a Attribute) Equal(b Attribute) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindS:
		return a.S == b.S
	case KindBOOL:
		return a.BOOL == b.BOOL
	case KindN:
		return a.N == b.N
	}
	return false
}
