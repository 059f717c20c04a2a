package vm

import "fmt"

// Value is the closed set of runtime values. Primitives are plain Go values;
// *ArrayValue and *ObjectValue are handles, so copying a Value that holds one
// aliases the underlying container.
type Value interface {
	fmt.Stringer
	isValue()
	AsBool() bool
	Kind() Kind
}

type Kind uint8

const (
	KindFloat Kind = iota
	KindInt
	KindString
	KindBoolean
	KindArray
	KindObject
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "Float"
	case KindInt:
		return "Int"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindNull:
		return "Null"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

type BoolValue bool

func (BoolValue) isValue() {}

var (
	BoolTrue  = BoolValue(true)
	BoolFalse = BoolValue(false)
)

func (b BoolValue) AsBool() bool { return bool(b) }
func (BoolValue) Kind() Kind     { return KindBoolean }

type StrValue string

func (StrValue) isValue()     {}
func (StrValue) AsBool() bool { return true }
func (StrValue) Kind() Kind   { return KindString }

type IntValue int32

func (IntValue) isValue()     {}
func (IntValue) AsBool() bool { return true }
func (IntValue) Kind() Kind   { return KindInt }

type FloatValue float64

func (FloatValue) isValue()     {}
func (FloatValue) AsBool() bool { return true }
func (FloatValue) Kind() Kind   { return KindFloat }

type NullValue struct{}

func (NullValue) isValue()     {}
func (NullValue) AsBool() bool { return false }
func (NullValue) Kind() Kind   { return KindNull }

var Null = NullValue{}

// Clone returns a deep copy of compound values. Primitives are returned as-is.
func Clone(v Value) Value {
	switch val := v.(type) {
	case *ArrayValue:
		return val.Clone()
	case *ObjectValue:
		return val.Clone()
	case nil:
		return Null
	default:
		return v
	}
}

// AsArray returns the array behind v or an AttemptToIndex fault.
func AsArray(v Value) (*ArrayValue, error) {
	if arr, ok := v.(*ArrayValue); ok {
		return arr, nil
	}
	return nil, &Fault{Kind: AttemptToIndex, Actual: Describe(v)}
}

// AsObject returns the object behind v or an AttemptToIndex fault.
func AsObject(v Value) (*ObjectValue, error) {
	if obj, ok := v.(*ObjectValue); ok {
		return obj, nil
	}
	return nil, &Fault{Kind: AttemptToIndex, Actual: Describe(v)}
}

// FromGo converts plain Go literals into Values. It exists for tests and
// program builders; unsupported types panic.
func FromGo(x any) Value {
	switch v := x.(type) {
	case Value:
		return v
	case nil:
		return Null
	case int:
		return IntValue(v)
	case int32:
		return IntValue(v)
	case int64:
		return IntValue(v)
	case float64:
		return FloatValue(v)
	case string:
		return StrValue(v)
	case bool:
		return BoolValue(v)
	case []any:
		arr := NewArray()
		for _, e := range v {
			arr.Push(FromGo(e))
		}
		return arr
	case map[string]any:
		obj := NewObject()
		for k, e := range v {
			obj.Set(StrValue(k), FromGo(e))
		}
		return obj
	}
	panic(fmt.Sprintf("vm: cannot convert %T to a Value", x))
}
