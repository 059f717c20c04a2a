package vm

import (
	"cmp"
	"math"
)

// Compare is the partial ordering used by the comparison opcodes. Int and
// Float compare numerically (Int widened), strings lexicographically; any
// other pair, and any comparison involving NaN, is incomparable.
func Compare(a, b Value) (int, bool) {
	switch av := a.(type) {
	case IntValue:
		switch bv := b.(type) {
		case IntValue:
			return cmp.Compare(av, bv), true
		case FloatValue:
			return compareFloat(float64(av), float64(bv))
		}
	case FloatValue:
		switch bv := b.(type) {
		case IntValue:
			return compareFloat(float64(av), float64(bv))
		case FloatValue:
			return compareFloat(float64(av), float64(bv))
		}
	case StrValue:
		if bv, ok := b.(StrValue); ok {
			return cmp.Compare(av, bv), true
		}
	}
	return 0, false
}

func compareFloat(a, b float64) (int, bool) {
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	case a == b:
		return 0, true
	}
	return 0, false
}

// Equal is value equality as seen by EQ, NEQ, JEQ and JNEQ.
//
// Pairs without a defined comparison fall back to comparing the variant tag
// alone, so any two arrays are equal and any two objects are equal whatever
// they contain. That looks unintended but programs may rely on it; do not
// deepen it into structural equality here (see Identical).
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		switch bv := b.(type) {
		case IntValue:
			return av == bv
		case FloatValue:
			return float64(av) == float64(bv)
		}
	case FloatValue:
		switch bv := b.(type) {
		case IntValue:
			return float64(av) == float64(bv)
		case FloatValue:
			return av == bv
		}
	case BoolValue:
		if bv, ok := b.(BoolValue); ok {
			return av == bv
		}
	case StrValue:
		if bv, ok := b.(StrValue); ok {
			return av == bv
		}
	}
	return kindOf(a) == kindOf(b)
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

func rank(v Value) int {
	switch kindOf(v) {
	case KindNull:
		return 0
	case KindBoolean:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindString:
		return 3
	case KindArray:
		return 4
	default:
		return 5
	}
}

// Order is a total order over all values. It agrees with Compare wherever
// Compare is defined and is used to sort object keys deterministically.
// Values Compare calls equal but which are distinct object keys (Int 1 and
// Float 1.0, -0.0 and +0.0, NaN payloads) are still told apart.
func Order(a, b Value) int {
	if c, ok := Compare(a, b); ok && c != 0 {
		return c
	}
	if ra, rb := rank(a), rank(b); ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch av := a.(type) {
	case nil, NullValue:
		return 0
	case StrValue:
		return cmp.Compare(av, b.(StrValue))
	case BoolValue:
		bv := b.(BoolValue)
		switch {
		case av == bv:
			return 0
		case !bool(av):
			return -1
		}
		return 1
	case *ArrayValue:
		bv := b.(*ArrayValue)
		for i := 0; i < len(av.Elems) && i < len(bv.Elems); i++ {
			if c := Order(av.Elems[i], bv.Elems[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(av.Elems), len(bv.Elems))
	case *ObjectValue:
		return av.Compare(b.(*ObjectValue))
	}
	return orderNumbers(a, b)
}

// orderNumbers sorts NaN first, then numerically. Numeric ties put Int
// before Float and fall back to the float bit pattern.
func orderNumbers(a, b Value) int {
	fa, fb := toFloat(a), toFloat(b)
	if c := cmp.Compare(fa, fb); c != 0 {
		return c
	}
	_, aInt := a.(IntValue)
	_, bInt := b.(IntValue)
	switch {
	case aInt && !bInt:
		return -1
	case !aInt && bInt:
		return 1
	}
	return cmp.Compare(math.Float64bits(fa), math.Float64bits(fb))
}

func toFloat(v Value) float64 {
	switch n := v.(type) {
	case IntValue:
		return float64(n)
	case FloatValue:
		return float64(n)
	}
	return math.NaN()
}

// Identical reports deep structural equality: same variant and same
// contents. It backs program equality and is never visible to opcodes.
func Identical(a, b Value) bool {
	if kindOf(a) != kindOf(b) {
		return false
	}
	switch av := a.(type) {
	case FloatValue:
		bv := b.(FloatValue)
		return math.Float64bits(float64(av)) == math.Float64bits(float64(bv))
	case *ArrayValue:
		bv := b.(*ArrayValue)
		if len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Identical(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *ObjectValue:
		bv := b.(*ObjectValue)
		if av.Len() != bv.Len() {
			return false
		}
		ae, be := av.Entries(), bv.Entries()
		for i := range ae {
			if !Identical(ae[i].Key, be[i].Key) || !Identical(ae[i].Value, be[i].Value) {
				return false
			}
		}
		return true
	case nil, NullValue:
		return true
	}
	return a == b
}
