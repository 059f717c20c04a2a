package vm

// ArrayValue is a growable, zero-indexed sequence. Elements are owned by the
// array: Push and SetIndex store copies, Index hands out copies.
type ArrayValue struct {
	Elems []Value
}

func (*ArrayValue) isValue()     {}
func (*ArrayValue) AsBool() bool { return true }
func (*ArrayValue) Kind() Kind   { return KindArray }

func NewArray(elems ...Value) *ArrayValue {
	a := &ArrayValue{}
	for _, e := range elems {
		a.Push(e)
	}
	return a
}

func (a *ArrayValue) Len() int {
	return len(a.Elems)
}

// Index reads slot i. Reading past the end yields Null.
func (a *ArrayValue) Index(i int) Value {
	if i < 0 || i >= len(a.Elems) {
		return Null
	}
	return Clone(a.Elems[i])
}

// SetIndex writes slot i, growing the array with Null when i is past the end.
func (a *ArrayValue) SetIndex(i int, v Value) {
	v = Clone(v)
	a.grow(i)
	a.Elems[i] = v
}

// Delete overwrites slot i with Null. The length never shrinks.
func (a *ArrayValue) Delete(i int) {
	a.SetIndex(i, Null)
}

func (a *ArrayValue) Push(v Value) {
	a.Elems = append(a.Elems, Clone(v))
}

func (a *ArrayValue) grow(i int) {
	for len(a.Elems) <= i {
		a.Elems = append(a.Elems, Null)
	}
}

func (a *ArrayValue) Clone() *ArrayValue {
	out := &ArrayValue{}
	if a.Elems != nil {
		out.Elems = make([]Value, len(a.Elems))
		for i, e := range a.Elems {
			out.Elems[i] = Clone(e)
		}
	}
	return out
}
