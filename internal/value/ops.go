// Package value, ops.go: operator dispatch shared across variants. Each
// function implements spec §4.2's three rules — result type follows Python
// semantics, result metadata is always camel(), result dependencies include
// every operand (and the receiver, for methods).
package value

import (
	"fmt"
	"math"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

// BinOp enumerates the binary operators the interpreter evaluates.
type BinOp string

const (
	OpAdd      BinOp = "+"
	OpSub      BinOp = "-"
	OpMul      BinOp = "*"
	OpDiv      BinOp = "/"
	OpFloorDiv BinOp = "//"
	OpMod      BinOp = "%"
	OpPow      BinOp = "**"
)

// Add, Sub, Mul, ... are dispatched from one entry point so the interpreter
// does not need a type switch per node kind.
func Binary(op BinOp, lhs, rhs Value) (Value, error) {
	switch op {
	case OpAdd:
		return add(lhs, rhs)
	case OpSub, OpMul, OpDiv, OpFloorDiv, OpMod, OpPow:
		return arith(op, lhs, rhs)
	default:
		return nil, fmt.Errorf("unsupported binary operator %q", op)
	}
}

func add(lhs, rhs Value) (Value, error) {
	switch l := lhs.(type) {
	case *Str:
		r, ok := rhs.(*Str)
		if !ok {
			return nil, typeErrorUnsupportedOperand("+", lhs, rhs)
		}
		return l.Concat(r), nil
	case *Tuple:
		r, ok := rhs.(*Tuple)
		if !ok {
			return nil, typeErrorUnsupportedOperand("+", lhs, rhs)
		}
		items := append(append([]Value(nil), l.Items...), r.Items...)
		return NewTuple(items, capabilities.CaMeL(), DepsOf(lhs, rhs)), nil
	case *List:
		r, ok := rhs.(*List)
		if !ok {
			return nil, typeErrorUnsupportedOperand("+", lhs, rhs)
		}
		items := append(append([]Value(nil), l.Items...), r.Items...)
		return NewList(items, capabilities.CaMeL(), DepsOf(lhs, rhs)), nil
	default:
		return arith(OpAdd, lhs, rhs)
	}
}

// arith covers the numeric operators plus str*int/list*int repetition.
func arith(op BinOp, lhs, rhs Value) (Value, error) {
	if s, ok := lhs.(*Str); ok && op == OpMul {
		n, ok := rhs.(*Int)
		if !ok {
			return nil, typeErrorUnsupportedOperand(string(op), lhs, rhs)
		}
		return s.Repeat(n.Val), nil
	}
	if s, ok := rhs.(*Str); ok && op == OpMul {
		n, ok := lhs.(*Int)
		if !ok {
			return nil, typeErrorUnsupportedOperand(string(op), lhs, rhs)
		}
		return s.Repeat(n.Val), nil
	}
	if rep, ok := seqRepeat(lhs, rhs, op); ok {
		return rep()
	}
	if rep, ok := seqRepeat(rhs, lhs, op); ok {
		return rep()
	}

	lf, lok := asNumber(lhs)
	rf, rok := asNumber(rhs)
	if !lok || !rok {
		return nil, typeErrorUnsupportedOperand(string(op), lhs, rhs)
	}
	bothInt := isInt(lhs) && isInt(rhs)
	deps := DepsOf(lhs, rhs)

	switch op {
	case OpSub:
		if bothInt {
			return NewInt(int64(lf)-int64(rf), capabilities.CaMeL(), deps), nil
		}
		return NewFloat(lf-rf, capabilities.CaMeL(), deps), nil
	case OpMul:
		if bothInt {
			return NewInt(int64(lf)*int64(rf), capabilities.CaMeL(), deps), nil
		}
		return NewFloat(lf*rf, capabilities.CaMeL(), deps), nil
	case OpDiv:
		if rf == 0 {
			return nil, &kindError{"division by zero"}
		}
		return NewFloat(lf/rf, capabilities.CaMeL(), deps), nil
	case OpFloorDiv:
		if rf == 0 {
			return nil, &kindError{"division by zero"}
		}
		q := math.Floor(lf / rf)
		if bothInt {
			return NewInt(int64(q), capabilities.CaMeL(), deps), nil
		}
		return NewFloat(q, capabilities.CaMeL(), deps), nil
	case OpMod:
		if rf == 0 {
			return nil, &kindError{"division by zero"}
		}
		m := math.Mod(lf, rf)
		if m != 0 && (m < 0) != (rf < 0) {
			m += rf
		}
		if bothInt {
			return NewInt(int64(m), capabilities.CaMeL(), deps), nil
		}
		return NewFloat(m, capabilities.CaMeL(), deps), nil
	case OpPow:
		p := math.Pow(lf, rf)
		if bothInt && rf >= 0 {
			return NewInt(int64(p), capabilities.CaMeL(), deps), nil
		}
		return NewFloat(p, capabilities.CaMeL(), deps), nil
	default:
		return nil, fmt.Errorf("unsupported arithmetic operator %q", op)
	}
}

// seqRepeat matches the `list * int` / `tuple * int` repetition forms
// (either operand order); the bool return reports whether seq/n looked like
// a repetition at all, so arith can fall through to the numeric path.
func seqRepeat(seq, n Value, op BinOp) (func() (Value, error), bool) {
	if op != OpMul {
		return nil, false
	}
	count, ok := n.(*Int)
	if !ok {
		return nil, false
	}
	switch s := seq.(type) {
	case *List:
		return func() (Value, error) { return repeatList(s, count), nil }, true
	case *Tuple:
		return func() (Value, error) { return repeatTuple(s, count), nil }, true
	default:
		return nil, false
	}
}

func repeatList(l *List, n *Int) Value {
	var items []Value
	reps := n.Val
	if reps < 0 {
		reps = 0
	}
	for i := int64(0); i < reps; i++ {
		items = append(items, l.Items...)
	}
	return NewList(items, capabilities.CaMeL(), DepsOf(l, n))
}

func repeatTuple(t *Tuple, n *Int) Value {
	var items []Value
	reps := n.Val
	if reps < 0 {
		reps = 0
	}
	for i := int64(0); i < reps; i++ {
		items = append(items, t.Items...)
	}
	return NewTuple(items, capabilities.CaMeL(), DepsOf(t, n))
}

func asNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case *Int:
		return float64(t.Val), true
	case *Float:
		return t.Val, true
	case *Bool:
		if t.Val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func isInt(v Value) bool {
	switch v.(type) {
	case *Int, *Bool:
		return true
	default:
		return false
	}
}

// CompareOp enumerates Python comparison operators, chainable left-to-right
// by the interpreter (spec §4.2).
type CompareOp string

const (
	CmpEq CompareOp = "=="
	CmpNe CompareOp = "!="
	CmpLt CompareOp = "<"
	CmpLe CompareOp = "<="
	CmpGt CompareOp = ">"
	CmpGe CompareOp = ">="
)

// Compare implements one link of a chained comparison.
func Compare(op CompareOp, lhs, rhs Value) (*Bool, error) {
	switch op {
	case CmpEq:
		return NewBoolResult(Equal(lhs, rhs), lhs, rhs), nil
	case CmpNe:
		return NewBoolResult(!Equal(lhs, rhs), lhs, rhs), nil
	default:
		lf, lok := asNumber(lhs)
		rf, rok := asNumber(rhs)
		if lok && rok {
			return NewBoolResult(numCompare(op, lf, rf), lhs, rhs), nil
		}
		ls, lok2 := lhs.(*Str)
		rs, rok2 := rhs.(*Str)
		if lok2 && rok2 {
			return NewBoolResult(strCompare(op, ls.Go(), rs.Go()), lhs, rhs), nil
		}
		return nil, fmt.Errorf("'%s' not supported between instances of %q and %q", op, lhs.Kind(), rhs.Kind())
	}
}

func numCompare(op CompareOp, l, r float64) bool {
	switch op {
	case CmpLt:
		return l < r
	case CmpLe:
		return l <= r
	case CmpGt:
		return l > r
	case CmpGe:
		return l >= r
	default:
		return false
	}
}

func strCompare(op CompareOp, l, r string) bool {
	switch op {
	case CmpLt:
		return l < r
	case CmpLe:
		return l <= r
	case CmpGt:
		return l > r
	case CmpGe:
		return l >= r
	default:
		return false
	}
}

// Equal implements structural equality on raw payloads (spec §4.2).
func Equal(lhs, rhs Value) bool {
	if lhs.Kind() != rhs.Kind() {
		// Python allows cross int/float/bool equality.
		lf, lok := asNumber(lhs)
		rf, rok := asNumber(rhs)
		if lok && rok {
			return lf == rf
		}
		return false
	}
	switch l := lhs.(type) {
	case *Tuple:
		r := rhs.(*Tuple)
		return equalSeq(l.Items, r.Items)
	case *List:
		r := rhs.(*List)
		return equalSeq(l.Items, r.Items)
	case *Set:
		r := rhs.(*Set)
		if l.Len() != r.Len() {
			return false
		}
		for _, it := range l.Items() {
			if !r.Contains(it) {
				return false
			}
		}
		return true
	case *Dict:
		r := rhs.(*Dict)
		if l.Len() != r.Len() {
			return false
		}
		for _, k := range l.Keys {
			lv, _ := l.Get(k)
			rv, ok := r.Get(k)
			if !ok || !Equal(lv, rv) {
				return false
			}
		}
		return true
	default:
		return fmt.Sprint(lhs.Raw()) == fmt.Sprint(rhs.Raw()) && sameRawType(lhs, rhs)
	}
}

func sameRawType(a, b Value) bool { return a.Kind() == b.Kind() }

func equalSeq(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Contains implements `x in c` for the general (non-string) container
// kinds; Str has its own Contains for character-level semantics.
func Contains(container, needle Value) (*Bool, error) {
	if s, ok := container.(*Str); ok {
		n, ok := needle.(*Str)
		if !ok {
			return nil, &kindError{"'in <string>' requires string as left operand"}
		}
		return s.Contains(n), nil
	}

	var items []Value
	var keys []Value
	switch c := container.(type) {
	case *Tuple:
		items = c.Items
	case *List:
		items = c.Items
	case *Set:
		items = c.Items()
	case *Dict:
		keys = c.Keys
		items = keys
	default:
		return nil, typeErrorNotIterable(container)
	}

	for _, it := range items {
		if Equal(it, needle) {
			return NewBoolResult(true, container, needle, it), nil
		}
	}
	deps := append([]Value{needle}, items...)
	return NewBoolResult(false, deps...), nil
}

// GetItem implements subscripting (non-slice); it propagates the receiver
// and the key into the result's dependencies per spec §4.2.
func GetItem(container, key Value) (Value, error) {
	switch c := container.(type) {
	case *Str:
		idx, ok := key.(*Int)
		if !ok {
			return nil, &kindError{"string indices must be integers"}
		}
		ch, ok := c.Index(int(idx.Val))
		if !ok {
			return nil, &kindError{"string index out of range"}
		}
		return rebindDeps(rebindDeps(CharAsStr(ch), container), key), nil
	case *Tuple:
		return seqGetItem(c.Items, key, container)
	case *List:
		return seqGetItem(c.Items, key, container)
	case *Dict:
		v, ok := c.Get(key)
		if !ok {
			return nil, &kindError{"key not found"}
		}
		return rebindDeps(rebindDeps(v, container), key), nil
	default:
		return nil, &kindError{"'" + container.Kind().String() + "' object is not subscriptable"}
	}
}

func seqGetItem(items []Value, key Value, container Value) (Value, error) {
	idx, ok := key.(*Int)
	if !ok {
		return nil, &kindError{"indices must be integers"}
	}
	n := len(items)
	i := int(idx.Val)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return nil, &kindError{"index out of range"}
	}
	return rebindDeps(rebindDeps(items[i], container), key), nil
}

// SliceSeq implements Python-style slicing (start/stop/step, negative
// indices) for the sequence kinds (List, Tuple); Str has its own Slice for
// character-level labelling. extraDeps carries the evaluated slice bounds
// so they are threaded into the result's dependencies per spec §4.2.
func SliceSeq(container Value, start, stop, step int, extraDeps []Value) (Value, error) {
	switch c := container.(type) {
	case *List:
		idx := sliceIndices(len(c.Items), start, stop, step)
		items := make([]Value, 0, len(idx))
		for _, i := range idx {
			items = append(items, c.Items[i])
		}
		deps := DepsOf(Value(c), extraDeps)
		return NewList(items, capabilities.CaMeL(), deps), nil
	case *Tuple:
		idx := sliceIndices(len(c.Items), start, stop, step)
		items := make([]Value, 0, len(idx))
		for _, i := range idx {
			items = append(items, c.Items[i])
		}
		deps := DepsOf(Value(c), extraDeps)
		return NewTuple(items, capabilities.CaMeL(), deps), nil
	default:
		return nil, &kindError{"'" + container.Kind().String() + "' object is not subscriptable"}
	}
}

// SetItem implements index-assignment; applies only to mutable containers.
func SetItem(container, key, val Value) error {
	switch c := container.(type) {
	case *List:
		idx, ok := key.(*Int)
		if !ok {
			return &kindError{"list indices must be integers"}
		}
		if !c.SetIndex(int(idx.Val), val) {
			return &kindError{"list assignment index out of range"}
		}
		return nil
	case *Dict:
		c.Set(key, val)
		return nil
	default:
		return &kindError{"'" + container.Kind().String() + "' object does not support item assignment"}
	}
}
