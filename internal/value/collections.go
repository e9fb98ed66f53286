package value

import (
	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

// Tuple is an immutable ordered sequence.
type Tuple struct {
	base
	Items []Value
}

func NewTuple(items []Value, meta capabilities.Capabilities, deps []Value) *Tuple {
	return &Tuple{newBase(meta, deps), append([]Value(nil), items...)}
}
func (*Tuple) Kind() Kind { return KindTuple }
func (t *Tuple) Raw() any {
	out := make([]any, len(t.Items))
	for i, v := range t.Items {
		out[i] = v.Raw()
	}
	return out
}
func (t *Tuple) String() string { return reprSeq("(", t.Items, ")") }
func (t *Tuple) WithDependency(extra Value) Value {
	return NewTuple(t.Items, t.meta, appendDeps(t.deps, []Value{extra}))
}

// List is a mutable ordered sequence; the interpreter mutates Items in
// place for append/index-assignment rather than rebinding the namespace
// entry, per spec §3.5's "interior mutability for containers".
type List struct {
	base
	Items []Value
}

func NewList(items []Value, meta capabilities.Capabilities, deps []Value) *List {
	return &List{newBase(meta, deps), append([]Value(nil), items...)}
}
func (*List) Kind() Kind { return KindList }
func (l *List) Raw() any {
	out := make([]any, len(l.Items))
	for i, v := range l.Items {
		out[i] = v.Raw()
	}
	return out
}
func (l *List) String() string { return reprSeq("[", l.Items, "]") }
func (l *List) WithDependency(extra Value) Value {
	return &List{newBase(l.meta, appendDeps(l.deps, []Value{extra})), l.Items}
}

// Append mutates the list in place.
func (l *List) Append(v Value) { l.Items = append(l.Items, v) }

// SetIndex mutates the element at a Python-style index in place.
func (l *List) SetIndex(i int, v Value) bool {
	n := len(l.Items)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return false
	}
	l.Items[i] = v
	return true
}

// Set is a mutable unordered collection, de-duplicated by HashKey.
type Set struct {
	base
	order []string
	byKey map[string]Value
}

func NewSet(items []Value, meta capabilities.Capabilities, deps []Value) *Set {
	s := &Set{base: newBase(meta, deps), byKey: make(map[string]Value, len(items))}
	for _, v := range items {
		s.Add(v)
	}
	return s
}
func (*Set) Kind() Kind { return KindSet }
func (s *Set) Raw() any {
	out := make([]any, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k].Raw())
	}
	return out
}
func (s *Set) String() string { return reprSeq("{", s.Items(), "}") }
func (s *Set) Len() int       { return len(s.order) }
func (s *Set) WithDependency(extra Value) Value {
	return &Set{newBase(s.meta, appendDeps(s.deps, []Value{extra})), s.order, s.byKey}
}

// Add mutates the set in place; returns false if v was already a member
// (by HashKey).
func (s *Set) Add(v Value) bool {
	key := HashKey(v)
	if _, ok := s.byKey[key]; ok {
		return false
	}
	if s.byKey == nil {
		s.byKey = make(map[string]Value)
	}
	s.byKey[key] = v
	s.order = append(s.order, key)
	return true
}

// Remove mutates the set in place.
func (s *Set) Remove(v Value) bool {
	key := HashKey(v)
	if _, ok := s.byKey[key]; !ok {
		return false
	}
	delete(s.byKey, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports set membership by HashKey.
func (s *Set) Contains(v Value) bool {
	_, ok := s.byKey[HashKey(v)]
	return ok
}

// Items returns set members in insertion order.
func (s *Set) Items() []Value {
	out := make([]Value, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.byKey[k])
	}
	return out
}

// Dict is a mutable mapping, keyed by HashKey with original key values
// preserved for iteration/reconstruction.
type Dict struct {
	base
	Keys   []Value
	values map[string]Value
	index  map[string]int
}

func NewDict(meta capabilities.Capabilities, deps []Value) *Dict {
	return &Dict{base: newBase(meta, deps), values: map[string]Value{}, index: map[string]int{}}
}
func (*Dict) Kind() Kind { return KindDict }
func (d *Dict) Raw() any {
	out := make(map[any]any, len(d.Keys))
	for _, k := range d.Keys {
		out[k.Raw()] = d.values[HashKey(k)].Raw()
	}
	return out
}
func (d *Dict) String() string { return "{...}" }
func (d *Dict) WithDependency(extra Value) Value {
	return &Dict{newBase(d.meta, appendDeps(d.deps, []Value{extra})), d.Keys, d.values, d.index}
}

// Set mutates the dict in place, inserting or overwriting by HashKey.
func (d *Dict) Set(k, v Value) {
	key := HashKey(k)
	if _, ok := d.values[key]; !ok {
		d.index[key] = len(d.Keys)
		d.Keys = append(d.Keys, k)
	}
	d.values[key] = v
}

// Get looks up by HashKey.
func (d *Dict) Get(k Value) (Value, bool) {
	v, ok := d.values[HashKey(k)]
	return v, ok
}

// Delete removes a key in place.
func (d *Dict) Delete(k Value) bool {
	key := HashKey(k)
	idx, ok := d.index[key]
	if !ok {
		return false
	}
	delete(d.values, key)
	delete(d.index, key)
	d.Keys = append(d.Keys[:idx], d.Keys[idx+1:]...)
	for key2, i := range d.index {
		if i > idx {
			d.index[key2] = i - 1
		}
	}
	return true
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.Keys) }

// Iterator wraps a lazily-consumed sequence of already-labelled values
// (produced by iterate()); each yielded value depends on the source
// collection per spec §4.2.
type Iterator struct {
	base
	items []Value
	pos   int
}

func NewIterator(items []Value, meta capabilities.Capabilities, deps []Value) *Iterator {
	return &Iterator{base: newBase(meta, deps), items: items}
}
func (*Iterator) Kind() Kind        { return KindIterator }
func (it *Iterator) Raw() any       { return nil }
func (it *Iterator) String() string { return "<iterator>" }
func (it *Iterator) WithDependency(extra Value) Value {
	return &Iterator{newBase(it.meta, appendDeps(it.deps, []Value{extra})), it.items, it.pos}
}

// Next returns the next value and true, or (nil, false) when exhausted.
func (it *Iterator) Next() (Value, bool) {
	if it.pos >= len(it.items) {
		return nil, false
	}
	v := it.items[it.pos]
	it.pos++
	return v, true
}

// Iterate produces an Iterator over a collection's elements, each
// dependent on the source per spec §4.2 "Iteration yields values already
// labelled by the collection".
func Iterate(v Value) (*Iterator, error) {
	var items []Value
	switch t := v.(type) {
	case *Tuple:
		items = withDep(t.Items, t)
	case *List:
		items = withDep(t.Items, t)
	case *Set:
		items = withDep(t.Items(), t)
	case *Dict:
		items = withDep(t.Keys, t)
	case *Str:
		for _, c := range t.Chars {
			items = append(items, CharAsStr(c))
		}
		items = withDep(items, t)
	default:
		return nil, typeErrorNotIterable(v)
	}
	return NewIterator(items, capabilities.CaMeL(), DepsOf(v)), nil
}

func withDep(items []Value, source Value) []Value {
	out := make([]Value, len(items))
	for i, it := range items {
		out[i] = rebindDeps(it, source)
	}
	return out
}

// rebindDeps returns a shallow copy of v with source appended to its
// dependency list, used when iteration/containment/attribute-read must
// additionally depend on the collection or receiver that produced it.
func rebindDeps(v Value, source Value) Value {
	return v.WithDependency(source)
}

func reprSeq(open string, items []Value, close string) string {
	s := open
	for i, v := range items {
		if i > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s + close
}

func typeErrorNotIterable(v Value) error {
	return &kindError{"'" + v.Kind().String() + "' object is not iterable"}
}

type kindError struct{ msg string }

func (e *kindError) Error() string { return e.msg }
