package value

import (
	"strings"

	"github.com/jbhoffman613/camel-prompt-injection/internal/capabilities"
)

// Char is a single capability-labelled character. Strings are sequences of
// Chars so that formatting one untrusted substitution into an otherwise
// public template taints the result at character granularity (spec §3.4).
type Char struct {
	Rune rune
	Meta capabilities.Capabilities
	Deps []Value
}

func (c Char) Capabilities() capabilities.Capabilities { return c.Meta }
func (c Char) Dependencies() []Value                   { return c.Deps }

// Str is a sequence of Chars sharing an overall Capabilities/dependency
// envelope (the value's own label) plus each character's individual label.
type Str struct {
	base
	Chars []Char
}

// NewStrFromRaw builds a Str where every character shares the same label
// and dependencies (the common case: a literal or a trusted tool result).
func NewStrFromRaw(s string, meta capabilities.Capabilities, deps []Value) *Str {
	runes := []rune(s)
	chars := make([]Char, len(runes))
	for i, r := range runes {
		chars[i] = Char{Rune: r, Meta: meta, Deps: append([]Value(nil), deps...)}
	}
	return &Str{newBase(meta, deps), chars}
}

// NewStr builds a Str directly from already-labelled characters, used by
// concatenation and f-string interpolation to preserve per-character
// provenance.
func NewStr(chars []Char, meta capabilities.Capabilities, deps []Value) *Str {
	return &Str{newBase(meta, deps), append([]Char(nil), chars...)}
}

func (*Str) Kind() Kind { return KindStr }

func (s *Str) Raw() any { return s.Go() }

// Go renders the plain Go string payload, ignoring per-character labels.
func (s *Str) Go() string {
	var b strings.Builder
	for _, c := range s.Chars {
		b.WriteRune(c.Rune)
	}
	return b.String()
}

func (s *Str) String() string { return s.Go() }

func (s *Str) WithDependency(extra Value) Value {
	return NewStr(s.Chars, s.meta, appendDeps(s.deps, []Value{extra}))
}

// Len returns the character count.
func (s *Str) Len() int { return len(s.Chars) }

// Concat implements `+`: metadata is camel(), dependencies are both
// operands, and per-character labels are preserved from each side.
func (s *Str) Concat(other *Str) *Str {
	chars := append(append([]Char(nil), s.Chars...), other.Chars...)
	return NewStr(chars, capabilities.CaMeL(), DepsOf(Value(s), Value(other)))
}

// Repeat implements `*` with an int: Python's str*int semantics.
func (s *Str) Repeat(n int64) *Str {
	if n <= 0 {
		return NewStr(nil, capabilities.CaMeL(), DepsOf(Value(s)))
	}
	var chars []Char
	for i := int64(0); i < n; i++ {
		chars = append(chars, s.Chars...)
	}
	return NewStr(chars, capabilities.CaMeL(), DepsOf(Value(s)))
}

// Contains implements `x in s` for two strings: the substring-membership
// form. Positive result depends on the haystack and the needle; negative
// result depends on every character of the haystack (spec §4.2
// Containment) because absence is evidence about the whole string.
func (s *Str) Contains(needle *Str) *Bool {
	haystack := s.Go()
	n := needle.Go()
	if strings.Contains(haystack, n) {
		deps := DepsOf(Value(s), Value(needle))
		return NewBoolResult(true, deps...)
	}
	deps := make([]Value, 0, len(s.Chars)+1)
	for range s.Chars {
		deps = append(deps, s)
	}
	deps = append(deps, needle)
	return NewBoolResult(false, deps...)
}

// Slice implements Python-style slicing (start/stop/step, negative indices
// supported). Dependencies include the receiver and are attributed per
// §4.2's "slicing propagates the sequence and the slice bounds" rule; the
// bound values themselves are passed in by the interpreter as extraDeps.
func (s *Str) Slice(start, stop, step int, extraDeps []Value) *Str {
	idx := sliceIndices(len(s.Chars), start, stop, step)
	chars := make([]Char, 0, len(idx))
	for _, i := range idx {
		chars = append(chars, s.Chars[i])
	}
	deps := DepsOf(Value(s), extraDeps)
	return NewStr(chars, capabilities.CaMeL(), deps)
}

// Index returns the character at a Python-style (possibly negative) index.
func (s *Str) Index(i int) (Char, bool) {
	n := len(s.Chars)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return Char{}, false
	}
	return s.Chars[i], true
}

// CharAsStr wraps a single Char back into a one-rune Str, as returned by
// subscripting or iteration.
func CharAsStr(c Char) *Str {
	return NewStr([]Char{c}, c.Meta, c.Deps)
}

// sliceIndices mirrors Python's slice.indices() resolution.
func sliceIndices(length, start, stop, step int) []int {
	if step == 0 {
		step = 1
	}
	var lo, hi int
	if step > 0 {
		lo, hi = 0, length
	} else {
		lo, hi = -1, length-1
	}
	s := clampIndex(start, length, step > 0)
	e := clampIndex(stop, length, step > 0)
	_ = lo
	_ = hi
	var out []int
	if step > 0 {
		for i := s; i < e; i += step {
			out = append(out, i)
		}
	} else {
		for i := s; i > e; i += step {
			out = append(out, i)
		}
	}
	return out
}

func clampIndex(i, length int, forward bool) int {
	if i < 0 {
		i += length
	}
	if forward {
		if i < 0 {
			i = 0
		}
		if i > length {
			i = length
		}
	} else {
		if i < -1 {
			i = -1
		}
		if i >= length {
			i = length - 1
		}
	}
	return i
}
