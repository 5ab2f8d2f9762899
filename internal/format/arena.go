package format

import "fmt"

// slot is the mutable cell an Arena hands out a Handle to. It starts
// undefined (Format == nil) and is resolved exactly once by Define.
type slot struct {
	name   string
	format Format
}

// Handle addresses a slot in an Arena: an indirection for recursive
// formats, packaged here as a small struct holding a pointer to the
// slot rather than a bare int. Dereferencing follows that pointer, so
// the Arena passed to IsDefined/Resolve is not consulted and Nullable
// needs no arena at all.
type Handle struct {
	slot *slot
}

// Arena owns a set of named format slots that may reference each other
// through Indirect, enabling mutually or self-recursive definitions
// (e.g. OpenType extension subtables) without a Format referring to
// itself directly.
type Arena struct {
	slots []*slot
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Declare reserves a named, initially-undefined slot and returns its
// Handle. The name is used only for diagnostics.
func (a *Arena) Declare(name string) Handle {
	s := &slot{name: name}
	a.slots = append(a.slots, s)
	return Handle{slot: s}
}

// Define resolves a previously-declared handle to a concrete Format.
// Defining an already-defined handle is a programmer error: it
// indicates the caller is reusing a Declare across unrelated
// definitions, which would silently change the meaning of every
// Indirect already built against it.
func (a *Arena) Define(h Handle, f Format) {
	if h.slot.format != nil {
		panic(fmt.Sprintf("format: handle %q already defined", h.slot.name))
	}
	h.slot.format = f
}

// IsDefined reports whether h has been resolved by a prior Define.
func (a *Arena) IsDefined(h Handle) bool {
	return h.slot.format != nil
}

// Name returns the diagnostic name h was declared with.
func (h Handle) Name() string {
	return h.slot.name
}

// Resolve dereferences h to its defined Format. It panics if h was
// never defined; callers that need a recoverable outcome (nullability
// analysis, compilation) should check definedness themselves first or
// rely on Nullable's UndefinedHandleError.
func (a *Arena) Resolve(h Handle) Format {
	if h.slot.format == nil {
		panic(fmt.Sprintf("format: handle %q was never defined", h.slot.name))
	}
	return h.slot.format
}

// UndefinedHandleError reports that a Handle was dereferenced (via
// Indirect, during nullability analysis or compilation) before Define
// was ever called on it.
type UndefinedHandleError struct {
	Name string
}

func (e *UndefinedHandleError) Error() string {
	return fmt.Sprintf("format: handle %q was never defined", e.Name)
}

// CyclicFormatError reports that determining nullability required
// evaluating an Indirect chain through itself before reaching any base
// case. This is a compile-time error rather than infinite recursion.
type CyclicFormatError struct {
	Name string
}

func (e *CyclicFormatError) Error() string {
	return fmt.Sprintf("format: cyclic nullability through handle %q", e.Name)
}

// Nullable is a compile-time property: whether f accepts the empty
// byte string. It returns an error if the computation dereferences an
// undefined handle or a genuine nullability cycle (see
// CyclicFormatError).
func Nullable(f Format) (bool, error) {
	return nullable(f, map[*slot]bool{})
}

func nullable(f Format, visiting map[*slot]bool) (bool, error) {
	switch n := f.(type) {
	case Fail:
		return false, nil
	case EndOfInput:
		return true, nil
	case Byte:
		return false, nil
	case Union:
		for _, arm := range n.Arms {
			ok, err := nullable(arm.Format, visiting)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case Tuple:
		for _, sub := range n.Elems {
			ok, err := nullable(sub, visiting)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case Record:
		for _, field := range n.Fields {
			ok, err := nullable(field.Format, visiting)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
		return true, nil
	case Repeat:
		return true, nil
	case Repeat1:
		return false, nil
	case RepeatCount:
		return true, nil
	case Slice:
		return true, nil
	case WithRelativeOffset:
		return true, nil
	case Map:
		return nullable(n.Inner, visiting)
	case Match:
		for _, arm := range n.Arms {
			ok, err := nullable(arm.Format, visiting)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case Indirect:
		s := n.Handle.slot
		if s.format == nil {
			return false, &UndefinedHandleError{Name: s.name}
		}
		if visiting[s] {
			return false, &CyclicFormatError{Name: s.name}
		}
		visiting[s] = true
		defer delete(visiting, s)
		return nullable(s.format, visiting)
	default:
		return false, fmt.Errorf("format: unreachable format variant %T", f)
	}
}
