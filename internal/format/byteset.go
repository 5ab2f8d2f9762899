package format

import "sort"

// byteRange is an inclusive [Lo, Hi] range of byte values.
type byteRange struct {
	Lo, Hi byte
}

// ByteSet is a set of byte values represented as a sorted, merged list
// of disjoint inclusive ranges, the representation the original
// implementation uses (rather than a 256-entry bitmask) so that wide
// sets like "any byte" stay cheap to construct and intersect.
type ByteSet struct {
	ranges []byteRange
}

// NewByteSet builds a ByteSet from a list of inclusive ranges,
// normalizing overlapping or adjacent ranges.
func NewByteSet(ranges ...[2]byte) ByteSet {
	bs := ByteSet{}
	for _, r := range ranges {
		bs.ranges = append(bs.ranges, byteRange{Lo: r[0], Hi: r[1]})
	}
	bs.normalize()
	return bs
}

// Single returns the ByteSet containing exactly b.
func Single(b byte) ByteSet {
	return NewByteSet([2]byte{b, b})
}

// Any returns the ByteSet containing every byte value.
func Any() ByteSet {
	return NewByteSet([2]byte{0x00, 0xFF})
}

// None returns the empty ByteSet.
func None() ByteSet {
	return ByteSet{}
}

func (bs *ByteSet) normalize() {
	if len(bs.ranges) == 0 {
		return
	}
	sort.Slice(bs.ranges, func(i, j int) bool { return bs.ranges[i].Lo < bs.ranges[j].Lo })
	out := bs.ranges[:1]
	for _, r := range bs.ranges[1:] {
		last := &out[len(out)-1]
		if int(r.Lo) <= int(last.Hi)+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	bs.ranges = out
}

// Ranges returns the set's disjoint, sorted inclusive ranges.
func (bs ByteSet) Ranges() [][2]byte {
	out := make([][2]byte, len(bs.ranges))
	for i, r := range bs.ranges {
		out[i] = [2]byte{r.Lo, r.Hi}
	}
	return out
}

// IsEmpty reports whether the set contains no bytes.
func (bs ByteSet) IsEmpty() bool { return len(bs.ranges) == 0 }

// Contains reports whether b is a member of the set.
func (bs ByteSet) Contains(b byte) bool {
	for _, r := range bs.ranges {
		if b >= r.Lo && b <= r.Hi {
			return true
		}
	}
	return false
}

// Intersect returns the set of bytes present in both bs and other.
func (bs ByteSet) Intersect(other ByteSet) ByteSet {
	var out ByteSet
	for _, a := range bs.ranges {
		for _, b := range other.ranges {
			lo := maxByte(a.Lo, b.Lo)
			hi := minByte(a.Hi, b.Hi)
			if lo <= hi {
				out.ranges = append(out.ranges, byteRange{Lo: lo, Hi: hi})
			}
		}
	}
	out.normalize()
	return out
}

// Subtract returns the set of bytes present in bs but not in other.
func (bs ByteSet) Subtract(other ByteSet) ByteSet {
	var out ByteSet
	for _, a := range bs.ranges {
		// lo tracks the next candidate byte as an int so it can run past
		// 0xFF (to 256) when a subtracted range reaches the top of the
		// byte range, without wrapping back to 0x00.
		lo, hi := int(a.Lo), int(a.Hi)
		for _, b := range other.ranges {
			bLo, bHi := int(b.Lo), int(b.Hi)
			if bHi < lo || bLo > hi {
				continue
			}
			if bLo > lo {
				out.ranges = append(out.ranges, byteRange{Lo: byte(lo), Hi: byte(bLo - 1)})
			}
			lo = bHi + 1
			if lo > hi {
				break
			}
		}
		if lo <= hi {
			out.ranges = append(out.ranges, byteRange{Lo: byte(lo), Hi: byte(hi)})
		}
	}
	out.normalize()
	return out
}

// Union returns the set of bytes present in either bs or other.
func (bs ByteSet) Union(other ByteSet) ByteSet {
	out := ByteSet{ranges: append(append([]byteRange{}, bs.ranges...), other.ranges...)}
	out.normalize()
	return out
}

func maxByte(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

func minByte(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}
