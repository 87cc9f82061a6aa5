package settings

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Unit is a size unit tag.
type Unit int

const (
	Bytes Unit = iota
	Kilobytes
	Megabytes
)

const (
	kilo = 1_000
	mega = 1_000_000
)

// Size is a magnitude in a unit.
type Size struct {
	Unit      Unit
	Magnitude uint64
}

// Bytes converts using decimal multipliers.
func (s Size) Bytes() int64 {
	switch s.Unit {
	case Megabytes:
		return int64(s.Magnitude) * mega
	case Kilobytes:
		return int64(s.Magnitude) * kilo
	default:
		return int64(s.Magnitude)
	}
}

func (s Size) String() string { return fmt.Sprintf("%d%s", s.Magnitude, s.tag()) }

// checkMagnitude rejects sizes whose byte count does not fit in an int64.
func checkMagnitude(u Unit, n uint64) error {
	limit := uint64(math.MaxInt64)
	switch u {
	case Megabytes:
		limit /= mega
	case Kilobytes:
		limit /= kilo
	}
	if n > limit {
		return fmt.Errorf("%w: size %d%s too large", ErrParse, n, Size{Unit: u}.tag())
	}
	return nil
}

func (s Size) tag() string {
	switch s.Unit {
	case Megabytes:
		return "mb"
	case Kilobytes:
		return "kb"
	default:
		return "bytes"
	}
}

func unitForKey(key string) (Unit, bool) {
	switch key {
	case "mb":
		return Megabytes, true
	case "kb":
		return Kilobytes, true
	case "bytes":
		return Bytes, true
	default:
		return 0, false
	}
}

var sizePattern = regexp.MustCompile(`^(\d+)([A-Za-z]{2})?$`)

// ParseSize parses "<digits>[tag]" such as "512kb". "mb" and "kb" select
// their units; no tag or any other lowercase two-letter tag means bytes.
// Tags containing uppercase letters are rejected.
func ParseSize(s string) (Size, error) {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Size{}, fmt.Errorf("%w: size %q", ErrParse, s)
	}

	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Size{}, fmt.Errorf("%w: size %q: %v", ErrParse, s, err)
	}

	tag := m[2]
	if tag != strings.ToLower(tag) {
		return Size{}, fmt.Errorf("%w: size tag %q must be lowercase", ErrParse, tag)
	}

	sz := Size{Unit: Bytes, Magnitude: n}
	switch tag {
	case "mb":
		sz.Unit = Megabytes
	case "kb":
		sz.Unit = Kilobytes
	}
	if err := checkMagnitude(sz.Unit, n); err != nil {
		return Size{}, err
	}
	return sz, nil
}
