// Package addr implements real-mode segmented addresses, optionally
// located inside an overlay bank.
package addr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const overlayPrefix = "overlay_"

var (
	// ErrParse is returned for malformed addresses and offsets.
	ErrParse = errors.New("invalid address")
	// ErrAddressSpaceMismatch is returned when the distance between two
	// addresses of different overlay or segment contexts is requested.
	ErrAddressSpaceMismatch = errors.New("address space mismatch")
)

// Addr is a segment:offset address. Overlay addresses live in a separate
// address space from base image addresses with the same segment.
type Addr struct {
	Overlay bool
	Segment uint16
	Offset  uint16
}

// Parse parses an address of the form SEG:OFF or overlay_SEG:OFF,
// both fields given as hex.
func Parse(s string) (Addr, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Addr{}, fmt.Errorf("%w: '%s'", ErrParse, s)
	}

	var a Addr
	segStr := parts[0]
	if strings.HasPrefix(segStr, overlayPrefix) {
		a.Overlay = true
		segStr = segStr[len(overlayPrefix):]
	}

	seg, err := strconv.ParseUint(segStr, 16, 16)
	if err != nil {
		return Addr{}, fmt.Errorf("%w: segment of '%s'", ErrParse, s)
	}
	off, err := strconv.ParseUint(parts[1], 16, 16)
	if err != nil {
		return Addr{}, fmt.Errorf("%w: offset of '%s'", ErrParse, s)
	}

	a.Segment = uint16(seg)
	a.Offset = uint16(off)
	return a, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Addr {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseOffset parses a hex offset inside a segment, with or without
// a 0x prefix.
func ParseOffset(s string) (uint16, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	off, err := strconv.ParseUint(trimmed, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: offset '%s' is not in range [0, 0x10000)", ErrParse, s)
	}
	return uint16(off), nil
}

// BytesSince returns the number of bytes from start to a. Both addresses
// must share the same overlay flag and segment. The result is negative if
// a is located before start.
func (a Addr) BytesSince(start Addr) (int, error) {
	if a.Overlay != start.Overlay || a.Segment != start.Segment {
		return 0, fmt.Errorf("%w: %s and %s", ErrAddressSpaceMismatch, a, start)
	}
	return int(a.Offset) - int(start.Offset), nil
}

// String formats the address the way it is parsed.
func (a Addr) String() string {
	if a.Overlay {
		return fmt.Sprintf("%s%04x:%04x", overlayPrefix, a.Segment, a.Offset)
	}
	return fmt.Sprintf("%04x:%04x", a.Segment, a.Offset)
}

// OverlayBit returns 1 for overlay addresses and 0 otherwise.
func (a Addr) OverlayBit() int {
	if a.Overlay {
		return 1
	}
	return 0
}
