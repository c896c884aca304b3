// Package address compiles OSC address patterns and matches them
// against concrete OSC addresses, per the OSC 1.0 spec
// (https://ccrma.stanford.edu/groups/osc/spec-1_0.html).
//
// A pattern like "/oscillator/[0-9]/{frequency,phase}" is compiled
// once with New and the resulting Matcher is reused for every
// incoming address. Pattern grammar, per segment:
//
//   - ?       one word character ([A-Za-z0-9_])
//   - *       zero or more word characters
//   - [abc]   one character from the set; [a-z] ranges work
//   - [!abc]  one character not in the set
//   - {a,bb}  any one of the listed literals
//   - anything else matches literally
//
// Neither ? nor * ever crosses a / boundary: a pattern with three
// segments can only match an address with three segments.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/DrLuke/rosc"
)

var (
	// ErrBadAddressPattern is returned by New for a pattern that
	// cannot be compiled.
	ErrBadAddressPattern = errors.New("bad address pattern")
	// ErrInvalidCharClass is returned by New for a [...] class that
	// cannot be turned into a character test.
	ErrInvalidCharClass = errors.New("invalid character class")
	// ErrInvalidAddress is returned by MatchAddress for an address
	// that is structurally malformed, as opposed to one that simply
	// doesn't match.
	ErrInvalidAddress = errors.New("invalid address")
)

// reserved characters may appear in patterns but never in concrete
// addresses.
const reserved = "#*,?[]{}"

// Matcher is a compiled OSC address pattern. Compilation is the
// expensive step; build a Matcher once per pattern and reuse it.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	segments []segmentMatcher
}

// New compiles an address pattern. The pattern must begin with "/"
// and contain no empty segments; the error is ErrBadAddressPattern or
// ErrInvalidCharClass, wrapped with detail.
func New(pattern string) (*Matcher, error) {
	segments, err := parsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Matcher{segments: segments}, nil
}

// Match reports whether the concrete address matches the pattern.
// A structurally invalid address matches nothing; use MatchAddress to
// tell invalid apart from unmatched.
func (m *Matcher) Match(address string) bool {
	ok, err := m.MatchAddress(address)
	return err == nil && ok
}

// MatchAddress reports whether the concrete address matches the
// pattern. The address must begin with "/", have no empty segments
// and contain none of the reserved characters "#*,?[]{}"; otherwise
// the result is an error wrapping ErrInvalidAddress.
func (m *Matcher) MatchAddress(address string) (bool, error) {
	segs, err := splitAddress(address)
	if err != nil {
		return false, err
	}
	if len(segs) != len(m.segments) {
		return false, nil
	}
	for i, sm := range m.segments {
		if !sm.match(segs[i]) {
			return false, nil
		}
	}
	return true, nil
}

// MatchMessage reports whether the message's address matches the
// pattern.
func (m *Matcher) MatchMessage(msg *rosc.Message) bool {
	return m.Match(msg.Addr)
}

// String reconstructs the pattern text from the compiled form.
func (m *Matcher) String() string {
	var sb strings.Builder
	for _, sm := range m.segments {
		sb.WriteByte('/')
		sb.WriteString(sm.String())
	}
	return sb.String()
}

func splitAddress(address string) ([]string, error) {
	if address == "" {
		return nil, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	if address[0] != '/' {
		return nil, fmt.Errorf("%w: %q does not begin with '/'", ErrInvalidAddress, address)
	}
	segs := strings.Split(address[1:], "/")
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrInvalidAddress, address)
		}
		for i := 0; i < len(seg); i++ {
			c := seg[i]
			if c <= ' ' || c == 0x7f || strings.IndexByte(reserved, c) >= 0 {
				return nil, fmt.Errorf("%w: reserved character %q in %q", ErrInvalidAddress, c, address)
			}
		}
	}
	return segs, nil
}
