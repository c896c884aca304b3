package address

import (
	"fmt"
	"strings"
)

// A segment of an address pattern compiles to an ordered sequence of
// rules. The segment matches a concrete address segment iff some
// assignment of characters to rules consumes the whole segment.
type segmentMatcher struct {
	rules []rule
}

// rule is one matchable unit of a pattern segment. consume reports
// every prefix length of s the rule could claim, or nil if it cannot
// match at the front of s at all.
type rule interface {
	consume(s string) []int
	String() string
}

// match reports whether seg is fully consumed by the rule sequence.
// Wildcards can claim any number of word characters, so this is a
// search over (rule index, offset) states with an explicit stack;
// visited states are pruned, bounding the work at
// len(rules)*len(seg) states regardless of how the wildcards nest.
func (sm segmentMatcher) match(seg string) bool {
	type state struct {
		rule, off int
	}
	stack := []state{{0, 0}}
	visited := make(map[state]bool)
	for len(stack) > 0 {
		l := len(stack) - 1
		st := stack[l]
		stack = stack[:l]
		if visited[st] {
			continue
		}
		visited[st] = true
		if st.rule == len(sm.rules) {
			if st.off == len(seg) {
				return true
			}
			continue
		}
		for _, n := range sm.rules[st.rule].consume(seg[st.off:]) {
			stack = append(stack, state{st.rule + 1, st.off + n})
		}
	}
	return false
}

func (sm segmentMatcher) String() string {
	var sb strings.Builder
	for _, r := range sm.rules {
		sb.WriteString(r.String())
	}
	return sb.String()
}

func isWordChar(c byte) bool {
	return c == '_' ||
		'a' <= c && c <= 'z' ||
		'A' <= c && c <= 'Z' ||
		'0' <= c && c <= '9'
}

// literal matches its text exactly.
type literal struct {
	text string
}

func (l literal) consume(s string) []int {
	if strings.HasPrefix(s, l.text) {
		return []int{len(l.text)}
	}
	return nil
}

func (l literal) String() string { return l.text }

// wildcard is "*": zero or more word characters. It offers every
// length from zero up to the end of the leading word-character run.
type wildcard struct{}

func (wildcard) consume(s string) []int {
	n := 0
	for n < len(s) && isWordChar(s[n]) {
		n++
	}
	lens := make([]int, n+1)
	for i := range lens {
		lens[i] = i
	}
	return lens
}

func (wildcard) String() string { return "*" }

// singleAny is "?": exactly one word character.
type singleAny struct{}

func (singleAny) consume(s string) []int {
	if len(s) > 0 && isWordChar(s[0]) {
		return []int{1}
	}
	return nil
}

func (singleAny) String() string { return "?" }

// charClass matches one character against a set, e.g. [a-d0] holds
// 'a' through 'd' and '0'. If invert is set the sense flips.
type charClass struct {
	chars  [256]bool
	invert bool
	spec   string // the text between the brackets, minus any leading !
}

func (cc charClass) consume(s string) []int {
	if len(s) > 0 && cc.chars[s[0]] != cc.invert {
		return []int{1}
	}
	return nil
}

func (cc charClass) String() string {
	if cc.invert {
		return "[!" + cc.spec + "]"
	}
	return "[" + cc.spec + "]"
}

// alternative matches any one of its literal options.
type alternative struct {
	options []string
}

func (a alternative) consume(s string) []int {
	var lens []int
	for _, o := range a.options {
		if strings.HasPrefix(s, o) {
			lens = append(lens, len(o))
		}
	}
	return lens
}

func (a alternative) String() string {
	return "{" + strings.Join(a.options, ",") + "}"
}

// parsePattern compiles a full address pattern into one segmentMatcher
// per /-delimited segment.
func parsePattern(pattern string) ([]segmentMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrBadAddressPattern)
	}
	if pattern[0] != '/' {
		return nil, fmt.Errorf("%w: %q does not begin with '/'", ErrBadAddressPattern, pattern)
	}
	segs := strings.Split(pattern[1:], "/")
	sms := make([]segmentMatcher, len(segs))
	for i, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("%w: empty segment in %q", ErrBadAddressPattern, pattern)
		}
		for j := 0; j < len(seg); j++ {
			if c := seg[j]; c <= ' ' || c == 0x7f {
				return nil, fmt.Errorf("%w: whitespace or control character %q in segment %q",
					ErrBadAddressPattern, c, seg)
			}
		}
		sm, err := parseSegment(seg)
		if err != nil {
			return nil, err
		}
		sms[i] = sm
	}
	return sms, nil
}

func parseSegment(seg string) (segmentMatcher, error) {
	var rules []rule
	rest := seg
	for len(rest) > 0 {
		r, rem, err := parseRule(rest)
		if err != nil {
			return segmentMatcher{}, err
		}
		rules = append(rules, r)
		rest = rem
	}
	return segmentMatcher{rules: rules}, nil
}

// parseRule consumes one rule from the front of s and returns it with
// the remaining input. s must be non-empty.
func parseRule(s string) (rule, string, error) {
	switch s[0] {
	case '{':
		return parseAlternative(s)
	case '[':
		return parseCharClass(s)
	case '*':
		return wildcard{}, s[1:], nil
	case '?':
		return singleAny{}, s[1:], nil
	}
	end := strings.IndexAny(s, "*?[{")
	if end < 0 {
		end = len(s)
	}
	return literal{s[:end]}, s[end:], nil
}

func parseAlternative(s string) (rule, string, error) {
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return nil, "", fmt.Errorf("%w: unterminated alternative %q", ErrBadAddressPattern, s)
	}
	body := s[1:end]
	if body == "" {
		return nil, "", fmt.Errorf("%w: empty alternative %q", ErrBadAddressPattern, s[:end+1])
	}
	options := strings.Split(body, ",")
	for _, o := range options {
		if o == "" {
			return nil, "", fmt.Errorf("%w: empty option in alternative %q", ErrBadAddressPattern, s[:end+1])
		}
		if strings.ContainsAny(o, "*?[]{}") {
			return nil, "", fmt.Errorf("%w: option %q in alternative %q is not a literal",
				ErrBadAddressPattern, o, s[:end+1])
		}
	}
	return alternative{options}, s[end+1:], nil
}

func parseCharClass(s string) (rule, string, error) {
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return nil, "", fmt.Errorf("%w: unterminated character class %q", ErrBadAddressPattern, s)
	}
	var cc charClass
	body := s[1:end]
	// A leading ! inverts the class, except in "[!]" where it is the
	// only member.
	if len(body) > 1 && body[0] == '!' {
		cc.invert = true
		body = body[1:]
	}
	if body == "" {
		return nil, "", fmt.Errorf("%w: empty class %q", ErrInvalidCharClass, s[:end+1])
	}
	cc.spec = body
	for i := 0; i < len(body); i++ {
		c := body[i]
		// A dash is a range separator only between two other
		// characters; first or last it is a plain member.
		if c == '-' && i > 0 && i+1 < len(body) {
			lo, hi := body[i-1], body[i+1]
			if hi < lo {
				return nil, "", fmt.Errorf("%w: range %c-%c in %q is reversed",
					ErrInvalidCharClass, lo, hi, s[:end+1])
			}
			for d := lo; ; d++ {
				cc.chars[d] = true
				if d == hi {
					break
				}
			}
			i++
			continue
		}
		cc.chars[c] = true
	}
	return cc, s[end+1:], nil
}
