package address

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrLuke/rosc"
)

func TestMatcher(t *testing.T) {
	m, err := New("/oscillator/[0-9]/*/pre[!1234?*]post/{frequency,phase}/x?")
	require.NoError(t, err)

	assert.True(t, m.Match("/oscillator/1/something/preXpost/phase/xy"))
	// The negated class excludes '1'.
	assert.False(t, m.Match("/oscillator/1/something/pre1post/phase/xy"))
	assert.True(t, m.Match("/oscillator/9/s/pre_post/frequency/x_"))
	// Too few segments, never inspected further.
	assert.False(t, m.Match("/oscillator/1/something/preXpost/phase"))
	// Too many.
	assert.False(t, m.Match("/oscillator/1/something/preXpost/phase/xy/z"))
}

func TestBadAddressPattern(t *testing.T) {
	for _, pattern := range []string{
		"",
		"/",
		"//a/",
		"//empty/parts/",
		"////",
		"/{unclosed",
		"/{unclosed,alternative",
		"/[unclosed",
		"/unclosed/[range-",
		"no/leading/slash",
	} {
		t.Run(fmt.Sprintf("%q", pattern), func(t *testing.T) {
			m, err := New(pattern)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrBadAddressPattern)
			assert.Nil(t, m)
		})
	}
}

func TestInvalidCharClassPattern(t *testing.T) {
	for _, pattern := range []string{"/[z-a]", "/a/[]/b"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := New(pattern)
			assert.ErrorIs(t, err, ErrInvalidCharClass)
			assert.NotErrorIs(t, err, ErrBadAddressPattern)
		})
	}
}

func TestSegmentCountMismatch(t *testing.T) {
	m, err := New("/a/*/c")
	require.NoError(t, err)

	assert.True(t, m.Match("/a/b/c"))
	for _, addr := range []string{
		"/a",
		"/a/b",
		"/a/b/c/d",
		"/a/b/c/d/e",
	} {
		assert.False(t, m.Match(addr), "address %q", addr)
	}
}

func TestWildcardBacktracking(t *testing.T) {
	m, err := New("/a*b")
	require.NoError(t, err)

	// The wildcard consumes XXbYY, then the literal b takes the
	// trailing b.
	assert.True(t, m.Match("/aXXbYYb"))
	assert.True(t, m.Match("/ab"))
	assert.False(t, m.Match("/aXXbYY"))
}

func TestAlternativeExactness(t *testing.T) {
	m, err := New("/{frequency,phase}")
	require.NoError(t, err)

	assert.True(t, m.Match("/frequency"))
	assert.True(t, m.Match("/phase"))
	assert.False(t, m.Match("/freq"))
	assert.False(t, m.Match("/phases"))
}

func TestMatchAddressInvalid(t *testing.T) {
	m, err := New("/a/b")
	require.NoError(t, err)

	for _, addr := range []string{
		"",
		"a/b",
		"/a//b",
		"/a/b/",
		"/a/b#",
		"/a/b*",
		"/a/b,",
		"/a/b?",
		"/a/b[",
		"/a/b]",
		"/a/b{",
		"/a/b}",
		"/a/ b",
	} {
		t.Run(fmt.Sprintf("%q", addr), func(t *testing.T) {
			ok, err := m.MatchAddress(addr)
			assert.ErrorIs(t, err, ErrInvalidAddress)
			assert.False(t, ok)
			// The boolean entry point folds invalid into unmatched.
			assert.False(t, m.Match(addr))
		})
	}

	ok, err := m.MatchAddress("/a/b")
	require.NoError(t, err)
	assert.True(t, ok)

	// Valid but unmatched is not an error.
	ok, err = m.MatchAddress("/a/c")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchMessage(t *testing.T) {
	m, err := New("/oscillator/[0-9]/{frequency,phase}")
	require.NoError(t, err)

	assert.True(t, m.MatchMessage(&rosc.Message{Addr: "/oscillator/1/frequency"}))
	assert.True(t, m.MatchMessage(&rosc.Message{Addr: "/oscillator/8/phase"}))
	assert.False(t, m.MatchMessage(&rosc.Message{Addr: "/oscillator/4/detune"}))
}

func TestCompileIdempotent(t *testing.T) {
	const pattern = "/oscillator/[0-9]/*/pre[!1234?*]post/{frequency,phase}/x?"
	m1, err := New(pattern)
	require.NoError(t, err)
	m2, err := New(pattern)
	require.NoError(t, err)

	assert.Equal(t, m1.String(), m2.String())
	for _, addr := range []string{
		"/oscillator/1/something/preXpost/phase/xy",
		"/oscillator/1/something/pre1post/phase/xy",
		"/oscillator/0/x/preApost/frequency/x9",
		"/oscillator/a/x/preApost/frequency/x9",
		"/a/b",
	} {
		assert.Equal(t, m1.Match(addr), m2.Match(addr), "address %q", addr)
	}
}

func TestMatcherString(t *testing.T) {
	for _, pattern := range []string{
		"/tempo",
		"/oscillator/[0-9]/*/pre[!1234?*]post/{frequency,phase}/x?",
		"/a/*/c",
		"/x[a-f]y",
	} {
		t.Run(pattern, func(t *testing.T) {
			m, err := New(pattern)
			require.NoError(t, err)
			assert.Equal(t, pattern, m.String())
		})
	}
}

func TestConcurrentMatch(t *testing.T) {
	m, err := New("/voice/[0-9]/{gain,pan}")
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func() {
			ok := true
			for j := 0; j < 1000; j++ {
				ok = ok &&
					m.Match("/voice/3/gain") &&
					!m.Match("/voice/x/gain")
			}
			done <- ok
		}()
	}
	for i := 0; i < 8; i++ {
		assert.True(t, <-done)
	}
}
