package server

import (
	"errors"
	"testing"

	"github.com/DrLuke/rosc"
	"github.com/DrLuke/rosc/address"
)

func TestHandleCompilesPattern(t *testing.T) {
	l := NewListener(nil, 1)
	if err := l.Handle("/voice/[0-9]/{gain,pan}", HandlerFunc(func(*rosc.Message) error {
		return nil
	})); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	err := l.Handle("/voice/[9-0]", HandlerFunc(func(*rosc.Message) error {
		return nil
	}))
	if !errors.Is(err, address.ErrInvalidCharClass) {
		t.Errorf("Handle with reversed range = %v, want ErrInvalidCharClass", err)
	}
	err = l.Handle("/{unclosed", HandlerFunc(func(*rosc.Message) error {
		return nil
	}))
	if !errors.Is(err, address.ErrBadAddressPattern) {
		t.Errorf("Handle with unclosed alternative = %v, want ErrBadAddressPattern", err)
	}
	// The bad routes must not have been registered.
	if got := len(l.routes); got != 1 {
		t.Errorf("got %d routes, want 1", got)
	}
}

func TestDispatch(t *testing.T) {
	l := NewListener(nil, 1)
	var got []string
	record := func(name string) Handler {
		return HandlerFunc(func(m *rosc.Message) error {
			got = append(got, name+":"+m.Addr)
			return nil
		})
	}
	for _, r := range []struct {
		pattern string
		name    string
	}{
		{"/voice/[0-9]/gain", "gain"},
		{"/voice/[0-9]/*", "any"},
		{"/voice/1/{gain,pan}", "one"},
	} {
		if err := l.Handle(r.pattern, record(r.name)); err != nil {
			t.Fatalf("Handle(%q): %v", r.pattern, err)
		}
	}

	if err := l.handle(&rosc.Message{Addr: "/voice/1/gain"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	want := []string{"gain:/voice/1/gain", "any:/voice/1/gain", "one:/voice/1/gain"}
	if len(got) != len(want) {
		t.Fatalf("handlers called: %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("handlers called: %v, want %v", got, want)
			break
		}
	}

	got = nil
	if err := l.handle(&rosc.Message{Addr: "/voice/2/pan"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(got) != 1 || got[0] != "any:/voice/2/pan" {
		t.Errorf("handlers called: %v, want [any:/voice/2/pan]", got)
	}

	// A message matching nothing is reported.
	var unmatchedErr UnmatchedRouteError
	if err := l.handle(&rosc.Message{Addr: "/other"}); !errors.As(err, &unmatchedErr) {
		t.Errorf("handle of unmatched address = %v, want UnmatchedRouteError", err)
	}
}
