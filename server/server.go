// Package server implements an OSC server that receives messages over
// UDP and dispatches them to handlers registered on address patterns.
package server

import (
	"context"
	"fmt"
	"log"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/DrLuke/rosc"
	"github.com/DrLuke/rosc/address"
)

// Handler is something that can handle OSC messages.
type Handler interface {
	Handle(*rosc.Message) error
}

// HandlerFunc converts a function into a Handler.
func HandlerFunc(f func(*rosc.Message) error) Handler {
	return handlerFunc(f)
}

type handlerFunc func(*rosc.Message) error

func (h handlerFunc) Handle(m *rosc.Message) error {
	return h(m)
}

// Listener listens to a connection and dispatches messages to registered
// handlers. Each handler may be called in a separate goroutine, even if they
// are handling the same message. Note this means even multiple instances of the
// same handler may be executed concurrently.
type Listener struct {
	conn net.PacketConn
	// routes holds one compiled matcher per registered pattern;
	// matching a message is a linear scan.
	routes []route
	// workers sets the number of messages handled in parallel. Note this is
	// separate to the total number of message handlers running in parallel,
	// because a message may match many handlers.
	workers int
}

// route pairs a compiled address pattern with its handler.
type route struct {
	m *address.Matcher
	h Handler
}

func NewListener(conn net.PacketConn, workers int) *Listener {
	return &Listener{
		conn:    conn,
		workers: workers,
	}
}

// Handle registers a handler to receive every message whose address
// matches the pattern. The pattern is compiled here, once, so a bad
// pattern fails at registration rather than per message.
func (l *Listener) Handle(pattern string, h Handler) error {
	m, err := address.New(pattern)
	if err != nil {
		return err
	}
	l.routes = append(l.routes, route{m, h})
	return nil
}

// handle dispatches an individual message to each of the applicable
// Handlers.
func (l *Listener) handle(msg *rosc.Message) error {
	matched := false
	for _, r := range l.routes {
		if !r.m.MatchMessage(msg) {
			continue
		}
		matched = true
		// TODO: do these concurrently?
		if err := r.h.Handle(msg); err != nil {
			log.Printf("Error from handler %q: %v (message: %v)", r.m, err, msg)
		}
	}
	if !matched {
		return unmatched(*msg)
	}
	return nil
}

// Serve starts listening to OSC packets and dispatching them to registered
// handlers. It blocks until the context is cancelled or it receives an error
// from the underlying connection.
func (l *Listener) Serve(ctx context.Context) error {
	recv := make(chan *rosc.Message, 100)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf := make([]byte, 1<<16) // ~max UDP packet size.
		for {
			n, addr, err := l.conn.ReadFrom(buf)
			if n > 0 {
				msg, perr := rosc.ParseMessage(buf[:n])
				if perr != nil {
					log.Printf("Received invalid message from %v: %v", addr, perr)
				} else {
					select {
					case recv <- msg:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
			if err != nil {
				return err
			}
		}
	})
	for i := 0; i < l.workers; i++ {
		g.Go(func() error {
			for {
				var msg *rosc.Message
				select {
				case <-gctx.Done():
					return gctx.Err()
				case msg = <-recv:
				}
				if err := l.handle(msg); err != nil {
					log.Printf("Error handling message: %v (message: %v)", err, msg)
				}
			}
		})
	}

	return g.Wait()
}

// UnmatchedRouteError reports a message whose address matched none of
// the registered routes.
type UnmatchedRouteError struct {
	msg rosc.Message
}

func unmatched(msg rosc.Message) UnmatchedRouteError {
	return UnmatchedRouteError{msg}
}

func (u UnmatchedRouteError) Error() string {
	return fmt.Sprintf("no handlers for message: %v", u.msg)
}
