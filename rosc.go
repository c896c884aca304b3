// Package rosc sends and receives Open Sound Control messages, per
// the OSC 1.0 spec (https://ccrma.stanford.edu/groups/osc/spec-1_0.html)
// plus the mandatory 1.1 additions. Address-pattern matching lives in
// the address subpackage; message dispatch in the server subpackage.
package rosc

import (
	"net"
	"sync"

	"golang.org/x/exp/constraints"
)

// Send encodes a message for the given concrete address and writes it
// to dest over conn.
func Send(conn net.PacketConn, dest, address string, args ...Argument) error {
	udpAddr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return err
	}
	msg := Message{
		Addr:      address,
		Arguments: args,
	}
	b := msg.Append(getBuf())
	defer putBuf(b)
	_, err = conn.WriteTo(b, udpAddr)
	return err
}

// Encode buffers are pooled; messages are typically small and Send is
// called per event.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 1024)
		return &b
	},
}

func getBuf() []byte {
	b := bufPool.Get().(*[]byte)
	return (*b)[:0]
}

func putBuf(b []byte) {
	bufPool.Put(&b)
}

// AsString returns s as a *String, for use in an argument list.
func AsString(s string) *String {
	os := String(s)
	return &os
}

// AsInt32 returns i as an *Int32, for use in an argument list.
func AsInt32[T constraints.Integer](i T) *Int32 {
	ii := Int32(i)
	return &ii
}

// AsFloat32 returns f as a *Float32, for use in an argument list.
func AsFloat32[T constraints.Float](f T) *Float32 {
	ff := Float32(f)
	return &ff
}

// AsBlob returns b as a *Blob, for use in an argument list.
func AsBlob(b []byte) *Blob {
	ob := Blob(b)
	return &ob
}
