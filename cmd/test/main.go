package main

import (
	"context"
	"flag"
	"log"
	"net"

	"github.com/DrLuke/rosc"
	"github.com/DrLuke/rosc/server"
)

var (
	modeFlag       = flag.String("mode", "", "`mode` in which to run, must be one of \"send\" or \"receive\"")
	listenAddrFlag = flag.String("listen_addr", "127.0.0.1:0", "`host:port`: the address to listen on.")
	sendAddrFlag   = flag.String("send_addr", "", "`host:port`: the address to send to.")
	addressFlag    = flag.String("address", "/test/a", "OSC `address` to send a message to, in send mode")
)

func main() {
	flag.Parse()

	ctx := context.Background()
	switch *modeFlag {
	case "send":
		if err := send(ctx); err != nil {
			log.Fatal(err)
		}
	case "receive":
		if err := receive(ctx); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown mode %q", *modeFlag)
	}
}

func send(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", *listenAddrFlag)
	if err != nil {
		return err
	}
	log.Printf("Sending to %v at %v", *addressFlag, *sendAddrFlag)
	return rosc.Send(conn, *sendAddrFlag, *addressFlag, rosc.AsInt32(12))
}

func receive(ctx context.Context) error {
	conn, err := net.ListenPacket("udp", *listenAddrFlag)
	if err != nil {
		return err
	}
	log.Printf("Listening on %v", conn.LocalAddr())

	l := server.NewListener(conn, 1)
	for _, p := range []string{
		"/test",
		"/test/{a,b}",
		"/test/?",
		"/test/*/x[0-9]",
	} {
		if err := l.Handle(p, server.HandlerFunc(func(msg *rosc.Message) error {
			log.Printf("%s: recv: %v", p, msg)
			return nil
		})); err != nil {
			return err
		}
	}
	return l.Serve(ctx)
}
