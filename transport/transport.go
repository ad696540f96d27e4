// Package transport runs the per-connection read/write loops that carry
// wire.Message values over a net.Conn, decoupling socket I/O from the
// single-consumer engine or client loop that owns game state.
package transport

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"

	"lexigrid/wire"
)

type (
	// Direction selects which half of the tag space a Conn's reader accepts.
	Direction int

	// Envelope tags an inbound message with the connection it arrived from.
	// A nil Message is the terminal marker pushed when the reader stops on a
	// read or decode error.
	Envelope struct {
		Message *wire.Message
		Conn    *Conn
	}

	// Conn owns one net.Conn's reader loop, writer loop, and outbound queue.
	Conn struct {
		nc        net.Conn
		log       *log.Logger
		direction Direction
		outbound  *queue
		reader    *bufio.Reader
	}
)

const (
	// ClientDirection decodes server->client tags (used by the client session).
	ClientDirection Direction = iota
	// ServerDirection decodes client->server tags (used by the server front).
	ServerDirection
)

// New wraps nc for framed message exchange in the given direction.
func New(nc net.Conn, direction Direction, log *log.Logger) *Conn {
	return &Conn{
		nc:        nc,
		log:       log,
		direction: direction,
		outbound:  newQueue(),
	}
}

// Send enqueues a message for the writer loop. Safe to call concurrently
// and safe to call after the connection has been closed (silently dropped).
func (c *Conn) Send(m wire.Message) {
	c.outbound.push(m)
}

// Close closes the underlying socket. Subsequent Sends are dropped once the
// writer loop observes the closed queue.
func (c *Conn) Close() error {
	return c.nc.Close()
}

// RemoteAddr returns the remote network address of the underlying socket.
func (c *Conn) RemoteAddr() net.Addr {
	return c.nc.RemoteAddr()
}

// Handshake reads and decodes a single message before Run's loops start. The
// buffered reader it builds is reused by the later readLoop, so bytes the
// peer pipelined right after the handshake message are never stranded.
func (c *Conn) Handshake() (wire.Message, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.nc)
	}
	if c.direction == ServerDirection {
		return wire.DecodeClientMessage(c.reader)
	}
	return wire.DecodeServerMessage(c.reader)
}

// Run starts the reader and writer loops and blocks until both exit. The
// reader pushes every decoded message, tagged with this Conn, onto in. On
// EOF, an I/O error or an unknown tag it pushes a terminal (nil-Message)
// Envelope and returns; after pushing a Leave or Shutdown message it returns
// without a further terminal Envelope. The writer drains the outbound
// queue to the socket and closes it once a Leave or Shutdown message (or a
// close of the queue) is written.
func (c *Conn) Run(ctx context.Context, in chan<- Envelope) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writeLoop(ctx)
	}()
	c.readLoop(ctx, in)
	c.outbound.close()
	<-done
}

func (c *Conn) readLoop(ctx context.Context, in chan<- Envelope) {
	r := c.reader
	if r == nil {
		r = bufio.NewReader(c.nc)
	}
	for {
		var (
			m   wire.Message
			err error
		)
		switch c.direction {
		case ServerDirection:
			m, err = wire.DecodeClientMessage(r)
		default:
			m, err = wire.DecodeServerMessage(r)
		}
		if err != nil {
			if c.log != nil && !errors.Is(err, wire.ErrUnknownTag) {
				c.log.Printf("transport: read stopped for %v: %v", c.nc.RemoteAddr(), err)
			}
			select {
			case in <- Envelope{Conn: c}:
			case <-ctx.Done():
			}
			return
		}
		terminal := m.Tag == wire.TagLeave || m.Tag == wire.TagShutdown
		msg := m
		select {
		case in <- Envelope{Message: &msg, Conn: c}:
		case <-ctx.Done():
			return
		}
		if terminal {
			return
		}
	}
}

func (c *Conn) writeLoop(ctx context.Context) {
	for {
		m, ok := c.outbound.pop(ctx)
		if !ok {
			c.nc.Close()
			return
		}
		if err := wire.Encode(c.nc, m); err != nil {
			if c.log != nil {
				c.log.Printf("transport: write stopped for %v: %v", c.nc.RemoteAddr(), err)
			}
			c.nc.Close()
			return
		}
		if m.Tag == wire.TagLeave || m.Tag == wire.TagShutdown {
			c.nc.Close()
			return
		}
	}
}
