// Package transport provides the two listeners spec.md §6 names: a
// TCP listener using the stream envelope, and a UDP listener carrying
// bare inner packets. Both feed accepted connections into a
// session.Engine; this package owns no protocol or device-model logic
// of its own.
package transport

import (
	"context"
	"errors"
	"io"
	"net"

	log "github.com/sirupsen/logrus"

	"zkterm/device"
	"zkterm/netlog"
	"zkterm/protocol"
	"zkterm/session"
)

// tcpConn adapts a net.Conn to session.Conn using the stream envelope.
type tcpConn struct {
	nc net.Conn
}

func (c *tcpConn) ReadPacket() ([]byte, error) {
	hdr := make([]byte, protocol.EnvelopeHeaderLen)
	if _, err := io.ReadFull(c.nc, hdr); err != nil {
		return nil, err
	}
	innerLen, err := protocol.DecodeEnvelopeHeader(hdr)
	if err != nil {
		return nil, err
	}
	inner := make([]byte, innerLen)
	if innerLen > 0 {
		if _, err := io.ReadFull(c.nc, inner); err != nil {
			return nil, err
		}
	}
	return inner, nil
}

func (c *tcpConn) WritePacket(raw []byte) error {
	_, err := c.nc.Write(protocol.EncodeEnvelope(raw))
	return err
}

func (c *tcpConn) Close() error {
	return c.nc.Close()
}

// TCPListener accepts connection-oriented clients, one session.Engine
// goroutine per accepted connection.
type TCPListener struct {
	ln       net.Listener
	model    *device.Model
	identity session.Identity
	trace    *netlog.Writer
}

// ListenTCP binds addr (host:port) as given; the default port 4370
// comes from the config, not from this function.
// trace may be nil to disable per-frame activity tracing.
func ListenTCP(addr string, model *device.Model, identity session.Identity, trace *netlog.Writer) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln, model: model, identity: identity, trace: trace}, nil
}

// Addr returns the bound address, useful when addr was ":0".
func (l *TCPListener) Addr() net.Addr {
	return l.ln.Addr()
}

// Serve accepts connections until ctx is cancelled or the listener
// errors. Each connection gets its own session.Engine goroutine.
func (l *TCPListener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		nc, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		log.Infof("transport: accepted tcp connection from %s", nc.RemoteAddr())
		go func(nc net.Conn) {
			defer log.Infof("transport: closed tcp connection from %s", nc.RemoteAddr())
			engine := session.NewEngine(&tcpConn{nc: nc}, l.model, l.identity, nc.RemoteAddr().String(), l.trace)
			engine.Run()
		}(nc)
	}
}

// Close stops accepting new connections.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}
