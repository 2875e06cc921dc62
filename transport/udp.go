package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	log "github.com/sirupsen/logrus"

	"zkterm/device"
	"zkterm/netlog"
	"zkterm/session"
)

// udpConn adapts one remote address's datagram stream to session.Conn.
// There is no real connection to read from, so incoming datagrams are
// fed in by the listener's single read loop over a buffered channel —
// the same "supervisory map behind one mutex, per-key state machine"
// shape the teacher's sol.Manager uses for its SOL sessions.
type udpConn struct {
	pc     *net.UDPConn
	remote *net.UDPAddr

	incoming  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newUDPConn(pc *net.UDPConn, remote *net.UDPAddr) *udpConn {
	return &udpConn{
		pc:       pc,
		remote:   remote,
		incoming: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (c *udpConn) deliver(payload []byte) {
	select {
	case c.incoming <- payload:
	case <-c.closed:
	default:
		log.Warnf("transport: dropping udp datagram from %s, session backed up", c.remote)
	}
}

func (c *udpConn) ReadPacket() ([]byte, error) {
	select {
	case p := <-c.incoming:
		return p, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *udpConn) WritePacket(raw []byte) error {
	_, err := c.pc.WriteToUDP(raw, c.remote)
	return err
}

func (c *udpConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// UDPListener serves datagram-mode clients. Since UDP has no
// connection setup, a session is identified by source address and
// created lazily on its first datagram; spec.md §6 is explicit that
// UDP mode carries bare inner packets with no stream envelope.
type UDPListener struct {
	pc       *net.UDPConn
	model    *device.Model
	identity session.Identity
	trace    *netlog.Writer

	mu       sync.Mutex
	sessions map[string]*udpConn
}

// ListenUDP binds addr for datagram-mode clients. trace may be nil to
// disable per-frame activity tracing.
func ListenUDP(addr string, model *device.Model, identity session.Identity, trace *netlog.Writer) (*UDPListener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	pc, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, err
	}
	return &UDPListener{pc: pc, model: model, identity: identity, trace: trace, sessions: make(map[string]*udpConn)}, nil
}

// Addr returns the bound address.
func (l *UDPListener) Addr() net.Addr {
	return l.pc.LocalAddr()
}

// Serve reads datagrams until ctx is cancelled or the socket errors,
// demultiplexing by source address into per-session engines.
func (l *UDPListener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.pc.Close()
	}()

	buf := make([]byte, 65536)
	for {
		n, remote, err := l.pc.ReadFromUDP(buf)
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

		payload := append([]byte(nil), buf[:n]...)
		key := remote.String()

		l.mu.Lock()
		conn, exists := l.sessions[key]
		if !exists {
			conn = newUDPConn(l.pc, remote)
			l.sessions[key] = conn
		}
		l.mu.Unlock()

		if !exists {
			log.Infof("transport: new udp session from %s", key)
			go l.runSession(key, conn)
		}
		conn.deliver(payload)
	}
}

func (l *UDPListener) runSession(key string, conn *udpConn) {
	defer func() {
		l.mu.Lock()
		delete(l.sessions, key)
		l.mu.Unlock()
		log.Infof("transport: closed udp session from %s", key)
	}()
	engine := session.NewEngine(conn, l.model, l.identity, key, l.trace)
	engine.Run()
}

// Close stops accepting new datagrams.
func (l *UDPListener) Close() error {
	return l.pc.Close()
}
