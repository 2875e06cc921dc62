package session

import (
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"zkterm/device"
	"zkterm/netlog"
	"zkterm/protocol"
)

// state is the connection's position in the state machine of spec.md
// §4.3.3: new -> connected -> closed.
type state int

const (
	stateNew state = iota
	stateConnected
	stateClosed
)

// Identity holds the simulator's static device-identity fields — the
// values OPTIONS RRQ, GET VERSION, and GET PIN WIDTH answer with.
type Identity struct {
	FirmwareVersion string
	SerialNumber    string
	Platform        string
	DeviceName      string
	MAC             string
	IPAddress       string
	NetMask         string
	GatewayIP       string
	PinWidth        byte
	Password        string // empty means no password required
}

// enrollContext is the transient per-session state during an active
// STARTENROLL sequence.
type enrollContext struct {
	active bool
	uid    uint16
	finger uint8
	cancel chan struct{}
}

// Engine drives one connection's protocol state machine. It reads
// frames, dispatches by command code, mutates the shared device
// model, and for STARTENROLL drives the asynchronous enrollment event
// stream described in spec.md §4.3.1.
type Engine struct {
	conn     Conn
	model    *device.Model
	identity Identity
	scratch  device.UploadScratch

	sessionID uint16
	state     state
	enroll    enrollContext
	events    uint32 // registered-events mask (REG EVENT)

	writeMu     sync.Mutex
	ackRequests chan chan []byte
	done        chan struct{}
	closeOnce   sync.Once

	enrollMu sync.Mutex

	remoteAddr string
	trace      *netlog.Writer
}

// NewEngine creates an engine for one freshly accepted connection.
// trace may be nil, in which case per-frame activity tracing is
// skipped.
func NewEngine(conn Conn, model *device.Model, identity Identity, remoteAddr string, trace *netlog.Writer) *Engine {
	return &Engine{
		conn:        conn,
		model:       model,
		identity:    identity,
		state:       stateNew,
		ackRequests: make(chan chan []byte, 1),
		done:        make(chan struct{}),
		remoteAddr:  remoteAddr,
		trace:       trace,
	}
}

var errClosed = errors.New("session: connection closed")

// Run reads and dispatches frames until the connection closes or a
// transport error occurs. It is the per-connection loop the transport
// listener spawns one goroutine for, per spec.md §5.
func (e *Engine) Run() {
	defer e.Close()
	log.Debugf("session: starting for %s", e.remoteAddr)

	for {
		raw, err := e.conn.ReadPacket()
		if err != nil {
			log.Debugf("session %s: read error, closing: %v", e.remoteAddr, err)
			return
		}

		// If the enrollment task is waiting for an ack, this frame
		// belongs to it rather than to ordinary dispatch — the single
		// reader routes by which consumer has registered interest,
		// implementing the per-connection read queue spec.md §5 calls
		// for without a literal ownership handoff.
		select {
		case req := <-e.ackRequests:
			req <- raw
			continue
		default:
		}

		pkt, err := protocol.DecodePacket(raw)
		if err != nil {
			log.Debugf("session %s: malformed packet, dropping connection: %v", e.remoteAddr, err)
			return
		}

		if e.trace != nil {
			if err := e.trace.LogFrame(e.remoteAddr, pkt.Command, pkt.Session, pkt.Reply, len(pkt.Payload)); err != nil {
				log.Warnf("session %s: trace log write failed: %v", e.remoteAddr, err)
			}
		}

		shouldClose := e.handle(pkt)
		if shouldClose || e.state == stateClosed {
			return
		}
	}
}

// handle dispatches one decoded packet and writes its response.
// Returns true if the engine should close the connection afterward.
func (e *Engine) handle(pkt protocol.Packet) bool {
	if e.sessionID != 0 {
		// Echo the negotiated session id regardless of what the client
		// sent on subsequent frames, per spec.md §4.1.
		pkt.Session = e.sessionID
	}

	h, ok := dispatchTable[pkt.Command]
	if !ok {
		log.Debugf("session %s: unknown command %d", e.remoteAddr, pkt.Command)
		if err := e.reply(protocol.CmdAckError, pkt.Reply, nil); err != nil {
			return true
		}
		return false
	}

	result := h(e, pkt)
	if result.noReply {
		return result.closeAfter
	}
	if err := e.reply(result.command, pkt.Reply, result.payload); err != nil {
		log.Debugf("session %s: write failed, closing: %v", e.remoteAddr, err)
		return true
	}

	if result.startEnroll {
		go e.runEnrollment()
	}

	return result.closeAfter
}

// reply encodes and writes a response packet, serialized against any
// concurrent write from the enrollment task by writeMu.
func (e *Engine) reply(command int, replyID uint16, payload []byte) error {
	return e.writeRaw(protocol.EncodePacket(uint16(command), e.sessionID, replyID, payload))
}

// writeRaw serializes writes to the underlying connection. Both the
// main dispatch loop and the enrollment goroutine call this, so every
// write is mutex-guarded — this is the "per-connection write mutex"
// spec.md §5 requires to prevent interleaved byte sequences.
func (e *Engine) writeRaw(raw []byte) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	return e.conn.WritePacket(raw)
}

// sendAndAwaitAck registers interest in the next frame the reader
// loop receives BEFORE calling send, so there is no window between
// pushing an event and listening for its acknowledgment in which the
// main loop could misroute the client's reply to ordinary dispatch.
// Used exclusively by the enrollment task.
func (e *Engine) sendAndAwaitAck(send func() error, timeout time.Duration) ([]byte, error) {
	req := make(chan []byte, 1)
	select {
	case e.ackRequests <- req:
	case <-e.done:
		return nil, errClosed
	}

	if err := send(); err != nil {
		select {
		case <-e.ackRequests:
		default:
		}
		return nil, err
	}

	select {
	case raw := <-req:
		return raw, nil
	case <-time.After(timeout):
		return nil, errors.New("session: timed out waiting for enrollment ack")
	case <-e.done:
		return nil, errClosed
	}
}

// setEnroll replaces the active enrollment context and returns the
// previous cancel channel, if any, so the caller can cancel a prior
// in-flight enrollment. Guarded by enrollMu since both the dispatch
// goroutine (STARTENROLL, CANCELCAPTURE) and the enrollment goroutine
// itself touch this state.
func (e *Engine) setEnroll(ctx enrollContext) (prev chan struct{}) {
	e.enrollMu.Lock()
	defer e.enrollMu.Unlock()
	prev = e.enroll.cancel
	e.enroll = ctx
	return prev
}

func (e *Engine) clearEnroll() (prev chan struct{}) {
	e.enrollMu.Lock()
	defer e.enrollMu.Unlock()
	prev = e.enroll.cancel
	e.enroll = enrollContext{}
	return prev
}

func (e *Engine) currentEnroll() enrollContext {
	e.enrollMu.Lock()
	defer e.enrollMu.Unlock()
	return e.enroll
}

// Close releases the connection. Safe to call more than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.conn.Close()
	})
}
