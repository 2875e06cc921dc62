package session

import (
	"encoding/binary"
	"time"

	"zkterm/device"
	"zkterm/protocol"
)

func handleConnect(e *Engine, pkt protocol.Packet) handlerResult {
	sid := pkt.Session
	if sid == 0 {
		sid = 1000
	}
	e.sessionID = sid
	e.state = stateConnected

	if e.identity.Password != "" {
		return handlerResult{command: protocol.CmdAckUnauth}
	}
	return ok(nil)
}

func handleAuth(e *Engine, pkt protocol.Packet) handlerResult {
	e.state = stateConnected
	return ok(nil)
}

func handleExit(e *Engine, pkt protocol.Packet) handlerResult {
	e.state = stateClosed
	return handlerResult{command: protocol.CmdAckOK, closeAfter: true}
}

func handleGetVersion(e *Engine, pkt protocol.Packet) handlerResult {
	return ok(append([]byte(e.identity.FirmwareVersion), 0))
}

func handleGetTime(e *Engine, pkt protocol.Packet) handlerResult {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, protocol.EncodeTimestamp(time.Now()))
	return ok(buf)
}

// handleSetTime accepts the client's clock value but, per spec.md
// §4.3, does not persist it anywhere — the simulator's own clock is
// always used for GET TIME.
func handleSetTime(e *Engine, pkt protocol.Packet) handlerResult {
	return ok(nil)
}

func handleOptionsRRQ(e *Engine, pkt protocol.Packet) handlerResult {
	key := trimNUL(pkt.Payload)
	value, found := e.lookupOption(key)
	if !found {
		return ok(nil)
	}
	return ok(append([]byte(key+"="+value), 0))
}

// handleOptionsWRQ accepts any key=value write unconditionally; the
// simulator has no persisted configuration for clients to mutate.
func handleOptionsWRQ(e *Engine, pkt protocol.Packet) handlerResult {
	return ok(nil)
}

// handleGetFreeSizes builds the fixed 20-field capacity response plus
// 12 bytes of face-subsystem zeros, per spec.md §6's field layout.
func handleGetFreeSizes(e *Engine, pkt protocol.Packet) handlerResult {
	return ok(encodeFreeSizes(e.model.CapacitySnapshot()))
}

// encodeFreeSizes lays out the 20 little-endian 32-bit fields spec.md
// §6 specifies, followed by 12 bytes of face-subsystem zeros. Only the
// nine named indices are non-zero.
func encodeFreeSizes(snap device.CapacitySnapshot) []byte {
	buf := make([]byte, 20*4+12)
	put := func(idx int, v int) {
		binary.LittleEndian.PutUint32(buf[idx*4:idx*4+4], uint32(v))
	}
	put(4, snap.Users)
	put(6, snap.Templates)
	put(8, snap.Attendance)
	put(14, snap.MaxTemplates)
	put(15, snap.MaxUsers)
	put(16, snap.MaxAttendance)
	put(17, snap.TemplatesFree)
	put(18, snap.UsersFree)
	put(19, snap.AttendanceFree)
	return buf
}

func handleGetPinWidth(e *Engine, pkt protocol.Packet) handlerResult {
	width := e.identity.PinWidth
	if width == 0 {
		width = 5
	}
	return ok([]byte{width})
}

func handleRegEvent(e *Engine, pkt protocol.Packet) handlerResult {
	if len(pkt.Payload) >= 4 {
		e.events = binary.LittleEndian.Uint32(pkt.Payload[:4])
	} else {
		e.events = 0
	}
	return ok(nil)
}

func handleCancelCapture(e *Engine, pkt protocol.Packet) handlerResult {
	if prev := e.clearEnroll(); prev != nil {
		close(prev)
	}
	return ok(nil)
}

func handleReadBuffer(e *Engine, pkt protocol.Packet) handlerResult {
	// Full chunked-read support is an optional extensibility hook
	// (spec.md §4.3, §12); core always answers with a zero-size DATA
	// frame.
	buf := make([]byte, 4)
	return handlerResult{command: protocol.CmdData, payload: buf}
}
