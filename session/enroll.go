package session

import (
	"encoding/binary"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"zkterm/device"
	"zkterm/protocol"
)

// Pacing for the simulated finger-presentation steps. Not a
// correctness property (spec.md §4.3.1) — only ordering and
// ack-gating are — but kept close to the original hardware's feel.
const (
	enrollStartDelay = 500 * time.Millisecond
	enrollStepDelay  = 300 * time.Millisecond
	enrollPairDelay  = 500 * time.Millisecond
	enrollAckTimeout = 5 * time.Second

	regEventFingerPlaced = 1
	regEventPlaceAgain   = 100
)

// handleStartEnroll resolves the target uid the same way the original
// simulator does: match an existing user's external id, else parse
// the id as a number, else default to uid 1. It accepts both the
// 26-byte TCP-mode payload and the 5-byte UDP-mode payload, since this
// simulator serves both transports.
func handleStartEnroll(e *Engine, pkt protocol.Packet) handlerResult {
	var userIDStr string
	var finger uint8

	switch {
	case len(pkt.Payload) >= 26:
		userIDStr = trimNUL(pkt.Payload[0:24])
		finger = pkt.Payload[24]
	case len(pkt.Payload) >= 5:
		raw := binary.LittleEndian.Uint32(pkt.Payload[0:4])
		userIDStr = strconv.FormatUint(uint64(raw), 10)
		finger = pkt.Payload[4]
	default:
		return errResult()
	}

	uid, found := e.model.FindUserByUserID(userIDStr)
	if !found {
		if n, err := strconv.ParseUint(userIDStr, 10, 16); err == nil {
			uid = uint16(n)
		} else {
			uid = 1
		}
	}

	cancel := make(chan struct{})
	if prev := e.setEnroll(enrollContext{active: true, uid: uid, finger: finger, cancel: cancel}); prev != nil {
		close(prev)
	}

	return handlerResult{command: protocol.CmdAckOK, startEnroll: true}
}

// runEnrollment drives the asynchronous enrollment event stream
// (spec.md §4.3.1) on the connection the STARTENROLL request arrived
// on. It runs in its own goroutine; Engine.Run resumes ordinary
// request reads as soon as it is launched, and sendAndAwaitAck lets
// this goroutine intercept the next raw frame as an acknowledgment
// without a second physical reader.
func (e *Engine) runEnrollment() {
	ctx := e.currentEnroll()
	uid, finger := ctx.uid, ctx.finger
	cancel := ctx.cancel

	cancelled := func() bool {
		select {
		case <-cancel:
			return true
		default:
			return false
		}
	}

	log.Debugf("session %s: enrollment starting for uid=%d finger=%d", e.remoteAddr, uid, finger)
	time.Sleep(enrollStartDelay)

	for attempt := 0; attempt < 3; attempt++ {
		if cancelled() {
			log.Debugf("session %s: enrollment cancelled", e.remoteAddr)
			return
		}
		if _, err := e.pushRegEventAwaitAck(regEventFingerPlaced, enrollAckTimeout); err != nil {
			log.Debugf("session %s: enrollment aborted: %v", e.remoteAddr, err)
			return
		}
		time.Sleep(enrollStepDelay)

		if cancelled() {
			return
		}
		if _, err := e.pushRegEventAwaitAck(regEventPlaceAgain, enrollAckTimeout); err != nil {
			log.Debugf("session %s: enrollment aborted: %v", e.remoteAddr, err)
			return
		}
		time.Sleep(enrollPairDelay)
	}

	if cancelled() {
		return
	}

	final := make([]byte, 6)
	binary.LittleEndian.PutUint16(final[0:2], 0)   // result: success
	binary.LittleEndian.PutUint16(final[2:4], 512) // template size
	binary.LittleEndian.PutUint16(final[4:6], uint16(finger))
	if _, err := e.sendAndAwaitAck(func() error {
		return e.writeRaw(protocol.EncodePacket(protocol.CmdRegEvent, e.sessionID, 0, final))
	}, enrollAckTimeout); err != nil {
		log.Debugf("session %s: enrollment aborted waiting for final ack: %v", e.remoteAddr, err)
		return
	}

	e.model.SetTemplate(device.Template{UID: uid, Finger: finger, Valid: 1, Blob: make([]byte, 512)})
	e.clearEnroll()
	log.Debugf("session %s: enrollment complete for uid=%d finger=%d", e.remoteAddr, uid, finger)
}

// pushRegEventAwaitAck sends one REG_EVENT frame with a 16-bit code
// payload and waits for the client's acknowledgment.
func (e *Engine) pushRegEventAwaitAck(code uint16, timeout time.Duration) ([]byte, error) {
	payload := make([]byte, 2)
	binary.LittleEndian.PutUint16(payload, code)
	return e.sendAndAwaitAck(func() error {
		return e.writeRaw(protocol.EncodePacket(protocol.CmdRegEvent, e.sessionID, 0, payload))
	}, timeout)
}
