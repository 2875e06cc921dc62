package session

import (
	"encoding/binary"

	"zkterm/device"
	"zkterm/protocol"
)

// handleUserWRQ decodes a single-user upsert. The 28- vs 72-byte
// layout is disambiguated solely by payload length (spec.md §9 open
// question); a length matching neither is rejected with ERROR rather
// than guessed at.
func handleUserWRQ(e *Engine, pkt protocol.Packet) handlerResult {
	u, err := protocol.DecodeUserAuto(pkt.Payload)
	if err != nil {
		return errResult()
	}
	e.model.SetUser(device.User{
		UID:       u.UID,
		Privilege: u.Privilege,
		Password:  u.Password,
		Name:      u.Name,
		Card:      u.Card,
		GroupID:   u.GroupID,
		UserID:    u.UserID,
	})
	return ok(nil)
}

func handleDeleteUser(e *Engine, pkt protocol.Packet) handlerResult {
	if len(pkt.Payload) < 2 {
		return errResult()
	}
	uid := binary.LittleEndian.Uint16(pkt.Payload[0:2])
	e.model.DeleteUser(uid)
	return ok(nil)
}

func handleDeleteUserTemp(e *Engine, pkt protocol.Packet) handlerResult {
	if len(pkt.Payload) < 3 {
		return errResult()
	}
	uid := binary.LittleEndian.Uint16(pkt.Payload[0:2])
	finger := pkt.Payload[2]
	e.model.DeleteTemplate(uid, finger)
	return ok(nil)
}
