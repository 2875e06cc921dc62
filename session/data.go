package session

import (
	"encoding/binary"

	"zkterm/device"
	"zkterm/protocol"
)

// sizePrefixed packs a payload as `<total-size:4 LE><body>`, the shape
// spec.md §4.3 specifies for every list-style DATA response.
func sizePrefixed(body []byte) []byte {
	buf := make([]byte, 4+len(body))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(body)))
	copy(buf[4:], body)
	return buf
}

func encodeUserList(users []device.User) []byte {
	var body []byte
	for _, u := range users {
		body = append(body, protocol.EncodeUser72(protocol.User{
			UID:       u.UID,
			Privilege: u.Privilege,
			Password:  u.Password,
			Name:      u.Name,
			Card:      u.Card,
			GroupID:   u.GroupID,
			UserID:    u.UserID,
		})...)
	}
	return sizePrefixed(body)
}

func encodeTemplateList(templates []device.Template) []byte {
	var body []byte
	for _, t := range templates {
		body = append(body, protocol.EncodeTemplateEntry(protocol.Template{
			UID:    t.UID,
			Finger: t.Finger,
			Valid:  t.Valid,
			Blob:   t.Blob,
		})...)
	}
	return sizePrefixed(body)
}

func encodeAttendanceList(records []device.Attendance) []byte {
	var body []byte
	for _, a := range records {
		body = append(body, protocol.EncodeAttendance(protocol.Attendance{
			UID:       a.UID,
			UserID:    a.UserID,
			Status:    a.Status,
			Timestamp: a.Timestamp,
			Punch:     a.Punch,
		})...)
	}
	return sizePrefixed(body)
}

func handleUserTempRRQ(e *Engine, pkt protocol.Packet) handlerResult {
	return handlerResult{command: protocol.CmdData, payload: encodeUserList(e.model.ListUsers())}
}

func handleDBRRQ(e *Engine, pkt protocol.Packet) handlerResult {
	return handlerResult{command: protocol.CmdData, payload: encodeTemplateList(e.model.ListTemplates())}
}

func handleAttLogRRQ(e *Engine, pkt protocol.Packet) handlerResult {
	return handlerResult{command: protocol.CmdData, payload: encodeAttendanceList(e.model.ListAttendance())}
}

// handlePrepareBuffer dispatches by the requested function type to the
// same three list encodings the simple RRQ commands produce, per
// spec.md §4.3's PREPARE BUFFER row.
func handlePrepareBuffer(e *Engine, pkt protocol.Packet) handlerResult {
	req, parsed := protocol.DecodePrepareBufferRequest(pkt.Payload)
	if !parsed {
		return errResult()
	}
	switch req.Fct {
	case protocol.FctUser:
		return handlerResult{command: protocol.CmdData, payload: encodeUserList(e.model.ListUsers())}
	case protocol.FctFingerTmp:
		return handlerResult{command: protocol.CmdData, payload: encodeTemplateList(e.model.ListTemplates())}
	case protocol.FctAttLog:
		return handlerResult{command: protocol.CmdData, payload: encodeAttendanceList(e.model.ListAttendance())}
	default:
		return handlerResult{command: protocol.CmdData, payload: sizePrefixed(nil)}
	}
}

// handleGetUserTemp looks up a single template by (uid, finger) and
// returns its blob padded with 6 trailing zero bytes, matching the
// original simulator's response shape for this command.
func handleGetUserTemp(e *Engine, pkt protocol.Packet) handlerResult {
	if len(pkt.Payload) < 3 {
		return errResult()
	}
	uid := binary.LittleEndian.Uint16(pkt.Payload[0:2])
	finger := pkt.Payload[2]

	tpl, found := e.model.GetTemplate(uid, finger)
	if !found {
		return errResult()
	}
	payload := append(append([]byte(nil), tpl.Blob...), make([]byte, 6)...)
	return handlerResult{command: protocol.CmdData, payload: payload}
}
