package session

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"zkterm/device"
	"zkterm/protocol"
)

// fakeConn is an in-memory session.Conn: ReadPacket/WritePacket carry
// decoded inner-packet bytes, same as transport's tcpConn/udpConn do
// after stripping/adding their respective framing.
type fakeConn struct {
	toEngine   chan []byte
	fromEngine chan []byte
	closed     chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		toEngine:   make(chan []byte, 16),
		fromEngine: make(chan []byte, 16),
		closed:     make(chan struct{}),
	}
}

func (f *fakeConn) ReadPacket() ([]byte, error) {
	select {
	case p := <-f.toEngine:
		return p, nil
	case <-f.closed:
		return nil, errors.New("fakeConn: closed")
	}
}

func (f *fakeConn) WritePacket(raw []byte) error {
	select {
	case f.fromEngine <- raw:
		return nil
	case <-f.closed:
		return errors.New("fakeConn: closed")
	}
}

func (f *fakeConn) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func testIdentity() Identity {
	return Identity{
		FirmwareVersion: "Ver 6.60 Nov 13 2019",
		SerialNumber:    "SN1",
		Platform:        "ZEM560",
		DeviceName:      "ZKTerm",
	}
}

func newTestEngine(t *testing.T, model *device.Model) (*Engine, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	e := NewEngine(conn, model, testIdentity(), "test", nil)
	go e.Run()
	t.Cleanup(func() { e.Close() })
	return e, conn
}

func send(t *testing.T, conn *fakeConn, command, sessionID, reply uint16, payload []byte) {
	t.Helper()
	conn.toEngine <- protocol.EncodePacket(command, sessionID, reply, payload)
}

func recv(t *testing.T, conn *fakeConn) protocol.Packet {
	t.Helper()
	select {
	case raw := <-conn.fromEngine:
		pkt, err := protocol.DecodePacket(raw)
		if err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return pkt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
		return protocol.Packet{}
	}
}

func TestConnectAndGetVersion(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	_, conn := newTestEngine(t, model)

	send(t, conn, protocol.CmdConnect, 0, 7, nil)
	resp := recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK, got %d", resp.Command)
	}
	if resp.Session == 0 {
		t.Fatal("expected non-zero session id")
	}
	if resp.Reply != 7 {
		t.Fatalf("expected reply id echoed, got %d", resp.Reply)
	}
	sid := resp.Session

	send(t, conn, protocol.CmdGetVersion, sid, 8, nil)
	resp = recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK, got %d", resp.Command)
	}
	want := "Ver 6.60 Nov 13 2019\x00"
	if string(resp.Payload) != want {
		t.Fatalf("got %q want %q", resp.Payload, want)
	}
}

func TestListUsersAfterFreshStart(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	model.Seed([]device.User{
		{UID: 1, Name: "Admin", UserID: "1"},
		{UID: 2, Name: "User001", UserID: "2"},
		{UID: 3, Name: "User002", UserID: "3"},
	})
	_, conn := newTestEngine(t, model)

	send(t, conn, protocol.CmdConnect, 0, 1, nil)
	recv(t, conn)

	send(t, conn, protocol.CmdUserTempRRQ, 0, 2, nil)
	resp := recv(t, conn)
	if resp.Command != protocol.CmdData {
		t.Fatalf("expected DATA, got %d", resp.Command)
	}
	total := binary.LittleEndian.Uint32(resp.Payload[0:4])
	body := resp.Payload[4:]
	if int(total) != len(body) || len(body) != 3*protocol.UserRecordLen72 {
		t.Fatalf("unexpected payload shape: total=%d len=%d", total, len(body))
	}
	u0, _ := protocol.DecodeUser72(body[0:72])
	u1, _ := protocol.DecodeUser72(body[72:144])
	u2, _ := protocol.DecodeUser72(body[144:216])
	if u0.Name != "Admin" || u1.Name != "User001" || u2.Name != "User002" {
		t.Fatalf("got %+v %+v %+v", u0, u1, u2)
	}
}

func TestDeleteThenReAddOverSession(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	model.Seed([]device.User{
		{UID: 1, Name: "Admin", UserID: "1"},
		{UID: 2, Name: "User001", UserID: "2"},
		{UID: 3, Name: "User002", UserID: "3"},
	})
	_, conn := newTestEngine(t, model)

	send(t, conn, protocol.CmdConnect, 0, 1, nil)
	recv(t, conn)

	uidBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(uidBuf, 2)
	send(t, conn, protocol.CmdDeleteUser, 0, 2, uidBuf)
	resp := recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK, got %d", resp.Command)
	}

	send(t, conn, protocol.CmdUserTempRRQ, 0, 3, nil)
	resp = recv(t, conn)
	body := resp.Payload[4:]
	if len(body) != 2*protocol.UserRecordLen72 {
		t.Fatalf("expected 2 users after delete, got %d bytes", len(body))
	}

	record := protocol.EncodeUser72(protocol.User{UID: 2, Name: "User001", UserID: "2"})
	send(t, conn, protocol.CmdUserWRQ, 0, 4, record)
	resp = recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK, got %d", resp.Command)
	}

	send(t, conn, protocol.CmdUserTempRRQ, 0, 5, nil)
	resp = recv(t, conn)
	body = resp.Payload[4:]
	if len(body) != 3*protocol.UserRecordLen72 {
		t.Fatalf("expected 3 users after re-add, got %d bytes", len(body))
	}
	last, _ := protocol.DecodeUser72(body[144:216])
	if last.UID != 2 {
		t.Fatalf("expected re-added uid 2 appended last, got %+v", last)
	}
}

func TestUnknownCommandThenConnectStillWorks(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	_, conn := newTestEngine(t, model)

	send(t, conn, 9999, 0, 1, nil)
	resp := recv(t, conn)
	if resp.Command != protocol.CmdAckError {
		t.Fatalf("expected ERROR, got %d", resp.Command)
	}

	send(t, conn, protocol.CmdConnect, 0, 2, nil)
	resp = recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected connect to still succeed, got %d", resp.Command)
	}
}

func TestEnrollmentHappyPath(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	model.Seed([]device.User{{UID: 1, Name: "Admin", UserID: "1"}})
	_, conn := newTestEngine(t, model)

	send(t, conn, protocol.CmdConnect, 0, 1, nil)
	recv(t, conn)

	payload := make([]byte, 26)
	copy(payload, []byte("1"))
	payload[24] = 0 // finger
	payload[25] = 1 // flag
	send(t, conn, protocol.CmdStartEnroll, 0, 2, payload)
	resp := recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK for STARTENROLL, got %d", resp.Command)
	}

	for i := 0; i < 3; i++ {
		evt := recv(t, conn)
		if evt.Command != protocol.CmdRegEvent {
			t.Fatalf("attempt %d: expected REG_EVENT (placed), got %d", i, evt.Command)
		}
		if code := binary.LittleEndian.Uint16(evt.Payload); code != 1 {
			t.Fatalf("attempt %d: expected code 1, got %d", i, code)
		}
		send(t, conn, protocol.CmdAckOK, 0, evt.Reply, nil)

		evt = recv(t, conn)
		if evt.Command != protocol.CmdRegEvent {
			t.Fatalf("attempt %d: expected REG_EVENT (again), got %d", i, evt.Command)
		}
		if code := binary.LittleEndian.Uint16(evt.Payload); code != 100 {
			t.Fatalf("attempt %d: expected code 100, got %d", i, code)
		}
		send(t, conn, protocol.CmdAckOK, 0, evt.Reply, nil)
	}

	final := recv(t, conn)
	if final.Command != protocol.CmdRegEvent {
		t.Fatalf("expected final REG_EVENT, got %d", final.Command)
	}
	result := binary.LittleEndian.Uint16(final.Payload[0:2])
	size := binary.LittleEndian.Uint16(final.Payload[2:4])
	finger := binary.LittleEndian.Uint16(final.Payload[4:6])
	if result != 0 || size != 512 || finger != 0 {
		t.Fatalf("got result=%d size=%d finger=%d", result, size, finger)
	}
	send(t, conn, protocol.CmdAckOK, 0, final.Reply, nil)

	deadline := time.After(2 * time.Second)
	for {
		if tpl, ok := model.GetTemplate(1, 0); ok {
			if len(tpl.Blob) != 512 {
				t.Fatalf("expected 512-byte template, got %d", len(tpl.Blob))
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for template to be stored")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBulkUploadSingleUser(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	_, conn := newTestEngine(t, model)

	send(t, conn, protocol.CmdConnect, 0, 1, nil)
	recv(t, conn)

	userRecord := protocol.EncodeUser72(protocol.User{UID: 9, Name: "Bulk", UserID: "9"})
	hdr := make([]byte, protocol.UploadHeaderLen)
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(userRecord)))
	scratch := append(hdr, userRecord...)

	sizeBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(sizeBuf, uint32(len(scratch)))
	send(t, conn, protocol.CmdPrepareData, 0, 2, sizeBuf)
	resp := recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK for PREPARE DATA, got %d", resp.Command)
	}

	send(t, conn, protocol.CmdData, 0, 3, scratch)
	resp = recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK for DATA, got %d", resp.Command)
	}

	saveParams := make([]byte, 10)
	send(t, conn, protocol.CmdSaveUserTemps, 0, 4, saveParams)
	resp = recv(t, conn)
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK for SAVE USERTEMPS, got %d", resp.Command)
	}

	send(t, conn, protocol.CmdUserTempRRQ, 0, 5, nil)
	resp = recv(t, conn)
	body := resp.Payload[4:]
	if len(body) != protocol.UserRecordLen72 {
		t.Fatalf("expected 1 user, got %d bytes", len(body))
	}
	u, _ := protocol.DecodeUser72(body)
	if u.UID != 9 || u.Name != "Bulk" {
		t.Fatalf("got %+v", u)
	}
}
