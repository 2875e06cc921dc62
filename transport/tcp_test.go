package transport

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"zkterm/device"
	"zkterm/protocol"
	"zkterm/session"
)

func TestTCPListenerRoundTrip(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	ln, err := ListenTCP("127.0.0.1:0", model, session.Identity{FirmwareVersion: "Ver test"}, nil)
	if err != nil {
		t.Fatalf("ListenTCP: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		ln.Serve(ctx)
		close(done)
	}()

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	inner := protocol.EncodePacket(protocol.CmdConnect, 0, 1, nil)
	if _, err := conn.Write(protocol.EncodeEnvelope(inner)); err != nil {
		t.Fatalf("write: %v", err)
	}

	hdr := make([]byte, protocol.EnvelopeHeaderLen)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		t.Fatalf("read envelope header: %v", err)
	}
	innerLen, err := protocol.DecodeEnvelopeHeader(hdr)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	body := make([]byte, innerLen)
	if _, err := io.ReadFull(conn, body); err != nil {
		t.Fatalf("read inner packet: %v", err)
	}
	resp, err := protocol.DecodePacket(body)
	if err != nil {
		t.Fatalf("decode packet: %v", err)
	}
	if resp.Command != protocol.CmdAckOK {
		t.Fatalf("expected OK, got %d", resp.Command)
	}
	if resp.Session == 0 {
		t.Fatal("expected non-zero session id")
	}

	cancel()
	ln.Close()
	<-done
}

func TestTCPListenerRejectsBadMagic(t *testing.T) {
	model := device.New(device.DefaultCapacity())
	ln, err := ListenTCP("127.0.0.1:0", model, session.Identity{}, nil)
	if err != nil {
		t.Fatalf("ListenTCP: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ln.Serve(ctx)

	conn, err := net.DialTimeout("tcp", ln.Addr().String(), 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	bad := make([]byte, protocol.EnvelopeHeaderLen)
	binary.LittleEndian.PutUint16(bad[0:2], 0xFFFF)
	binary.LittleEndian.PutUint16(bad[2:4], 0xFFFF)
	conn.Write(bad)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 8)
	_, err = conn.Read(buf)
	if err != io.EOF {
		t.Fatalf("expected connection to be dropped on bad magic, got err=%v", err)
	}
}
