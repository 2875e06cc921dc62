// Package session implements the per-connection state machine: frame
// dispatch, the device-model mutations each command triggers, and the
// two asynchronous sub-protocols (enrollment event push, chunked
// upload). It is transport-agnostic — see the transport package for
// the TCP (stream-enveloped) and UDP (datagram) listeners that feed it.
package session

// Conn abstracts the framing differences between TCP's stream
// envelope and UDP's bare-datagram mode. Implementations live in the
// transport package. ReadPacket returns one decoded inner packet;
// WritePacket encodes and sends one. Both are blocking and are called
// from at most one goroutine at a time per Engine (the write side is
// additionally guarded by Engine's own mutex since the enrollment
// task writes from a second goroutine).
type Conn interface {
	ReadPacket() (raw []byte, err error)
	WritePacket(raw []byte) error
	Close() error
}
