package protocol

import (
	"encoding/binary"
	"errors"
)

// Stream envelope magic, little-endian on the wire as 50 50 82 7D.
const (
	magicLo uint16 = 0x5050
	magicHi uint16 = 0x7D82
)

// ErrBadMagic is returned when a stream envelope's magic bytes don't
// match. Callers must treat this as fatal to the connection.
var ErrBadMagic = errors.New("protocol: bad stream envelope magic")

// ErrShortEnvelope is returned when fewer than EnvelopeHeaderLen bytes
// are available to decode a header.
var ErrShortEnvelope = errors.New("protocol: short stream envelope header")

// EnvelopeHeaderLen is the fixed size of the stream envelope header:
// two 16-bit magic words plus a 32-bit inner-packet length.
const EnvelopeHeaderLen = 8

// EncodeEnvelope wraps an inner packet with the 8-byte stream-envelope
// header used in TCP (connection-oriented) mode. UDP datagrams carry
// the inner packet unwrapped.
func EncodeEnvelope(inner []byte) []byte {
	buf := make([]byte, EnvelopeHeaderLen+len(inner))
	binary.LittleEndian.PutUint16(buf[0:2], magicLo)
	binary.LittleEndian.PutUint16(buf[2:4], magicHi)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(inner)))
	copy(buf[8:], inner)
	return buf
}

// DecodeEnvelopeHeader validates the magic and returns the declared
// inner-packet length. It does not consume or validate the inner
// packet itself.
func DecodeEnvelopeHeader(hdr []byte) (innerLen uint32, err error) {
	if len(hdr) < EnvelopeHeaderLen {
		return 0, ErrShortEnvelope
	}
	lo := binary.LittleEndian.Uint16(hdr[0:2])
	hi := binary.LittleEndian.Uint16(hdr[2:4])
	if lo != magicLo || hi != magicHi {
		return 0, ErrBadMagic
	}
	return binary.LittleEndian.Uint32(hdr[4:8]), nil
}
