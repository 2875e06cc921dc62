package protocol

import (
	"encoding/binary"
	"errors"
)

// User record wire layouts. Strings are NUL-padded fixed-width fields.
const (
	UserRecordLen72 = 72
	UserRecordLen28 = 28

	// TemplateEntryHeaderLen is the fixed portion of a template list
	// entry: size, uid, finger, valid — the blob follows.
	TemplateEntryHeaderLen = 6

	// AttendanceRecordLen is the fixed size of one attendance record.
	AttendanceRecordLen = 40
)

// ErrBadRecordLen is returned when a payload's length matches neither
// known user-record layout.
var ErrBadRecordLen = errors.New("protocol: payload length matches no known record layout")

// User is the decoded, layout-independent form of a user record.
type User struct {
	UID       uint16
	Privilege uint8
	Password  string
	Name      string
	Card      uint32
	GroupID   string
	UserID    string
}

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func putPadded(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// EncodeUser72 packs a User into the 72-byte layout:
// uid:2 LE, privilege:1, password:8, name:24, card:4 LE, pad:1,
// group-id:7, pad:1, user-id:24.
func EncodeUser72(u User) []byte {
	buf := make([]byte, UserRecordLen72)
	binary.LittleEndian.PutUint16(buf[0:2], u.UID)
	buf[2] = u.Privilege
	putPadded(buf[3:11], u.Password)
	putPadded(buf[11:35], u.Name)
	binary.LittleEndian.PutUint32(buf[35:39], u.Card)
	// buf[39] pad
	putPadded(buf[40:47], u.GroupID)
	// buf[47] pad
	putPadded(buf[48:72], u.UserID)
	return buf
}

// DecodeUser72 unpacks the 72-byte user layout.
func DecodeUser72(raw []byte) (User, error) {
	if len(raw) < UserRecordLen72 {
		return User{}, ErrBadRecordLen
	}
	return User{
		UID:       binary.LittleEndian.Uint16(raw[0:2]),
		Privilege: raw[2],
		Password:  cstr(raw[3:11]),
		Name:      cstr(raw[11:35]),
		Card:      binary.LittleEndian.Uint32(raw[35:39]),
		GroupID:   cstr(raw[40:47]),
		UserID:    cstr(raw[48:72]),
	}, nil
}

// EncodeUser28 packs a User into the legacy 28-byte layout:
// uid:2 LE, privilege:1, password:5, name:8, card:4 LE, pad:1,
// group-id:1, tz:2, user-id:4 (as a little-endian uint32 printed
// back out as a decimal string by callers that need it, stored here
// as the raw 4-byte field via UserID being parsed as a number).
func EncodeUser28(u User) []byte {
	buf := make([]byte, UserRecordLen28)
	binary.LittleEndian.PutUint16(buf[0:2], u.UID)
	buf[1+1] = u.Privilege
	putPadded(buf[3:8], u.Password)
	putPadded(buf[8:16], u.Name)
	binary.LittleEndian.PutUint32(buf[16:20], u.Card)
	// buf[20] pad
	if u.GroupID != "" {
		buf[21] = u.GroupID[0]
	}
	// buf[22:24] tz, left zero
	var uidNum uint32
	for _, c := range u.UserID {
		if c < '0' || c > '9' {
			uidNum = 0
			break
		}
		uidNum = uidNum*10 + uint32(c-'0')
	}
	binary.LittleEndian.PutUint32(buf[24:28], uidNum)
	return buf
}

// DecodeUser28 unpacks the legacy 28-byte user layout.
func DecodeUser28(raw []byte) (User, error) {
	if len(raw) < UserRecordLen28 {
		return User{}, ErrBadRecordLen
	}
	userIDNum := binary.LittleEndian.Uint32(raw[24:28])
	return User{
		UID:       binary.LittleEndian.Uint16(raw[0:2]),
		Privilege: raw[2],
		Password:  cstr(raw[3:8]),
		Name:      cstr(raw[8:16]),
		Card:      binary.LittleEndian.Uint32(raw[16:20]),
		GroupID:   cstr(raw[21:22]),
		UserID:    uint32ToDecimal(userIDNum),
	}, nil
}

func uint32ToDecimal(v uint32) string {
	if v == 0 {
		return "0"
	}
	var digits [10]byte
	i := len(digits)
	for v > 0 {
		i--
		digits[i] = byte('0' + v%10)
		v /= 10
	}
	return string(digits[i:])
}

// DecodeUserAuto picks the 72-byte layout when the payload is exactly
// 72 bytes, the 28-byte layout when it is exactly 28 bytes, and
// reports ErrBadRecordLen for any other length. The 28-vs-72
// ambiguity is disambiguated solely by payload length.
func DecodeUserAuto(raw []byte) (User, error) {
	switch len(raw) {
	case UserRecordLen72:
		return DecodeUser72(raw)
	case UserRecordLen28:
		return DecodeUser28(raw)
	default:
		return User{}, ErrBadRecordLen
	}
}

// Template is the decoded form of a fingerprint template record.
type Template struct {
	UID    uint16
	Finger uint8
	Valid  uint8
	Blob   []byte
}

// EncodeTemplateEntry packs one template-list entry:
// size:2 LE (blob len + 6), uid:2 LE, finger:1, valid:1, blob.
func EncodeTemplateEntry(t Template) []byte {
	size := len(t.Blob) + TemplateEntryHeaderLen
	buf := make([]byte, TemplateEntryHeaderLen+len(t.Blob))
	binary.LittleEndian.PutUint16(buf[0:2], uint16(size))
	binary.LittleEndian.PutUint16(buf[2:4], t.UID)
	buf[4] = t.Finger
	buf[5] = t.Valid
	copy(buf[6:], t.Blob)
	return buf
}

// Attendance is the decoded form of one attendance record.
type Attendance struct {
	UID       uint16
	UserID    string
	Status    uint8
	Timestamp uint32
	Punch     uint8
}

// EncodeAttendance packs the 40-byte attendance record layout:
// uid:2 LE, user-id:24, status:1, timestamp:4 LE, punch:1, pad:8.
func EncodeAttendance(a Attendance) []byte {
	buf := make([]byte, AttendanceRecordLen)
	binary.LittleEndian.PutUint16(buf[0:2], a.UID)
	putPadded(buf[2:26], a.UserID)
	buf[26] = a.Status
	binary.LittleEndian.PutUint32(buf[27:31], a.Timestamp)
	buf[31] = a.Punch
	return buf
}
