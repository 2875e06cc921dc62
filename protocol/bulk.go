package protocol

import "encoding/binary"

// PrepareBufferRequest is the 11-byte PREPARE BUFFER payload:
// flag:1, cmd:2 LE, fct:4 LE, ext:4 LE.
type PrepareBufferRequest struct {
	Flag int8
	Cmd  uint16
	Fct  int32
	Ext  int32
}

// DecodePrepareBufferRequest parses the PREPARE BUFFER payload.
func DecodePrepareBufferRequest(raw []byte) (PrepareBufferRequest, bool) {
	if len(raw) < 11 {
		return PrepareBufferRequest{}, false
	}
	return PrepareBufferRequest{
		Flag: int8(raw[0]),
		Cmd:  binary.LittleEndian.Uint16(raw[1:3]),
		Fct:  int32(binary.LittleEndian.Uint32(raw[3:7])),
		Ext:  int32(binary.LittleEndian.Uint32(raw[7:11])),
	}, true
}

// SaveUserTempsParams is the 10-byte SAVE USERTEMPS payload:
// size1:4 LE, cmd:2 LE, fct:4 LE.
type SaveUserTempsParams struct {
	Size1 uint32
	Cmd   uint16
	Fct   uint32
}

// DecodeSaveUserTempsParams parses the SAVE USERTEMPS payload.
func DecodeSaveUserTempsParams(raw []byte) (SaveUserTempsParams, bool) {
	if len(raw) < 10 {
		return SaveUserTempsParams{}, false
	}
	return SaveUserTempsParams{
		Size1: binary.LittleEndian.Uint32(raw[0:4]),
		Cmd:   binary.LittleEndian.Uint16(raw[4:6]),
		Fct:   binary.LittleEndian.Uint32(raw[6:10]),
	}, true
}

// UploadHeaderLen is the fixed 12-byte prefix of the upload scratch:
// user-block-size:4 LE, table-size:4 LE, template-block-size:4 LE.
const UploadHeaderLen = 12

// UploadHeader is the decoded form of that prefix.
type UploadHeader struct {
	UserBlockSize     uint32
	TableSize         uint32
	TemplateBlockSize uint32
}

// DecodeUploadHeader parses the 12-byte upload scratch prefix.
func DecodeUploadHeader(raw []byte) (UploadHeader, bool) {
	if len(raw) < UploadHeaderLen {
		return UploadHeader{}, false
	}
	return UploadHeader{
		UserBlockSize:     binary.LittleEndian.Uint32(raw[0:4]),
		TableSize:         binary.LittleEndian.Uint32(raw[4:8]),
		TemplateBlockSize: binary.LittleEndian.Uint32(raw[8:12]),
	}, true
}

// TableEntryLen is the fixed size of one template-table entry in the
// bulk upload: entry-type:1, uid:2 LE, finger-num:1, template-start:4 LE.
const TableEntryLen = 8

// TableEntry is one decoded template-table entry.
type TableEntry struct {
	EntryType     int8
	UID           uint16
	FingerNum     uint8
	TemplateStart uint32
}

// DecodeTableEntry parses one 8-byte table entry.
func DecodeTableEntry(raw []byte) (TableEntry, bool) {
	if len(raw) < TableEntryLen {
		return TableEntry{}, false
	}
	return TableEntry{
		EntryType:     int8(raw[0]),
		UID:           binary.LittleEndian.Uint16(raw[1:3]),
		FingerNum:     raw[3],
		TemplateStart: binary.LittleEndian.Uint32(raw[4:8]),
	}, true
}

// EntryTypeFingerprint identifies a fingerprint template entry in the
// table; finger = finger-num - 0x10 for such entries.
const EntryTypeFingerprint = 2
