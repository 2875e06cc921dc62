package session

import (
	"encoding/binary"

	"zkterm/protocol"
)

// handlePrepareData resets the upload scratch ahead of a chunked
// PREPARE_DATA/DATA/SAVE_USERTEMPS transfer (spec.md §4.3.2).
func handlePrepareData(e *Engine, pkt protocol.Packet) handlerResult {
	if len(pkt.Payload) < 4 {
		return errResult()
	}
	size := binary.LittleEndian.Uint32(pkt.Payload[0:4])
	e.scratch.Reset(int(size))
	return ok(nil)
}

// handleData appends one chunk to the upload scratch.
func handleData(e *Engine, pkt protocol.Packet) handlerResult {
	e.scratch.Append(pkt.Payload)
	return ok(nil)
}

// handleSaveUserTemps parses the accumulated scratch and merges it
// into the device model, then clears the scratch for the next
// transfer.
func handleSaveUserTemps(e *Engine, pkt protocol.Packet) handlerResult {
	if _, parsed := protocol.DecodeSaveUserTempsParams(pkt.Payload); !parsed {
		return errResult()
	}
	e.model.ApplyBulkUpload(e.scratch.Bytes())
	e.scratch.Clear()
	return ok(nil)
}
