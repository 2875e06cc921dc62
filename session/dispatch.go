package session

import "zkterm/protocol"

// handlerResult is what a command handler hands back to the engine:
// either a reply to encode and send, or (rarely) an instruction to
// send nothing / close the connection / spawn the enrollment task.
type handlerResult struct {
	command     int
	payload     []byte
	closeAfter  bool
	noReply     bool
	startEnroll bool
}

func ok(payload []byte) handlerResult {
	return handlerResult{command: protocol.CmdAckOK, payload: payload}
}

func errResult() handlerResult {
	return handlerResult{command: protocol.CmdAckError}
}

// handlerFunc handles one decoded request packet.
type handlerFunc func(e *Engine, pkt protocol.Packet) handlerResult

// dispatchTable maps command codes to handlers, per spec.md §4.3's
// table. Commands with no entry fall through to the unknown-command
// ERROR response in Engine.handle.
var dispatchTable = map[uint16]handlerFunc{
	protocol.CmdConnect:        handleConnect,
	protocol.CmdAuth:           handleAuth,
	protocol.CmdExit:           handleExit,
	protocol.CmdEnableDevice:   handleNoop,
	protocol.CmdDisableDevice:  handleNoop,
	protocol.CmdGetVersion:     handleGetVersion,
	protocol.CmdGetTime:        handleGetTime,
	protocol.CmdSetTime:        handleSetTime,
	protocol.CmdOptionsRRQ:     handleOptionsRRQ,
	protocol.CmdOptionsWRQ:     handleOptionsWRQ,
	protocol.CmdGetFreeSizes:   handleGetFreeSizes,
	protocol.CmdGetPinWidth:    handleGetPinWidth,
	protocol.CmdUserTempRRQ:    handleUserTempRRQ,
	protocol.CmdDBRRQ:          handleDBRRQ,
	protocol.CmdAttLogRRQ:      handleAttLogRRQ,
	protocol.CmdPrepareBuffer:  handlePrepareBuffer,
	protocol.CmdFreeData:       handleNoop,
	protocol.CmdRegEvent:       handleRegEvent,
	protocol.CmdStartVerify:    handleNoop,
	protocol.CmdUnlock:         handleNoop,
	protocol.CmdTestVoice:      handleNoop,
	protocol.CmdUserWRQ:        handleUserWRQ,
	protocol.CmdDeleteUser:     handleDeleteUser,
	protocol.CmdDeleteUserTemp: handleDeleteUserTemp,
	protocol.CmdGetUserTemp:    handleGetUserTemp,
	protocol.CmdRefreshData:    handleNoop,
	protocol.CmdStartEnroll:    handleStartEnroll,
	protocol.CmdCancelCapture:  handleCancelCapture,
	protocol.CmdPrepareData:    handlePrepareData,
	protocol.CmdData:           handleData,
	protocol.CmdSaveUserTemps:  handleSaveUserTemps,
	protocol.CmdReadBuffer:     handleReadBuffer,
}

// handleNoop answers OK with no payload and no side effect — the
// table above uses it for every command spec.md §4.3 describes as
// "respond OK (no internal effect)".
func handleNoop(e *Engine, pkt protocol.Packet) handlerResult {
	return ok(nil)
}
