// Package protocol implements the ZKTeco wire framing: the outer
// stream envelope, the inner command packet, and the payload layouts
// for users, templates, attendance, and capacity. It has no knowledge
// of session state or the device model — see the session and device
// packages for that.
package protocol

// Command codes, as sent by the client.
const (
	CmdConnect        = 1000
	CmdExit           = 1001
	CmdEnableDevice   = 1002
	CmdDisableDevice  = 1003
	CmdRestart        = 1004
	CmdPowerOff       = 1005
	CmdGetTime        = 201
	CmdSetTime        = 202
	CmdGetVersion     = 1100
	CmdAuth           = 1102
	CmdOptionsRRQ     = 11
	CmdOptionsWRQ     = 12
	CmdGetFreeSizes   = 50
	CmdUserTempRRQ    = 9
	CmdAttLogRRQ      = 13
	CmdFreeData       = 1502
	CmdPrepareBuffer  = 1503
	CmdPrepareData    = 1500
	CmdData           = 1501
	CmdRegEvent       = 500
	CmdStartVerify    = 60
	CmdGetPinWidth    = 69
	CmdUnlock         = 31
	CmdTestVoice      = 1017
	CmdUserWRQ        = 8
	CmdDeleteUser     = 18
	CmdRefreshData    = 1013
	CmdDeleteUserTemp = 19
	CmdStartEnroll    = 61
	CmdCancelCapture  = 62
	CmdGetUserTemp    = 88
	CmdDBRRQ          = 7
	CmdSaveUserTemps  = 110
	CmdReadBuffer     = 1504
)

// Response codes, as sent by the simulator.
const (
	CmdAckOK     = 2000
	CmdAckError  = 2001
	CmdAckUnauth = 2005
)

// Function types used in the PREPARE BUFFER payload's fct field.
const (
	FctAttLog    = 1
	FctFingerTmp = 2
	FctUser      = 5
)
