package session

import "strings"

// staticOptions are the OPTIONS RRQ keys whose value never depends on
// device identity — ported verbatim from the original simulator's
// option table (original_source/zk_simulator.py, handle_options_rrq).
var staticOptions = map[string]string{
	"ZKFaceVersion":     "0",
	"~ZKFPVersion":      "10",
	"~ExtendFmt":        "0",
	"~UserExtFmt":       "0",
	"FaceFunOn":         "0",
	"CompatOldFirmware": "0",
}

// lookupOption resolves one OPTIONS RRQ key against this session's
// device identity, falling back to the static table above. The second
// return is false for unrecognized keys (spec.md §4.3: OK with empty
// payload in that case).
func (e *Engine) lookupOption(key string) (string, bool) {
	switch key {
	case "~SerialNumber":
		return e.identity.SerialNumber, true
	case "~Platform":
		return e.identity.Platform, true
	case "~DeviceName":
		return e.identity.DeviceName, true
	case "MAC":
		return e.identity.MAC, true
	case "IPAddress":
		return e.identity.IPAddress, true
	case "NetMask":
		return e.identity.NetMask, true
	case "GATEIPAddress":
		return e.identity.GatewayIP, true
	}
	if v, ok := staticOptions[key]; ok {
		return v, true
	}
	return "", false
}

// trimNUL strips a NUL terminator and any trailing padding bytes,
// returning the decoded ASCII content.
func trimNUL(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
