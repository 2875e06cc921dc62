package device

// Attendance is the device-model representation of one punch record.
// Immutable once created.
type Attendance struct {
	UID       uint16
	UserID    string
	Timestamp uint32
	Status    uint8
	Punch     uint8
}

// ListAttendance returns a snapshot of all attendance records in
// insertion order.
func (m *Model) ListAttendance() []Attendance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Attendance(nil), m.attendance...)
}

// AddAttendance appends a new attendance record. Exposed for test
// seeding and for the extensibility hook of a future punch-ingest
// command — no dispatch entry calls this in the core command table.
func (m *Model) AddAttendance(a Attendance) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance = append(m.attendance, a)
}

// ClearAttendance wipes all attendance records. Spec.md lists the wipe
// command as an extensibility hook not wired into the dispatch table;
// this method exists so that hook has something concrete to call.
func (m *Model) ClearAttendance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance = nil
}
