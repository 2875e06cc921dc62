// Package device holds the process-wide, in-memory state of the
// simulated terminal: users, fingerprint templates, attendance
// records, and capacity counters. All mutation goes through a single
// mutex (ported from the teacher's sol.Manager supervisory-lock
// discipline) so that concurrent connections serialize cleanly and
// every list/snapshot operation sees a consistent view.
package device

import "sync"

// Capacity is the set of configured maximums for the three backing
// collections.
type Capacity struct {
	MaxUsers      int
	MaxTemplates  int
	MaxAttendance int
}

// DefaultCapacity matches the values the original simulator reports.
func DefaultCapacity() Capacity {
	return Capacity{
		MaxUsers:      3000,
		MaxTemplates:  10000,
		MaxAttendance: 100000,
	}
}

// Model is the shared, mutable device state. It is safe for
// concurrent use by multiple session engines.
type Model struct {
	mu         sync.Mutex
	users      []User
	templates  []Template
	attendance []Attendance
	capacity   Capacity
}

// New creates an empty device model with the given capacity.
func New(capacity Capacity) *Model {
	return &Model{capacity: capacity}
}

// Seed installs an initial set of users, in order, replacing any
// existing users. Used at startup only.
func (m *Model) Seed(users []User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append([]User(nil), users...)
}

// CapacitySnapshot reports the current counts and configured maximums.
// Counts are recomputed from the backing collections on every call so
// they can never drift from the invariant that count == len(set).
func (m *Model) CapacitySnapshot() (snap CapacitySnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CapacitySnapshot{
		Users:          len(m.users),
		Templates:      len(m.templates),
		Attendance:     len(m.attendance),
		MaxUsers:       m.capacity.MaxUsers,
		MaxTemplates:   m.capacity.MaxTemplates,
		MaxAttendance:  m.capacity.MaxAttendance,
		UsersFree:      m.capacity.MaxUsers - len(m.users),
		TemplatesFree:  m.capacity.MaxTemplates - len(m.templates),
		AttendanceFree: m.capacity.MaxAttendance - len(m.attendance),
	}
}

// CapacitySnapshot is a point-in-time read of the counters.
type CapacitySnapshot struct {
	Users, Templates, Attendance             int
	MaxUsers, MaxTemplates, MaxAttendance    int
	UsersFree, TemplatesFree, AttendanceFree int
}
