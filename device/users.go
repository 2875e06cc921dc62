package device

// User is the device-model representation of a user record (distinct
// from protocol.User, which is the wire layout — this is what the
// model stores and the session layer translates to/from wire form).
type User struct {
	UID       uint16
	Privilege uint8
	Password  string
	Name      string
	Card      uint32
	GroupID   string
	UserID    string
}

// ListUsers returns a snapshot of all users in insertion order.
func (m *Model) ListUsers() []User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]User(nil), m.users...)
}

// SetUser upserts a user by uid: replaces in place if the uid already
// exists (preserving position), otherwise appends.
func (m *Model) SetUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.users {
		if existing.UID == u.UID {
			m.users[i] = u
			return
		}
	}
	m.users = append(m.users, u)
}

// DeleteUser removes the user with the given uid and all of its
// templates. Returns true if a user was removed.
func (m *Model) DeleteUser(uid uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	kept := m.users[:0:0]
	for _, u := range m.users {
		if u.UID == uid {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	m.users = kept

	keptTemplates := m.templates[:0:0]
	for _, t := range m.templates {
		if t.UID == uid {
			continue
		}
		keptTemplates = append(keptTemplates, t)
	}
	m.templates = keptTemplates

	return found
}

// FindUserByUserID returns the uid of the user whose external user id
// matches s, if any.
func (m *Model) FindUserByUserID(s string) (uint16, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.UserID == s {
			return u.UID, true
		}
	}
	return 0, false
}
