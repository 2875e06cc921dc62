package device

// Template is the device-model representation of a fingerprint
// template. (uid, finger) is unique.
type Template struct {
	UID    uint16
	Finger uint8
	Valid  uint8
	Blob   []byte
}

// ListTemplates returns a snapshot of all templates in insertion order.
func (m *Model) ListTemplates() []Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Template, len(m.templates))
	for i, t := range m.templates {
		out[i] = Template{UID: t.UID, Finger: t.Finger, Valid: t.Valid, Blob: append([]byte(nil), t.Blob...)}
	}
	return out
}

// SetTemplate upserts a template by (uid, finger).
func (m *Model) SetTemplate(t Template) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.templates {
		if existing.UID == t.UID && existing.Finger == t.Finger {
			m.templates[i] = t
			return
		}
	}
	m.templates = append(m.templates, t)
}

// DeleteTemplate removes the template for (uid, finger), if present.
// Returns true if a template was removed.
func (m *Model) DeleteTemplate(uid uint16, finger uint8) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	kept := m.templates[:0:0]
	for _, t := range m.templates {
		if t.UID == uid && t.Finger == finger {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	m.templates = kept
	return found
}

// GetTemplate returns the template for (uid, finger), if present.
func (m *Model) GetTemplate(uid uint16, finger uint8) (Template, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.templates {
		if t.UID == uid && t.Finger == finger {
			return Template{UID: t.UID, Finger: t.Finger, Valid: t.Valid, Blob: append([]byte(nil), t.Blob...)}, true
		}
	}
	return Template{}, false
}
