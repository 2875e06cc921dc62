package device

import "zkterm/protocol"

// ApplyBulkUpload parses the upload scratch accumulated between
// PREPARE_DATA and SAVE_USERTEMPS and merges the decoded users and
// templates into the model. The scratch layout is a 12-byte header
// {user-block-size, table-size, template-block-size} followed by the
// three blobs concatenated in that order (spec.md §4.3.2).
func (m *Model) ApplyBulkUpload(scratch []byte) {
	hdr, ok := protocol.DecodeUploadHeader(scratch)
	if !ok {
		return
	}
	offset := protocol.UploadHeaderLen

	if int(hdr.UserBlockSize) > 0 && offset+int(hdr.UserBlockSize) <= len(scratch) {
		userBlock := scratch[offset : offset+int(hdr.UserBlockSize)]
		applyUserBlock(m, userBlock)
	}
	offset += int(hdr.UserBlockSize)

	if hdr.TableSize > 0 {
		tableEnd := offset + int(hdr.TableSize)
		if tableEnd > len(scratch) {
			tableEnd = len(scratch)
		}
		table := scratch[offset:tableEnd]
		fpackStart := tableEnd
		fpackEnd := fpackStart + int(hdr.TemplateBlockSize)
		if fpackEnd > len(scratch) {
			fpackEnd = len(scratch)
		}
		fpack := scratch[fpackStart:fpackEnd]
		applyTemplateTable(m, table, fpack)
	}
}

func applyUserBlock(m *Model, block []byte) {
	recordLen := 28
	if len(block) > 0 && len(block)%72 == 0 {
		recordLen = 72
	}
	for len(block) >= recordLen {
		var u protocol.User
		var err error
		if recordLen == 72 {
			u, err = protocol.DecodeUser72(block[:recordLen])
		} else {
			u, err = protocol.DecodeUser28(block[:recordLen])
		}
		if err == nil {
			m.SetUser(User{
				UID:       u.UID,
				Privilege: u.Privilege,
				Password:  u.Password,
				Name:      u.Name,
				Card:      u.Card,
				GroupID:   u.GroupID,
				UserID:    u.UserID,
			})
		}
		block = block[recordLen:]
	}
}

func applyTemplateTable(m *Model, table, fpack []byte) {
	type entry struct {
		e     protocol.TableEntry
		index int
	}
	var entries []entry
	for i := 0; i+protocol.TableEntryLen <= len(table); i += protocol.TableEntryLen {
		e, ok := protocol.DecodeTableEntry(table[i : i+protocol.TableEntryLen])
		if !ok {
			break
		}
		entries = append(entries, entry{e: e, index: i})
	}

	for idx, ent := range entries {
		if ent.e.EntryType != protocol.EntryTypeFingerprint {
			continue
		}
		start := int(ent.e.TemplateStart)
		var end int
		if idx+1 < len(entries) {
			end = int(entries[idx+1].e.TemplateStart)
		} else {
			end = len(fpack)
		}
		if start < 0 || start > len(fpack) {
			continue
		}
		if end > len(fpack) {
			end = len(fpack)
		}
		if end < start {
			continue
		}
		finger := int(ent.e.FingerNum) - 0x10
		if finger < 0 {
			continue
		}
		blob := append([]byte(nil), fpack[start:end]...)
		m.SetTemplate(Template{
			UID:    ent.e.UID,
			Finger: uint8(finger),
			Valid:  1,
			Blob:   blob,
		})
	}
}
