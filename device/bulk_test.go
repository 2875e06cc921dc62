package device

import (
	"encoding/binary"
	"testing"

	"zkterm/protocol"
)

func TestApplyBulkUploadUserOnly(t *testing.T) {
	m := New(DefaultCapacity())

	userBlock := protocol.EncodeUser72(protocol.User{UID: 9, Name: "Bulk", UserID: "9"})
	hdr := make([]byte, protocol.UploadHeaderLen)
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(len(userBlock)))
	// table-size and template-block-size left zero

	scratch := append(hdr, userBlock...)
	m.ApplyBulkUpload(scratch)

	users := m.ListUsers()
	if len(users) != 1 || users[0].UID != 9 || users[0].Name != "Bulk" {
		t.Fatalf("got %+v", users)
	}
}

func TestApplyBulkUploadWithTemplateTable(t *testing.T) {
	m := New(DefaultCapacity())

	templateBlob1 := []byte{1, 2, 3, 4}
	templateBlob2 := []byte{5, 6}
	fpack := append(append([]byte(nil), templateBlob1...), templateBlob2...)

	entry1 := make([]byte, protocol.TableEntryLen)
	entry1[0] = protocol.EntryTypeFingerprint
	binary.LittleEndian.PutUint16(entry1[1:3], 7)
	entry1[3] = 0x10 // finger 0
	binary.LittleEndian.PutUint32(entry1[4:8], 0)

	entry2 := make([]byte, protocol.TableEntryLen)
	entry2[0] = protocol.EntryTypeFingerprint
	binary.LittleEndian.PutUint16(entry2[1:3], 7)
	entry2[3] = 0x11 // finger 1
	binary.LittleEndian.PutUint32(entry2[4:8], uint32(len(templateBlob1)))

	table := append(entry1, entry2...)

	hdr := make([]byte, protocol.UploadHeaderLen)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(table)))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(fpack)))

	scratch := append(hdr, append(table, fpack...)...)
	m.ApplyBulkUpload(scratch)

	tpl, ok := m.GetTemplate(7, 0)
	if !ok || string(tpl.Blob) != string(templateBlob1) {
		t.Fatalf("finger 0: got %+v ok=%v", tpl, ok)
	}
	tpl, ok = m.GetTemplate(7, 1)
	if !ok || string(tpl.Blob) != string(templateBlob2) {
		t.Fatalf("finger 1: got %+v ok=%v", tpl, ok)
	}
}
