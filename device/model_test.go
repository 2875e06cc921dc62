package device

import "testing"

func seedModel() *Model {
	m := New(DefaultCapacity())
	m.Seed([]User{
		{UID: 1, Name: "Admin", UserID: "1"},
		{UID: 2, Name: "User001", UserID: "2"},
		{UID: 3, Name: "User002", UserID: "3"},
	})
	return m
}

func TestSetUserUpsertPreservesPosition(t *testing.T) {
	m := seedModel()
	m.SetUser(User{UID: 2, Name: "User001-Renamed", UserID: "2"})
	users := m.ListUsers()
	if len(users) != 3 {
		t.Fatalf("got %d users", len(users))
	}
	if users[1].UID != 2 || users[1].Name != "User001-Renamed" {
		t.Fatalf("position not preserved: %+v", users[1])
	}
}

func TestSetUserAppendsNewUID(t *testing.T) {
	m := seedModel()
	m.SetUser(User{UID: 9, Name: "Bulk", UserID: "9"})
	users := m.ListUsers()
	if len(users) != 4 || users[3].UID != 9 {
		t.Fatalf("got %+v", users)
	}
}

func TestDeleteThenReAdd(t *testing.T) {
	m := seedModel()
	m.SetTemplate(Template{UID: 2, Finger: 0, Valid: 1, Blob: []byte{1}})

	if !m.DeleteUser(2) {
		t.Fatal("expected delete to report found")
	}
	users := m.ListUsers()
	if len(users) != 2 {
		t.Fatalf("expected 2 users after delete, got %d", len(users))
	}
	if _, ok := m.GetTemplate(2, 0); ok {
		t.Fatal("expected template to be deleted with its user")
	}

	m.SetUser(User{UID: 2, Name: "User001", UserID: "2"})
	users = m.ListUsers()
	if len(users) != 3 {
		t.Fatalf("expected 3 users after re-add, got %d", len(users))
	}
	if users[2].UID != 2 {
		t.Fatalf("expected re-added user appended at end, got %+v", users)
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	m := seedModel()
	if m.DeleteUser(999) {
		t.Fatal("expected delete of unknown uid to report not found")
	}
}

func TestTemplateUpsertByCompositeKey(t *testing.T) {
	m := seedModel()
	m.SetTemplate(Template{UID: 1, Finger: 0, Valid: 1, Blob: []byte{1, 2, 3}})
	m.SetTemplate(Template{UID: 1, Finger: 0, Valid: 1, Blob: []byte{9, 9}})
	m.SetTemplate(Template{UID: 1, Finger: 1, Valid: 1, Blob: []byte{5}})

	tpl := m.ListTemplates()
	if len(tpl) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(tpl))
	}
	got, ok := m.GetTemplate(1, 0)
	if !ok || string(got.Blob) != "\x09\x09" {
		t.Fatalf("expected replaced blob, got %+v ok=%v", got, ok)
	}
}

func TestCapacitySnapshotTracksCollections(t *testing.T) {
	m := seedModel()
	snap := m.CapacitySnapshot()
	if snap.Users != 3 || snap.Templates != 0 || snap.Attendance != 0 {
		t.Fatalf("got %+v", snap)
	}
	m.SetTemplate(Template{UID: 1, Finger: 0, Valid: 1})
	m.AddAttendance(Attendance{UID: 1, UserID: "1"})
	snap = m.CapacitySnapshot()
	if snap.Templates != 1 || snap.Attendance != 1 {
		t.Fatalf("got %+v", snap)
	}
	if snap.UsersFree != snap.MaxUsers-3 {
		t.Fatalf("got %+v", snap)
	}
}

func TestFindUserByUserID(t *testing.T) {
	m := seedModel()
	uid, ok := m.FindUserByUserID("2")
	if !ok || uid != 2 {
		t.Fatalf("got uid=%d ok=%v", uid, ok)
	}
	if _, ok := m.FindUserByUserID("nope"); ok {
		t.Fatal("expected not found")
	}
}

func TestClearAttendance(t *testing.T) {
	m := seedModel()
	m.AddAttendance(Attendance{UID: 1, UserID: "1"})
	m.ClearAttendance()
	if len(m.ListAttendance()) != 0 {
		t.Fatal("expected attendance cleared")
	}
}
