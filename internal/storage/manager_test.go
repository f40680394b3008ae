package storage

import (
	"os"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)

	content := `{"schema_version":"cadream-project-v2"}`
	info, err := s.Save("project.json", strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	if info.ID == "" || info.Name != "project.json" {
		t.Errorf("info = %+v", info)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("size = %d", info.Size)
	}
	if info.Status != "uploaded" {
		t.Errorf("status = %q", info.Status)
	}

	got, err := s.Get(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != info.ID {
		t.Errorf("got %+v", got)
	}

	path, err := s.GetFilePath(info.ID)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "cadream-project-v2") {
		t.Errorf("content = %q", data)
	}
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); err == nil {
		t.Error("expected error")
	}
	if _, err := s.GetFilePath("nope"); err == nil {
		t.Error("expected error")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.Save("a.json", strings.NewReader("a"))
	b, _ := s.Save("b.json", strings.NewReader("b"))
	c, _ := s.Save("c.json", strings.NewReader("c"))

	// Saves can land on the same clock tick; force a strict order.
	a.UploadedAt = time.Now().Add(-2 * time.Second)
	b.UploadedAt = time.Now().Add(-1 * time.Second)
	c.UploadedAt = time.Now()

	list, err := s.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].ID != c.ID || list[2].ID != a.ID {
		t.Errorf("order = %s, %s, %s", list[0].Name, list[1].Name, list[2].Name)
	}

	limited, _ := s.List(2)
	if len(limited) != 2 {
		t.Errorf("limited = %d", len(limited))
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	info, _ := s.Save("x.json", strings.NewReader("x"))
	path, _ := s.GetFilePath(info.ID)

	if err := s.Delete(info.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(info.ID); err == nil {
		t.Error("metadata survived delete")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file survived delete")
	}
	if err := s.Delete(info.ID); err == nil {
		t.Error("double delete succeeded")
	}
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	info, _ := s.Save("old.json", strings.NewReader("x"))

	renamed, err := s.Rename(info.ID, "new.json")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "new.json" {
		t.Errorf("name = %q", renamed.Name)
	}
	if _, err := s.Rename("nope", "y"); err == nil {
		t.Error("expected error")
	}
}

func TestSetStatus(t *testing.T) {
	s := newTestStore(t)
	info, _ := s.Save("x.json", strings.NewReader("x"))

	if err := s.SetStatus(info.ID, "archived"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(info.ID)
	if got.Status != "archived" {
		t.Errorf("status = %q", got.Status)
	}
	if err := s.SetStatus("nope", "x"); err == nil {
		t.Error("expected error")
	}
}
