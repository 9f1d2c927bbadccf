package registry

import (
	"testing"

	"github.com/google/uuid"
)

func newRecord(name string) *Record {
	return &Record{
		ID:         uuid.New(),
		Name:       name,
		MIME:       "image/png",
		PreviewURI: "data:image/png;base64,",
	}
}

func TestInsertPreservesOrder(t *testing.T) {
	g := New()
	names := []string{"a.png", "b.png", "c.png"}
	for _, n := range names {
		g.Insert(newRecord(n))
	}

	got := g.List()
	if len(got) != len(names) {
		t.Fatalf("got %d records, want %d", len(got), len(names))
	}
	for i, rec := range got {
		if rec.Name != names[i] {
			t.Errorf("records[%d] = %q, want %q", i, rec.Name, names[i])
		}
	}
}

func TestRotateFourTimesIsIdentity(t *testing.T) {
	g := New()
	rec := newRecord("a.png")
	g.Insert(rec)

	want := []int{90, 180, 270, 0}
	for i, w := range want {
		if !g.Rotate(rec.ID) {
			t.Fatalf("rotate %d failed", i+1)
		}
		if rec.Rotation != w {
			t.Errorf("after %d rotations got %d degrees, want %d", i+1, rec.Rotation, w)
		}
	}
}

func TestRotateMissingRecord(t *testing.T) {
	g := New()
	if g.Rotate(uuid.New()) {
		t.Error("rotating a missing record should report false")
	}
}

func TestRemoveSelectedReselectsFirst(t *testing.T) {
	g := New()
	a, b, c := newRecord("a.png"), newRecord("b.png"), newRecord("c.png")
	g.Insert(a)
	g.Insert(b)
	g.Insert(c)
	g.Select(b.ID)

	if !g.Remove(b.ID) {
		t.Fatal("remove failed")
	}

	sel := g.Selected()
	if sel == nil {
		t.Fatal("selection should fall back to the first remaining record")
	}
	if sel.ID != a.ID {
		t.Errorf("selected %q, want %q", sel.Name, a.Name)
	}
}

func TestRemoveLastClearsSelection(t *testing.T) {
	g := New()
	a := newRecord("a.png")
	g.Insert(a)
	g.Select(a.ID)

	g.Remove(a.ID)

	if g.Len() != 0 {
		t.Errorf("registry should be empty, has %d", g.Len())
	}
	if g.Selected() != nil {
		t.Error("selection should be cleared when the last record is removed")
	}
}

func TestRemoveUnselectedKeepsSelection(t *testing.T) {
	g := New()
	a, b := newRecord("a.png"), newRecord("b.png")
	g.Insert(a)
	g.Insert(b)
	g.Select(a.ID)

	g.Remove(b.ID)

	if sel := g.Selected(); sel == nil || sel.ID != a.ID {
		t.Error("removing an unselected record should not move the selection")
	}
}

func TestRemoveAll(t *testing.T) {
	g := New()
	a := newRecord("a.png")
	g.Insert(a)
	g.Insert(newRecord("b.png"))
	g.Select(a.ID)

	g.RemoveAll()

	if g.Len() != 0 {
		t.Errorf("registry should be empty, has %d", g.Len())
	}
	if g.Selected() != nil {
		t.Error("selection should be cleared")
	}
}

func TestSelectUnknownIgnored(t *testing.T) {
	g := New()
	a := newRecord("a.png")
	g.Insert(a)
	g.Select(a.ID)

	g.Select(uuid.New())

	if sel := g.Selected(); sel == nil || sel.ID != a.ID {
		t.Error("selecting an unknown ID should leave the selection alone")
	}
}

func TestSetCrop(t *testing.T) {
	g := New()
	rec := newRecord("a.png")
	g.Insert(rec)

	if rec.Crop != nil {
		t.Fatal("crop should be absent until committed")
	}
	if !g.SetCrop(rec.ID, CropRegion{X: 10, Y: 20, Width: 30, Height: 40}) {
		t.Fatal("SetCrop failed")
	}
	if rec.Crop == nil || rec.Crop.Width != 30 {
		t.Errorf("crop not stored: %+v", rec.Crop)
	}
}

func TestReady(t *testing.T) {
	rec := &Record{ID: uuid.New(), Name: "pending.png"}
	if rec.Ready() {
		t.Error("record without a preview must not be ready")
	}
	rec.PreviewURI = "data:image/png;base64,AA=="
	if !rec.Ready() {
		t.Error("record with a preview should be ready")
	}
}
