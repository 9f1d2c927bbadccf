// Package registry holds the ordered collection of image records and
// the current selection. It performs no I/O and takes no locks:
// callers confine mutation to a single goroutine (the session loop).
package registry

import "github.com/google/uuid"

// CropRegion is a committed crop rectangle. It is tracked on the
// record but not applied by the converters.
type CropRegion struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Record is one user-supplied image and its edit state. Records are
// created by intake and destroyed by removal; no other component
// constructs or destroys them.
type Record struct {
	ID         uuid.UUID
	Name       string
	MIME       string
	Size       int64
	Source     []byte // original uploaded payload, immutable after insert
	PreviewURI string // empty until preview generation completes
	EditedURI  string // optional; basis for local conversion when set
	Rotation   int    // degrees, one of 0, 90, 180, 270
	Crop       *CropRegion
	Progress   int // transient 0-100, cosmetic, meaningless once ready
}

// Ready reports whether the record finished intake. A record with an
// empty preview must not be offered for conversion or download.
func (r *Record) Ready() bool {
	return r.PreviewURI != ""
}

// Registry is an insertion-ordered sequence of records plus a weak
// selection reference.
type Registry struct {
	records  []*Record
	selected uuid.UUID
}

// New returns an empty registry with no selection.
func New() *Registry {
	return &Registry{}
}

// Insert appends a record, preserving input order within a batch.
func (g *Registry) Insert(rec *Record) {
	g.records = append(g.records, rec)
}

// Get returns the record with the given ID, or nil if it was removed.
func (g *Registry) Get(id uuid.UUID) *Record {
	for _, rec := range g.records {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// Remove deletes one record. If it was selected, the first remaining
// record becomes selected, or none when the registry is empty.
func (g *Registry) Remove(id uuid.UUID) bool {
	for i, rec := range g.records {
		if rec.ID == id {
			g.records = append(g.records[:i], g.records[i+1:]...)
			if g.selected == id {
				if len(g.records) > 0 {
					g.selected = g.records[0].ID
				} else {
					g.selected = uuid.Nil
				}
			}
			return true
		}
	}
	return false
}

// RemoveAll clears every record and the selection.
func (g *Registry) RemoveAll() {
	g.records = nil
	g.selected = uuid.Nil
}

// Select points the selection at an existing record. Selecting an
// unknown ID is ignored.
func (g *Registry) Select(id uuid.UUID) {
	if g.Get(id) != nil {
		g.selected = id
	}
}

// Selected returns the selected record, or nil when nothing is
// selected.
func (g *Registry) Selected() *Record {
	if g.selected == uuid.Nil {
		return nil
	}
	return g.Get(g.selected)
}

// Rotate advances a record's rotation by 90 degrees clockwise.
// Four rotations return it to the original orientation.
func (g *Registry) Rotate(id uuid.UUID) bool {
	rec := g.Get(id)
	if rec == nil {
		return false
	}
	rec.Rotation = (rec.Rotation + 90) % 360
	return true
}

// SetCrop commits a crop rectangle on a record.
func (g *Registry) SetCrop(id uuid.UUID, crop CropRegion) bool {
	rec := g.Get(id)
	if rec == nil {
		return false
	}
	rec.Crop = &crop
	return true
}

// Len returns the number of records.
func (g *Registry) Len() int {
	return len(g.records)
}

// List returns the records in insertion order. The slice is a copy;
// the pointed-to records are live.
func (g *Registry) List() []*Record {
	out := make([]*Record, len(g.records))
	copy(out, g.records)
	return out
}
