package session

import (
	"io"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/pixelbatch/convert-pipeline/internal/preview"
	"github.com/pixelbatch/convert-pipeline/internal/registry"
	"github.com/pixelbatch/convert-pipeline/internal/validate"
	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// File is a candidate upload: the declared name, type and size, plus a
// byte source that is read during preview generation.
type File struct {
	Name   string
	MIME   string
	Size   int64
	Source io.Reader
}

// Intake runs one upload batch. Files are partitioned by the
// validator; every rejection is recorded as an UploadError without
// affecting the rest of the batch. Accepted files are processed
// sequentially: a placeholder record is inserted immediately, a
// cosmetic progress ticker runs while the preview is generated, and
// the record becomes ready when its preview lands. A failed read
// removes the placeholder and reports the file, leaving sibling files
// untouched. If nothing was selected before, the first completed
// record of the batch becomes selected.
//
// Returns the number of records that completed intake plus the errors
// recorded for this batch. There is no cancellation: removing a record
// mid-intake lets its preview finish as a no-op.
func (s *Session) Intake(files []File) (int, []UploadError) {
	if len(files) == 0 {
		return 0, nil
	}

	runID := uuid.New().String()

	var accepted []File
	var errs []UploadError
	for _, f := range files {
		if err := validate.File(f.MIME, f.Size); err != nil {
			e := UploadError{FileName: f.Name, Message: reasonOf(err)}
			errs = append(errs, e)
			s.do(func() { s.recordError(e.FileName, e.Message) })
			log.Printf("[%s] rejected %s: %s", runID, f.Name, e.Message)
			continue
		}
		accepted = append(accepted, f)
	}
	if len(accepted) == 0 {
		return 0, errs
	}

	log.Printf("[%s] intake started: %d file(s)", runID, len(accepted))

	processed := 0
	var completed []uuid.UUID
	for _, f := range accepted {
		id := uuid.New()
		rec := &registry.Record{
			ID:   id,
			Name: f.Name,
			MIME: f.MIME,
			Size: f.Size,
		}
		s.do(func() { s.reg.Insert(rec) })

		stop := s.startProgress(id)

		data, uri, err := preview.Generate(f.Source, f.MIME)
		if err != nil {
			log.Printf("[%s] preview failed for %s: %v", runID, f.Name, err)
			s.do(func() {
				stop()
				s.reg.Remove(id)
				s.recordError(f.Name, "Failed to process file")
			})
			errs = append(errs, UploadError{FileName: f.Name, Message: "Failed to process file"})
			continue
		}

		s.do(func() {
			stop()
			cur := s.reg.Get(id)
			if cur == nil {
				// Removed while the preview was in flight. Never resurrect.
				return
			}
			cur.Source = data
			cur.PreviewURI = uri
			cur.Progress = 100
			processed++
			completed = append(completed, id)
		})
	}

	s.do(func() {
		if s.reg.Selected() == nil && len(completed) > 0 {
			s.reg.Select(completed[0])
		}
	})

	if processed > 0 {
		log.Printf("[%s] intake complete: %d processed, %d rejected", runID, processed, len(errs))
	}
	return processed, errs
}

// reasonOf strips the sentinel prefix from a validation error, leaving
// the human-readable part.
func reasonOf(err error) string {
	return strings.TrimPrefix(err.Error(), convert.ErrValidation.Error()+": ")
}
