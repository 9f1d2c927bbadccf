package session

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/pixelbatch/convert-pipeline/internal/converter"
	"github.com/pixelbatch/convert-pipeline/internal/delegate"
	"github.com/pixelbatch/convert-pipeline/internal/deliver"
	"github.com/pixelbatch/convert-pipeline/internal/registry"
	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// ConvertImage re-encodes one record locally using the options in
// force at the moment of the call, returning the blob and its derived
// filename. The record itself is not mutated; options changed while
// the encode is running do not affect it.
func (s *Session) ConvertImage(id uuid.UUID) ([]byte, string, error) {
	var rec *registry.Record
	var opts convert.Options
	s.do(func() {
		opts = s.opts
		if r := s.reg.Get(id); r != nil && r.Ready() {
			cp := *r
			rec = &cp
		}
	})
	if rec == nil {
		return nil, "", fmt.Errorf("%w: image not found or not ready", convert.ErrValidation)
	}

	blob, err := converter.Convert(rec, opts)
	if err != nil {
		return nil, "", err
	}
	return blob, convert.DerivedName(rec.Name, opts.Format), nil
}

// DownloadImage converts one record and delivers the result to the
// download directory, returning the written path.
func (s *Session) DownloadImage(id uuid.UUID) (string, error) {
	blob, name, err := s.ConvertImage(id)
	if err != nil {
		return "", err
	}
	path, err := deliver.Save(s.downloadDir, name, blob)
	if err != nil {
		return "", err
	}
	log.Printf("delivered %s", path)
	return path, nil
}

// ConvertAll submits every ready record's original source bytes to the
// remote batch endpoint and returns the archive it produced. Local
// edits are not sent: for batch output the server converts pristine
// sources. Registry state is untouched on failure, so a retry is
// always safe.
func (s *Session) ConvertAll(ctx context.Context) (*delegate.Archive, error) {
	if s.batch == nil {
		return nil, fmt.Errorf("%w: no batch endpoint configured", convert.ErrBatchConversion)
	}

	var files []delegate.File
	var opts convert.Options
	s.do(func() {
		opts = s.opts
		for _, rec := range s.reg.List() {
			if !rec.Ready() {
				continue
			}
			files = append(files, delegate.File{Name: rec.Name, MIME: rec.MIME, Data: rec.Source})
		}
	})
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no images to convert", convert.ErrValidation)
	}

	log.Printf("batch conversion: %d file(s), format=%s quality=%d", len(files), opts.Format, opts.Quality)
	return s.batch.ConvertBatch(ctx, files, opts)
}

// DownloadAll runs a batch conversion and delivers the archive to the
// download directory, returning the written path.
func (s *Session) DownloadAll(ctx context.Context) (string, error) {
	arch, err := s.ConvertAll(ctx)
	if err != nil {
		return "", err
	}
	path, err := deliver.Save(s.downloadDir, convert.ArchiveName, arch.Data)
	if err != nil {
		return "", err
	}
	log.Printf("delivered %s", path)
	return path, nil
}
