// Package handlers exposes the conversion pipeline over HTTP: local
// single-image conversion, the batch proxy to the remote converter,
// health and metrics.
package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pixelbatch/convert-pipeline/internal/converter"
	"github.com/pixelbatch/convert-pipeline/internal/delegate"
	"github.com/pixelbatch/convert-pipeline/internal/history"
	"github.com/pixelbatch/convert-pipeline/internal/preview"
	"github.com/pixelbatch/convert-pipeline/internal/registry"
	"github.com/pixelbatch/convert-pipeline/internal/validate"
	"github.com/pixelbatch/convert-pipeline/pkg/convert"
)

// maxRequestBytes bounds multipart parsing; it matches the per-file
// intake ceiling with headroom for the form fields.
const maxRequestBytes = validate.MaxFileSize + (1 << 20)

// Handler holds dependencies for the HTTP surface.
type Handler struct {
	batch   *delegate.Client // nil disables /v1/convert-batch
	tracker *history.Tracker // nil disables the conversion ledger
}

// New creates a handler. Either dependency may be nil.
func New(batch *delegate.Client, tracker *history.Tracker) *Handler {
	return &Handler{batch: batch, tracker: tracker}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", h.handleHealth)
	r.Post("/v1/convert", h.handleConvert)
	r.Post("/v1/convert-batch", h.handleConvertBatch)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

// handleConvert converts one uploaded image locally and returns it as
// an attachment. Form fields: file (binary), format, quality, and an
// optional rotation in right-angle degrees.
func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	runID := uuid.New().String()

	opts, ok := parseOptions(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if err := validate.File(mimeType, header.Size); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rotation := 0
	if v := r.FormValue("rotation"); v != "" {
		rotation, err = strconv.Atoi(v)
		if err != nil || rotation%90 != 0 || rotation < 0 || rotation >= 360 {
			http.Error(w, "rotation must be one of 0, 90, 180, 270", http.StatusBadRequest)
			return
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	rec := &registry.Record{
		ID:         uuid.New(),
		Name:       header.Filename,
		MIME:       mimeType,
		Size:       header.Size,
		Source:     data,
		PreviewURI: preview.EncodeDataURI(data, mimeType),
		Rotation:   rotation,
	}

	log.Printf("[%s] converting %s -> %s (quality=%d rotation=%d)", runID, header.Filename, opts.Format, opts.Quality, rotation)

	blob, err := converter.Convert(rec, opts)
	if err != nil {
		conversionErrorsTotal.WithLabelValues("local").Inc()
		log.Printf("[%s] conversion failed: %v", runID, err)
		http.Error(w, fmt.Sprintf("conversion failed: %v", err), statusOf(err))
		return
	}

	h.record(r, data, opts)
	conversionsTotal.WithLabelValues("local", string(opts.Format)).Inc()

	name := convert.DerivedName(header.Filename, opts.Format)
	w.Header().Set("Content-Type", opts.Format.MIME())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(blob)

	log.Printf("[%s] converted %s (%d bytes)", runID, name, len(blob))
}

// handleConvertBatch forwards every uploaded file to the remote batch
// endpoint and streams the archive back as converted.zip.
func (h *Handler) handleConvertBatch(w http.ResponseWriter, r *http.Request) {
	if h.batch == nil {
		http.Error(w, "batch conversion not configured", http.StatusServiceUnavailable)
		return
	}

	runID := uuid.New().String()

	opts, ok := parseOptions(w, r)
	if !ok {
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		http.Error(w, "files are required", http.StatusBadRequest)
		return
	}

	var files []delegate.File
	for _, header := range r.MultipartForm.File["files"] {
		mimeType := header.Header.Get("Content-Type")
		if err := validate.File(mimeType, header.Size); err != nil {
			http.Error(w, fmt.Sprintf("%s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		f, err := header.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read %s", header.Filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read %s", header.Filename), http.StatusBadRequest)
			return
		}
		files = append(files, delegate.File{Name: header.Filename, MIME: mimeType, Data: data})
	}

	log.Printf("[%s] forwarding batch of %d file(s) -> %s", runID, len(files), opts.Format)

	arch, err := h.batch.ConvertBatch(r.Context(), files, opts)
	if err != nil {
		conversionErrorsTotal.WithLabelValues("batch").Inc()
		log.Printf("[%s] batch conversion failed: %v", runID, err)
		http.Error(w, fmt.Sprintf("batch conversion failed: %v", err), statusOf(err))
		return
	}

	for _, f := range files {
		h.record(r, f.Data, opts)
	}
	conversionsTotal.WithLabelValues("batch", string(opts.Format)).Inc()

	contentType := arch.ContentType
	if contentType == "" {
		contentType = "application/zip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="converted.zip"`)
	w.Write(arch.Data)

	log.Printf("[%s] batch archive delivered (%d bytes)", runID, len(arch.Data))
}

// parseOptions reads the shared format and quality form fields,
// writing the error response itself on failure.
func parseOptions(w http.ResponseWriter, r *http.Request) (convert.Options, bool) {
	if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return convert.Options{}, false
	}

	format, err := convert.ParseFormat(r.FormValue("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return convert.Options{}, false
	}

	quality := 80
	if v := r.FormValue("quality"); v != "" {
		quality, err = strconv.Atoi(v)
		if err != nil {
			http.Error(w, "quality must be an integer", http.StatusBadRequest)
			return convert.Options{}, false
		}
	}

	opts := convert.Options{Format: format, Quality: quality}
	if err := opts.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return convert.Options{}, false
	}
	return opts, true
}

// record writes one conversion to the history ledger, if configured.
// Ledger failures are logged, never surfaced.
func (h *Handler) record(r *http.Request, data []byte, opts convert.Options) {
	if h.tracker == nil {
		return
	}
	sum := sha256.Sum256(data)
	if _, err := h.tracker.Record(r.Context(), hex.EncodeToString(sum[:]), string(opts.Format), opts.Quality); err != nil {
		log.Printf("history record failed: %v", err)
	}
}

// statusOf maps pipeline errors to HTTP statuses.
func statusOf(err error) int {
	switch {
	case errors.Is(err, convert.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, convert.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, convert.ErrEncode):
		return http.StatusUnprocessableEntity
	case errors.Is(err, convert.ErrBatchConversion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
