package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/pipeline"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// upload is a markdown document received in a request.
type upload struct {
	filename string
	style    string
	data     []byte
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	data, doc, err := s.orchestrator.Converter().ConvertToDocx(r.Context(), up.data, up.style)
	if err != nil {
		jsonError(w, err.Error(), statusFor(pipeline.Outcome(err)))
		return
	}
	w.Header().Set("X-Document-Blocks", strconv.Itoa(len(doc.Blocks)))
	writeDocx(w, up.filename, data)
}

// readUpload reads the markdown source from a multipart "file" field or,
// for any other content type, from the raw request body. The style comes
// from the "style" query parameter or form field. On failure the error
// response has been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	query := r.URL.Query()
	up := upload{filename: query.Get("filename"), style: query.Get("style")}

	var src io.Reader = r.Body
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			if tooLarge(err) {
				s.uploadTooLarge(w)
				return upload{}, false
			}
			jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
			return upload{}, false
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
			return upload{}, false
		}
		defer file.Close()

		src = file
		up.filename = header.Filename
		if up.style == "" {
			up.style = r.FormValue("style")
		}
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		if tooLarge(err) {
			s.uploadTooLarge(w)
			return upload{}, false
		}
		jsonError(w, "failed to read upload", http.StatusBadRequest)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		s.uploadTooLarge(w)
		return upload{}, false
	}

	if up.filename == "" {
		up.filename = "document.md"
	}
	up.filename = sanitizeFilename(up.filename)
	up.data = data
	return up, true
}

func (s *Server) uploadTooLarge(w http.ResponseWriter) {
	jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// writeDocx sends a converted package as an attachment named after the
// markdown file.
func writeDocx(w http.ResponseWriter, filename string, data []byte) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".docx"
	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", `"`+pipeline.ContentHashHex(data)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// statusFor maps a conversion outcome to an HTTP status code.
func statusFor(outcome string) int {
	switch outcome {
	case metrics.OutcomeStyleNotFound:
		return http.StatusNotFound
	case metrics.OutcomeUnsupportedMarkup, metrics.OutcomeStructuralViolation, metrics.OutcomeInvalidFrontMatter:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
