package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/foomo/mddocs/service"
	"github.com/foomo/mddocs/service/vo"
	"github.com/foomo/mddocs/store"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidBody      = "Invalid request body"
	msgFileExists       = "File already exists"
	msgCreateFailed     = "Failed to create file"
	msgNotFound         = "Not Found"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, vo.ErrorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, msgNotFound, http.StatusNotFound)
}

// handleContent serves the index, the creation form, static files and
// markdown documents addressed by slug.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, msgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}

	p := r.URL.Path
	switch {
	case p == "/" || p == "":
		s.handleIndex(w, r)
	case p == AddNewPath:
		s.handleAddNew(w, r)
	case path.Ext(p) != "":
		s.handleStatic(w, r)
	default:
		s.handleDocument(w, r, strings.TrimPrefix(p, "/"))
	}
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.hidden != nil {
		hidden, err := s.hidden(r.URL.Path)
		if err != nil {
			s.internalError(w, r, "failed to check ignore rules", err)
			return
		}
		if hidden {
			s.handleNotFound(w, r)
			return
		}
	}
	s.static.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.ListDocuments(r.Context())
	if err != nil {
		s.internalError(w, r, "failed to list documents", err)
		return
	}
	w.Header().Set("Content-Type", string(vo.MimeTypeHTML))
	if err := s.renderer.Index(w, tree); err != nil {
		s.internalError(w, r, "failed to render index", err)
	}
}

func (s *Server) handleAddNew(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", string(vo.MimeTypeHTML))
	if err := s.renderer.AddNew(w); err != nil {
		s.internalError(w, r, "failed to render form", err)
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request, slug string) {
	doc, err := s.service.GetDocument(r.Context(), slug)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.handleNotFound(w, r)
		return
	case err != nil:
		s.internalError(w, r, "failed to read document", err)
		return
	}

	if vo.ContentFormat(r.URL.Query().Get("format")) == vo.FormatHTML {
		w.Header().Set("Content-Type", string(vo.MimeTypeHTML))
		if err := s.renderer.Document(w, doc); err != nil {
			s.internalError(w, r, "failed to render document", err)
		}
		return
	}

	w.Header().Set("Content-Type", string(vo.MimeTypeMarkdown))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, string(doc.Markdown))
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.ListDocuments(r.Context())
	if err != nil {
		s.logger.Error("failed to list documents", zap.Error(err), zap.String("requestID", middleware.GetReqID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleCreatePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	req, err := decodeCreateRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := s.service.CreateDocument(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, resp)
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, service.ValidationMessage(err))
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, msgFileExists)
	default:
		s.logger.Error("failed to create document",
			zap.Error(err),
			zap.String("filePath", req.FilePath),
			zap.String("requestID", middleware.GetReqID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, msgCreateFailed)
	}
}

// decodeCreateRequest accepts a JSON body or url-encoded form fields.
func decodeCreateRequest(w http.ResponseWriter, r *http.Request) (vo.CreateRequest, error) {
	var req vo.CreateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxCreateBodySize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.FilePath = r.PostForm.Get("filePath")
	if req.FilePath == "" {
		req.FilePath = r.PostForm.Get("file-path")
	}
	req.Content = r.PostForm.Get("content")
	req.Format = vo.ContentFormat(r.PostForm.Get("format"))
	req.Selector = r.PostForm.Get("selector")
	req.SourceURL = r.PostForm.Get("sourceUrl")
	return req, nil
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("requestID", middleware.GetReqID(r.Context())),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
