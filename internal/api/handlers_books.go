package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/folio/internal/catalog"
	"github.com/dgallion1/folio/internal/render"
)

type bookResponse struct {
	Title       string `json:"title"`
	Pages       int    `json:"pages"`
	Description string `json:"description_html,omitempty"`
}

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	books := make([]bookResponse, 0, len(s.catalog.Books))
	for _, b := range s.catalog.Books {
		desc, err := catalog.DescriptionHTML(b)
		if err != nil {
			s.log.Warn("description render failed", "book", b.Title, "error", err)
		}
		books = append(books, bookResponse{Title: b.Title, Pages: b.Pages, Description: desc})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"books": books,
		"tags":  s.catalog.Tags,
	})
}

// handleGetPage returns a rendered page, honouring If-None-Match.
func (s *Server) handleGetPage(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || n < 0 {
		jsonError(w, "page must be a non-negative integer", http.StatusBadRequest)
		return
	}
	res, err := s.renderer.Render(r.Context(), chi.URLParam(r, "book"), n)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	etag := `"` + res.ETag + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePrerender(w http.ResponseWriter, r *http.Request) {
	book, err := s.catalog.Find(chi.URLParam(r, "book"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job := render.NewJob(book.Title, book.Pages)
	if err := s.orchestrator.Submit(job); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"book":     job.Book,
		"status":   render.StatusQueued,
		"poll_url": fmt.Sprintf("/api/jobs/%s", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
