package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/export"
	"github.com/dgallion1/folio/internal/view"
)

type createViewRequest struct {
	Book string `json:"book"`
	Page int    `json:"page"`
}

type navigateRequest struct {
	Book string `json:"book"` // optional, defaults to the current book
	Page int    `json:"page"`
}

type clickRequest struct {
	NodeID string `json:"node_id"`
	Shift  bool   `json:"shift"`
}

func (s *Server) handleCreateView(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Book == "" {
		jsonError(w, "book is required", http.StatusBadRequest)
		return
	}

	page, err := s.renderer.Render(r.Context(), req.Book, req.Page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := view.New(page, s.catalog.Tags, s.log)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if evicted := s.views.Put(v); evicted != "" {
		s.log.Info("view evicted", "view_id", evicted)
	}

	snap, err := v.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// lookupView resolves the {viewID} parameter, writing a 404 when missing.
func (s *Server) lookupView(w http.ResponseWriter, r *http.Request) (*view.View, bool) {
	v, err := s.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return v, true
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	snap, err := v.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteView(w http.ResponseWriter, r *http.Request) {
	if !s.views.Delete(chi.URLParam(r, "viewID")) {
		jsonError(w, view.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	var req navigateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Book == "" {
		req.Book, _ = v.Book()
	}

	page, err := s.renderer.Render(r.Context(), req.Book, req.Page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := v.Navigate(page); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := v.Snapshot()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	var req clickRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	info, changed := v.Click(req.NodeID, req.Shift)
	writeJSON(w, http.StatusOK, map[string]any{
		"changed":   changed,
		"selection": info,
	})
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v.Selection())
}

func (s *Server) handleDeleteSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": v.DeleteSelection()})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	v.ClearSelection()
	writeJSON(w, http.StatusOK, v.Selection())
}

func (s *Server) handleToggleBlocks(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": v.ToggleBlockEditor()})
}

func (s *Server) handleCreateBlock(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	block, err := v.CreateBlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	v, ok := s.lookupView(w, r)
	if !ok {
		return
	}
	book, page := v.Book()
	title := fmt.Sprintf("%s, page %d", book, page)

	var buf bytes.Buffer
	err := v.WithTree(func(root *html.Node) error {
		_, err := export.WriteDOCX(&buf, title, root)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%d.docx"`, book, page))
	w.Write(buf.Bytes())
}
