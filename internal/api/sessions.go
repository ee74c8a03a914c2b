package api

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"github.com/spf13/cast"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.SessionFilter{CaseNumber: strings.TrimSpace(q.Get("case_number"))}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &filter.Limit}, {"offset", &filter.Offset}} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := cast.ToIntE(raw)
		if err != nil || n < 0 {
			writeError(w, badRequest("api: invalid "+p.name))
			return
		}
		*p.dst = n
	}

	list, err := s.store.ListSessions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "sessions": list})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSections returns the editable sections of a session. Sessions saved
// with only a joined narrative are split back into sections.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(sess.Snapshot.Sections) == 0 && sess.Snapshot.Narrative != "" {
		sess.Snapshot.Sections = narrative.Split(sess.Snapshot.Narrative)
	}
	out := newSessionResponse(sess)
	out.SectionOrder = narrative.SectionIDs()
	writeJSON(w, http.StatusOK, out)
}

type sectionEdit struct {
	Content *string `json:"content"`
}

func decodeEdit(r *http.Request) (string, error) {
	body, err := fetcher.DecodeJSONObject[sectionEdit](io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return "", badRequest("api: invalid request body")
	}
	if body.Content == nil {
		return "", badRequest("api: content is required")
	}
	return *body.Content, nil
}

func (s *Server) handleUpdateSection(w http.ResponseWriter, r *http.Request) {
	content, err := decodeEdit(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.store.UpdateSection(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "section"), content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleUpdateRecommendation(w http.ResponseWriter, r *http.Request) {
	content, err := decodeEdit(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.store.UpdateRecommendation(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "section"), content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

// handleRegenerate rebuilds one narrative or recommendation section from the
// session's combined record and saves it.
func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	if s.assembler == nil {
		writeError(w, errNoGenerator)
		return
	}
	id, section := chi.URLParam(r, "id"), chi.URLParam(r, "section")
	sess, err := s.store.GetSession(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		sec     model.NarrativeSection
		updated *model.Session
	)
	switch {
	case narrative.IsNarrativeSection(section):
		if sec, err = s.assembler.Section(r.Context(), &sess.Snapshot.Combined, section); err == nil {
			updated, err = s.store.UpdateSection(r.Context(), sess.ID, section, sec.Content)
		}
	case narrative.IsRecommendationSection(section):
		if sec, err = s.assembler.RecommendationSection(r.Context(), &sess.Snapshot.Combined, section); err == nil {
			updated, err = s.store.UpdateRecommendation(r.Context(), sess.ID, section, sec.Content)
		}
	default:
		err = eris.Wrapf(narrative.ErrUnknownSection, "api: %q", section)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"section": sec,
		"session": newSessionResponse(updated),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "Narrative", narrative.Export)
}

func (s *Server) handleExportRecommendation(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "Recommendation", narrative.ExportRecommendation)
}

// export renders into a buffer first so a failure still yields a JSON error.
func (s *Server) export(w http.ResponseWriter, r *http.Request, kind string, render func(io.Writer, model.Snapshot, time.Time) error) {
	sess, err := s.store.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	at := s.now()
	var buf bytes.Buffer
	if err := render(&buf, sess.Snapshot, at); err != nil {
		writeError(w, eris.Wrap(err, "api: export"))
		return
	}
	name := narrative.FileName(kind, sess.CaseNumber, at)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
