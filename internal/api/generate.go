package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/fetcher"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/model"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/pipeline"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/workbook"
)

// sessionResponse is the body returned for a generated or edited session.
type sessionResponse struct {
	Status         string                   `json:"status"`
	SessionID      string                   `json:"session_id"`
	CaseNumber     string                   `json:"case_number"`
	AccountNumber  string                   `json:"account_number"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
	Validation     model.Validation         `json:"validation"`
	Narrative      string                   `json:"narrative"`
	Sections       []model.NarrativeSection `json:"sections"`
	Recommendation []model.NarrativeSection `json:"recommendation"`
	Phases         []pipeline.Phase         `json:"phases,omitempty"`
	SectionOrder   []string                 `json:"section_order,omitempty"`
}

func newSessionResponse(sess *model.Session) sessionResponse {
	return sessionResponse{
		Status:         "success",
		SessionID:      sess.ID,
		CaseNumber:     sess.CaseNumber,
		AccountNumber:  sess.AccountNumber,
		CreatedAt:      sess.CreatedAt,
		UpdatedAt:      sess.UpdatedAt,
		Validation:     sess.Snapshot.Validation,
		Narrative:      sess.Snapshot.Narrative,
		Sections:       sess.Snapshot.Sections,
		Recommendation: sess.Snapshot.Recommendation,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "healthy", "version": Version}
	if s.breaker != nil {
		body["llm_circuit"] = s.breaker.State().String()
		body["llm_failures"] = s.breaker.Failures()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCases(w http.ResponseWriter, _ *http.Request) {
	cases := []casefile.Summary{}
	if s.cases != nil {
		cases = append(cases, s.cases.Cases()...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "cases": cases})
}

// handleGenerate runs the pipeline over an uploaded case document and
// transaction spreadsheet.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		writeError(w, badRequest("api: parse upload: "+err.Error()))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	caseFile, caseHdr, err := formFile(r, "caseFile")
	if err != nil {
		writeError(w, err)
		return
	}
	defer caseFile.Close() //nolint:errcheck
	sheetFile, sheetHdr, err := formFile(r, "excelFile")
	if err != nil {
		writeError(w, err)
		return
	}
	defer sheetFile.Close() //nolint:errcheck

	doc, err := fetcher.ParseDocument(caseHdr.Filename, caseFile)
	if err != nil {
		writeError(w, eris.Wrapf(errUnreadable, "case file %q: %v", caseHdr.Filename, err))
		return
	}
	summary, err := extractUpload(sheetHdr.Filename, sheetFile)
	if err != nil {
		writeError(w, eris.Wrapf(errUnreadable, "spreadsheet %q: %v", sheetHdr.Filename, err))
		return
	}

	s.run(w, r, pipeline.Input{Document: doc, Summary: &summary})
}

type generateFromCaseRequest struct {
	CaseNumber string `json:"case_number"`
}

func (s *Server) handleGenerateFromCase(w http.ResponseWriter, r *http.Request) {
	req, err := fetcher.DecodeJSONObject[generateFromCaseRequest](r.Body)
	if err != nil {
		writeError(w, badRequest("api: invalid request body"))
		return
	}
	req.CaseNumber = strings.TrimSpace(req.CaseNumber)
	if req.CaseNumber == "" {
		writeError(w, badRequest("api: case_number is required"))
		return
	}
	s.run(w, r, pipeline.Input{CaseNumber: req.CaseNumber})
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, in pipeline.Input) {
	res, err := s.pipeline.Run(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Session == nil {
		writeError(w, eris.New("api: pipeline did not save a session"))
		return
	}
	out := newSessionResponse(res.Session)
	out.Phases = res.Phases
	writeJSON(w, http.StatusOK, out)
}

func formFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, badRequest("api: " + field + " is required")
	}
	if err != nil {
		return nil, nil, badRequest("api: " + field + ": " + err.Error())
	}
	if strings.TrimSpace(hdr.Filename) == "" {
		f.Close() //nolint:errcheck
		return nil, nil, badRequest("api: " + field + " has no file name")
	}
	return f, hdr, nil
}

// extractUpload copies an uploaded spreadsheet to a scratch directory, since
// the workbook reader works from a path, and extracts it there.
func extractUpload(name string, r io.Reader) (model.TransactionSummaryRecord, error) {
	dir, err := os.MkdirTemp("", "sarnarr-upload-*")
	if err != nil {
		return model.TransactionSummaryRecord{}, eris.Wrap(err, "api: scratch dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	path := filepath.Join(dir, "upload"+strings.ToLower(filepath.Ext(name)))
	f, err := os.Create(path)
	if err != nil {
		return model.TransactionSummaryRecord{}, eris.Wrap(err, "api: scratch file")
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck
		return model.TransactionSummaryRecord{}, eris.Wrap(err, "api: copy upload")
	}
	if err := f.Close(); err != nil {
		return model.TransactionSummaryRecord{}, eris.Wrap(err, "api: copy upload")
	}
	return workbook.Extract(path)
}
