package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"p9e.in/towerpro/config"
	"p9e.in/towerpro/middleware"
	"p9e.in/towerpro/models"
	"p9e.in/towerpro/pkg/attachments"
	"p9e.in/towerpro/pkg/render"
	"p9e.in/towerpro/pkg/store"
	"p9e.in/towerpro/pkg/wizard"
)

const maxUploadMemory = 50 << 20

// ReportHandler serves the wizard and the read-only report endpoints.
type ReportHandler struct {
	wizards *wizard.Manager
	docs    store.DocumentStore
	roster  Roster
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewReportHandler(wizards *wizard.Manager, docs store.DocumentStore, roster Roster, log logrus.FieldLogger) *ReportHandler {
	return &ReportHandler{wizards: wizards, docs: docs, roster: roster, log: log, now: time.Now}
}

// session resolves the caller's open wizard for {id}.
func (h *ReportHandler) session(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	s, err := h.wizards.Get(mux.Vars(r)["id"], middleware.GetUserID(r))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

// StartReport opens a wizard on a new draft.
func (h *ReportHandler) StartReport(w http.ResponseWriter, r *http.Request) {
	s := h.wizards.Start(middleware.GetUserID(r))
	writeJSON(w, http.StatusCreated, s.State())
}

// EditReport opens a wizard on a stored report, or on an empty draft when
// nothing is stored under the id.
func (h *ReportHandler) EditReport(w http.ResponseWriter, r *http.Request) {
	s, err := h.wizards.OpenForEdit(r.Context(), mux.Vars(r)["id"], middleware.GetUserID(r))
	if err != nil {
		config.LogError(h.log, "handlers", "EditReport", "load report", mux.Vars(r)["id"], err)
		http.Error(w, "could not load report", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

func (h *ReportHandler) GetWizard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// UpdateStep replaces one step's slice with the request body.
func (h *ReportHandler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	step := models.StepKey(mux.Vars(r)["step"])
	payload, err := models.DecodeStepPayload(step, body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	st, err := s.UpdateStepData(step, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *ReportHandler) Next(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Advance(r.Context()))
}

func (h *ReportHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Retreat())
}

// Submit finalizes the report and closes its wizard. A store failure is
// reported as 502 with the wizard state, so the client can offer a retry
// without losing input.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	st, err := h.wizards.Finalize(r.Context(), mux.Vars(r)["id"], middleware.GetUserID(r))
	if errors.Is(err, wizard.ErrNoSession) {
		writeError(w, err)
		return
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, submitResponse{State: st, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{State: st})
}

type submitResponse struct {
	wizard.State
	Error string `json:"error,omitempty"`
}

type selectInspectorReq struct {
	InspectorID string `json:"inspectorId" validate:"required,uuid"`
}

// SelectInspector snapshots a roster entry into the report.
func (h *ReportHandler) SelectInspector(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectInspectorReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	in, err := h.roster.Get(r.Context(), req.InspectorID)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := s.SelectInspector(*in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type photoUploadResponse struct {
	wizard.State
	Added int    `json:"added"`
	Error string `json:"error,omitempty"`
}

// UploadPhotos takes multipart field "files" (one or more). Files are stored
// in order; if one fails the earlier ones are kept and the error is returned
// next to the updated state.
func (h *ReportHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	target := models.PhotoTarget(mux.Vars(r)["section"])
	if !target.Valid() {
		http.Error(w, fmt.Sprintf("unknown photo section %q", target), http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		http.Error(w, "missing files field", http.StatusBadRequest)
		return
	}
	files := make([]attachments.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, attachments.FromMultipart(fh))
	}

	before, _ := s.Document().Photos(target)
	log := h.log.WithFields(logrus.Fields{"report_id": s.ID(), "section": target})
	st, err := s.AddPhotos(r.Context(), target, files, func(p attachments.Progress) {
		log.WithFields(logrus.Fields{"file": p.File, "files": p.Files, "percent": p.Percent}).Debug("upload progress")
	})
	after, _ := st.Document.Photos(target)

	resp := photoUploadResponse{State: st, Added: len(after) - len(before)}
	if err != nil {
		if statusFor(err) == http.StatusConflict {
			writeError(w, err)
			return
		}
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeletePhoto removes one photo from the list. The stored file is kept.
func (h *ReportHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		http.Error(w, "invalid photo index", http.StatusBadRequest)
		return
	}
	st, err := s.RemovePhoto(models.PhotoTarget(mux.Vars(r)["section"]), idx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type reportResponse struct {
	Report models.Report `json:"report"`
	View   render.View   `json:"view"`
}

// GetReport returns the stored report and its read-only view.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.docs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: *rep, View: render.Build(*rep)})
}

// ExportReport downloads the report as a spreadsheet.
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.docs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	view := render.Build(*rep)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", render.ExportFilename(view)))
	if err := render.WriteXLSX(w, view, h.now()); err != nil {
		config.LogError(h.log, "handlers", "ExportReport", "write xlsx", rep.ID, err)
	}
}

type reportSummary struct {
	ID           string        `json:"id"`
	FacilityName string        `json:"facilityName"`
	Address      string        `json:"address"`
	Status       models.Status `json:"status"`
	Date         string        `json:"date"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// ListReports is the dashboard: the caller's reports, newest first.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.docs.ListByOwner(r.Context(), middleware.GetUserID(r))
	if err != nil {
		config.LogError(h.log, "handlers", "ListReports", "list reports", nil, err)
		http.Error(w, "could not load reports", http.StatusBadGateway)
		return
	}
	out := make([]reportSummary, 0, len(reports))
	for _, rep := range reports {
		out = append(out, summarize(rep))
	}
	writeJSON(w, http.StatusOK, out)
}

// ReportsMap returns the caller's located reports as GeoJSON.
func (h *ReportHandler) ReportsMap(w http.ResponseWriter, r *http.Request) {
	reports, err := h.docs.ListByOwner(r.Context(), middleware.GetUserID(r))
	if err != nil {
		config.LogError(h.log, "handlers", "ReportsMap", "list reports", nil, err)
		http.Error(w, "could not load reports", http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	raw, err := render.SiteFeatures(reports).MarshalJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(raw)
}

// summarize dates a report by its inspection date, falling back to createdAt.
func summarize(rep models.Report) reportSummary {
	date := ""
	if d := rep.SiteInfo.InspectionDate; d != nil && !d.IsZero() {
		date = d.String()
	} else if rep.CreatedAt != nil {
		date = rep.CreatedAt.Format("2006-01-02")
	}
	return reportSummary{
		ID:           rep.ID,
		FacilityName: rep.SiteInfo.FacilityName,
		Address:      render.AddressLine(rep.SiteInfo),
		Status:       rep.Status,
		Date:         date,
		UpdatedAt:    rep.UpdatedAt,
	}
}
