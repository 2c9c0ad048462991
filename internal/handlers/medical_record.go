package handlers

import (
	"github.com/gin-gonic/gin"

	"arogya-app-server/internal/services"
	"arogya-app-server/internal/store"
	"arogya-app-server/internal/utils"
)

// ReportHandler handles medical report related requests.
type ReportHandler struct {
	Store    *store.Store
	Uploader *services.ReportUploader
	Analyzer *services.ReportAnalyzer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(st *store.Store, uploader *services.ReportUploader, analyzer *services.ReportAnalyzer) *ReportHandler {
	return &ReportHandler{Store: st, Uploader: uploader, Analyzer: analyzer}
}

// UploadReportRequest is the JSON alternative to a multipart upload.
type UploadReportRequest struct {
	FileName string `json:"fileName"`
}

// GetReports lists reports, newest first.
func (h *ReportHandler) GetReports(c *gin.Context) {
	reports, err := h.Store.Reports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Reports fetched successfully", reports)
}

// GetReportByID returns one report.
func (h *ReportHandler) GetReportByID(c *gin.Context) {
	report, err := h.Store.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Report fetched successfully", report)
}

// UploadReport stores an uploaded document as a pending report. The file is
// read from the "file" form field; only its name is kept.
func (h *ReportHandler) UploadReport(c *gin.Context) {
	var fileName string
	if file, header, err := c.Request.FormFile("file"); err == nil {
		file.Close()
		fileName = header.Filename
	} else {
		var req UploadReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequest(c, "Provide a multipart \"file\" field or a JSON fileName")
			return
		}
		fileName = req.FileName
	}

	report, err := h.Uploader.Upload(c.Request.Context(), fileName)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, "Report uploaded successfully", report)
}

// AnalyzeReport runs AI analysis on a stored report. Collaborator failures
// still return 200 with the fallback analysis.
func (h *ReportHandler) AnalyzeReport(c *gin.Context) {
	analysis, err := h.Analyzer.AnalyzeReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, "Report analyzed", analysis)
}
