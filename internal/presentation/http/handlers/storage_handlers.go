package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

// DeleteFilesRequest is the body of POST /admin/storage/delete.
type DeleteFilesRequest struct {
	Files []string `json:"files" binding:"required,min=1,max=1000"`
}

// StorageHandlers serves the storage audit, orphan deletion and uploads.
type StorageHandlers struct {
	auditService   *services.StorageAuditService
	cleanupService *services.StorageCleanupService
	uploadService  *services.UploadService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

func NewStorageHandlers(
	auditService *services.StorageAuditService,
	cleanupService *services.StorageCleanupService,
	uploadService *services.UploadService,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *StorageHandlers {
	return &StorageHandlers{
		auditService:   auditService,
		cleanupService: cleanupService,
		uploadService:  uploadService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// GetAudit handles GET /admin/storage/audit.
func (h *StorageHandlers) GetAudit(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("storage_audit_request")
	defer marker.Complete()
	h.logger.Audit().Debug("Received storage audit request", "method", c.Request.Method, "path", c.Request.URL.Path)

	report, err := h.auditService.Audit(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, h.logger, marker, "storage_audit", err)
		return
	}

	h.logger.Perf().Info("Performance for GetAudit request", "duration", time.Since(start), "success", true)
	c.JSON(http.StatusOK, report)
}

// PostDelete handles POST /admin/storage/delete. The response is 200 even when
// some paths failed; each result carries its own status.
func (h *StorageHandlers) PostDelete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("storage_delete_request")
	defer marker.Complete()

	var req DeleteFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	batch, err := h.cleanupService.DeleteOrphans(c.Request.Context(), currentSession(c), req.Files)
	if err != nil {
		respondError(c, h.logger, marker, "storage_delete", err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// PostUpload handles POST /admin/storage/upload. The upload is recorded in
// the media library.
func (h *StorageHandlers) PostUpload(c *gin.Context) {
	h.upload(c, c.PostForm("folder"), true)
}

// UploadToFolder returns a handler that stores uploads in a fixed folder
// without a media library row, for the editor image fields.
func (h *StorageHandlers) UploadToFolder(folder string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.upload(c, folder, false)
	}
}

func (h *StorageHandlers) upload(c *gin.Context, folder string, recordMedia bool) {
	marker := h.perfTracker.StartOperation("storage_upload_request")
	defer marker.Complete()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.uploadService.Upload(c.Request.Context(), currentSession(c), services.UploadInput{
		Folder:      folder,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Body:        file,
		RecordMedia: recordMedia,
	})
	if err != nil {
		respondError(c, h.logger, marker, "storage_upload", err)
		return
	}

	if recordMedia {
		c.JSON(http.StatusCreated, result.Media)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": result.URL, "path": result.Path})
}
