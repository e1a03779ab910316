package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"droply/services/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageHandler accepts proof photo uploads and returns the stored
// identifier the courier then attaches to their delivery progress.
type StorageHandler struct {
	Storage storage.StorageService
	Logger  *zap.Logger
}

func NewStorageHandler(svc storage.StorageService, logger *zap.Logger) *StorageHandler {
	return &StorageHandler{Storage: svc, Logger: logger}
}

// UploadProofHandler receives a multipart photo, stores it and responds
// with its permanent identifier and public URL.
func (h *StorageHandler) UploadProofHandler(c *gin.Context) {
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a photo file is required", "details": err.Error()})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		h.Logger.Error("failed to buffer upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to receive upload"})
		return
	}
	defer os.Remove(tmpPath)

	publicID, err := h.Storage.UploadProofPhoto(c.Request.Context(), tmpPath)
	if err != nil {
		h.Logger.Error("failed to store proof photo", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to store photo"})
		return
	}

	url, err := h.Storage.GetDownloadURL(c.Request.Context(), publicID)
	if err != nil {
		url = ""
	}

	c.JSON(http.StatusOK, gin.H{"imageRef": publicID, "url": url})
}

// proofLinkTTL bounds how long a signed proof photo link stays valid.
const proofLinkTTL = 15 * time.Minute

// ProofLinkHandler returns a signed, short-lived download URL for a stored
// proof photo, so clients never get a permanent public link to recipient
// doorstep photos.
func (h *StorageHandler) ProofLinkHandler(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a ref query parameter is required"})
		return
	}

	url, err := h.Storage.GetSecureDownloadURL(c.Request.Context(), ref, proofLinkTTL)
	if err != nil {
		h.Logger.Error("failed to sign proof photo link", zap.String("ref", ref), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to sign photo link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "expiresInSeconds": int(proofLinkTTL.Seconds())})
}

// DeleteProofHandler removes a stored proof photo, typically after the
// courier re-uploads a clearer shot and the old identifier is unreferenced.
func (h *StorageHandler) DeleteProofHandler(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a ref query parameter is required"})
		return
	}

	if err := h.Storage.DeleteFile(c.Request.Context(), ref); err != nil {
		h.Logger.Error("failed to delete proof photo", zap.String("ref", ref), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to delete photo"})
		return
	}

	c.Status(http.StatusNoContent)
}
