package handler

import (
	"log/slog"
	"net/http"
	"pulsedigest/internal/chunk"
	"pulsedigest/internal/model"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout   = "2006-01-02"
	previewRunes = 150
)

type DigestStore interface {
	GetDigests(limit, offset int) ([]model.Digest, error)
	GetDigestTotal() (int, error)
	GetLatestDigest() (*model.Digest, error)
	GetDigestByID(id int64) (*model.Digest, error)
}

type DigestHandler struct {
	repository DigestStore
}

func NewDigestHandler(repository DigestStore) *DigestHandler {
	return &DigestHandler{repository: repository}
}

func toDigestResponse(d model.Digest) DigestResponse {
	segmentBytes := d.SegmentBytes
	if segmentBytes == nil {
		segmentBytes = []int64{}
	}

	return DigestResponse{
		ID:           d.ID,
		RunID:        d.RunID,
		Date:         d.DigestDate.Format(dateLayout),
		Body:         d.Body,
		ModelUsed:    d.ModelUsed,
		SegmentCount: d.SegmentCount,
		SegmentBytes: segmentBytes,
		SentCount:    d.SentCount,
		FailedCount:  d.FailedCount,
		CreatedAt:    d.CreatedAt.Format(time.RFC3339),
	}
}

func (h *DigestHandler) GetDigests(c *gin.Context) {
	limit := getQueryLimit(c)
	offset := getQueryOffset(c)

	digests, err := h.repository.GetDigests(limit, offset)
	if err != nil {
		slog.Error("error fetching digests", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	total, err := h.repository.GetDigestTotal()
	if err != nil {
		slog.Error("error fetching digest total", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	res := DigestsResponse{
		Digests: []DigestListItem{},
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}

	for _, d := range digests {
		res.Digests = append(res.Digests, DigestListItem{
			ID:           d.ID,
			Date:         d.DigestDate.Format(dateLayout),
			Preview:      chunk.Preview(d.Body, previewRunes),
			SegmentCount: d.SegmentCount,
			FailedCount:  d.FailedCount,
			CreatedAt:    d.CreatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, res)
}

func (h *DigestHandler) GetLatestDigest(c *gin.Context) {
	digest, err := h.repository.GetLatestDigest()
	if err != nil {
		slog.Error("error fetching latest digest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if digest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No digest available"})
		return
	}

	c.JSON(http.StatusOK, toDigestResponse(*digest))
}

func (h *DigestHandler) GetDigest(c *gin.Context) {
	id := c.Param("id")

	digestID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		slog.Error("invalid digest id", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid digest id"})
		return
	}

	digest, err := h.repository.GetDigestByID(digestID)
	if err != nil {
		slog.Error("error fetching digest", "error", err, "digest_id", digestID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if digest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Digest not found"})
		return
	}

	c.JSON(http.StatusOK, toDigestResponse(*digest))
}

func (h *DigestHandler) GetHealth(c *gin.Context) {
	_, err := h.repository.GetDigestTotal()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}
