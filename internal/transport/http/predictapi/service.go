// Package predictapi exposes the prediction pipeline and the recordings
// review endpoint over HTTP.
package predictapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hypernasality-server-go/internal/domain/predict"
	"hypernasality-server-go/internal/platform/logging"
	"hypernasality-server-go/internal/platform/storage"
	httptransport "hypernasality-server-go/internal/transport/http"
)

// Pipeline runs one prediction request to completion.
type Pipeline interface {
	Predict(ctx context.Context, req predict.Request) (*predict.Result, error)
}

// RecordingLister reads back persisted predictions.
type RecordingLister interface {
	List(ctx context.Context, limit int) ([]storage.Recording, error)
}

// PredictionResponse is the payload shape the mobile client consumes.
// Confidence is formatted to four decimal places.
type PredictionResponse struct {
	Status        string     `json:"status"`
	Prediction    string     `json:"prediction"`
	ClassID       int        `json:"class_id"`
	Confidence    string     `json:"confidence"`
	Probabilities [2]float64 `json:"probabilities"`
	RecordingID   uint       `json:"recording_id"`
}

// Service wires the pipeline endpoints into the router.
type Service struct {
	pipeline   Pipeline
	recordings RecordingLister
	logger     *logging.Logger
}

func NewService(pipeline Pipeline, recordings RecordingLister, logger *logging.Logger) *Service {
	return &Service{
		pipeline:   pipeline,
		recordings: recordings,
		logger:     logger,
	}
}

// Start registers all prediction routes.
func (s *Service) Start(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error {
	engine.GET("/", s.handleRoot)
	apiGroup.POST("/predict", s.handlePredict)
	apiGroup.GET("/recordings", s.handleListRecordings)

	s.logger.Info("prediction routes registered")
	return nil
}

func (s *Service) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hypernasality Detection API - Ready"})
}

func (s *Service) handlePredict(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest,
			"audio file is required", nil)
		return
	}

	vowel := c.PostForm("vowel_name")
	if vowel == "" {
		httptransport.RespondError(c, http.StatusBadRequest,
			"vowel_name form field is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest,
			"could not open uploaded file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httptransport.RespondError(c, http.StatusBadRequest,
			"could not read uploaded file", nil)
		return
	}

	result, err := s.pipeline.Predict(c.Request.Context(), predict.Request{
		Audio:    data,
		Filename: fileHeader.Filename,
		Vowel:    vowel,
	})
	if err != nil {
		// stage detail stays in logs; callers get a uniform outcome
		httptransport.RespondError(c, http.StatusInternalServerError,
			"prediction failed", nil)
		return
	}

	pred := result.Prediction
	c.JSON(http.StatusOK, PredictionResponse{
		Status:        "success",
		Prediction:    pred.Label,
		ClassID:       pred.ClassID,
		Confidence:    fmt.Sprintf("%.4f", pred.Confidence),
		Probabilities: pred.Probabilities,
		RecordingID:   result.RecordingID,
	})
}

func (s *Service) handleListRecordings(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			httptransport.RespondError(c, http.StatusBadRequest,
				"limit must be between 1 and 500", nil)
			return
		}
		limit = parsed
	}

	recs, err := s.recordings.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("listing recordings failed", "error", err)
		httptransport.RespondError(c, http.StatusInternalServerError,
			"could not list recordings", nil)
		return
	}

	httptransport.RespondSuccess(c, http.StatusOK, gin.H{"recordings": recs}, "")
}
