// Package predict sequences the audio-to-decision pipeline for one request:
// decode, feature extraction, classification, persistence. It is the only
// place knowledge of all three pipeline stages mixes.
package predict

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"

	"hypernasality-server-go/internal/domain/audio"
	"hypernasality-server-go/internal/domain/classify"
	"hypernasality-server-go/internal/domain/features"
	"hypernasality-server-go/internal/platform/logging"
	"hypernasality-server-go/internal/platform/storage"
)

// ErrPredictionFailed is the single uniform failure surfaced to callers.
// Which stage failed, and why, is preserved only in logs.
var ErrPredictionFailed = errors.New("prediction failed")

// ArtifactStore persists and removes raw audio uploads.
type ArtifactStore interface {
	Save(filename string, data []byte) (string, error)
	Delete(path string) error
}

// RecordingStore appends prediction records.
type RecordingStore interface {
	Create(ctx context.Context, rec *storage.Recording) error
}

// Request is one uploaded recording plus its vowel label.
type Request struct {
	Audio    []byte
	Filename string
	Vowel    string
}

// Result is the outcome handed back to the transport layer.
type Result struct {
	RecordingID uint
	Prediction  *classify.Prediction
}

// Service owns the per-request pipeline. All fields are set once at startup
// and read concurrently by in-flight requests; nothing here mutates after
// construction.
type Service struct {
	decoder    *audio.Decoder
	extractor  *features.Extractor
	classifier *classify.Classifier
	spec       classify.InputSpec
	artifacts  ArtifactStore
	recordings RecordingStore
	logger     *logging.Logger
}

func NewService(
	decoder *audio.Decoder,
	extractor *features.Extractor,
	classifier *classify.Classifier,
	spec classify.InputSpec,
	artifacts ArtifactStore,
	recordings RecordingStore,
	logger *logging.Logger,
) *Service {
	return &Service{
		decoder:    decoder,
		extractor:  extractor,
		classifier: classifier,
		spec:       spec,
		artifacts:  artifacts,
		recordings: recordings,
		logger:     logger,
	}
}

// Predict runs the linear pipeline to completion or to failure. There are no
// retries: every failure here is deterministic for the given input. On
// failure after the raw audio was stored, the artifact is removed again so
// nothing half-finished survives the request.
func (s *Service) Predict(ctx context.Context, req Request) (*Result, error) {
	artifactPath, err := s.artifacts.Save(req.Filename, req.Audio)
	if err != nil {
		return nil, s.fail("persist-artifact", "", req, err)
	}
	s.logger.Debug("audio artifact stored", "path", artifactPath, "bytes", len(req.Audio))

	waveform, err := s.decoder.Decode(req.Audio, req.Filename)
	if err != nil {
		return nil, s.fail("decode", artifactPath, req, err)
	}
	s.logger.Debug("audio decoded",
		"sample_rate", waveform.SampleRate, "samples", len(waveform.Samples))

	frameSet, err := s.extractor.Extract(waveform)
	if err != nil {
		return nil, s.fail("extract", artifactPath, req, err)
	}

	input, err := classify.BuildInput(frameSet, s.spec)
	if err != nil {
		return nil, s.fail("build-input", artifactPath, req, err)
	}

	prediction, err := s.classifier.Classify(input)
	if err != nil {
		return nil, s.fail("classify", artifactPath, req, err)
	}

	probs, err := json.Marshal(prediction.Probabilities[:])
	if err != nil {
		return nil, s.fail("encode-probabilities", artifactPath, req, err)
	}

	record := &storage.Recording{
		VowelRecorded: req.Vowel,
		Prediction:    prediction.ClassID,
		Confidence:    prediction.Confidence,
		Probabilities: datatypes.JSON(probs),
		AudioFilePath: artifactPath,
	}
	if err := s.recordings.Create(ctx, record); err != nil {
		// fixed policy: a persistence failure fails the whole request
		return nil, s.fail("persist-record", artifactPath, req, err)
	}

	s.logger.Info("prediction stored",
		"recording_id", record.ID,
		"vowel", req.Vowel,
		"prediction", prediction.Label,
		"confidence", prediction.Confidence)

	return &Result{
		RecordingID: record.ID,
		Prediction:  prediction,
	}, nil
}

// fail logs the stage and cause with enough context to reproduce the
// failure, removes any artifact already written, and returns the uniform
// external error.
func (s *Service) fail(stage, artifactPath string, req Request, cause error) error {
	s.logger.Error("pipeline stage failed",
		"stage", stage,
		"filename", req.Filename,
		"vowel", req.Vowel,
		"audio_bytes", len(req.Audio),
		"error", cause)

	if artifactPath != "" {
		if err := s.artifacts.Delete(artifactPath); err != nil {
			s.logger.Warn("artifact cleanup failed", "path", artifactPath, "error", err)
		}
	}
	return ErrPredictionFailed
}
