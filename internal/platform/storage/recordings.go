package storage

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// Recording is one persisted prediction. Rows are append-only: they are
// created exactly once per successful prediction and never updated.
type Recording struct {
	ID            uint           `gorm:"primaryKey"              json:"id"`
	Timestamp     time.Time      `gorm:"autoCreateTime"          json:"timestamp"`
	VowelRecorded string         `gorm:"type:varchar(64)"        json:"vowel_recorded"`
	Prediction    int            `                               json:"prediction"` // 0 control, 1 hypernasal
	Confidence    float64        `                               json:"confidence"`
	Probabilities datatypes.JSON `                               json:"probabilities"`
	AudioFilePath string         `gorm:"type:varchar(512)"       json:"audio_file_path"`
}

// RecordingRepository provides append and read access to the recordings table.
type RecordingRepository struct {
	db *gorm.DB
}

func NewRecordingRepository(db *gorm.DB) *RecordingRepository {
	return &RecordingRepository{db: db}
}

// Create appends a recording and fills its generated ID and timestamp.
func (r *RecordingRepository) Create(ctx context.Context, rec *Recording) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"recording create", "insert recording", err)
	}
	return nil
}

// List returns the most recent recordings, newest first.
func (r *RecordingRepository) List(ctx context.Context, limit int) ([]Recording, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []Recording
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"recording list", "query recordings", err)
	}
	return recs, nil
}
