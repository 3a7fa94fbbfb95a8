package archive

import (
	"time"

	"github.com/jackc/pgtype"
)

// ArchivedReading is one persisted temperature reading.
type ArchivedReading struct {
	ID          uint      `gorm:"primaryKey"`
	Time        time.Time `gorm:"column:time;index"`
	FeedName    string    `gorm:"column:feedname;index"`
	FeedType    string    `gorm:"column:feedtype"`
	Temperature float64   `gorm:"column:temperature"`
}

// TableName implements the GORM table name convention override.
func (ArchivedReading) TableName() string {
	return "readings"
}

// ArchivedSampleBatch is one persisted penguin sample batch. The sampled
// rows are stored as a JSONB document rather than normalized columns; the
// batch is only ever read back whole.
type ArchivedSampleBatch struct {
	BatchID   string       `gorm:"column:batch_id;primaryKey"`
	SampledAt time.Time    `gorm:"column:sampled_at;index"`
	Rows      pgtype.JSONB `gorm:"column:rows;type:jsonb;not null"`
}

// TableName implements the GORM table name convention override.
func (ArchivedSampleBatch) TableName() string {
	return "penguin_sample_batches"
}
