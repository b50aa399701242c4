package history

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultKeep is how many records survive a Prune.
const DefaultKeep = 50

type Repository struct {
	db   *gorm.DB
	keep int
}

func NewRepository(db *gorm.DB, keep int) *Repository {
	if keep <= 0 {
		keep = DefaultKeep
	}

	return &Repository{
		db:   db,
		keep: keep,
	}
}

// Create stores the record and prunes the log to the configured size.
func (r *Repository) Create(record *Record) (*Record, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	err := r.db.Create(record).Error

	if err != nil {
		return nil, err
	}

	if err := r.Prune(); err != nil {
		return nil, err
	}

	return record, nil
}

func (r *Repository) ListRecent(limit int) ([]*Record, error) {
	var records []*Record

	query := r.db.Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// Prune deletes everything but the newest records.
func (r *Repository) Prune() error {
	var cutoff Record

	err := r.db.Order("created_at DESC").Offset(r.keep).Limit(1).Find(&cutoff).Error

	if err != nil {
		return err
	}

	if cutoff.ID == "" {
		return nil
	}

	return r.db.Where("created_at <= ?", cutoff.CreatedAt).Delete(&Record{}).Error
}

func (r *Repository) DeleteAll() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Record{}).Error
}
