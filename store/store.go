// Package store keeps search runs and their steps in a SQLite
// database.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/soft_delete"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Run is one search over one branch.
type Run struct {
	ID string `gorm:"primaryKey"`
	// Mode is "recurrence" or "linear".
	Mode   string `gorm:"index:idx_mode"`
	Branch int
	// Rules is the digest of the rule set the run used.
	Rules     string `gorm:"index:idx_rules"`
	Steps     int
	Found     bool
	FoundAt   int
	StartTime time.Time
	EndTime   time.Time
	DeletedAt soft_delete.DeletedAt `gorm:"index"`

	Trace []*Step `gorm:"foreignKey:RunID"`
}

// Step records the expression tracked by a run after step N.
type Step struct {
	ID    int64  `gorm:"primaryKey"`
	RunID string `gorm:"index:idx_run_step"`
	N     int    `gorm:"index:idx_run_step"`
	Terms int
	Expr  string
}

// Store is a handle on an open database.
type Store struct {
	db *gorm.DB
}

// Open opens, creating if needed, the database at path and migrates
// its tables.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &Step{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// NewRun creates a run record with a fresh id.
func (s *Store) NewRun(mode string, branch int, rules string) (*Run, error) {
	r := &Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		Branch:    branch,
		Rules:     rules,
		StartTime: time.Now(),
	}
	if err := s.db.Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// AddStep appends a step to run id.
func (s *Store) AddStep(id string, n, terms int, expr string) error {
	return s.db.Create(&Step{RunID: id, N: n, Terms: terms, Expr: expr}).Error
}

// Finish records the outcome of run id.
func (s *Store) Finish(id string, steps int, found bool, at int) error {
	res := s.db.Model(&Run{}).Where("`id`=?", id).Updates(map[string]any{
		"steps":    steps,
		"found":    found,
		"found_at": at,
		"end_time": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs() ([]*Run, error) {
	var rs []*Run
	if err := s.db.Order("start_time desc").Find(&rs).Error; err != nil {
		return nil, err
	}
	return rs, nil
}

// Get loads run id together with its steps in order.
func (s *Store) Get(id string) (*Run, error) {
	var r Run
	err := s.db.Preload("Trace", func(db *gorm.DB) *gorm.DB {
		return db.Order("n")
	}).Where("`id`=?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Delete hides run id from Runs and Get. Its steps are kept.
func (s *Store) Delete(id string) error {
	res := s.db.Where("`id`=?", id).Delete(&Run{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
