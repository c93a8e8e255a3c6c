// Package store persists an audit row per verification verdict. Persistence
// is best-effort: a storage failure is logged and never fails the request
// that produced the verdict.
package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Verification is one audited verdict.
type Verification struct {
	ID           uint   `gorm:"primaryKey"`
	RequestID    string `gorm:"size:64;index"`
	Fingerprint  string `gorm:"size:128;index"`
	BestName     string `gorm:"size:255"`
	Score        float64
	RiskLevel    string `gorm:"size:16"`
	MatchesFound int
	IsAuthentic  bool
	DurationMS   int64
	CreatedAt    time.Time
}

// Store wraps the audit table.
type Store struct {
	db *gorm.DB
}

// MustMySQL opens the MySQL connection or exits. Used by the service binary.
func MustMySQL(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db
}

// New migrates the audit schema and returns a store over db.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Verification{}); err != nil {
		return nil, fmt.Errorf("migrate verification table: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one audit row.
func (s *Store) Record(ctx context.Context, v Verification) error {
	return s.db.WithContext(ctx).Create(&v).Error
}

// Recent returns the latest audit rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Verification, error) {
	var rows []Verification
	err := s.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&rows).Error
	return rows, err
}
