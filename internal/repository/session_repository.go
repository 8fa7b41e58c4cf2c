package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fadilmartias/converge/internal/config"
	"github.com/fadilmartias/converge/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// OpenSessionDB opens the database holding client-local session state and
// migrates the session table.
func OpenSessionDB(cfg *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported session database driver: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}
	if err := db.AutoMigrate(&model.SessionEntry{}); err != nil {
		return nil, fmt.Errorf("session migration failed: %w", err)
	}
	return db, nil
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db}
}

func (r *SessionRepository) Load(ctx context.Context) (model.Session, error) {
	var entries []model.SessionEntry
	err := r.db.WithContext(ctx).
		Where("state_key IN ?", []string{model.SessionKeyToken, model.SessionKeyUserID}).
		Find(&entries).Error
	if err != nil {
		return model.Session{}, err
	}

	var s model.Session
	for _, e := range entries {
		switch e.Key {
		case model.SessionKeyToken:
			s.Token = e.Value
		case model.SessionKeyUserID:
			s.UserID = e.Value
		}
	}
	return s, nil
}

// Save writes both keys. An empty field removes its key.
func (r *SessionRepository) Save(ctx context.Context, s model.Session) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := put(tx, model.SessionKeyToken, s.Token); err != nil {
			return err
		}
		return put(tx, model.SessionKeyUserID, s.UserID)
	})
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Where("state_key IN ?", []string{model.SessionKeyToken, model.SessionKeyUserID}).
		Delete(&model.SessionEntry{}).Error
}

func put(tx *gorm.DB, key, value string) error {
	if value == "" {
		err := tx.Where("state_key = ?", key).Delete(&model.SessionEntry{}).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return nil
	}
	entry := model.SessionEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "state_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

// MemorySessionRepository keeps the session in process memory only.
type MemorySessionRepository struct {
	mu      sync.Mutex
	session model.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{}
}

func (r *MemorySessionRepository) Load(context.Context) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session, nil
}

func (r *MemorySessionRepository) Save(_ context.Context, s model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = s
	return nil
}

func (r *MemorySessionRepository) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = model.Session{}
	return nil
}
