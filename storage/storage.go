package storage

import (
	"fmt"
	"strings"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/fileblob"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"

	"gorm.io/gorm"
)

// Storage is a GORM-based storage implementation
type Storage struct {
	db         *gorm.DB
	blobs      *fileblob.Store
	userParams Argon2idParams
	systemUser *model.User
}

var models = []any{
	&model.Case{},
	&model.StatusType{},
	&model.StatusEvent{},
	&model.Document{},
	&model.DocumentComment{},
	&model.User{},
	&model.Profile{},
	&model.Token{},
	&model.KeyValue{},
}

// NewStorage creates a new GORM-based storage
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate the schemas
	if err = db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	blobs, err := fileblob.NewStore(config.MediaDir)
	if err != nil {
		return nil, err
	}

	// Fill user hash params with defaults if zero values
	params := config.UsersHash
	if params.Time == 0 {
		params = defaultArgon2idParams()
	}

	s := &Storage{
		db:         db,
		blobs:      blobs,
		userParams: params,
	}
	// Ensure the sentinel account exists before the first request so the
	// comment fan-out never races on its creation
	if s.systemUser, err = ensureSystemUser(db); err != nil {
		return nil, err
	}
	return s, nil
}

// Blobs returns the file blob store backing document uploads
func (s *Storage) Blobs() *fileblob.Store {
	return s.blobs
}

// CasesStorage returns a CasesStorage
func (s *Storage) CasesStorage() *CasesStorage {
	return &CasesStorage{db: s.db}
}

// StatusTypesStorage returns a StatusTypesStorage
func (s *Storage) StatusTypesStorage() *StatusTypesStorage {
	return &StatusTypesStorage{db: s.db}
}

// StatusEventsStorage returns a StatusEventsStorage
func (s *Storage) StatusEventsStorage() *StatusEventsStorage {
	return &StatusEventsStorage{db: s.db, systemUser: s.systemUser}
}

// DocumentsStorage returns a DocumentsStorage
func (s *Storage) DocumentsStorage() *DocumentsStorage {
	return &DocumentsStorage{db: s.db, blobs: s.blobs}
}

// CommentsStorage returns a CommentsStorage
func (s *Storage) CommentsStorage() *CommentsStorage {
	return &CommentsStorage{db: s.db}
}

// KeyValue returns a KeyValueStorage
func (s *Storage) KeyValue() *KeyValueStorage {
	return &KeyValueStorage{db: s.db}
}

// Backends returns the grouped storage backends
func (s *Storage) Backends() model.Backends {
	return model.Backends{
		Cases:        s.CasesStorage(),
		StatusTypes:  s.StatusTypesStorage(),
		StatusEvents: s.StatusEventsStorage(),
		Documents:    s.DocumentsStorage(),
		Comments:     s.CommentsStorage(),
		Users:        s.UsersStorage(),
		KV:           s.KeyValue(),
	}
}

// isUniqueConstraintError reports whether the error comes from a violated
// unique constraint, across the supported drivers
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "constraint failed: unique")
}
