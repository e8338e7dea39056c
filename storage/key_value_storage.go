package storage

import (
	"encoding/json"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// KeyValueStorage implements the model.KeyValueStore interface
type KeyValueStorage struct {
	db *gorm.DB
}

// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
func (s *KeyValueStorage) Get(scope, key string) (datatypes.JSON, error) {
	var kv model.KeyValue
	if err := s.db.Where("scope = ? AND key = ?", scope, key).First(&kv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "key_value: get failed")
	}
	return kv.Value, nil
}

// GetAs unmarshals the value for a (scope, key) into target
func (s *KeyValueStorage) GetAs(scope, key string, target any) (bool, error) {
	raw, err := s.Get(scope, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	return true, errors.Wrap(json.Unmarshal(raw, target), "key_value: unmarshal failed")
}

// Set stores/replaces the value for a (scope, key)
func (s *KeyValueStorage) Set(scope, key string, value datatypes.JSON) error {
	kv := model.KeyValue{Scope: scope, Key: key, Value: value}
	return errors.Wrap(
		s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&kv).Error,
		"key_value: set failed",
	)
}

// SetAny marshals value and stores it for a (scope, key)
func (s *KeyValueStorage) SetAny(scope, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "key_value: marshal failed")
	}
	return s.Set(scope, key, raw)
}

// Delete removes the entry for a (scope, key). No error if missing.
func (s *KeyValueStorage) Delete(scope, key string) error {
	return errors.Wrap(
		s.db.Where("scope = ? AND key = ?", scope, key).Delete(&model.KeyValue{}).Error,
		"key_value: delete failed",
	)
}
