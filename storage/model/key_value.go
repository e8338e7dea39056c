package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KeyValueScopeGlobal = ""
	KeyValueScopeBulk   = "bulk"

	KeyValueKeyLastImport = "last_import"
	KeyValueKeyLastExport = "last_export"
)

// KeyValue stores arbitrary key-value data.
//
// Values are serialized using GORM's json serializer, which leverages the
// database JSON type when available (e.g., PostgreSQL, MySQL) and falls
// back to TEXT in others (e.g., SQLite). The `Scope` field enables
// namespacing to avoid key collisions across different features; the bulk
// bridge records its last run report here.
type KeyValue struct {
	CreatedAt int            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Scope allows grouping keys by namespace; empty string is global scope.
	Scope string `gorm:"primaryKey" json:"scope"`

	// Key is the identifier within a scope.
	Key string `gorm:"primaryKey" json:"key"`

	// Value is stored as native JSON/JSONB (where supported) using datatypes.JSON.
	Value datatypes.JSON `json:"value"`
}

// KeyValueStore defines common operations for key-value storage.
type KeyValueStore interface {
	// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
	Get(scope, key string) (datatypes.JSON, error)

	// GetAs unmarshals the value for a (scope, key) into target; the bool
	// return reports whether the key was present.
	GetAs(scope, key string, target any) (bool, error)

	// Set stores/replaces the value for a (scope, key).
	Set(scope, key string, value datatypes.JSON) error

	// SetAny marshals value and stores it for a (scope, key).
	SetAny(scope, key string, value any) error

	// Delete removes the entry for a (scope, key). No error if missing.
	Delete(scope, key string) error
}
