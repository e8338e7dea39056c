package model

import (
	"time"
)

// StatusType is a named status category for cases. Ordem is the dense
// 1-based rank that defines the display order of the categories; 0 is
// reserved as a transient sentinel while a rank is being moved and never
// survives a committed transaction.
type StatusType struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Ordem     uint   `gorm:"index" json:"ordem"`
	Nome      string `gorm:"uniqueIndex" json:"nome"`
	CSSCor    string `json:"css_cor"`
	Descricao string `json:"descricao"`
}

// AddStatusType is the request body for creating or updating a StatusType
type AddStatusType struct {
	Ordem     uint   `json:"ordem"`
	Nome      string `json:"nome"`
	CSSCor    string `json:"css_cor"`
	Descricao string `json:"descricao"`
}

// StatusTypesStore abstracts CRUD and rank reordering for status types.
type StatusTypesStore interface {
	// List returns all status types ordered by ordem, nome, id
	List() ([]StatusType, error)
	// Get returns a status type by id
	Get(id uint) (*StatusType, error)
	// GetByName returns a status type by case-insensitive name match
	GetByName(nome string) (*StatusType, error)
	// Count returns the number of status types
	Count() (int64, error)
	// Create creates a status type
	Create(req AddStatusType) (*StatusType, error)
	// Update updates a status type
	Update(id uint, req AddStatusType) (*StatusType, error)
	// Delete deletes a status type
	Delete(id uint) error
	// Reorder moves the status type with the given id from oldRank to
	// newRank, shifting all intervening ranks by one, and returns the full
	// ordered collection
	Reorder(id, oldRank, newRank uint) ([]StatusType, error)
}
