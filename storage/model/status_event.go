package model

import (
	"time"
)

// StatusEvent is a timestamped status assignment in a case's history
// ("situacao"). Rows are append-only: they are created by users or by bulk
// import and only disappear when the owning case is deleted.
type StatusEvent struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	CaseID       uint       `gorm:"index" json:"processo"`
	StatusTypeID uint       `json:"tipo_de_situacao"`
	StatusType   StatusType `gorm:"foreignKey:StatusTypeID" json:"-"`
	Data         time.Time  `gorm:"autoCreateTime" json:"data"`
	Comentario   string     `json:"comentario"`
}

// TableName keeps the table name aligned with the domain language
func (StatusEvent) TableName() string {
	return "situacoes"
}

// AddStatusEvent is the request body for creating a StatusEvent
type AddStatusEvent struct {
	CaseID       uint       `json:"processo"`
	StatusTypeID uint       `json:"tipo_de_situacao"`
	Data         *time.Time `json:"data"`
	Comentario   string     `json:"comentario"`
}

// StatusEventsStore abstracts creation and listing of status events.
// Creating an event fans out one auto-generated comment to every document
// of the owning case; there is deliberately no update operation.
type StatusEventsStore interface {
	// List returns all status events, optionally restricted to one case,
	// ordered by case, data descending, id
	List(caseID uint) ([]StatusEvent, error)
	// Get returns a status event by id
	Get(id uint) (*StatusEvent, error)
	// Create creates a status event and, in the same transaction, appends
	// the auto-generated comment to every document of the case
	Create(req AddStatusEvent) (*StatusEvent, error)
	// Delete deletes a status event
	Delete(id uint) error
}
