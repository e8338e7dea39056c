package model

import (
	"time"
)

// Case is a tracked administrative matter ("processo"). It owns an
// append-only history of StatusEvent rows and a list of Document rows, both
// removed with the case.
type Case struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	CriadoEm time.Time `gorm:"autoCreateTime" json:"criado_em"`

	Identificacao      string `json:"identificacao"`
	AutoInfracao       string `json:"auto_infracao"`
	Reclamante         string `json:"reclamante"`
	Reclamada          string `json:"reclamada"`
	CPFCNPJ            string `json:"cpf_cnpj"`
	FichaDeAtendimento string `json:"ficha_de_atendimento"`

	StatusEvents []StatusEvent `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"-"`
	Documents    []Document    `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName keeps the table name aligned with the domain language
func (Case) TableName() string {
	return "processos"
}

// AddCase is the request body for creating or updating a Case
type AddCase struct {
	Identificacao      string `json:"identificacao"`
	AutoInfracao       string `json:"auto_infracao"`
	Reclamante         string `json:"reclamante"`
	Reclamada          string `json:"reclamada"`
	CPFCNPJ            string `json:"cpf_cnpj"`
	FichaDeAtendimento string `json:"ficha_de_atendimento"`
}

// CaseFilter holds the supported substring filters for listing cases.
// TipoDeSituacao filters on the id of the status type of each case's
// latest status event.
type CaseFilter struct {
	Identificacao      string
	AutoInfracao       string
	FichaDeAtendimento string
	Reclamante         string
	Reclamada          string
	CPFCNPJ            string
	TipoDeSituacao     uint
}

// Page holds pagination parameters for list queries
type Page struct {
	Number int
	Size   int
}

// CasePage is a page of cases plus the total row count for the filter
type CasePage struct {
	Cases []Case
	Total int64
}

// CasesStore abstracts CRUD over cases.
type CasesStore interface {
	// List returns the cases matching the filter, ordered by id
	List(filter CaseFilter, page Page) (*CasePage, error)
	// All returns every case ordered by id
	All() ([]Case, error)
	// Get returns a case by id
	Get(id uint) (*Case, error)
	// Create creates a case
	Create(req AddCase) (*Case, error)
	// CreateImported creates a case with an explicit creation time
	CreateImported(c *Case) error
	// Update updates a case
	Update(id uint, req AddCase) (*Case, error)
	// Delete deletes a case together with its status events and documents
	Delete(id uint) error
	// LatestStatus returns the latest status event of a case, or nil
	LatestStatus(caseID uint) (*StatusEvent, error)
}
