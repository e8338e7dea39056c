package model

import (
	"time"
)

// Document is a file attached to a case. Arquivo holds the blob path
// relative to the media root; the blob itself is managed by the file
// lifecycle in the documents storage, which renames it when Nome changes
// and removes it when the row is deleted or the file is replaced.
type Document struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CaseID          uint      `gorm:"index" json:"processo"`
	Arquivo         string    `json:"arquivo"`
	Nome            string    `json:"nome"`
	Descricao       string    `json:"descricao"`
	CriadoEm        time.Time `gorm:"autoCreateTime" json:"criado_em"`
	UltimaAlteracao time.Time `gorm:"autoUpdateTime" json:"ultima_alteracao"`

	Comments []DocumentComment `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"comentarios"`
}

// TableName keeps the table name aligned with the domain language
func (Document) TableName() string {
	return "documentos"
}

// DocumentComment is an immutable comment on a document. OwnerID references
// the authoring user; auto-generated comments are owned by the system user.
type DocumentComment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"index" json:"documento"`
	OwnerID    uint      `json:"owner"`
	Comentario string    `json:"comentario"`
	CriadoEm   time.Time `gorm:"autoCreateTime" json:"criado_em"`
}

// TableName keeps the table name aligned with the domain language
func (DocumentComment) TableName() string {
	return "comentarios_documento"
}

// AddDocument is the metadata part of a document create/update request;
// the file content travels separately as a multipart upload.
type AddDocument struct {
	CaseID    uint   `json:"processo"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao"`
}

// AddDocumentComment is the request body for creating a DocumentComment
type AddDocumentComment struct {
	DocumentID uint   `json:"documento"`
	Comentario string `json:"comentario"`
}

// Upload carries an uploaded file for a document create/update. Filename is
// only used for its extension; Content may be nil on update to signal that
// the stored blob is kept.
type Upload struct {
	Filename string
	Content  []byte
}

// DocumentsStore abstracts document CRUD including the blob lifecycle.
type DocumentsStore interface {
	// List returns all documents, optionally restricted to one case
	List(caseID uint) ([]Document, error)
	// Get returns a document by id, comments preloaded
	Get(id uint) (*Document, error)
	// GetByArquivo returns the document whose blob path matches exactly
	GetByArquivo(arquivo string) (*Document, error)
	// Create stores the upload and creates the document row
	Create(req AddDocument, up Upload) (*Document, error)
	// Update applies metadata changes and the blob rename/replace rules
	Update(id uint, req AddDocument, up *Upload) (*Document, error)
	// Delete deletes the document row and best-effort removes its blob
	Delete(id uint) error
}

// DocumentCommentsStore abstracts comment creation and listing; comments
// are never updated once written.
type DocumentCommentsStore interface {
	// List returns all comments ordered by document, id
	List() ([]DocumentComment, error)
	// Get returns a comment by id
	Get(id uint) (*DocumentComment, error)
	// Create creates a comment authored by ownerID
	Create(ownerID uint, req AddDocumentComment) (*DocumentComment, error)
	// Delete deletes a comment
	Delete(id uint) error
}
