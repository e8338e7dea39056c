package storage

import (
	"bytes"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/fileblob"
	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// DocumentsStorage implements the model.DocumentsStore interface. It is
// where the blob lifecycle lives: the row is the source of truth, blob
// side effects are ordered around the row write so a committed record
// never points at a path that the rename left behind.
type DocumentsStorage struct {
	db    *gorm.DB
	blobs *fileblob.Store
}

// List returns all documents, optionally restricted to one case
func (s *DocumentsStorage) List(caseID uint) ([]model.Document, error) {
	query := s.db.Preload("Comments").Order("case_id").Order("ultima_alteracao DESC").Order("id")
	if caseID != 0 {
		query = query.Where("case_id = ?", caseID)
	}
	var docs []model.Document
	if err := query.Find(&docs).Error; err != nil {
		return nil, errors.Wrap(err, "documents: list failed")
	}
	return docs, nil
}

// Get returns a document by id, comments preloaded
func (s *DocumentsStorage) Get(id uint) (*model.Document, error) {
	var doc model.Document
	if err := s.db.Preload("Comments").First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("document not found")
		}
		return nil, errors.Wrap(err, "documents: get failed")
	}
	return &doc, nil
}

// GetByArquivo returns the document whose stored blob path matches exactly
func (s *DocumentsStorage) GetByArquivo(arquivo string) (*model.Document, error) {
	var doc model.Document
	if err := s.db.Where("arquivo = ?", arquivo).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("document not found")
		}
		return nil, errors.Wrap(err, "documents: get by arquivo failed")
	}
	return &doc, nil
}

// Create stores the uploaded content under a freshly timestamped path and
// creates the document row
func (s *DocumentsStorage) Create(req model.AddDocument, up model.Upload) (*model.Document, error) {
	if req.Nome == "" {
		return nil, model.InvalidRequestError("nome is required")
	}
	var c model.Case
	if err := s.db.First(&c, req.CaseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("case not found")
		}
		return nil, errors.Wrap(err, "documents: case lookup failed")
	}
	rel, err := s.blobs.Save(c.ID, req.Nome, up.Filename, bytes.NewReader(up.Content))
	if err != nil {
		return nil, err
	}
	doc := &model.Document{
		CaseID:    c.ID,
		Arquivo:   rel,
		Nome:      req.Nome,
		Descricao: req.Descricao,
	}
	if err = s.db.Create(doc).Error; err != nil {
		// the record is the source of truth; an orphaned blob is only
		// worth a warning
		if rmErr := s.blobs.Remove(rel); rmErr != nil {
			log.WithError(rmErr).Warn("documents: failed to clean up blob after create failure")
		}
		return nil, errors.Wrap(err, "documents: create failed")
	}
	return doc, nil
}

// Update applies metadata changes and the blob lifecycle rules:
//   - nome changed without a new upload: the existing blob is renamed in
//     place, keeping its timestamp prefix and extension, before the row is
//     committed; a rename failure aborts the update.
//   - a new upload: the content is stored under a fresh path and the
//     previous blob is removed afterwards, best-effort.
func (s *DocumentsStorage) Update(id uint, req model.AddDocument, up *model.Upload) (*model.Document, error) {
	if req.Nome == "" {
		return nil, model.InvalidRequestError("nome is required")
	}
	old, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	doc := *old
	doc.Nome = req.Nome
	doc.Descricao = req.Descricao
	if req.CaseID != 0 {
		doc.CaseID = req.CaseID
	}

	var replacedBlob string
	if up == nil || up.Content == nil {
		if old.Nome != req.Nome {
			newRel, err := s.blobs.Rename(old.Arquivo, req.Nome)
			if err != nil {
				return nil, err
			}
			doc.Arquivo = newRel
		}
	} else {
		newRel, err := s.blobs.Save(doc.CaseID, req.Nome, up.Filename, bytes.NewReader(up.Content))
		if err != nil {
			return nil, err
		}
		doc.Arquivo = newRel
		replacedBlob = old.Arquivo
	}

	if err = s.db.Save(&doc).Error; err != nil {
		return nil, errors.Wrap(err, "documents: update failed")
	}

	// Old blob removal comes last, after the record write: blob files are
	// secondary and their absence is tolerated
	if replacedBlob != "" && replacedBlob != doc.Arquivo {
		if err := s.blobs.Remove(replacedBlob); err != nil {
			log.WithError(err).WithField("arquivo", replacedBlob).
				Warn("documents: failed to remove replaced blob")
		}
	}
	return s.Get(doc.ID)
}

// Delete deletes the document row together with its comments and then
// best-effort removes the blob; a blob already missing from disk never
// fails the delete
func (s *DocumentsStorage) Delete(id uint) error {
	doc, err := s.Get(id)
	if err != nil {
		return err
	}
	err = s.db.Transaction(
		func(tx *gorm.DB) error {
			if err := tx.Where("document_id = ?", id).Delete(&model.DocumentComment{}).Error; err != nil {
				return errors.Wrap(err, "documents: delete comments failed")
			}
			return errors.Wrap(tx.Delete(&model.Document{}, id).Error, "documents: delete failed")
		},
	)
	if err != nil {
		return err
	}
	if err := s.blobs.Remove(doc.Arquivo); err != nil {
		log.WithError(err).WithField("arquivo", doc.Arquivo).
			Warn("documents: failed to remove blob of deleted document")
	}
	return nil
}
