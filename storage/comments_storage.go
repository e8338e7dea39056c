package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// CommentsStorage implements the model.DocumentCommentsStore interface.
// Comments are write-once: there is no update operation.
type CommentsStorage struct {
	db *gorm.DB
}

// List returns all comments ordered by document, id
func (s *CommentsStorage) List() ([]model.DocumentComment, error) {
	var comments []model.DocumentComment
	if err := s.db.Order("document_id").Order("id").Find(&comments).Error; err != nil {
		return nil, errors.Wrap(err, "comments: list failed")
	}
	return comments, nil
}

// Get returns a comment by id
func (s *CommentsStorage) Get(id uint) (*model.DocumentComment, error) {
	var comment model.DocumentComment
	if err := s.db.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("comment not found")
		}
		return nil, errors.Wrap(err, "comments: get failed")
	}
	return &comment, nil
}

// Create creates a comment authored by ownerID
func (s *CommentsStorage) Create(ownerID uint, req model.AddDocumentComment) (*model.DocumentComment, error) {
	if req.Comentario == "" {
		return nil, model.InvalidRequestError("comentario is required")
	}
	var doc model.Document
	if err := s.db.First(&doc, req.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("document not found")
		}
		return nil, errors.Wrap(err, "comments: document lookup failed")
	}
	comment := &model.DocumentComment{
		DocumentID: doc.ID,
		OwnerID:    ownerID,
		Comentario: req.Comentario,
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, errors.Wrap(err, "comments: create failed")
	}
	return comment, nil
}

// Delete deletes a comment
func (s *CommentsStorage) Delete(id uint) error {
	res := s.db.Delete(&model.DocumentComment{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "comments: delete failed")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("comment not found")
	}
	return nil
}
