package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// autoCommentPrefix is prepended to the status type name in the comments
// fanned out to a case's documents on every status change
const autoCommentPrefix = "Novo local: "

// StatusEventsStorage implements the model.StatusEventsStore interface
type StatusEventsStorage struct {
	db         *gorm.DB
	systemUser *model.User
}

// List returns all status events, optionally restricted to one case
func (s *StatusEventsStorage) List(caseID uint) ([]model.StatusEvent, error) {
	query := s.db.Order("case_id").Order("data DESC").Order("id")
	if caseID != 0 {
		query = query.Where("case_id = ?", caseID)
	}
	var events []model.StatusEvent
	if err := query.Find(&events).Error; err != nil {
		return nil, errors.Wrap(err, "status_events: list failed")
	}
	return events, nil
}

// Get returns a status event by id
func (s *StatusEventsStorage) Get(id uint) (*model.StatusEvent, error) {
	var ev model.StatusEvent
	if err := s.db.First(&ev, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("status event not found")
		}
		return nil, errors.Wrap(err, "status_events: get failed")
	}
	return &ev, nil
}

// Create creates a status event and fans out the auto-generated comment to
// every document currently owned by the case. Event and comments are
// written in one transaction, so either the status change and all its
// comments are committed or none are.
func (s *StatusEventsStorage) Create(req model.AddStatusEvent) (*model.StatusEvent, error) {
	var ev model.StatusEvent
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var c model.Case
			if err := tx.First(&c, req.CaseID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundError("case not found")
				}
				return errors.Wrap(err, "status_events: case lookup failed")
			}
			var st model.StatusType
			if err := tx.First(&st, req.StatusTypeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundError("status type not found")
				}
				return errors.Wrap(err, "status_events: status type lookup failed")
			}

			ev = model.StatusEvent{
				CaseID:       c.ID,
				StatusTypeID: st.ID,
				Comentario:   req.Comentario,
			}
			if req.Data != nil {
				ev.Data = *req.Data
			} else {
				ev.Data = time.Now()
			}
			if err := tx.Create(&ev).Error; err != nil {
				return errors.Wrap(err, "status_events: create failed")
			}

			var docIDs []uint
			if err := tx.Model(&model.Document{}).Where("case_id = ?", c.ID).Pluck("id", &docIDs).Error; err != nil {
				return errors.Wrap(err, "status_events: document listing failed")
			}
			for _, docID := range docIDs {
				comment := model.DocumentComment{
					DocumentID: docID,
					OwnerID:    s.systemUser.ID,
					Comentario: autoCommentPrefix + st.Nome,
				}
				if err := tx.Create(&comment).Error; err != nil {
					return errors.Wrap(err, "status_events: comment fan-out failed")
				}
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// Delete deletes a status event
func (s *StatusEventsStorage) Delete(id uint) error {
	res := s.db.Delete(&model.StatusEvent{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "status_events: delete failed")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("status event not found")
	}
	return nil
}
