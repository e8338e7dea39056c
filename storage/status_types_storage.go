package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// StatusTypesStorage implements the model.StatusTypesStore interface
type StatusTypesStorage struct {
	db *gorm.DB
}

// orderedStatusTypes applies the canonical ordering ordem, nome, id
func orderedStatusTypes(db *gorm.DB) *gorm.DB {
	return db.Order("ordem").Order("nome").Order("id")
}

// List returns all status types ordered by ordem, nome, id
func (s *StatusTypesStorage) List() ([]model.StatusType, error) {
	var items []model.StatusType
	if err := orderedStatusTypes(s.db).Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "status_types: list failed")
	}
	return items, nil
}

// Get returns a status type by id
func (s *StatusTypesStorage) Get(id uint) (*model.StatusType, error) {
	var item model.StatusType
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("status type not found")
		}
		return nil, errors.Wrap(err, "status_types: get failed")
	}
	return &item, nil
}

// GetByName returns a status type matching nome case-insensitively
func (s *StatusTypesStorage) GetByName(nome string) (*model.StatusType, error) {
	var item model.StatusType
	if err := s.db.Where("LOWER(nome) = LOWER(?)", nome).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundErrorFmt("status type not found: %s", nome)
		}
		return nil, errors.Wrap(err, "status_types: get by name failed")
	}
	return &item, nil
}

// Count returns the number of status types
func (s *StatusTypesStorage) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&model.StatusType{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "status_types: count failed")
	}
	return count, nil
}

// Create creates a status type
func (s *StatusTypesStorage) Create(req model.AddStatusType) (*model.StatusType, error) {
	item := &model.StatusType{
		Ordem:     req.Ordem,
		Nome:      req.Nome,
		CSSCor:    req.CSSCor,
		Descricao: req.Descricao,
	}
	if err := s.db.Create(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsError("status type already exists")
		}
		return nil, errors.Wrap(err, "status_types: create failed")
	}
	return item, nil
}

// Update updates a status type
func (s *StatusTypesStorage) Update(id uint, req model.AddStatusType) (*model.StatusType, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	item.Ordem = req.Ordem
	item.Nome = req.Nome
	item.CSSCor = req.CSSCor
	item.Descricao = req.Descricao
	if err = s.db.Save(item).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsError("status type already exists")
		}
		return nil, errors.Wrap(err, "status_types: update failed")
	}
	return item, nil
}

// Delete deletes a status type
func (s *StatusTypesStorage) Delete(id uint) error {
	res := s.db.Delete(&model.StatusType{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "status_types: delete failed")
	}
	if res.RowsAffected == 0 {
		return model.NotFoundError("status type not found")
	}
	return nil
}

// Reorder moves the status type with the given id from oldRank to newRank.
// The whole rank-shift sequence runs inside one transaction so a partial
// shift is never visible: the target's rank is parked at the sentinel 0,
// every rank strictly between the two positions (bounds included) is
// shifted one unit towards the vacated slot, and the target then takes
// newRank. The resulting ranks stay a dense 1..N permutation.
func (s *StatusTypesStorage) Reorder(id, oldRank, newRank uint) ([]model.StatusType, error) {
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var target model.StatusType
			if err := tx.First(&target, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundError("status type not found")
				}
				return errors.Wrap(err, "status_types: reorder lookup failed")
			}

			// Park the target at the sentinel rank so the range shifts
			// cannot collide with it
			if err := tx.Model(&target).Update("ordem", 0).Error; err != nil {
				return errors.Wrap(err, "status_types: reorder park failed")
			}

			switch {
			case newRank > oldRank:
				if err := tx.Model(&model.StatusType{}).
					Where("ordem BETWEEN ? AND ?", oldRank, newRank).
					Update("ordem", gorm.Expr("ordem - 1")).Error; err != nil {
					return errors.Wrap(err, "status_types: reorder shift down failed")
				}
			case newRank < oldRank:
				if err := tx.Model(&model.StatusType{}).
					Where("ordem BETWEEN ? AND ?", newRank, oldRank).
					Update("ordem", gorm.Expr("ordem + 1")).Error; err != nil {
					return errors.Wrap(err, "status_types: reorder shift up failed")
				}
			}

			return errors.Wrap(
				tx.Model(&target).Update("ordem", newRank).Error,
				"status_types: reorder assign failed",
			)
		},
	)
	if err != nil {
		return nil, err
	}
	return s.List()
}
