package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// CasesStorage implements the model.CasesStore interface
type CasesStorage struct {
	db *gorm.DB
}

// applyFilter adds the substring filters and the latest-status filter to
// the query
func (s *CasesStorage) applyFilter(db *gorm.DB, filter model.CaseFilter) *gorm.DB {
	like := func(column, value string) {
		if value != "" {
			db = db.Where("LOWER("+column+") LIKE LOWER(?)", "%"+value+"%")
		}
	}
	like("identificacao", filter.Identificacao)
	like("auto_infracao", filter.AutoInfracao)
	like("ficha_de_atendimento", filter.FichaDeAtendimento)
	like("reclamante", filter.Reclamante)
	like("reclamada", filter.Reclamada)
	like("cpf_cnpj", filter.CPFCNPJ)

	if filter.TipoDeSituacao != 0 {
		// Matches cases whose most recent status event carries the type;
		// ties on data are broken by the higher event id
		db = db.Where(
			`id IN (
				SELECT se.case_id FROM situacoes se
				WHERE se.status_type_id = ?
				AND NOT EXISTS (
					SELECT 1 FROM situacoes newer
					WHERE newer.case_id = se.case_id
					AND (newer.data > se.data OR (newer.data = se.data AND newer.id > se.id))
				)
			)`, filter.TipoDeSituacao,
		)
	}
	return db
}

// List returns the page of cases matching the filter, ordered by id
func (s *CasesStorage) List(filter model.CaseFilter, page model.Page) (*model.CasePage, error) {
	query := s.applyFilter(s.db.Model(&model.Case{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "cases: count failed")
	}

	if page.Size > 0 {
		query = query.Offset((page.Number - 1) * page.Size).Limit(page.Size)
	}
	var cases []model.Case
	if err := query.Order("id").Find(&cases).Error; err != nil {
		return nil, errors.Wrap(err, "cases: list failed")
	}
	return &model.CasePage{Cases: cases, Total: total}, nil
}

// All returns every case ordered by id
func (s *CasesStorage) All() ([]model.Case, error) {
	var cases []model.Case
	if err := s.db.Order("id").Find(&cases).Error; err != nil {
		return nil, errors.Wrap(err, "cases: list all failed")
	}
	return cases, nil
}

// Get returns a case by id
func (s *CasesStorage) Get(id uint) (*model.Case, error) {
	var c model.Case
	if err := s.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NotFoundError("case not found")
		}
		return nil, errors.Wrap(err, "cases: get failed")
	}
	return &c, nil
}

// Create creates a case
func (s *CasesStorage) Create(req model.AddCase) (*model.Case, error) {
	c := &model.Case{
		Identificacao:      req.Identificacao,
		AutoInfracao:       req.AutoInfracao,
		Reclamante:         req.Reclamante,
		Reclamada:          req.Reclamada,
		CPFCNPJ:            req.CPFCNPJ,
		FichaDeAtendimento: req.FichaDeAtendimento,
	}
	if err := s.db.Create(c).Error; err != nil {
		return nil, errors.Wrap(err, "cases: create failed")
	}
	return c, nil
}

// CreateImported creates a case row as-is, keeping an explicit CriadoEm
// coming from an imported workbook
func (s *CasesStorage) CreateImported(c *model.Case) error {
	return errors.Wrap(s.db.Create(c).Error, "cases: import create failed")
}

// Update updates a case
func (s *CasesStorage) Update(id uint, req model.AddCase) (*model.Case, error) {
	c, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	c.Identificacao = req.Identificacao
	c.AutoInfracao = req.AutoInfracao
	c.Reclamante = req.Reclamante
	c.Reclamada = req.Reclamada
	c.CPFCNPJ = req.CPFCNPJ
	c.FichaDeAtendimento = req.FichaDeAtendimento
	if err = s.db.Save(c).Error; err != nil {
		return nil, errors.Wrap(err, "cases: update failed")
	}
	return c, nil
}

// Delete deletes a case together with its status events and documents
func (s *CasesStorage) Delete(id uint) error {
	return s.db.Transaction(
		func(tx *gorm.DB) error {
			var c model.Case
			if err := tx.First(&c, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return model.NotFoundError("case not found")
				}
				return errors.Wrap(err, "cases: delete lookup failed")
			}
			if err := tx.Where("case_id = ?", id).Delete(&model.StatusEvent{}).Error; err != nil {
				return errors.Wrap(err, "cases: delete status events failed")
			}
			var docIDs []uint
			if err := tx.Model(&model.Document{}).Where("case_id = ?", id).Pluck("id", &docIDs).Error; err != nil {
				return errors.Wrap(err, "cases: list documents failed")
			}
			if len(docIDs) > 0 {
				if err := tx.Where("document_id IN ?", docIDs).Delete(&model.DocumentComment{}).Error; err != nil {
					return errors.Wrap(err, "cases: delete document comments failed")
				}
				if err := tx.Where("case_id = ?", id).Delete(&model.Document{}).Error; err != nil {
					return errors.Wrap(err, "cases: delete documents failed")
				}
			}
			return errors.Wrap(tx.Delete(&c).Error, "cases: delete failed")
		},
	)
}

// LatestStatus returns the status event with the latest data for the case,
// ties broken by id descending; nil when the case has no history yet
func (s *CasesStorage) LatestStatus(caseID uint) (*model.StatusEvent, error) {
	var ev model.StatusEvent
	err := s.db.Preload("StatusType").
		Where("case_id = ?", caseID).
		Order("data DESC").Order("id DESC").
		First(&ev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "cases: latest status failed")
	}
	return &ev, nil
}
