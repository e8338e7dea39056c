package proconapi

import (
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// exportSheetName is the worksheet all cases are written to
const exportSheetName = "Processos"

// exportTimeLayout is the cell format for timestamps in the workbook
const exportTimeLayout = "02/01/2006 15:04:05"

var exportHeader = []string{
	"Data de Criação",
	"Processo",
	"Auto de Infração",
	"Reclamante",
	"Reclamada",
	"CPF/CNPJ",
	"Última Situação",
	"Data da última situação",
	"Ficha de Atendimento",
}

// ExportReport summarizes an export run; it is stored in the key-value
// store under the bulk scope
type ExportReport struct {
	Rows       int       `json:"rows"`
	FinishedAt time.Time `json:"finished_at"`
}

// ExportCases serializes every case, ordered by id, plus its latest status
// into a workbook written to w.
func (a *ProconAPI) ExportCases(w io.Writer) error {
	cases, err := a.storages.Cases.All()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err = f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return errors.Wrap(err, "export: failed to name worksheet")
	}
	if err = f.SetSheetRow(exportSheetName, "A1", &exportHeader); err != nil {
		return errors.Wrap(err, "export: failed to write header")
	}

	for i, c := range cases {
		row := []any{
			c.CriadoEm.Format(exportTimeLayout),
			c.Identificacao,
			c.AutoInfracao,
			c.Reclamante,
			c.Reclamada,
			c.CPFCNPJ,
			"",
			"",
			c.FichaDeAtendimento,
		}
		latest, err := a.storages.Cases.LatestStatus(c.ID)
		if err != nil {
			return err
		}
		if latest != nil {
			row[6] = latest.StatusType.Nome
			row[7] = latest.Data.Format(exportTimeLayout)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "export: failed to address row")
		}
		if err = f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return errors.Wrap(err, "export: failed to write row")
		}
	}

	if err = f.Write(w); err != nil {
		return errors.Wrap(err, "export: failed to write workbook")
	}
	report := ExportReport{Rows: len(cases), FinishedAt: time.Now()}
	if err = a.storages.KV.SetAny(model.KeyValueScopeBulk, model.KeyValueKeyLastExport, report); err != nil {
		log.WithError(err).Warn("export: failed to record export report")
	}
	return nil
}
