package proconapi

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

// Workbook column positions for the bulk import, zero-based
const (
	colCriadoEm = iota
	colIdentificacao
	colAutoInfracao
	colReclamante
	colReclamada
	colCPFCNPJ
	colSituacaoNome
	colSituacaoData
	colFichaDeAtendimento
)

// importTimeLayouts are tried in order when parsing timestamp cells; cells
// come back from the workbook as formatted strings
var importTimeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2006-01-02",
	"01-02-06",
	"1/2/06 15:04",
}

// ImportReport summarizes an import run; it is stored in the key-value
// store under the bulk scope
type ImportReport struct {
	Created      int       `json:"created"`
	Skipped      int       `json:"skipped"`
	TypesCreated int       `json:"types_created"`
	FinishedAt   time.Time `json:"finished_at"`
}

// ImportCases reads the first worksheet of the uploaded workbook and
// creates one case per data row, plus one status event when the row names
// a status type. Rows whose identificacao cell is empty or the literal
// "None" are skipped entirely. Status type names are matched
// case-insensitively against the registry; unknown names are created with
// ranks continuing past the current count, each new type in the run taking
// the next increment.
func (a *ProconAPI) ImportCases(r io.Reader) (*ImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "import: failed to open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.InvalidRequestError("workbook has no worksheet")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, "import: failed to read worksheet")
	}

	typeCount, err := a.storages.StatusTypes.Count()
	if err != nil {
		return nil, err
	}
	nextOrdem := uint(typeCount) + 1

	report := &ImportReport{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		identificacao := cellAt(row, colIdentificacao)
		if identificacao == "" || identificacao == "None" {
			report.Skipped++
			continue
		}

		c := &model.Case{
			Identificacao:      identificacao,
			AutoInfracao:       cellAt(row, colAutoInfracao),
			Reclamante:         cellAt(row, colReclamante),
			Reclamada:          cellAt(row, colReclamada),
			CPFCNPJ:            NormalizeCPFCNPJ(cellAt(row, colCPFCNPJ)),
			FichaDeAtendimento: cellAt(row, colFichaDeAtendimento),
		}
		if t, ok := parseImportTime(cellAt(row, colCriadoEm)); ok {
			c.CriadoEm = t
		}
		if err = a.storages.Cases.CreateImported(c); err != nil {
			return nil, err
		}
		report.Created++

		nome := cellAt(row, colSituacaoNome)
		if nome == "" {
			continue
		}
		st, err := a.storages.StatusTypes.GetByName(nome)
		if err != nil {
			var notFound model.NotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
			st, err = a.storages.StatusTypes.Create(
				model.AddStatusType{Nome: nome, Ordem: nextOrdem},
			)
			if err != nil {
				return nil, err
			}
			nextOrdem++
			report.TypesCreated++
		}
		ev := model.AddStatusEvent{CaseID: c.ID, StatusTypeID: st.ID}
		if t, ok := parseImportTime(cellAt(row, colSituacaoData)); ok {
			ev.Data = &t
		}
		if _, err = a.storages.StatusEvents.Create(ev); err != nil {
			return nil, err
		}
		log.WithField("processo", c.Identificacao).WithField("linha", i+1).Debug("imported case")
	}

	report.FinishedAt = time.Now()
	if err = a.storages.KV.SetAny(model.KeyValueScopeBulk, model.KeyValueKeyLastImport, report); err != nil {
		log.WithError(err).Warn("import: failed to record import report")
	}
	return report, nil
}

// cellAt returns the trimmed cell value at index i; worksheet rows come
// back with trailing empty cells trimmed
func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseImportTime parses a formatted timestamp cell
func parseImportTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeCPFCNPJ strips everything but digits from the given value and
// applies the CPF mask for 11 digits (###.###.###-##) or the CNPJ mask for
// 14 digits (##.###.###/####-##); any other digit count returns the input
// unchanged.
func NormalizeCPFCNPJ(v string) string {
	var digits []byte
	for i := 0; i < len(v); i++ {
		if v[i] >= '0' && v[i] <= '9' {
			digits = append(digits, v[i])
		}
	}
	d := string(digits)
	switch len(d) {
	case 11:
		return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
	case 14:
		return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14])
	default:
		return v
	}
}
