package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage/model"
)

func TestCaseListSubstringFilters(t *testing.T) {
	s := newTestStorage(t).CasesStorage()
	_, err := s.Create(model.AddCase{Identificacao: "0100/2026", Reclamada: "Mercado Central Ltda"})
	require.NoError(t, err)
	_, err = s.Create(model.AddCase{Identificacao: "0101/2026", Reclamada: "Posto Azul"})
	require.NoError(t, err)

	page, err := s.List(model.CaseFilter{Reclamada: "mercado"}, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "0100/2026", page.Cases[0].Identificacao)

	page, err = s.List(model.CaseFilter{Identificacao: "2026"}, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
}

func TestCaseListPagination(t *testing.T) {
	s := newTestStorage(t).CasesStorage()
	for i := 0; i < 7; i++ {
		_, err := s.Create(model.AddCase{Identificacao: fmt.Sprintf("%04d/2026", i)})
		require.NoError(t, err)
	}

	page, err := s.List(model.CaseFilter{}, model.Page{Number: 1, Size: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(7), page.Total)
	assert.Len(t, page.Cases, 5)

	page, err = s.List(model.CaseFilter{}, model.Page{Number: 2, Size: 5})
	require.NoError(t, err)
	assert.Len(t, page.Cases, 2)
	assert.Equal(t, "0005/2026", page.Cases[0].Identificacao)
}

func TestCaseLatestStatusFilter(t *testing.T) {
	s := newTestStorage(t)
	cases := s.CasesStorage()
	types := s.StatusTypesStorage()
	events := s.StatusEventsStorage()

	atendimento, err := types.Create(model.AddStatusType{Nome: "Atendimento", Ordem: 1})
	require.NoError(t, err)
	juridico, err := types.Create(model.AddStatusType{Nome: "Jurídico", Ordem: 2})
	require.NoError(t, err)

	c1, err := cases.Create(model.AddCase{Identificacao: "0200/2026"})
	require.NoError(t, err)
	c2, err := cases.Create(model.AddCase{Identificacao: "0201/2026"})
	require.NoError(t, err)

	earlier := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	// c1 moved from atendimento to juridico, c2 stayed in atendimento
	_, err = events.Create(model.AddStatusEvent{CaseID: c1.ID, StatusTypeID: atendimento.ID, Data: &earlier})
	require.NoError(t, err)
	_, err = events.Create(model.AddStatusEvent{CaseID: c1.ID, StatusTypeID: juridico.ID, Data: &later})
	require.NoError(t, err)
	_, err = events.Create(model.AddStatusEvent{CaseID: c2.ID, StatusTypeID: atendimento.ID, Data: &earlier})
	require.NoError(t, err)

	page, err := cases.List(model.CaseFilter{TipoDeSituacao: atendimento.ID}, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total, "only the current location counts, not the history")
	assert.Equal(t, c2.ID, page.Cases[0].ID)

	page, err = cases.List(model.CaseFilter{TipoDeSituacao: juridico.ID}, model.Page{Number: 1, Size: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, c1.ID, page.Cases[0].ID)
}

func TestCaseLatestStatusTieBreaksOnID(t *testing.T) {
	s := newTestStorage(t)
	c, err := s.CasesStorage().Create(model.AddCase{Identificacao: "0202/2026"})
	require.NoError(t, err)
	st1, err := s.StatusTypesStorage().Create(model.AddStatusType{Nome: "A", Ordem: 1})
	require.NoError(t, err)
	st2, err := s.StatusTypesStorage().Create(model.AddStatusType{Nome: "B", Ordem: 2})
	require.NoError(t, err)

	same := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	_, err = s.StatusEventsStorage().Create(model.AddStatusEvent{CaseID: c.ID, StatusTypeID: st1.ID, Data: &same})
	require.NoError(t, err)
	_, err = s.StatusEventsStorage().Create(model.AddStatusEvent{CaseID: c.ID, StatusTypeID: st2.ID, Data: &same})
	require.NoError(t, err)

	latest, err := s.CasesStorage().LatestStatus(c.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, st2.ID, latest.StatusTypeID)
}

func TestCaseLatestStatusEmpty(t *testing.T) {
	s := newTestStorage(t)
	c, err := s.CasesStorage().Create(model.AddCase{Identificacao: "0203/2026"})
	require.NoError(t, err)

	latest, err := s.CasesStorage().LatestStatus(c.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestCaseDeleteCascades(t *testing.T) {
	s := newTestStorage(t)
	c, err := s.CasesStorage().Create(model.AddCase{Identificacao: "0204/2026"})
	require.NoError(t, err)
	st, err := s.StatusTypesStorage().Create(model.AddStatusType{Nome: "Atendimento", Ordem: 1})
	require.NoError(t, err)
	_, err = s.DocumentsStorage().Create(
		model.AddDocument{CaseID: c.ID, Nome: "anexo"},
		model.Upload{Filename: "anexo.pdf", Content: []byte("pdf")},
	)
	require.NoError(t, err)
	_, err = s.StatusEventsStorage().Create(model.AddStatusEvent{CaseID: c.ID, StatusTypeID: st.ID})
	require.NoError(t, err)

	require.NoError(t, s.CasesStorage().Delete(c.ID))

	events, err := s.StatusEventsStorage().List(0)
	require.NoError(t, err)
	assert.Empty(t, events)
	docs, err := s.DocumentsStorage().List(0)
	require.NoError(t, err)
	assert.Empty(t, docs)
	comments, err := s.CommentsStorage().List()
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreateImportedKeepsCreationTime(t *testing.T) {
	s := newTestStorage(t).CasesStorage()
	when := time.Date(2019, 7, 15, 14, 30, 0, 0, time.UTC)
	c := &model.Case{Identificacao: "0300/2019", CriadoEm: when}
	require.NoError(t, s.CreateImported(c))

	got, err := s.Get(c.ID)
	require.NoError(t, err)
	assert.True(t, got.CriadoEm.Equal(when))
}
