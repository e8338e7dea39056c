package fileblob

import (
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestSaveDerivesTimestampedPath(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time {
		return time.Date(2026, 8, 30, 17, 5, 9, 0, time.UTC)
	}

	rel, err := s.Save(42, "auto de infracao", "scan.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "documentos/processo_42/2026-08-30-17-05-09_auto de infracao.pdf", rel)

	data, err := os.ReadFile(s.Abs(rel))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))
}

func TestSaveWithoutExtension(t *testing.T) {
	s := newTestStore(t)
	rel, err := s.Save(1, "nota", "semextensao", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(rel, "_nota"))
}

func TestRenameKeepsPrefixAndExtension(t *testing.T) {
	s := newTestStore(t)
	rel, err := s.Save(7, "antigo", "arquivo.odt", strings.NewReader("conteudo"))
	require.NoError(t, err)
	oldBase := path.Base(rel)

	newRel, err := s.Rename(rel, "novo nome")
	require.NoError(t, err)
	newBase := path.Base(newRel)

	assert.Equal(t, oldBase[:20], newBase[:20])
	assert.Equal(t, "novo nome.odt", newBase[20:])
	assert.Equal(t, path.Dir(rel), path.Dir(newRel))

	assert.False(t, s.Exists(rel))
	data, err := os.ReadFile(s.Abs(newRel))
	require.NoError(t, err)
	assert.Equal(t, "conteudo", string(data))
}

func TestRenameSameNameIsNoOp(t *testing.T) {
	s := newTestStore(t)
	rel, err := s.Save(7, "mesmo", "f.txt", strings.NewReader("x"))
	require.NoError(t, err)

	newRel, err := s.Rename(rel, "mesmo")
	require.NoError(t, err)
	assert.Equal(t, rel, newRel)
	assert.True(t, s.Exists(rel))
}

func TestRemoveToleratesAbsence(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Remove("documentos/processo_9/2026-01-01-00-00-00_sumiu.pdf"))
	require.NoError(t, s.Remove(""))

	rel, err := s.Save(9, "presente", "f.txt", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.Remove(rel))
	assert.False(t, s.Exists(rel))
	require.NoError(t, s.Remove(rel), "second remove is still fine")
}

func TestAbsCannotEscapeRoot(t *testing.T) {
	s := newTestStore(t)
	abs := s.Abs("../../etc/passwd")
	assert.True(t, strings.HasPrefix(abs, s.Root()))
}
