package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func protocols() Sheet {
	return NewSheet([]string{"Protocolo", "Assunto"}, []map[string]string{
		{"Protocolo": "2024/0001", "Assunto": "Registro profissional"},
		{"Protocolo": "2024/0002", "Assunto": "Baixa de ART"},
	})
}

func TestNewSheet(t *testing.T) {
	s := NewSheet([]string{"A"}, []map[string]string{
		{"A": "1", "C": "x", "B": "y"},
		{"D": "z"},
	})
	assert.Equal(t, []string{"A", "B", "C", "D"}, s.Columns)

	want := [][]string{
		{"A", "B", "C", "D"},
		{"1", "y", "x", ""},
		{"", "", "", "z"},
	}
	if diff := cmp.Diff(want, s.Records()); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "saida.xlsx")
	require.NoError(t, Write(path, "Resultados", protocols()))

	got, err := Read(path, "Resultados")
	require.NoError(t, err)
	if diff := cmp.Diff(protocols(), got); diff != "" {
		t.Errorf("sheet mismatch (-want +got):\n%s", diff)
	}

	first, err := Read(path, "")
	require.NoError(t, err)
	assert.Equal(t, got, first)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Resultados"}, f.GetSheetList())
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saida.xlsx")
	require.NoError(t, Write(path, "", protocols()))
	require.NoError(t, Write(path, "", NewSheet([]string{"X"}, []map[string]string{{"X": "1"}})))

	got, err := Read(path, DefaultSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, got.Columns)
	assert.Len(t, got.Rows, 1)
}

func TestAppend(t *testing.T) {
	t.Run("creates a missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "novo.xlsx")
		require.NoError(t, Append(path, "", protocols()))

		got, err := Read(path, DefaultSheet)
		require.NoError(t, err)
		assert.Len(t, got.Rows, 2)
	})

	t.Run("concatenates and merges headers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "saida.xlsx")
		require.NoError(t, Write(path, "", protocols()))
		require.NoError(t, Append(path, "", NewSheet([]string{"Protocolo", "Data"}, []map[string]string{
			{"Protocolo": "2024/0003", "Data": "05/02/2024"},
		})))

		got, err := Read(path, "")
		require.NoError(t, err)
		want := [][]string{
			{"Protocolo", "Assunto", "Data"},
			{"2024/0001", "Registro profissional", ""},
			{"2024/0002", "Baixa de ART", ""},
			{"2024/0003", "", "05/02/2024"},
		}
		if diff := cmp.Diff(want, got.Records()); diff != "" {
			t.Errorf("records mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("keeps other sheets", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "saida.xlsx")
		require.NoError(t, Write(path, "Despacho", protocols()))
		require.NoError(t, Append(path, "Fiscalizacao", protocols()))

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		assert.ElementsMatch(t, []string{"Despacho", "Fiscalizacao"}, f.GetSheetList())

		got, err := Read(path, "Despacho")
		require.NoError(t, err)
		assert.Len(t, got.Rows, 2)
	})
}

func TestReadMissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saida.xlsx")
	require.NoError(t, Write(path, "", protocols()))

	_, err := Read(path, "Outra")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	_, err = Read(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	assert.Error(t, err)
}
