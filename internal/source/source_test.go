package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
)

func TestRead(t *testing.T) {
	in := "Latitude,Longitude,Accuracy\n" +
		"1.5,2.5,10\n" +
		",,\n" +
		"3.5,4.5,\n"

	tbl, err := Read(strings.NewReader(in), "events.csv", core.SourceEvents)
	require.NoError(t, err)

	assert.Equal(t, core.SourceEvents, tbl.Source)
	assert.Equal(t, []string{"Latitude", "Longitude", "Accuracy"}, tbl.Header)
	require.Len(t, tbl.Rows, 2, "blank rows are skipped")
	assert.Equal(t, 2, tbl.Rows[0].Line)
	assert.Equal(t, []string{"1.5", "2.5", "10"}, tbl.Rows[0].Cells)
	assert.Equal(t, 4, tbl.Rows[1].Line)
	assert.Empty(t, tbl.Errors)
}

func TestRead_RaggedRows(t *testing.T) {
	in := "a,b,c\n1,2\n1,2,3,4\n"

	tbl, err := Read(strings.NewReader(in), "x.csv", core.SourceMedia)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Len(t, tbl.Rows[0].Cells, 2)
	assert.Len(t, tbl.Rows[1].Cells, 4)
}

func TestRead_QuotedMultiline(t *testing.T) {
	in := "title,description\n\"A\",\"line one\nline two\"\n\"B\",\"x\"\n"

	tbl, err := Read(strings.NewReader(in), "x.csv", core.SourceMedia)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "line one\nline two", tbl.Rows[0].Cells[1])
	assert.Equal(t, 4, tbl.Rows[1].Line)
}

func TestRead_Empty(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"zero bytes", ""},
		{"blank header", ",,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), "x.csv", core.SourceMedia)
			require.Error(t, err)
			assert.True(t, errors.Is(err, diag.ErrEmptyInput))
		})
	}
}

func TestRead_HeaderOnly(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b\n"), "x.csv", core.SourceMedia)
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.csv")
	require.NoError(t, os.WriteFile(path, []byte("latitude,longitude\n1,2\n"), 0644))

	tbl, err := ReadFile(path, core.SourceMedia)
	require.NoError(t, err)
	assert.Equal(t, path, tbl.File)
	assert.Len(t, tbl.Rows, 1)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), core.SourceMedia)
	require.Error(t, err)
	assert.True(t, errors.Is(err, diag.ErrUnreadableFile))
	assert.Equal(t, 4, diag.ExitCode(err))
}
