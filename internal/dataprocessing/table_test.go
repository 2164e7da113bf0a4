package dataprocessing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "healthstats/internal/errors"
)

func parseTable(t *testing.T, name, data string) *Table {
	t.Helper()
	table, _, err := ParseCSV(strings.NewReader(data), name, ReadOptions{})
	require.NoError(t, err)
	return table
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name        string
		data        string
		opts        ReadOptions
		wantCols    []string
		wantRows    [][]string
		wantSkipped int
		wantErr     bool
	}{
		{
			name:     "header and rows",
			data:     "a,b\n1,2\n3,4\n",
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}, {"3", "4"}},
		},
		{
			name:     "byte order mark stripped",
			data:     "\ufeffa,b\n1,2\n",
			wantCols: []string{"a", "b"},
			wantRows: [][]string{{"1", "2"}},
		},
		{
			name:     "short rows padded",
			data:     "a,b,c\n1\n",
			wantCols: []string{"a", "b", "c"},
			wantRows: [][]string{{"1", "", ""}},
		},
		{
			name:        "long rows skipped when tolerant",
			data:        "a,b\n1,2\n1,2,3\n5,6\n",
			opts:        ReadOptions{SkipMalformed: true},
			wantCols:    []string{"a", "b"},
			wantRows:    [][]string{{"1", "2"}, {"5", "6"}},
			wantSkipped: 1,
		},
		{
			name:    "long rows fail when strict",
			data:    "a,b\n1,2,3\n",
			wantErr: true,
		},
		{
			name:     "quoted commas",
			data:     "Country,Value\n\"Korea, Rep.\",1\n",
			wantCols: []string{"Country", "Value"},
			wantRows: [][]string{{"Korea, Rep.", "1"}},
		},
		{
			name:    "empty input",
			data:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, stats, err := ParseCSV(strings.NewReader(tt.data), "test.csv", tt.opts)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCols, table.Columns)
			assert.Equal(t, tt.wantRows, table.Rows)
			assert.Equal(t, tt.wantSkipped, stats.Skipped)
			assert.Equal(t, len(tt.wantRows), stats.Rows)
		})
	}
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,2\n"), 0644))

	table, _, err := ReadCSV(path, ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, path, table.Name)
	assert.Equal(t, 1, table.Len())

	_, _, err = ReadCSV(filepath.Join(dir, "missing.csv"), ReadOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrFileNotFound))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestTableOperations(t *testing.T) {
	table := parseTable(t, "people", "name,age,city\nann,30,Oslo\nbob,40,Rome\ncid,30,Oslo\n")

	t.Run("select reorders", func(t *testing.T) {
		out, err := table.Select("city", "name")
		require.NoError(t, err)
		assert.Equal(t, []string{"city", "name"}, out.Columns)
		assert.Equal(t, []string{"Oslo", "ann"}, out.Rows[0])
	})

	t.Run("select missing column", func(t *testing.T) {
		_, err := table.Select("name", "height")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
	})

	t.Run("filter keeps order", func(t *testing.T) {
		out := table.Filter(func(r Row) bool { return r.Get("age") == "30" })
		assert.Equal(t, []string{"ann", "cid"}, out.Column("name"))
	})

	t.Run("drop and rename", func(t *testing.T) {
		out := table.Drop("age", "unknown").Rename(map[string]string{"city": "town"})
		assert.Equal(t, []string{"name", "town"}, out.Columns)
		assert.Equal(t, "Rome", out.Get(1, "town"))
	})

	t.Run("map column does not mutate source", func(t *testing.T) {
		out, err := table.MapColumn("city", strings.ToUpper)
		require.NoError(t, err)
		assert.Equal(t, "OSLO", out.Get(0, "city"))
		assert.Equal(t, "Oslo", table.Get(0, "city"))
	})

	t.Run("add column", func(t *testing.T) {
		out := table.AddColumn("tag", func(r Row) string { return r.Get("name") + "-" + r.Get("age") })
		assert.Equal(t, []string{"name", "age", "city", "tag"}, out.Columns)
		assert.Equal(t, "bob-40", out.Get(1, "tag"))
		assert.Len(t, table.Columns, 3)
	})

	t.Run("unique in first appearance order", func(t *testing.T) {
		assert.Equal(t, []string{"Oslo", "Rome"}, table.Unique("city"))
	})
}

func TestMelt(t *testing.T) {
	wide := parseTable(t, "wide", "id,2000,2001\na,1,2\nb,3,4\n")

	long, err := Melt(wide, []string{"id"}, "Year", "Value")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "Year", "Value"}, long.Columns)
	assert.Equal(t, [][]string{
		{"a", "2000", "1"},
		{"b", "2000", "3"},
		{"a", "2001", "2"},
		{"b", "2001", "4"},
	}, long.Rows)

	_, err = Melt(wide, []string{"missing"}, "Year", "Value")
	assert.True(t, errors.Is(err, apperrors.ErrMissingColumn))
}

func TestInnerJoin(t *testing.T) {
	t.Run("keeps only matched keys", func(t *testing.T) {
		left := parseTable(t, "left", "Country,Year,gdp\nA,2000,1\nB,2000,2\nC,2000,3\n")
		right := parseTable(t, "right", "Country,Year,life\nB,2000,70\nA,2000,80\nD,2000,90\n")

		out, err := InnerJoin(left, right, On("Country", "Year"))
		require.NoError(t, err)
		assert.Equal(t, []string{"Country", "Year", "gdp", "life"}, out.Columns)
		assert.Equal(t, [][]string{
			{"A", "2000", "1", "80"},
			{"B", "2000", "2", "70"},
		}, out.Rows)
	})

	t.Run("duplicate keys fan out", func(t *testing.T) {
		left := parseTable(t, "left", "k,v\n1,a\n1,b\n")
		right := parseTable(t, "right", "k,w\n1,x\n1,y\n")

		out, err := InnerJoin(left, right, On("k"))
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"1", "a", "x"},
			{"1", "a", "y"},
			{"1", "b", "x"},
			{"1", "b", "y"},
		}, out.Rows)
	})

	t.Run("numeric keys compare by value", func(t *testing.T) {
		left := parseTable(t, "left", "Year,v\n2000,a\n")
		right := parseTable(t, "right", "Year,w\n2000.0,b\n")

		out, err := InnerJoin(left, right, On("Year"))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"2000", "a", "b"}}, out.Rows)
	})

	t.Run("colliding columns get suffixes", func(t *testing.T) {
		left := parseTable(t, "left", "k,v\n1,a\n")
		right := parseTable(t, "right", "k,v\n1,b\n")

		out, err := InnerJoin(left, right, On("k"))
		require.NoError(t, err)
		assert.Equal(t, []string{"k", "v_x", "v_y"}, out.Columns)
	})

	t.Run("different key names keep both", func(t *testing.T) {
		left := parseTable(t, "left", "Country,Year,life\nA,2000,80\n")
		right := parseTable(t, "right", "Country Name,Year,spend\nA,2000,5\n")

		out, err := InnerJoin(left, right, JoinSpec{
			LeftOn:  []string{"Country", "Year"},
			RightOn: []string{"Country Name", "Year"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Country", "Year_x", "life", "Country Name", "Year_y", "spend"}, out.Columns)
		assert.Equal(t, [][]string{{"A", "2000", "80", "A", "2000", "5"}}, out.Rows)
	})

	t.Run("empty keys never match", func(t *testing.T) {
		left := parseTable(t, "left", "k,v\n,a\n")
		right := parseTable(t, "right", "k,w\n,b\n")

		out, err := InnerJoin(left, right, On("k"))
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("mismatched key lists", func(t *testing.T) {
		left := parseTable(t, "left", "k\n1\n")
		_, err := InnerJoin(left, left, JoinSpec{LeftOn: []string{"k"}})
		require.Error(t, err)
	})
}
