package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-docx-filler/internal/docx/docxtest"
)

func TestSegments(t *testing.T) {
	l := New(docxtest.Open(t), 3)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single run", "ФИО: ____________", []string{"____________"}},
		{"too short", "a __ b", nil},
		{"ordered by position", "И.О. Фамилия ____ / ___", []string{"И.О. Фамилия", "____", "___"}},
		{"placeholder spaced", "подпись ____ И. О. Фамилия", []string{"____", "И. О. Фамилия"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, s := range l.Segments(tt.text) {
				got = append(got, s.Text)
				assert.Equal(t, s.Text, tt.text[s.Start:s.End])
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_ClampsMinLineLength(t *testing.T) {
	l := New(docxtest.Open(t), 0)
	assert.Len(t, l.Segments("a _ b"), 1)
}

func TestByNumber(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("ФИО: ____________"),
		docxtest.P("Группа _____ курс _____"),
		docxtest.Table([]string{"Дата", "__________"}),
	)
	l := New(doc, 5)

	res, err := l.ByNumber(1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "ФИО: ____________", res.Paragraph.Text())
	assert.Equal(t, "____________", res.Segment.Text)

	res, err = l.ByNumber(3)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Группа _____ курс _____", res.Paragraph.Text())
	assert.Equal(t, len("Группа _____ курс "), res.Segment.Start)

	res, err = l.ByNumber(4)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "__________", res.Paragraph.Text())

	res, err = l.ByNumber(5)
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = l.ByNumber(0)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestByNumber_StopsAfterThreeTables(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.Table([]string{"_____"}),
		docxtest.Table([]string{"_____"}),
		docxtest.Table([]string{"_____"}),
		docxtest.Table([]string{"_____"}),
	)
	l := New(doc, 5)

	res, err := l.ByNumber(3)
	require.NoError(t, err)
	assert.NotNil(t, res)

	res, err = l.ByNumber(4)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestAnchorAfterColon(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("Наименование базы практики"),
		docxtest.P("Наименование  базы практики: ______"),
		docxtest.P("наименование базы практики: второе"),
	)
	l := New(doc, 5)

	res, err := l.AnchorAfterColon("Наименование базы практики", 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Наименование  базы практики: ______", res.Paragraph.Text())

	res, err = l.AnchorAfterColon("Наименование базы практики", 2)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "наименование базы практики: второе", res.Paragraph.Text())

	res, err = l.AnchorAfterColon("Наименование базы практики", 3)
	require.NoError(t, err)
	assert.Nil(t, res)

	_, err = l.AnchorAfterColon("", 1)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = l.AnchorAfterColon("x", -1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestAnchorAfterToken(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("Студент"),
		docxtest.P("Студент ____________ / ______________"),
	)
	l := New(doc, 5)

	res, err := l.AnchorAfterToken("студент", "", 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Студент ____________ / ______________", res.Paragraph.Text())

	res, err = l.AnchorAfterToken("студент", "#", 1)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestAnchorSegment(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("________________ ________"),
		docxtest.P("(Ф.И.О. обучающегося) подпись ______"),
	)
	l := New(doc, 5)

	res, err := l.AnchorSegment("(ф.и.о. обучающегося)", 1, 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "______", res.Segment.Text)

	res, err = l.AnchorSegment("(ф.и.о. обучающегося)", -2, 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "________________ ________", res.Paragraph.Text())
	assert.Equal(t, "________", res.Segment.Text)

	res, err = l.AnchorSegment("(ф.и.о. обучающегося)", 3, 1)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestAnchorPrev(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("(фактический адрес)"),
		docxtest.P("______________________"),
		docxtest.P("(фактический адрес)"),
	)
	l := New(doc, 5)

	res, err := l.AnchorPrev("(Фактический адрес)", 2)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "______________________", res.Paragraph.Text())

	res, err = l.AnchorPrev("(Фактический адрес)", 1)
	require.NoError(t, err)
	assert.Nil(t, res, "an anchor in the first paragraph has no previous paragraph")
}

func TestBetweenWords(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("студента ____ курса"),
		docxtest.P("группы ПИ-21"),
	)
	l := New(doc, 5)

	res, err := l.BetweenWords("Студента", "курса", 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Студента", res.Left)
	assert.Equal(t, "курса", res.Right)

	res, err = l.BetweenWords("группы", "", 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "группы ПИ-21", res.Paragraph.Text())

	res, err = l.BetweenWords("группы", "курса", 1)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		dir  string
		step int
	}{
		{"right(2)", "right", 2},
		{"Below", "below", 1},
		{" left(0) ", "left", 0},
		{"", "right", 1},
		{"up-2", "right", 1},
		{"right(x)", "right", 1},
	}
	for _, tt := range tests {
		dir, step := ParseTarget(tt.in)
		assert.Equal(t, tt.dir, dir, tt.in)
		assert.Equal(t, tt.step, step, tt.in)
	}
}

func TestTableLabel(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.Table(
			[]string{"Дата начала практики", "", "x"},
			[]string{"Дата окончания", "", "y"},
		),
	)
	l := New(doc, 5)

	tests := []struct {
		name     string
		target   string
		row, col int
		found    bool
	}{
		{"step zero is the label cell", "left(0)", 0, 0, true},
		{"default right", "", 0, 1, true},
		{"right two", "right(2)", 0, 2, true},
		{"below", "below(1)", 1, 0, true},
		{"left out of bounds", "left(1)", 0, 0, false},
		{"above out of bounds", "above", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := l.TableLabel("Дата начала практики", tt.target, 1)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, res)
				return
			}
			require.NotNil(t, res)
			assert.Equal(t, tt.row, res.Row)
			assert.Equal(t, tt.col, res.Col)
			assert.NotNil(t, res.Cell)
		})
	}

	_, err := l.TableLabel("", "right", 1)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCellRef(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.Table([]string{"a", "b"}),
		docxtest.Table([]string{"c"}, []string{"d"}),
	)
	l := New(doc, 5)

	res, err := l.CellRef(2, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "d", res.Cell.Text())

	for _, ref := range [][3]int{{0, 1, 1}, {3, 1, 1}, {1, 2, 1}, {1, 1, 3}, {1, 0, 1}} {
		res, err := l.CellRef(ref[0], ref[1], ref[2])
		require.NoError(t, err)
		assert.Nil(t, res, "%v", ref)
	}
}
