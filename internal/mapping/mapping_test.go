package mapping

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-docx-filler/internal/docx/docxtest"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

func TestTransform(t *testing.T) {
	date := time.Date(2024, time.February, 5, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		value     any
		transform string
		want      string
	}{
		{"as is", "  x ", "AsIs", "  x "},
		{"empty name", "x", "", "x"},
		{"trim", "  x ", "trim", "x"},
		{"upper", "пи-21", "UPPER", "ПИ-21"},
		{"lower", "ПИ", "lower", "пи"},
		{"title", "иванов иван", "Title", "Иванов Иван"},
		{"initials surname", "Иванов Иван Иванович", "FIO_INITIALS_SURNAME", "И.И. Иванов"},
		{"initials two words", "Иванов Иван", "Initials", "И. Иванов"},
		{"initials one word", "Иванов", "FIO_INITIALS_SURNAME", "Иванов"},
		{"surname initials", "Иванов Иван Иванович", "SURNAME_INITIALS", "Иванов И.И."},
		{"legacy initials", "Иванов Иван Иванович", "initials", "Иванов И.И."},
		{"strftime from time", date, "date:%d.%m.%Y", "05.02.2024"},
		{"strftime from text", "2024-02-05", "date:%d.%m.%Y", "05.02.2024"},
		{"day first text", "05.02.2024", "date:%Y-%m-%d", "2024-02-05"},
		{"mask", "2024/02/05", "date(DD.MM.YYYY)", "05.02.2024"},
		{"DateDDMMYYYY", date, "DateDDMMYYYY", "05.02.2024"},
		{"unparsable date passes through", "скоро", "date:%d.%m.%Y", "скоро"},
		{"default used", "", `default("—")`, "—"},
		{"default skipped", "x", `default("—")`, "x"},
		{"unknown transform", "x", "Reverse", "x"},
		{"nil", nil, "UPPER", ""},
		{"nan", "nan", "", ""},
		{"float", 3.0, "", "3"},
		{"int", 42, "", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Transform(tt.value, tt.transform))
		})
	}
}

func TestMatch(t *testing.T) {
	rec := Record{"Курс": "3", "Группа": "ИВТ-21", "Форма": "очная"}

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"Курс=3", true},
		{"Курс = 4", false},
		{"Курс!=4", true},
		{"Курс!=3", false},
		{"Группа like ИВТ-*", true},
		{"Группа like *-21", true},
		{"Группа like *Т-2*", true},
		{"Группа like ПИ-*", false},
		{"Группа like ИВТ-21", true},
		{"Курс=3 and Форма=очная", true},
		{"Курс=3 and Форма=заочная", false},
		{"это не условие", true},
		{"Нет=", true},
		{"Нет=x", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.expr, rec), tt.expr)
	}
}

func TestRenderMask(t *testing.T) {
	rec := Record{"ФИО": "Иванов И.И.", "Группа": "ПИ/21", "Курс": 3.0}

	tests := []struct {
		mask, want string
	}{
		{"{{Группа}}_{{ФИО}}_дневник.docx", "ПИ_21_Иванов И.И._дневник.docx"},
		{"{{ ФИО }}", "Иванов И.И..docx"},
		{"{{Нет}}x.DOCX", "x.DOCX"},
		{"курс {{Курс}}: <итог>", "курс 3_ _итог_.docx"},
		{"{{фио}}.docx", ".docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RenderMask(tt.mask, rec), tt.mask)
	}
}

func formDoc(t *testing.T) []string {
	t.Helper()
	return []string{
		docxtest.P("ДНЕВНИК"),
		docxtest.P("прохождения ____________ практики"),
		docxtest.P("студента ___ курса группы ________"),
		docxtest.P("______________________________"),
		docxtest.P("(фамилия, имя, отчество полностью)"),
		docxtest.P("Наименование базы практики: ______________"),
		docxtest.P("Студент ______________ / ______________"),
		docxtest.P("ФИО: ____________"),
		docxtest.Table([]string{"Дата начала практики", ""}, []string{"Подпись", ""}),
	}
}

func TestApply(t *testing.T) {
	doc := docxtest.Open(t, formDoc(t)...)
	rec := Record{
		"ВидПрактики":  "учебной",
		"Курс":         "2",
		"Группа":       "ПИ-21",
		"ФИО":          "иванов иван иванович",
		"БазаПрактики": "ООО «Ромашка»",
		"ДатаНачала":   "2024-02-05",
	}
	rules := []templates.MappingRule{
		{Field: "ВидПрактики", Strategy: templates.StrategyBetweenWords, Anchor: "прохождения", Right: "практики"},
		{Field: "Курс", Strategy: templates.StrategyBetweenWords, Anchor: "студента", Right: "курса"},
		{Field: "Группа", Strategy: templates.StrategyBetweenWords, Anchor: "группы"},
		{Field: "ФИО", Strategy: templates.StrategyAnchorPrev, Anchor: "фамилия, имя, отчество полностью", Transform: "Title"},
		{Field: "БазаПрактики", Strategy: templates.StrategyAnchorAfterColon, Anchor: "Наименование базы практики"},
		{Field: "ФИО", Strategy: templates.StrategyAnchorAfterSlash, Anchor: "Студент", Transform: "FIO_INITIALS_SURNAME"},
		{Field: "ДатаНачала", Strategy: templates.StrategyTableLabel, Anchor: "Дата начала практики", Target: "right(1)", Transform: "date:%d.%m.%Y"},
		{Field: "Группа", Strategy: templates.StrategyCellRef, TableIndex: 1, Row: 2, Col: 2},
		{Field: "Отчество", Strategy: templates.StrategyByNumber, Number: 1, Default: "нет"},
		{Field: "ФИО", Strategy: "replace", Anchor: "x"},
		{Field: "ФИО", Strategy: templates.StrategyAnchorAfterColon, Anchor: "нет такого якоря"},
		{Field: "Пусто", Strategy: templates.StrategyByNumber, Number: 1},
		{Field: "ФИО", Strategy: templates.StrategyByNumber, Number: 1, When: "Курс=5"},
		{Field: "ФИО", Strategy: templates.StrategyByNumber, Number: 1, Malformed: "bad number"},
	}
	settings := templates.ParseSettings(map[string]string{templates.KeyMinLineLength: "3"})

	trace := Apply(doc, rec, rules, settings, false)
	require.Len(t, trace, len(rules))

	paras := doc.Paragraphs()
	assert.Equal(t, "прохождения учебной практики", paras[1].Text())
	assert.Equal(t, "студента 2 курса группы ПИ-21", paras[2].Text())
	assert.Equal(t, "Иванов Иван Иванович", paras[3].Text())
	assert.Equal(t, "Наименование базы практики: ООО «Ромашка»", paras[5].Text())
	assert.Equal(t, "Студент нет___________ / И.И. Иванов", paras[6].Text(), "by_number #1 takes the first blank still open")
	assert.Equal(t, "05.02.2024", doc.Tables()[0].Cell(0, 1).Text())
	assert.Equal(t, "ПИ-21", doc.Tables()[0].Cell(1, 1).Text())
	assert.Equal(t, "ФИО: ____________", paras[7].Text())

	assert.Contains(t, trace[0], "between_words 'прохождения'..'практики'")
	assert.Contains(t, trace[2], "'группы'..'EOL'")
	assert.Contains(t, trace[6], "[r1,c2]")
	assert.Contains(t, trace[8], "by_number #1")
	assert.Contains(t, trace[9], "UNKNOWN method 'replace'")
	assert.Contains(t, trace[10], "NOT FOUND")
	assert.Contains(t, trace[11], "empty, skipped")
	assert.Contains(t, trace[12], "condition 'Курс=5' not met")
	assert.Contains(t, trace[13], "malformed rule")
	for i, line := range trace {
		assert.True(t, strings.HasPrefix(line, "["), "line %d: %s", i, line)
	}
}

func TestApply_DryRunDoesNotMutate(t *testing.T) {
	body := formDoc(t)
	rec := Record{"ФИО": "Иванов Иван", "Группа": "ПИ-21", "ДатаНачала": "05.02.2024"}
	rules := []templates.MappingRule{
		{Field: "ФИО", Strategy: templates.StrategyByNumber, Number: 1},
		{Field: "Группа", Strategy: templates.StrategyBetweenWords, Anchor: "группы"},
		{Field: "ДатаНачала", Strategy: templates.StrategyTableLabel, Anchor: "Дата начала практики"},
		{Field: "ФИО", Strategy: templates.StrategyAnchorAfterSlash, Anchor: "Студент"},
	}
	settings := templates.DefaultSettings()

	dry := docxtest.Open(t, body...)
	before, err := dry.Bytes()
	require.NoError(t, err)
	dryTrace := Apply(dry, rec, rules, settings, true)
	after, err := dry.Bytes()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	wet := docxtest.Open(t, body...)
	wetTrace := Apply(wet, rec, rules, settings, false)
	assert.Equal(t, dryTrace, wetTrace)
}

func TestApply_FalseConditionLeavesTextUnchanged(t *testing.T) {
	doc := docxtest.Open(t, docxtest.P("ФИО: ____________"))
	rules := []templates.MappingRule{
		{Field: "ФИО", Strategy: templates.StrategyByNumber, Number: 1, When: "Форма=заочная"},
	}
	Apply(doc, Record{"ФИО": "Иванов", "Форма": "очная"}, rules, templates.DefaultSettings(), false)
	assert.Equal(t, "ФИО: ____________", doc.Paragraphs()[0].Text())
}

func TestApply_ByNumberScenario(t *testing.T) {
	doc := docxtest.Open(t, docxtest.P("ФИО: ____________"))
	rules := []templates.MappingRule{{Field: "ФИО", Strategy: templates.StrategyByNumber, Number: 1}}

	trace := Apply(doc, Record{"ФИО": "Иванов И.И."}, rules, templates.DefaultSettings(), false)

	assert.Equal(t, []string{"[1] by_number #1: '__________...' -> 'Иванов И.И.'"}, trace)
	assert.Equal(t, "ФИО: Иванов И.И._", doc.Paragraphs()[0].Text())
}
