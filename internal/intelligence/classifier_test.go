package intelligence

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-docx-filler/internal/docx/docxtest"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

func newClassifier(t *testing.T, specs ...templates.TemplateSpec) *TemplateClassifier {
	t.Helper()
	reg, err := templates.NewBuilder().Add(specs...).Build()
	require.NoError(t, err)
	return NewTemplateClassifier(reg)
}

func pageOf(lines ...string) *PageText {
	page := &PageText{Lines: lines}
	raw := strings.Join(lines, "\n")
	page.Text = Fold(raw)
	page.Features.Slashes = strings.Count(raw, "/")
	page.Features.Underscores = strings.Count(raw, "_")
	for _, l := range lines {
		page.Folded = append(page.Folded, Fold(l))
	}
	return page
}

func TestClassify_ThresholdBoundary(t *testing.T) {
	doc := docxtest.Open(t, docxtest.P("ДНЕВНИК"), docxtest.P("Студент группы"))

	tests := []struct {
		name      string
		threshold int
		selected  bool
	}{
		{"score equals threshold", 10, true},
		{"score below threshold", 11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(t, templates.TemplateSpec{
				ID:     "DN",
				Detect: templates.DetectSpec{Required: []string{"дневник", "студент"}, Threshold: tt.threshold},
			})
			res, err := c.Classify(context.Background(), doc)
			require.NoError(t, err)
			assert.Equal(t, 10, res.Score)
			assert.Equal(t, "DN", res.Candidate)
			assert.Equal(t, tt.selected, res.Recognized())
			assert.Equal(t, []string{"+5 'дневник'", "+5 'студент'"}, res.Notes)
		})
	}
}

func TestClassify_DisqualifiedNeverSelected(t *testing.T) {
	strong := templates.DetectSpec{
		Required:  []string{"заявление", "ректору", "курса"},
		Optional:  []string{"группа"},
		Threshold: -2_000_000,
	}
	page := pageOf("ЗАЯВЛЕНИЕ", "Ректору", "курса группа", "Антиплагиат")

	gatesUnderTest := []struct {
		name   string
		mutate func(d *templates.DetectSpec)
		note   string
	}{
		{"hard negative", func(d *templates.DetectSpec) { d.HardNegative = []string{"антиплагиат"} }, "-INF HARD_NEG 'антиплагиат'"},
		{"must all", func(d *templates.DetectSpec) { d.MustAll = []string{"заявление", "договор"} }, "0 MUST 'договор' missing"},
		{"any of", func(d *templates.DetectSpec) { d.AnyOf = [][]string{{"дневник", "отчет"}} }, "0 ANY_OF [дневник, отчет] none present"},
		{"exact line", func(d *templates.DetectSpec) { d.MustExactLines = []string{"курса"} }, "0 MUST_LINE 'курса' no exact line"},
		{"regex", func(d *templates.DetectSpec) { d.MustRegex = []string{`^договор №`} }, "0 MUST_REGEX /^договор №/ no match"},
		{"same line", func(d *templates.DetectSpec) { d.SameLine = [][2]string{{"ректору", "курса"}} }, "0 SAME_LINE 'ректору' + 'курса' not on one line"},
	}
	for _, g := range gatesUnderTest {
		t.Run(g.name, func(t *testing.T) {
			spec := strong
			g.mutate(&spec)
			c := newClassifier(t, templates.TemplateSpec{ID: "X", Detect: spec})

			res, err := c.ClassifyPage(context.Background(), page)
			require.NoError(t, err)
			assert.False(t, res.Recognized())
			assert.Equal(t, DisqualifiedScore, res.Score)
			assert.Equal(t, "X", res.Candidate)
			assert.Equal(t, []string{g.note}, res.Notes)
		})
	}
}

func TestClassify_FirstTemplateWinsTies(t *testing.T) {
	c := newClassifier(t,
		templates.TemplateSpec{ID: "A", Detect: templates.DetectSpec{Required: []string{"договор"}, Threshold: 5}},
		templates.TemplateSpec{ID: "B", Detect: templates.DetectSpec{Required: []string{"договор"}, Threshold: 5}},
	)
	res, err := c.ClassifyPage(context.Background(), pageOf("ДОГОВОР"))
	require.NoError(t, err)
	assert.Equal(t, "A", res.TemplateID)
}

func TestClassify_ScoringSignals(t *testing.T) {
	spec := templates.TemplateSpec{
		ID: "DN",
		Detect: templates.DetectSpec{
			Required:     []string{"дневник", "тип:"},
			Optional:     []string{"кафедры"},
			Negative:     []string{"отчет"},
			SoftNegative: []string{"график"},
			Layout: map[string]int{
				templates.LayoutMustHaveSlash:  1,
				templates.LayoutMinTables:      0,
				templates.LayoutMinUnderscores: 3,
			},
			Threshold: 1,
		},
	}
	page := pageOf("Дневник", "кафедры ____ / ____", "отчет и график")

	c := newClassifier(t, spec)
	res, err := c.ClassifyPage(context.Background(), page)
	require.NoError(t, err)

	// 5 + 0 + 1 + 1 + 1 + 1 - 6 (legacy merged into soft) - 6
	assert.Equal(t, 5+1+3-12, res.Score)
	assert.Equal(t, []string{
		"+5 'дневник'",
		"0 'тип:' (required missing)",
		"+1 'кафедры'",
		"+1 has '/'",
		"+1 tables≥0",
		"+1 underscores≥3",
		"-6 SOFT_NEG 'график'",
		"-6 SOFT_NEG 'отчет'",
	}, res.Notes)
	assert.False(t, res.Recognized())
}

func TestClassify_NoTemplates(t *testing.T) {
	c := newClassifier(t)
	res, err := c.ClassifyPage(context.Background(), pageOf("anything"))
	require.NoError(t, err)
	assert.Equal(t, NoTemplateScore, res.Score)
	assert.Empty(t, res.TemplateID)
	assert.Empty(t, res.Candidate)
	assert.Empty(t, res.Notes)
}

func TestClassify_EmptyDocumentUnrecognized(t *testing.T) {
	c := NewTemplateClassifier(templates.MustBuiltinRegistry())
	res, err := c.Classify(context.Background(), docxtest.Open(t))
	require.NoError(t, err)
	assert.False(t, res.Recognized())
}

func TestClassify_CancelledContext(t *testing.T) {
	c := NewTemplateClassifier(templates.MustBuiltinRegistry())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ClassifyPage(ctx, pageOf("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify_NilDocument(t *testing.T) {
	c := NewTemplateClassifier(templates.MustBuiltinRegistry())
	_, err := c.Classify(context.Background(), nil)
	assert.Error(t, err)
}

func TestClassify_BuiltinIndividualTask(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("ИНДИВИДУАЛЬНОЕ ЗАДАНИЕ"),
		docxtest.P("на учебную практику (тип: ______________)"),
		docxtest.P("Выдано студенту ____________________"),
		docxtest.P("Сроки прохождения: с «__» ________ 202_ г. по «__» ________ 202_ г."),
	)
	c := NewTemplateClassifier(templates.MustBuiltinRegistry())
	res, err := c.Classify(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "INDZAD", res.TemplateID, res.Notes)
	assert.Equal(t, 21, res.Score)
}
