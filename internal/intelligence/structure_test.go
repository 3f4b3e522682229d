package intelligence

import (
	"reflect"
	"strings"
	"testing"

	"github.com/a3tai/mcp-docx-filler/internal/docx/docxtest"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  a   b  ", "a b"},
		{"a  b", "a b"},
		{"a\t\nb", "a b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := Fold("ДНЕВНИК  Практики"); got != "дневник практики" {
		t.Errorf("Fold returned %q", got)
	}
}

func TestExtractFirstPage(t *testing.T) {
	doc := docxtest.Open(t,
		docxtest.P("  ДНЕВНИК  "),
		docxtest.P(""),
		docxtest.P("Студент ____ / ____"),
		docxtest.Table([]string{"Дата начала практики", " 01.02 "}),
	)

	page := ExtractFirstPage(doc)

	wantLines := []string{"ДНЕВНИК", "Студент ____ / ____", "Дата начала практики | 01.02"}
	if !reflect.DeepEqual(page.Lines, wantLines) {
		t.Fatalf("Lines = %#v, want %#v", page.Lines, wantLines)
	}
	if page.Text != "дневник студент ____ / ____ дата начала практики | 01.02" {
		t.Errorf("unexpected Text %q", page.Text)
	}
	want := Features{Slashes: 1, Underscores: 8, Tables: 1}
	if page.Features != want {
		t.Errorf("Features = %+v, want %+v", page.Features, want)
	}
	if !page.HasLine("дневник") {
		t.Error("expected exact folded line match")
	}
	if !page.SameLine("студент", "/") {
		t.Error("expected same-line pair")
	}
	if page.SameLine("", "/") || page.SameLine("студент", "") || page.SameLine("  ", "студент") {
		t.Error("an empty phrase must not match")
	}
}

func TestExtractFirstPage_Empty(t *testing.T) {
	page := ExtractFirstPage(docxtest.Open(t))
	if len(page.Lines) != 0 || page.Text != "" || page.Features != (Features{}) {
		t.Errorf("expected empty page, got %+v", page)
	}
}

func TestExtractFirstPage_Idempotent(t *testing.T) {
	doc := docxtest.Open(t, docxtest.P("ФИО: ____"), docxtest.Table([]string{"a", "b"}))
	first := ExtractFirstPage(doc)
	second := ExtractFirstPage(doc)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not idempotent: %+v vs %+v", first, second)
	}
}

func TestExtractFirstPage_BudgetAndTableCap(t *testing.T) {
	long := strings.Repeat("я", 1500)
	doc := docxtest.Open(t,
		docxtest.P(long),
		docxtest.P(long),
		docxtest.P("after budget"),
		docxtest.Table([]string{"t1"}, []string{"t1 second"}),
		docxtest.Table([]string{""}, []string{"t2"}, []string{"t2 third"}),
		docxtest.Table([]string{"t3"}),
		docxtest.Table([]string{"t4"}),
	)

	page := ExtractFirstPage(doc)
	want := []string{long, long, "t1", "t2", "t3"}
	if !reflect.DeepEqual(page.Lines, want) {
		t.Fatalf("expected the crossing paragraph and the first filled row of each table, got %#v", page.Lines)
	}
	if page.Features.Tables != MaxTables {
		t.Errorf("Tables = %d, want %d", page.Features.Tables, MaxTables)
	}
}

func TestExtractFirstPage_FewerTables(t *testing.T) {
	doc := docxtest.Open(t, docxtest.Table([]string{"a"}), docxtest.Table([]string{"b", "c"}))
	page := ExtractFirstPage(doc)
	if page.Features.Tables != 2 {
		t.Errorf("Tables = %d, want 2", page.Features.Tables)
	}
	if !reflect.DeepEqual(page.Lines, []string{"a", "b | c"}) {
		t.Errorf("Lines = %#v", page.Lines)
	}
}

func TestExtractFirstPage_Nil(t *testing.T) {
	if page := ExtractFirstPage(nil); len(page.Lines) != 0 {
		t.Error("expected empty page for nil document")
	}
}
