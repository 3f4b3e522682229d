package intelligence

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggest(t *testing.T) {
	page := pageOf(
		"МОСКОВСКИЙ УНИВЕРСИТЕТ",
		"СПРАВКА",
		"Выдана студенту:  Иванову",
		"Выдана студенту: Иванову",
		"Группа: ПИ-21",
		"2024",
		"Кафедра информатики",
	)

	s := Suggest(page)

	assert.Equal(t, []string{
		"МОСКОВСКИЙ УНИВЕРСИТЕТ", "СПРАВКА", "Выдана студенту: Иванову", "Выдана студенту: Иванову",
		"Группа: ПИ-21", "2024", "Кафедра информатики",
	}, s.TopLines)
	assert.Equal(t, []string{"Выдана студенту: Иванову", "Группа: ПИ-21"}, s.WithColon)
	assert.Equal(t, []string{"МОСКОВСКИЙ УНИВЕРСИТЕТ", "СПРАВКА"}, s.Uppercase)
	assert.Equal(t, []string{"Выдана студенту: Иванову", "Группа: ПИ-21", "Кафедра информатики"}, s.Keywords)

	assert.Equal(t, []string{
		"МОСКОВСКИЙ УНИВЕРСИТЕТ", "СПРАВКА",
		"Выдана студенту: Иванову", "Группа: ПИ-21",
		"Выдана студенту: Иванову",
	}, s.Required)
	assert.Equal(t, []string{"Выдана студенту: Иванову", "Выдана студенту: Иванову"}, s.Optional)
}

func TestSuggest_Limits(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("ПОЛЕ %d: практика", i))
	}
	s := Suggest(pageOf(lines...))

	assert.Len(t, s.TopLines, maxTopLines)
	assert.Len(t, s.WithColon, maxWithColon)
	assert.Len(t, s.Keywords, maxKeywords)
	assert.Empty(t, s.Uppercase)
}

func TestSuggest_EmptyPage(t *testing.T) {
	s := Suggest(nil)
	assert.Empty(t, s.TopLines)
	assert.Empty(t, s.Required)
}
