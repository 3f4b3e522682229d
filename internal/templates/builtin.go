package templates

import "strings"

// Builtin returns the built-in catalog of the university's practice and
// thesis forms, in registration order. Specific forms come before the
// generic ones they would otherwise be mistaken for.
func Builtin() []TemplateSpec {
	return []TemplateSpec{
		diary(),
		reference(),
		individualTask(),
		jointSchedule(),
		reportTitle(),
		contractNew(),
		contractOld(),
		genericApplication(),
		thesisTitle(),
		thesisTaskV1(),
		thesisTaskV2(),
		diplomaSupplement(),
		antiplagiarism(),
		libraryConsent(),
		holidayWaiver(),
		personalDataSheet(),
		acknowledgementSheet(),
	}
}

// MustBuiltinRegistry builds the built-in catalog alone. The catalog is
// static, so a failure is a programming error.
func MustBuiltinRegistry() *Registry {
	reg, err := NewBuilder().Add(Builtin()...).Build()
	if err != nil {
		panic(err)
	}
	return reg
}

func formSettings(mask string, globs ...string) map[string]string {
	s := map[string]string{
		KeyFilenameMask:  mask,
		KeyMinLineLength: "3",
		KeyLengthPolicy:  PolicyUnderlineKeepLine,
	}
	if len(globs) > 0 {
		s[KeyFilenameGlobs] = strings.Join(globs, ";")
	}
	return s
}

func between(field, left, right string, occur int) MappingRule {
	return MappingRule{Field: field, Strategy: StrategyBetweenWords, Anchor: left, Right: right, Occur: occur}
}

func afterColon(field, anchor, transform string) MappingRule {
	return MappingRule{Field: field, Strategy: StrategyAnchorAfterColon, Anchor: anchor, Occur: 1, Transform: transform}
}

func afterSlash(field, anchor, transform string) MappingRule {
	return MappingRule{Field: field, Strategy: StrategyAnchorAfterSlash, Anchor: anchor, Token: "/", Occur: 1, Transform: transform}
}

func prev(field, anchor, transform string) MappingRule {
	return MappingRule{Field: field, Strategy: StrategyAnchorPrev, Anchor: anchor, Occur: 1, Transform: transform}
}

func diary() TemplateSpec {
	return TemplateSpec{
		ID:   "DN",
		Name: "Дневник практики",
		Detect: DetectSpec{
			Required: []string{"дневник", "тип:", "наименование базы практики", "срок прохождения практики", "студент"},
			Optional: []string{
				"руководитель практики от организации (вуза)",
				"руководитель практики от профильной организации",
				"фамилия, имя, отчество полностью",
			},
			Negative: []string{
				"график", "совместный график", "индивидуальное задание",
				"отчет", "отчёт", "титул отчета", "характеристика", "договор",
			},
			Layout:    map[string]int{LayoutMustHaveSlash: 1, LayoutMinTables: 1, LayoutMinUnderscores: 3},
			Threshold: 20,
			MustAll:   []string{"дневник", "наименование базы практики", "срок прохождения практики"},
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_дневник.docx", "*дневник*.docx"),
		Mapping: []MappingRule{
			between("ВидПрактики", "прохождения", "практики", 1),
			between("ТипПрактики", "тип:", ")", 1),
			between("Курс", "студента", "курса", 1),
			between("Группа", "группы", "", 1),
			between("Кафедра", "кафедры", "", 1),
			prev("ФИО", "фамилия, имя, отчество полностью", "Title"),
			afterSlash("РукПрофОрг", "Руководитель практики от профильной организации", "FIO_INITIALS_SURNAME"),
			afterSlash("РукВуз", "Руководитель практики от организации (вуза)", "FIO_INITIALS_SURNAME"),
			afterSlash("ФИО", "Студент", "FIO_INITIALS_SURNAME"),
			afterColon("БазаПрактики", "Наименование базы практики", ""),
			afterColon("Срок", "Срок прохождения практики", ""),
			{
				Field: "ДатаНачала", Strategy: StrategyTableLabel, Anchor: "Дата начала практики",
				Target: "left(0)", Occur: 1, Transform: "date:%d.%m.%Y",
			},
		},
	}
}

func reference() TemplateSpec {
	return TemplateSpec{
		ID:   "HARAKT",
		Name: "Характеристика",
		Detect: DetectSpec{
			MustExactLines: []string{"ХАРАКТЕРИСТИКА"},
			Required: []string{
				"настоящая характеристика дана",
				"проходившему (шей) учебную практику",
				"за время прохождения практики изучил(а):",
				"в период прохождения практики решались следующие задачи:",
			},
			Optional: []string{
				"результат работы обучающегося",
				"руководитель практики от профильной организации",
				"(наименование организации)",
				"(фактический адрес)",
			},
			Negative: []string{
				"выпускная квалификационная работа", "заявление", "электронно-библиотечной системе",
				"дополнительные сведения", "договор", "индивидуальное задание", "задание",
				"дневник", "титульный лист", "совместный рабочий график",
			},
			Layout:    map[string]int{LayoutMinUnderscores: 1},
			Threshold: 12,
		},
		Settings: formSettings("характеристика_{{ФИО}}.docx"),
		Mapping: []MappingRule{
			prev("ФИО", "(Ф.И.О. обучающегося)", "Title"),
			between("ТипПрактикиКоротко", "Проходившему (шей) учебную практику (тип:", ")", 1),
			prev("Организация", "(наименование организации)", "AsIs"),
			prev("Адрес", "(фактический адрес)", "AsIs"),
			afterSlash("РукПрофОргКоротко", "Руководитель практики от профильной организации", "Initials"),
		},
	}
}

func individualTask() TemplateSpec {
	return TemplateSpec{
		ID:   "INDZAD",
		Name: "Индивидуальное задание",
		Detect: DetectSpec{
			MustExactLines: []string{"ИНДИВИДУАЛЬНОЕ ЗАДАНИЕ"},
			Required:       []string{"ИНДИВИДУАЛЬНОЕ ЗАДАНИЕ", "(тип:", "Выдано студенту", "Сроки прохождения:"},
			MustRegex:      []string{`Сроки прохождения:\s*с .*202_ г\.\s*по.*202_ г\.`},
			HardNegative:   []string{"выпускная квалификационная работа"},
			SoftNegative:   []string{"дневник", "задание на вкр", "титульный лист", "график", "договор", "отчет", "отчёт"},
			Layout:         map[string]int{LayoutMinUnderscores: 2},
			Threshold:      10,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_инд_задание.docx"),
	}
}

func jointSchedule() TemplateSpec {
	return TemplateSpec{
		ID:   "SOVGRAF",
		Name: "Совместный рабочий график (план)",
		Detect: DetectSpec{
			MustExactLines: []string{"СОВМЕСТНЫЙ РАБОЧИЙ ГРАФИК (ПЛАН)"},
			Required:       []string{"СОВМЕСТНЫЙ РАБОЧИЙ ГРАФИК (ПЛАН)", "(тип:", "Направление подготовки:", "________ практики"},
			MustRegex:      []string{`Срок прохождения практики:\s*с .*202_ г\.\s*по .*202_ г\.`},
			HardNegative:   []string{"выпускная квалификационная работа"},
			SoftNegative:   []string{"задание", "индивидуальное задание", "титульный лист", "отчет", "отчёт", "дневник"},
			Layout:         map[string]int{LayoutMinTables: 1},
			Threshold:      10,
		},
		Settings: formSettings("график_{{Группа}}.docx"),
	}
}

func reportTitle() TemplateSpec {
	return TemplateSpec{
		ID:   "TITLE_OTCH",
		Name: "Титульный лист отчёта",
		Detect: DetectSpec{
			Required: []string{"отчет", "направление подготовки", "руководитель"},
			Optional: []string{"автор", "студент", "группа", "форма обучения"},
			Negative: []string{
				"график", "совместный", "индивидуальное задание", "дневник",
				"задание на вкр", "выпускная квалификационная работа",
			},
			Layout:    map[string]int{LayoutMinUnderscores: 1},
			Threshold: 12,
			MustAll:   []string{"отчет"},
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_титул_отчета.docx"),
	}
}

func contractNew() TemplateSpec {
	return TemplateSpec{
		ID:   "DOG_NEW",
		Name: "Договор (новая форма)",
		Detect: DetectSpec{
			MustExactLines: []string{"ДОГОВОР № ____________"},
			Required:       []string{"договор", "Полное наименование организации:", "ИНН", "Адреса, реквизиты и подписи Сторон"},
			Optional: []string{
				"Приложение 1 к договору", "Приложение 2 к договору",
				"Профильная организация", "Университет", "Проректор по развитию",
			},
			Negative:  []string{"дневник", "задание", "титул", "график", "отчет", "отчёт"},
			Layout:    map[string]int{LayoutMinUnderscores: 3},
			Threshold: 4,
			MustAll:   []string{"договор"},
		},
		Settings: formSettings("договор_новый_{{ФИО}}.docx", "*договор*тз*.docx", "*договор новый*.docx"),
		Mapping: []MappingRule{
			between("БазаПрактики", "1.", "именуемая", 1),
			between("РукПрофОрг", "2.", ", действующего(ей)", 1),
			between("ДатаСозданияОрг", "3.", "г.", 1),
			between("БазаПрактики", "уставом ", "", 1),
			between("БазаПрактики", "1.", "", 2),
			between("БазаПрактики", ", уставом 1.", "", 1),
		},
	}
}

func contractOld() TemplateSpec {
	return TemplateSpec{
		ID:   "DOG_OLD",
		Name: "Договор (старая форма)",
		Detect: DetectSpec{
			Required:  []string{"договор"},
			Optional:  []string{"предмет договора", "стороны", "исполнитель", "заказчик"},
			Negative:  []string{"дневник", "задание", "титул", "график", "отчет"},
			Threshold: 7,
			MustAll:   []string{"договор"},
		},
		Settings: formSettings("договор_старый_{{ФИО}}.docx"),
	}
}

func genericApplication() TemplateSpec {
	return TemplateSpec{
		ID:   "ZAYAV_GEN",
		Name: "Заявление (общее)",
		Detect: DetectSpec{
			MustExactLines: []string{"ЗАЯВЛЕНИЕ"},
			Required:       []string{"ЗАЯВЛЕНИЕ", "От обучающегося"},
			Optional: []string{
				"Ректору", "группа", "курса", "Направление подготовки", "Профиль",
				"(ФИО, должность руководителя ВКР)",
			},
			HardNegative: []string{
				"Антиплагиат", "электронно-библиотечной системе",
				"Дополнительные сведения", "ВЫПУСКНАЯ КВАЛИФИКАЦИОННАЯ РАБОТА",
			},
			SoftNegative: []string{"ИНДИВИДУАЛЬНОЕ ЗАДАНИЕ", "ДНЕВНИК", "ГРАФИК", "ТИТУЛЬНЫЙ", "ОЗНАКОМИТЕЛЬНЫЙ ЛИСТ"},
			Layout:       map[string]int{LayoutMinUnderscores: 2},
			Threshold:    9,
		},
		Settings: formSettings("заявление_{{ФИО}}.docx"),
	}
}

func thesisTitle() TemplateSpec {
	return TemplateSpec{
		ID:   "TITLE_VKR",
		Name: "Титульный лист ВКР",
		Detect: DetectSpec{
			Required: []string{
				"«МОСКОВСКИЙ МЕЖДУНАРОДНЫЙ УНИВЕРСИТЕТ»",
				"ВЫПУСКНАЯ КВАЛИФИКАЦИОННАЯ РАБОТА",
				"Направление подготовки:",
				"на тему:",
				"Автор работы:",
				"студент группы",
			},
			Optional:  []string{"Руководитель работы:", "Заведующий выпускающей кафедрой:"},
			Negative:  []string{"график", "совместный", "дневник", "индивидуальное задание", "заявление", "отчет", "отчёт"},
			Layout:    map[string]int{LayoutMinUnderscores: 1},
			Threshold: 25,
			MustAll:   []string{"ВЫПУСКНАЯ КВАЛИФИКАЦИОННАЯ РАБОТА", "на тему:", "Автор работы:"},
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_титул.docx"),
		Mapping: []MappingRule{
			afterColon("Направление", "Направление подготовки", ""),
			afterColon("Тема", "на тему", ""),
			afterColon("ФИО", "Автор работы", "Title"),
			between("Группа", "студент группы", "", 1),
			between("Форма", "форма обучения", "", 1),
			afterColon("Руководитель", "Руководитель работы", "Title"),
			afterColon("ЗавКафедрой", "Заведующий выпускающей кафедрой", "Title"),
		},
	}
}

func thesisTaskV1() TemplateSpec {
	return TemplateSpec{
		ID:   "ZAD1",
		Name: "Задание на ВКР (вариант 1)",
		Detect: DetectSpec{
			MustAll:  []string{"ЗАДАНИЕ", "на выпускную квалификационную работу"},
			Required: []string{"Студенту", "Тема выпускной квалификационной работы:"},
			Optional: []string{
				"Направление подготовки:",
				"Руководитель выпускной квалификационной работы:",
				"Задание принял к исполнению:",
				"Срок сдачи студентом законченной работы",
			},
			Negative:     []string{"ЗАДАНИЕ по подготовке", "Обучающемуся", "Тема:", "Научный руководитель:"},
			SoftNegative: []string{"характеристика", "дневник", "совместный рабочий график"},
			Layout:       map[string]int{LayoutMinUnderscores: 2},
			Threshold:    13,
		},
		Settings: formSettings("задание1_{{ФИО}}.docx"),
		Mapping: []MappingRule{
			{Field: "Курс", Strategy: StrategyBetweenWords, Anchor: "Студенту", Right: "курса", Transform: "AsIs"},
			{Field: "Группа", Strategy: StrategyBetweenWords, Anchor: "группы", Transform: "AsIs"},
			afterColon("ТемаВКР", "Тема выпускной квалификационной работы", "AsIs"),
			afterColon("Направление", "Направление подготовки", "AsIs"),
			afterColon("РукВКР", "Руководитель выпускной квалификационной работы", "Title"),
			afterSlash("ФИОКоротко", "Задание принял к исполнению", "Initials"),
			afterColon("ДатаСдачи", "Срок сдачи студентом законченной работы", "DateDDMMYYYY"),
		},
	}
}

func thesisTaskV2() TemplateSpec {
	return TemplateSpec{
		ID:   "ZAD2",
		Name: "Задание на ВКР (вариант 2)",
		Detect: DetectSpec{
			Required:  []string{"ЗАДАНИЕ", "по подготовке", "Обучающемуся", "Тема:", "Научный руководитель:"},
			Optional:  []string{"Задание принял к исполнению:", "Срок сдачи исполнителем законченной работы"},
			Negative:  []string{"ДНЕВНИК"},
			Layout:    map[string]int{LayoutMinUnderscores: 3},
			Threshold: 9,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_задание2.docx"),
		Mapping: []MappingRule{
			between("ФИО", "Обучающемуся", "", 1),
			afterColon("Тема", "Тема", ""),
			afterColon("Руководитель", "Научный руководитель", "Title"),
		},
	}
}

func diplomaSupplement() TemplateSpec {
	return TemplateSpec{
		ID:   "DOPSVE",
		Name: "Заявление: Дополнительные сведения к диплому",
		Detect: DetectSpec{
			Required:  []string{"заявление", "дополнительные сведения", "ректору", "приложения к диплому"},
			Optional:  []string{"(ф.и.о. обучающегося)", "курса", "учебная группа", "направление подготовки", "профиль"},
			Negative:  []string{"каникул", "отказываюсь от предоставления", "последипломного отпуска"},
			Layout:    map[string]int{LayoutMinTables: 1, LayoutMinUnderscores: 3},
			Threshold: 20,
			MustAll:   []string{"дополнительные сведения"},
			AnyOf:     [][]string{{"приложения к диплому", "к диплому"}},
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_доп_сведения.docx",
			"*доп*свед*.docx", "*доп_сведения*.docx", "*доп сведения*.docx"),
		Mapping: []MappingRule{
			// "replace" is not a locate strategy; the driver reports it.
			{Field: "ФИО", Strategy: "replace", Anchor: "от обучающегося", Right: "курса", Occur: 1},
			between("Курс", "курса", "формы обучения", 1),
			between("Группа", "группы", "курса", 1),
			between("Направление", "Направление подготовки", "профиль", 1),
			between("Профиль", "профиль", "приложение", 1),
			prev("ФИО", "(Ф.И.О. обучающегося)", ""),
			afterSlash("ФИО", "(расшифровка подписи)", "FIO_INITIALS_SURNAME"),
		},
	}
}

func antiplagiarism() TemplateSpec {
	return TemplateSpec{
		ID:   "AP2",
		Name: "Заявление на АП (Антиплагиат)",
		Detect: DetectSpec{
			Required:  []string{"Заявление", "С фактом проверки", "Антиплагиат"},
			Optional:  []string{"От обучающегося", "(ФИО, должность руководителя ВКР)"},
			Negative:  []string{"ЭБС", "ЗАДАНИЕ"},
			Layout:    map[string]int{LayoutMinUnderscores: 2},
			Threshold: 8,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_АП.docx"),
	}
}

func libraryConsent() TemplateSpec {
	return TemplateSpec{
		ID:   "EBS",
		Name: "Заявление/Согласие на размещение в ЭБС",
		Detect: DetectSpec{
			Required: []string{
				"ЗАЯВЛЕНИЕ/СОГЛАСИЕ", "электронно-библиотечной системе",
				"предоставляю выпускную квалификационную работу на тему",
			},
			Optional:  []string{"Ректору", "(ФИО обучающегося)", "(номер группы)"},
			Negative:  []string{"Антиплагиат"},
			Layout:    map[string]int{LayoutMinTables: 1},
			Threshold: 9,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_ЭБС.docx"),
	}
}

func holidayWaiver() TemplateSpec {
	return TemplateSpec{
		ID:   "KANIK",
		Name: "Заявление на каникулы",
		Detect: DetectSpec{
			Required: []string{"заявление", "отказываюсь от предоставления мне каникул"},
			Optional: []string{"последипломного отпуска", "тел.", "e-mail"},
			Negative: []string{
				"дополнительные сведения", "приложения к диплому",
				"электронно-библиотечной системе", "антиплагиат",
			},
			Layout:    map[string]int{LayoutMinUnderscores: 2},
			Threshold: 9,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_каникулы.docx"),
	}
}

func personalDataSheet() TemplateSpec {
	return TemplateSpec{
		ID:   "LSL",
		Name: "Лист согласования личных сведений",
		Detect: DetectSpec{
			Required:  []string{"Лист согласования личных сведений", "ФИО по паспорту:", "Для иностранных граждан"},
			Optional:  []string{"«МОСКОВСКИЙ МЕЖДУНАРОДНЫЙ УНИВЕРСИТЕТ»", "MOSCOW INTERNATIONAL UNIVERSITY"},
			Negative:  []string{"ОЗНАКОМИТЕЛЬНЫЙ ЛИСТ"},
			Layout:    map[string]int{LayoutMinUnderscores: 2, LayoutMinTables: 1},
			Threshold: 9,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_лист_согласования.docx"),
	}
}

func acknowledgementSheet() TemplateSpec {
	return TemplateSpec{
		ID:   "OZN",
		Name: "Ознакомительный лист",
		Detect: DetectSpec{
			Required:  []string{"ОЗНАКОМИТЕЛЬНЫЙ ЛИСТ", "Перечень документов Университета"},
			Optional:  []string{"Подписать ознакомительный лист необходимо до дня проведения ГИА."},
			Negative:  []string{"ЗАДАНИЕ", "ДНЕВНИК"},
			Layout:    map[string]int{LayoutMinTables: 1},
			Threshold: 9,
		},
		Settings: formSettings("{{Группа}}_{{ФИО}}_ознакомительный_лист.docx"),
	}
}
