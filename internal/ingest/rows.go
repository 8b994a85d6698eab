package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// Value is one parsed cell. Raw always carries the original text; Num is
// populated when the cell reads as a number, comma decimals included.
type Value struct {
	Raw      string
	Num      float64
	IsNumber bool
}

// Row maps column headers to cell values.
type Row map[string]Value

// IsEmpty reports whether the cell is blank or a dash placeholder.
func (v Value) IsEmpty() bool {
	s := strings.TrimSpace(v.Raw)
	return s == "" || s == "-"
}

// Float returns the numeric reading of the cell.
func (v Value) Float() (float64, bool) {
	return v.Num, v.IsNumber
}

var commaDecimalPattern = regexp.MustCompile(`^-?\d+,\d+$`)

// NewValue builds a Value from raw cell text, detecting numbers. A single
// comma between digits is read as a decimal separator.
func NewValue(raw string) Value {
	s := strings.TrimSpace(raw)
	candidate := s
	if commaDecimalPattern.MatchString(s) {
		candidate = strings.Replace(s, ",", ".", 1)
	}
	if num, err := strconv.ParseFloat(candidate, 64); err == nil {
		return Value{Raw: raw, Num: num, IsNumber: true}
	}
	return Value{Raw: raw}
}

// NumberValue builds a Value from an already numeric cell.
func NumberValue(num float64) Value {
	return Value{
		Raw:      strconv.FormatFloat(num, 'f', -1, 64),
		Num:      num,
		IsNumber: true,
	}
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ClockSeconds reads HH:MM or HH:MM:SS into seconds. Minutes and seconds
// must stay below 60.
func ClockSeconds(s string) (float64, bool) {
	groups := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if groups == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(groups[1])
	minutes, _ := strconv.Atoi(groups[2])
	seconds := 0
	if groups[3] != "" {
		seconds, _ = strconv.Atoi(groups[3])
	}
	if minutes >= 60 || seconds >= 60 {
		return 0, false
	}
	return float64(hours*3600 + minutes*60 + seconds), true
}

// playerColumnSynonyms identify the column carrying player names, matched by
// lowercase containment.
var playerColumnSynonyms = []string{"player", "игрок", "name", "имя"}

// IsPlayerColumn reports whether a header names the player column.
func IsPlayerColumn(header string) bool {
	lower := strings.ToLower(header)
	for _, synonym := range playerColumnSynonyms {
		if strings.Contains(lower, synonym) {
			return true
		}
	}
	return false
}

// FindPlayerColumn returns the first header naming the player column, or "".
func FindPlayerColumn(headers []string) string {
	for _, header := range headers {
		if IsPlayerColumn(header) {
			return header
		}
	}
	return ""
}

// ExtractPlayerNames collects distinct non-blank names from player columns,
// in first-seen order. Aggregate and placeholder rows are not players.
func ExtractPlayerNames(headers []string, rows []Row) []string {
	var nameColumns []string
	for _, header := range headers {
		if IsPlayerColumn(header) {
			nameColumns = append(nameColumns, header)
		}
	}

	seen := make(map[string]struct{})
	var names []string
	for _, row := range rows {
		if IsServiceRow(row) {
			continue
		}
		for _, column := range nameColumns {
			value := row[column]
			name := strings.TrimSpace(value.Raw)
			if name == "" || value.IsNumber {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// serviceRowValues mark aggregate and placeholder rows that carry no player
// data. Matched by lowercase containment against the player cell.
var serviceRowValues = []string{
	"среднее", "среднее значение", "среднее знач", "средн", "сред",
	"сумма", "сум", "сумм", "суммарное", "суммарное значение",
	"итого", "итог", "итоговое", "итоговое значение",
	"всего", "всего игроков", "общее", "общее значение",
	"среднеарифметическое", "среднеарифм", "среднеариф",
	"агрегат", "агрегация", "агрегированное",
	"статистика", "стат", "статистические данные",
	"результат", "результаты", "результ",
	"не применимо", "не применим", "нет данных",
	"пусто", "пустая строка", "пустая",
	"заголовок", "заголовки", "подвал", "подвал таблицы",
	"average", "avg", "mean",
	"sum", "total", "tot",
	"aggregate", "agg",
	"statistics", "stats",
	"result", "results",
	"summary", "summ", "краткое",
	"overview", "обзор", "сводка",
	"header", "footer",
	"not applicable", "empty", "blank",
	"moyenne", "promedio", "durchschnitt", "media", "gemiddelde",
}

// servicePlaceholders are matched exactly so hyphenated player names
// survive.
var servicePlaceholders = map[string]struct{}{
	"-": {}, "—": {}, "–": {}, "n/a": {}, "na": {},
}

// IsServiceRow reports whether a row is an aggregate or placeholder row.
// Rows whose cells are all blank count as service rows too.
func IsServiceRow(row Row) bool {
	allEmpty := true
	for _, value := range row {
		if !value.IsEmpty() {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		return true
	}

	for header, value := range row {
		if !IsPlayerColumn(header) {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(value.Raw))
		if name == "" {
			continue
		}
		if _, ok := servicePlaceholders[name]; ok {
			return true
		}
		for _, service := range serviceRowValues {
			if strings.Contains(name, service) {
				return true
			}
		}
	}
	return false
}
