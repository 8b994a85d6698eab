package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/clubops/gpscanon/pkg/metrics"
)

// Issue kinds.
const (
	IssueMissingColumn = "missing_column"
	IssueInvalidData   = "invalid_data"
	IssueEmptyFile     = "empty_file"
	IssueNoPlayers     = "no_players"
)

// Issue is one validation finding. Row is 1-based over data rows; zero means
// the issue concerns the whole file.
type Issue struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Row     int    `json:"row,omitempty"`
	Column  string `json:"column,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Report collects every error and warning found in a parsed file. Warnings
// never block ingestion.
type Report struct {
	IsValid  bool    `json:"isValid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Validate checks a parsed file, collecting all issues rather than stopping
// at the first. Service rows are skipped by cell checks but still counted.
func Validate(parsed *ParsedFile) *Report {
	report := &Report{}

	if len(parsed.Rows) == 0 {
		report.addError(Issue{Kind: IssueEmptyFile, Message: "file has no data rows"})
		return report.finish()
	}

	if FindPlayerColumn(parsed.Headers) == "" {
		report.addError(Issue{
			Kind:    IssueMissingColumn,
			Message: "no player name column found, expected one of: Player, Игрок, Name, Имя",
		})
	}
	if len(parsed.PlayerNames) == 0 {
		report.addError(Issue{Kind: IssueNoPlayers, Message: "no player names found in file"})
	}

	for i, row := range parsed.Rows {
		rowNum := i + 1
		if IsServiceRow(row) {
			metrics.RecordServiceRowSkipped()
			continue
		}

		for _, header := range parsed.Headers {
			value := row[header]
			if IsPlayerColumn(header) {
				continue
			}

			if value.IsEmpty() {
				report.addWarning(Issue{
					Kind:    IssueInvalidData,
					Message: fmt.Sprintf("empty value in row %d, column %q", rowNum, header),
					Row:     rowNum,
					Column:  header,
				})
				continue
			}

			if !isValidValueForColumn(header, value) {
				report.addError(Issue{
					Kind:    IssueInvalidData,
					Message: fmt.Sprintf("invalid value in row %d, column %q: %q, %s", rowNum, header, value.Raw, expectedValueMessage(header)),
					Row:     rowNum,
					Column:  header,
					Value:   value.Raw,
				})
			}

			if message, suspicious := rangeWarning(header, value); suspicious {
				report.addWarning(Issue{
					Kind:    IssueInvalidData,
					Message: fmt.Sprintf("suspicious value in row %d, column %q: %q, %s", rowNum, header, value.Raw, message),
					Row:     rowNum,
					Column:  header,
					Value:   value.Raw,
				})
			}
		}
	}

	metrics.RecordRowsValidated(len(parsed.Rows))
	return report.finish()
}

func (r *Report) addError(issue Issue) {
	r.Errors = append(r.Errors, issue)
	metrics.RecordValidationError(issue.Kind)
}

func (r *Report) addWarning(issue Issue) {
	r.Warnings = append(r.Warnings, issue)
	metrics.RecordValidationWarning(issue.Kind)
}

func (r *Report) finish() *Report {
	r.IsValid = len(r.Errors) == 0
	return r
}

var positionColumnKeywords = []string{"позиция", "позиц", "поз", "position", "pos", "роль", "role", "амплуа", "амп"}

func isPositionColumn(header string) bool {
	lower := strings.ToLower(header)
	for _, keyword := range positionColumnKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

var timeColumnKeywords = []string{"время", "врем", "time", "duration", "длительность"}

func isTimeColumn(header string) bool {
	lower := strings.ToLower(header)
	for _, keyword := range timeColumnKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// validPositions accepts the common Latin codes plus their Cyrillic
// equivalents and spelled-out forms.
var validPositions = map[string]struct{}{
	"GK": {}, "ВР": {}, "ВРАТАРЬ": {}, "GOALKEEPER": {},
	"CB": {}, "ЦЗ": {}, "ЦЕНТРАЛЬНЫЙ ЗАЩИТНИК": {}, "CENTER BACK": {},
	"LB": {}, "ЛЗ": {}, "ЛЕВЫЙ ЗАЩИТНИК": {}, "LEFT BACK": {},
	"RB": {}, "ПРАВЫЙ ЗАЩИТНИК": {}, "RIGHT BACK": {},
	"CDM": {}, "ЦОП": {}, "ЦЕНТРАЛЬНЫЙ ОПОРНЫЙ ПОЛУЗАЩИТНИК": {}, "DEFENSIVE MIDFIELDER": {},
	"CM": {}, "ЦП": {}, "ЦЕНТРАЛЬНЫЙ ПОЛУЗАЩИТНИК": {}, "CENTRAL MIDFIELDER": {},
	"CAM": {}, "ЦАП": {}, "ЦЕНТРАЛЬНЫЙ АТАКУЮЩИЙ ПОЛУЗАЩИТНИК": {}, "ATTACKING MIDFIELDER": {},
	"LM": {}, "ЛП": {}, "ЛЕВЫЙ ПОЛУЗАЩИТНИК": {}, "LEFT MIDFIELDER": {},
	"RM": {}, "ПП": {}, "ПРАВЫЙ ПОЛУЗАЩИТНИК": {}, "RIGHT MIDFIELDER": {},
	"LW": {}, "ЛВ": {}, "ЛЕВЫЙ ВИНГЕР": {}, "LEFT WINGER": {},
	"RW": {}, "ПВ": {}, "ПРАВЫЙ ВИНГЕР": {}, "RIGHT WINGER": {},
	"ST": {}, "ЦН": {}, "ЦЕНТРАЛЬНЫЙ НАПАДАЮЩИЙ": {}, "STRIKER": {},
	"CF": {}, "ЦФ": {}, "ЦЕНТРАЛЬНЫЙ ФОРВАРД": {}, "CENTER FORWARD": {},
	"WF": {}, "ВФ": {}, "ВИНГЕР-ФОРВАРД": {}, "WING FORWARD": {},
	"FB": {}, "ЗАЩ": {}, "ЗАЩИТНИК": {}, "FULLBACK": {},
	"MF": {}, "ПЗ": {}, "ПОЛУЗАЩИТНИК": {}, "MIDFIELDER": {},
	"W": {}, "ВИНГЕР": {}, "WINGER": {},
	"S": {}, "НАПАДАЮЩИЙ": {},
}

func isValidPosition(value Value) bool {
	if value.IsNumber {
		return value.Num >= 1 && value.Num <= 11
	}
	str := strings.ToUpper(strings.TrimSpace(value.Raw))
	if n, err := strconv.Atoi(str); err == nil {
		return n >= 1 && n <= 11
	}
	_, ok := validPositions[str]
	return ok
}

func isValidTime(value Value) bool {
	if value.IsNumber {
		return value.Num >= 0
	}
	_, ok := ClockSeconds(value.Raw)
	return ok
}

func isValidValueForColumn(header string, value Value) bool {
	if isPositionColumn(header) {
		return isValidPosition(value)
	}
	if isTimeColumn(header) {
		return isValidTime(value)
	}
	return value.IsNumber
}

func expectedValueMessage(header string) string {
	if isPositionColumn(header) {
		return "expected a position (1-11 or a code such as GK, CB, LB, RB, CM, ST)"
	}
	if isTimeColumn(header) {
		return "expected a time (seconds or HH:MM[:SS])"
	}
	return "expected a number"
}

// Range sanity bounds for the warning checks.
const (
	maxDistanceMeters = 50000
	maxSpeedMS        = 15
	minHeartRateBPM   = 30
	maxHeartRateBPM   = 220
	maxTimeSeconds    = 14400
	maxAccelerationMS = 15
	maxLoadAU         = 1000
	maxCount          = 10000
)

// rangeWarning flags physically implausible values. The column category is
// inferred from header keywords; the first matching category wins.
func rangeWarning(header string, value Value) (string, bool) {
	num, ok := value.Float()
	if !ok {
		return "", false
	}

	lower := strings.ToLower(header)
	switch {
	case strings.Contains(lower, "distance") || strings.Contains(lower, "дистанция"):
		if num < 0 {
			return "distance cannot be negative", true
		}
		if num > maxDistanceMeters {
			return "distance above 50km", true
		}
	case strings.Contains(lower, "speed") || strings.Contains(lower, "скорость"):
		if num < 0 {
			return "speed cannot be negative", true
		}
		if num > maxSpeedMS {
			return "speed above 15 m/s", true
		}
	case strings.Contains(lower, "heart") || strings.Contains(lower, "hr") || strings.Contains(lower, "пульс"):
		if num < minHeartRateBPM {
			return "heart rate below 30 bpm", true
		}
		if num > maxHeartRateBPM {
			return "heart rate above 220 bpm", true
		}
	case strings.Contains(lower, "time") || strings.Contains(lower, "duration") || strings.Contains(lower, "время"):
		if num < 0 {
			return "time cannot be negative", true
		}
		if num > maxTimeSeconds {
			return "time above 4 hours", true
		}
	case strings.Contains(lower, "acceleration") || strings.Contains(lower, "acc") || strings.Contains(lower, "ускорение"):
		if math.Abs(num) > maxAccelerationMS {
			return "acceleration above 15 m/s^2", true
		}
	case strings.Contains(lower, "load") || strings.Contains(lower, "нагрузка"):
		if num < 0 {
			return "load cannot be negative", true
		}
		if num > maxLoadAU {
			return "load above 1000 AU", true
		}
	case strings.Contains(lower, "count") || strings.Contains(lower, "entries") || strings.Contains(lower, "количество"):
		if num < 0 {
			return "count cannot be negative", true
		}
		if num > maxCount {
			return "count above 10000", true
		}
	case strings.Contains(lower, "%") || strings.Contains(lower, "percent") || strings.Contains(lower, "процент"):
		if num < 0 || num > 100 {
			return "percentage outside 0-100", true
		}
	}
	return "", false
}
