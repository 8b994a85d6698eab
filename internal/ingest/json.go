package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// jsonEnvelope covers the two wrapped shapes accepted besides a bare array.
type jsonEnvelope struct {
	Data    []map[string]any `json:"data"`
	Players []map[string]any `json:"players"`
}

// parseJSON accepts a bare array of objects, {"data": [...]} or
// {"players": [...]}. Headers come from the first object, sorted for
// determinism.
func parseJSON(data []byte) ([]string, []Row, error) {
	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		var envelope jsonEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrFileCorrupted, err)
		}
		switch {
		case envelope.Data != nil:
			objects = envelope.Data
		case envelope.Players != nil:
			objects = envelope.Players
		default:
			return nil, nil, fmt.Errorf("%w: expected an array of objects, a data array or a players array", ErrFileCorrupted)
		}
	}
	if len(objects) == 0 {
		return nil, nil, ErrFileEmpty
	}

	headerSet := make(map[string]struct{})
	for key := range objects[0] {
		headerSet[key] = struct{}{}
	}
	headers := make([]string, 0, len(headerSet))
	for key := range headerSet {
		headers = append(headers, key)
	}
	sort.Strings(headers)

	rows := make([]Row, 0, len(objects))
	for _, object := range objects {
		row := make(Row, len(headers))
		for _, header := range headers {
			row[header] = jsonValue(object[header])
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

func jsonValue(v any) Value {
	switch typed := v.(type) {
	case nil:
		return Value{}
	case float64:
		return NumberValue(typed)
	case string:
		return NewValue(typed)
	case bool:
		return Value{Raw: strconv.FormatBool(typed)}
	default:
		return Value{Raw: fmt.Sprint(typed)}
	}
}
