package homework

import (
	"encoding/json"
	"strconv"
	"strings"

	"homework_status_bot/internal/domain/failure"
)

// ListKey is the response field that carries the work items.
const ListKey = "homeworks"

// Validate checks the top-level payload shape and returns the raw items
// untouched. An empty list is a valid result.
func Validate(payload any) ([]any, error) {
	response, ok := payload.(map[string]any)
	if !ok {
		return nil, &failure.ShapeError{Reason: failure.ShapeNotMapping}
	}
	raw, ok := response[ListKey]
	if !ok {
		return nil, &failure.ShapeError{Reason: failure.ShapeMissingKey, Key: ListKey}
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, &failure.ShapeError{Reason: failure.ShapeNotList, Key: ListKey}
	}
	return items, nil
}

// Parse maps one raw item to a Homework.
//
// The identifier is taken from "id" and falls back to "homework_name";
// the display name prefers "homework_name", then "name", then the identifier.
func Parse(raw any) (Homework, error) {
	item, ok := raw.(map[string]any)
	if !ok {
		return Homework{}, &failure.StatusError{Reason: failure.StatusMissingIdentifier}
	}

	id := stringField(item, "id")
	if id == "" {
		id = stringField(item, "homework_name")
	}
	if id == "" {
		return Homework{}, &failure.StatusError{Reason: failure.StatusMissingIdentifier}
	}

	status := Status(stringField(item, "status"))
	if _, known := status.Verdict(); !known {
		return Homework{}, &failure.StatusError{Reason: failure.StatusUnknown, Status: string(status)}
	}

	name := stringField(item, "homework_name")
	if name == "" {
		name = stringField(item, "name")
	}
	if name == "" {
		name = id
	}

	return Homework{ID: id, Name: name, Status: status}, nil
}

func stringField(item map[string]any, key string) string {
	switch v := item[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
