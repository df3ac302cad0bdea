// internal/domain/notification/records.go
package notification

// ErrorKey is the record key for cycle-level failures.
const ErrorKey = "__last_error__"

// Records maps a key to the last message delivered for it.
type Records map[string]string

// Detect reports whether message is due for key. When it is, the returned
// mapping is a copy of records with key set to message; otherwise records is
// returned unchanged.
func Detect(key, message string, records Records) (bool, Records) {
	if last, ok := records[key]; ok && last == message {
		return false, records
	}
	updated := make(Records, len(records)+1)
	for k, v := range records {
		updated[k] = v
	}
	updated[key] = message
	return true, updated
}
