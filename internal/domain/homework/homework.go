// internal/domain/homework/homework.go
package homework

import "fmt"

// Status is the review state reported by the status endpoint.
type Status string

const (
	StatusApproved  Status = "approved"
	StatusReviewing Status = "reviewing"
	StatusRejected  Status = "rejected"
)

// verdicts holds the fixed phrase sent for each status. The wording is
// what existing chat consumers expect and must stay as is.
var verdicts = map[Status]string{
	StatusApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	StatusReviewing: "Работа взята на проверку ревьюером.",
	StatusRejected:  "Работа проверена: у ревьюера есть замечания.",
}

const messageTemplate = `Изменился статус проверки работы "%s". %s`

// Verdict returns the phrase for s and whether s is a known status.
func (s Status) Verdict() (string, bool) {
	v, ok := verdicts[s]
	return v, ok
}

// Homework is one tracked work item as seen in a single poll cycle.
type Homework struct {
	ID     string
	Name   string
	Status Status
}

// Message renders the chat notification for the item's current status.
func (h Homework) Message() string {
	verdict, _ := h.Status.Verdict()
	return fmt.Sprintf(messageTemplate, h.Name, verdict)
}
