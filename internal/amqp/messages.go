package amqp

import (
	"encoding/json"
	"time"

	"github.com/kevenbotelho/controle-pessoal/internal/core"
)

// AlertEvent is the message published when a budget alert or caixinha
// notification fires. Consumers get the full advisory; no follow-up
// fetch is needed.
type AlertEvent struct {
	Kind      string    `json:"kind"` // "orcamento" or "caixinha"
	Severity  string    `json:"severidade"`
	Message   string    `json:"mensagem"`
	RefID     string    `json:"refId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBudgetAlertEvent wraps a budget alert for publishing.
func NewBudgetAlertEvent(a core.Alert) *AlertEvent {
	return &AlertEvent{
		Kind:      "orcamento",
		Severity:  string(a.Severity),
		Message:   a.Message,
		Timestamp: time.Now(),
	}
}

// NewCaixinhaAlertEvent wraps a goal notification for publishing.
func NewCaixinhaAlertEvent(n core.Notification) *AlertEvent {
	return &AlertEvent{
		Kind:      "caixinha",
		Severity:  n.Type,
		Message:   n.Message,
		RefID:     n.CaixinhaID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e *AlertEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// AlertEventFromJSON parses an event from JSON bytes.
func AlertEventFromJSON(data []byte) (*AlertEvent, error) {
	var e AlertEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
