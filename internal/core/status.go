package core

import "fmt"

// Status is the closed enumeration of order statuses. The keys are the wire
// values the backend stores; display labels are Portuguese.
type Status string

const (
	StatusPlaced    Status = "OrderPlaced"
	StatusConfirmed Status = "Confirmed"
	StatusFinished  Status = "Finished"
)

var statusLabels = map[Status]string{
	StatusPlaced:    "Pedido Realizado",
	StatusConfirmed: "Pedido Confirmado",
	StatusFinished:  "Concluído",
}

// Statuses returns all statuses in their conventional order.
func Statuses() []Status {
	return []Status{StatusPlaced, StatusConfirmed, StatusFinished}
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display label for s, or the raw key when unknown.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseStatus accepts either a status key or its display label, the same way
// the dashboard does. Empty input defaults to StatusPlaced.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return StatusPlaced, nil
	}
	s := Status(raw)
	if s.Valid() {
		return s, nil
	}
	for key, label := range statusLabels {
		if label == raw {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", raw)
}

// ValidTransition reports whether an order may move from one status to
// another. Every transition between valid statuses is currently allowed —
// back-office users correct statuses freely — but all status changes funnel
// through here, so tightening the rules later is a one-function change.
func ValidTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}
