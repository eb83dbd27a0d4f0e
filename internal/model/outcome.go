package model

import "time"

type OutcomeStatus string

const (
	OutcomeDelivered      OutcomeStatus = "delivered"
	OutcomeRejected       OutcomeStatus = "rejected"
	OutcomeTransportError OutcomeStatus = "transport_error"
	OutcomeTimeout        OutcomeStatus = "timeout"
)

// Outcome is the result of one push attempt to one device.
type Outcome struct {
	Token      string        `json:"token"`
	Status     OutcomeStatus `json:"status"`
	StatusCode int           `json:"status_code,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	MessageID  string        `json:"message_id,omitempty"`
	Error      string        `json:"error,omitempty"`
	Latency    time.Duration `json:"latency"`
}

func (o Outcome) Delivered() bool { return o.Status == OutcomeDelivered }

// BatchResult aggregates the outcomes of a single dispatch. Outcomes are in
// the order of the device snapshot handed to the dispatcher.
type BatchResult struct {
	Outcomes []Outcome `json:"outcomes"`
}

func (b BatchResult) Attempted() int { return len(b.Outcomes) }

func (b BatchResult) Delivered() int {
	n := 0
	for _, o := range b.Outcomes {
		if o.Delivered() {
			n++
		}
	}
	return n
}

func (b BatchResult) Failed() int { return b.Attempted() - b.Delivered() }

// RegisterResult is reported by a registry after a registration call.
type RegisterResult struct {
	AlreadyRegistered bool
	Total             int
}

// UnregisterResult is reported by a registry after an unregistration call.
type UnregisterResult struct {
	Found bool
	Total int
}
