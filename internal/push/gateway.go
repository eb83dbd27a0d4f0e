package push

import "context"

// Receipt is what a gateway reports for one accepted request. A transport
// failure is reported as an error instead.
type Receipt struct {
	StatusCode int
	Reason     string
	MessageID  string
}

func (r Receipt) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Gateway delivers one message to one device.
type Gateway interface {
	Push(ctx context.Context, token string, msg Message) (Receipt, error)
}
