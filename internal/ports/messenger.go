package ports

import "context"

// Outcome reported by the messaging relay.
type SendResult struct {
	Success    bool
	MessageSID string
	Error      string
}

// Contract for handing a text message to the SMS relay. Delivery is the
// relay's concern.
type Messenger interface {
	Send(ctx context.Context, to string, message string) (SendResult, error)
}
