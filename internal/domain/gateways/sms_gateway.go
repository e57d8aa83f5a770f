package gateways

import "context"

// SendResult is the gateway's dispatch outcome
type SendResult struct {
	Success   bool
	MessageID string
}

// SMSGateway dispatches text messages. Implementations receive E.164
// numbers and are responsible for converting to the provider's local
// dialing format. Dispatch is best-effort: callers log failures and
// keep going.
type SMSGateway interface {
	Send(ctx context.Context, phoneNumber, message string) (*SendResult, error)
}
