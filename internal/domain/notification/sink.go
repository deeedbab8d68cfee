package notification

import (
	"context"
	"fmt"
)

// MatchSink delivers a subscriber's matches (e.g. by email).
type MatchSink interface {
	DeliverMatches(ctx context.Context, to Recipient, matches []Match) error
}

// AlertSink delivers a monitor alert to the operator.
type AlertSink interface {
	SendAlert(ctx context.Context, alert Alert) error
}

// DeliveryError wraps a transport failure for one recipient. It never aborts
// the cycle.
type DeliveryError struct {
	Channel string
	Address string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery to %q failed: %v", e.Channel, e.Address, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// ChannelName returns the sink's channel name ("email", "telegram") for logs
// and metrics.
func ChannelName(sink any) string {
	if n, ok := sink.(interface{ Channel() string }); ok {
		return n.Channel()
	}
	return "unknown"
}
