package subscription

import "github.com/mcastellin/kurrentdb-client-go/internal/wire"

// Kind discriminates the lifecycle notifications a driver pushes onto
// its Updates channel.
type Kind int

const (
	// KindConfirmed fires once the server has accepted the subscribe
	// request and assigned a subscription ID.
	KindConfirmed Kind = iota
	// KindEvent carries one delivered RecordedEvent.
	KindEvent
	// KindCaughtUp fires when a catch-up subscription has drained
	// historical events and is now live (spec.md's catch-up semantics).
	KindCaughtUp
	// KindDropped fires whenever the stream drops, with Err set to the
	// cause. After a transient drop the driver reconnects; after a
	// non-retryable error it terminates and closes the Updates channel.
	// Close() terminates the driver without sending a KindDropped.
	KindDropped
)

// Update is the single value type a subscription driver ever sends on
// its Updates channel; Kind determines which other fields are set.
type Update struct {
	Kind           Kind
	SubscriptionID string
	Event          *wire.RecordedEvent
	Err            error
}
