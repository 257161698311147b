package service

// Notifier broadcasts fire-and-forget mutation events to connected clients.
// Implementations must never block the calling request; delivery is not
// guaranteed.
type Notifier interface {
	Emit(eventType, stationID string, data interface{})
}

// Event types emitted by the services.
const (
	EventStationUpdated = "station.updated"
	EventStationRemoved = "station.removed"
	EventStationLiked   = "station.liked"
)

type noopNotifier struct{}

func (noopNotifier) Emit(string, string, interface{}) {}

// NopNotifier returns a Notifier that drops every event.
func NopNotifier() Notifier { return noopNotifier{} }
