package realtime

import (
	"context"

	"github.com/google/uuid"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
)

// Event is the frame pushed to sockets: {"type": ..., "data": ...}.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	EventNewMessage        = "new_message"
	EventServiceStatus     = "service_status"
	EventApplicationStatus = "application_status"
	EventProposal          = "job_proposal"
)

// Notifier pushes an event to every live socket of a user, wherever it is connected.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, ev Event) error
}

// LocalNotifier delivers through the in-process hub only.
type LocalNotifier struct {
	Hub *Hub
}

func NewLocalNotifier(hub *Hub) *LocalNotifier {
	return &LocalNotifier{Hub: hub}
}

func (n *LocalNotifier) Notify(ctx context.Context, userID uuid.UUID, ev Event) error {
	err := n.Hub.SendToUser(userID, ev)
	metrics.RecordNotification("local", err)
	return err
}

// NotifyAll sends ev to each user, returning the first error after trying all.
func NotifyAll(ctx context.Context, n Notifier, ev Event, users ...uuid.UUID) error {
	var first error
	for _, uid := range users {
		if err := n.Notify(ctx, uid, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
