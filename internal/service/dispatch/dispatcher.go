package dispatch

import (
	"context"
	"log"

	"github.com/boweryconnect/companion/internal/analysis/classifier"
	"github.com/boweryconnect/companion/internal/fallback"
	"github.com/boweryconnect/companion/internal/model/chat"
	"github.com/boweryconnect/companion/internal/model/crisis"
	"github.com/boweryconnect/companion/internal/service/connectivity"
)

// DefaultContextLimit bounds how many prior messages accompany a dispatch.
const DefaultContextLimit = 10

// Dispatcher decides, per turn, whether a response comes from the remote
// service or the local fallback table. It never returns an error and never
// goes silent: some response is always produced.
type Dispatcher struct {
	client       *Client
	monitor      *connectivity.Monitor
	contextLimit int
}

// NewDispatcher wires a dispatcher to its remote client and the shared
// connectivity monitor. contextLimit <= 0 uses DefaultContextLimit.
func NewDispatcher(client *Client, monitor *connectivity.Monitor, contextLimit int) *Dispatcher {
	if contextLimit <= 0 {
		contextLimit = DefaultContextLimit
	}
	return &Dispatcher{client: client, monitor: monitor, contextLimit: contextLimit}
}

// Send produces the assistant response for one classified user message.
//
// Offline: the network is skipped entirely and the fallback table answers.
// Online: the remote service is attempted with bounded context; on any
// failure the connectivity state is marked degraded (later turns skip the
// network until a health probe succeeds) and the fallback table answers.
func (d *Dispatcher) Send(ctx context.Context, message chat.Message, history []chat.Message, mood chat.Mood, result classifier.Result) crisis.Response {
	if !d.monitor.IsOnline() {
		return fallback.Respond(result.Category, message.Language)
	}

	if len(history) > d.contextLimit {
		history = history[len(history)-d.contextLimit:]
	}

	response, err := d.client.SendMessage(ctx, message, history, mood)
	if err != nil {
		log.Printf("[dispatch] remote send failed, falling back: %v", err)
		d.monitor.MarkDegraded()
		return fallback.Respond(result.Category, message.Language)
	}
	return response
}
