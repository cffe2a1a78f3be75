// Package transport defines the delivery primitives the session core needs
// from the connection layer.
package transport

import (
	"github.com/partyroom/partyroom/internal/model"
	"github.com/partyroom/partyroom/internal/protocol"
)

// Transport delivers outbound messages to client connections.
// Delivery is best effort and must not block the caller.
type Transport interface {
	// Send delivers msg to a single connection
	Send(conn model.ConnID, msg protocol.Message)
	// Broadcast delivers msg to every listed connection except the excluded one.
	// Pass an empty ConnID to exclude nobody.
	Broadcast(conns []model.ConnID, msg protocol.Message, except model.ConnID)
}
