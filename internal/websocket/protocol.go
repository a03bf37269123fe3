package websocket

import "encoding/json"

// Operation names accepted over the wire.
const (
	OpCreate        = "support:create"
	OpPickup        = "support:pickup"
	OpSend          = "support:send"
	OpClose         = "support:close"
	OpList          = "support:list"
	OpListMine      = "support:listMine"
	OpHistory       = "support:history"
	OpSubscribe     = "support:subscribe"
	OpSubscribeMine = "support:subscribeMine"
)

// Server-pushed event names.
const (
	EventRoom    = "support:room"
	EventMessage = "support:message"
)

// Request is one inbound RPC frame. Id correlates the reply; every request
// gets exactly one Response.
type Request struct {
	Id   string          `json:"id"`
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response carries either a success payload or a structured error, never
// both.
type Response struct {
	Id    string      `json:"id"`
	Ok    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
}

// Push is an unsolicited server-to-client frame. Id is absent so clients
// can tell pushes from RPC replies.
type Push struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// RoomEventPayload is the body of a support:room push.
type RoomEventPayload struct {
	Type string      `json:"type"`
	Room interface{} `json:"room"`
}

// MessageEventPayload is the body of a support:message push.
type MessageEventPayload struct {
	Type    string      `json:"type"`
	Message interface{} `json:"message"`
}
