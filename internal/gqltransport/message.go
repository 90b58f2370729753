package gqltransport

import "encoding/json"

// MessageType enumerates the graphql-transport-ws message kinds
// (§4.6). The protocol is strictly client/server symmetric on the
// wire; which side sends which type is enforced by Connection, not by
// this enum.
type MessageType string

const (
	ConnectionInit MessageType = "connection_init"
	ConnectionAck  MessageType = "connection_ack"
	Ping           MessageType = "ping"
	Pong           MessageType = "pong"
	Subscribe      MessageType = "subscribe"
	Next           MessageType = "next"
	Error          MessageType = "error"
	Complete       MessageType = "complete"
)

// Close codes per the graphql-transport-ws protocol (§4.6 "duplicate
// subscribe ids are rejected with 4409-like close").
const (
	CloseBadRequest              = 4400
	CloseUnauthorized            = 4401
	CloseInitTimeout             = 4408
	CloseSubscriberAlreadyExists = 4409
	CloseTooManyInitRequests     = 4429
	CloseProtocolError           = 1002
	CloseInternalError           = 1011
	CloseGoingAway               = 1001
)

// Message is the wire envelope for every direction of the protocol.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribePayload is the Subscribe message's payload: a standard
// GraphQL request.
type SubscribePayload struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

func encode(id string, typ MessageType, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Message{ID: id, Type: typ, Payload: raw})
}
