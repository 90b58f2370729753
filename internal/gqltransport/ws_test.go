package gqltransport

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoseah/gqlrt/internal/gqlexec"
	"github.com/mrhoseah/gqlrt/internal/gqlschema"
)

// fakeSocket is an in-memory Socket for driving Connection without a
// real network connection.
type fakeSocket struct {
	toServer   chan []byte
	fromServer chan []byte
	closed     chan struct{}
	closeCode  int
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		toServer:   make(chan []byte, 16),
		fromServer: make(chan []byte, 16),
		closed:     make(chan struct{}),
	}
}

func (f *fakeSocket) SendText(data []byte) error {
	select {
	case f.fromServer <- data:
		return nil
	case <-f.closed:
		return context.Canceled
	}
}

func (f *fakeSocket) Close(code int, reason string) error {
	f.closeCode = code
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}

func (f *fakeSocket) Incoming() <-chan []byte { return f.toServer }
func (f *fakeSocket) Closed() <-chan struct{} { return f.closed }

func (f *fakeSocket) send(t *testing.T, msg Message) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	f.toServer <- data
}

func (f *fakeSocket) recv(t *testing.T, timeout time.Duration) Message {
	t.Helper()
	select {
	case data := <-f.fromServer:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for server message")
		return Message{}
	}
}

func helloSchema(t *testing.T) graphql.Schema {
	t.Helper()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"hello": &graphql.Field{
					Type:    graphql.String,
					Resolve: func(p graphql.ResolveParams) (any, error) { return "world", nil },
				},
			},
		}),
	})
	require.NoError(t, err)
	return schema
}

func TestConnectionHandshakeAndQuery(t *testing.T) {
	socket := newFakeSocket()
	engine := gqlexec.New(helloSchema(t))
	conn := NewConnection(socket, engine, nil, 2*time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- conn.Serve(ctx) }()

	socket.send(t, Message{Type: ConnectionInit})
	ack := socket.recv(t, time.Second)
	assert.Equal(t, ConnectionAck, ack.Type)

	payload, _ := json.Marshal(SubscribePayload{Query: "{ hello }"})
	socket.send(t, Message{ID: "1", Type: Subscribe, Payload: payload})

	next := socket.recv(t, time.Second)
	assert.Equal(t, Next, next.Type)
	assert.Equal(t, "1", next.ID)

	complete := socket.recv(t, time.Second)
	assert.Equal(t, Complete, complete.Type)
	assert.Equal(t, "1", complete.ID)

	cancel()
	<-done
}

func TestConnectionRejectsDuplicateConnectionInit(t *testing.T) {
	socket := newFakeSocket()
	engine := gqlexec.New(helloSchema(t))
	conn := NewConnection(socket, engine, nil, 2*time.Second, nil)

	done := make(chan error, 1)
	go func() { done <- conn.Serve(context.Background()) }()

	socket.send(t, Message{Type: ConnectionInit})
	socket.recv(t, time.Second) // ack

	socket.send(t, Message{Type: ConnectionInit})
	<-done
	assert.Equal(t, CloseTooManyInitRequests, socket.closeCode)
}

func TestConnectionRejectsDuplicateSubscribeID(t *testing.T) {
	socket := newFakeSocket()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{"hello": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (any, error) {
				time.Sleep(50 * time.Millisecond)
				return "world", nil
			}}},
		}),
	})
	require.NoError(t, err)
	engine := gqlexec.New(schema)
	conn := NewConnection(socket, engine, map[string]gqlschema.SubscriptionFieldReg{}, 2*time.Second, nil)

	done := make(chan error, 1)
	go func() { done <- conn.Serve(context.Background()) }()

	socket.send(t, Message{Type: ConnectionInit})
	socket.recv(t, time.Second)

	payload, _ := json.Marshal(SubscribePayload{Query: "{ hello }"})
	socket.send(t, Message{ID: "dup", Type: Subscribe, Payload: payload})
	socket.send(t, Message{ID: "dup", Type: Subscribe, Payload: payload})

	<-done
	assert.Equal(t, CloseSubscriberAlreadyExists, socket.closeCode)
}

func TestConnectionInitTimeout(t *testing.T) {
	socket := newFakeSocket()
	engine := gqlexec.New(helloSchema(t))
	conn := NewConnection(socket, engine, nil, 30*time.Millisecond, nil)

	done := make(chan error, 1)
	go func() { done <- conn.Serve(context.Background()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("connection did not time out")
	}
	assert.Equal(t, CloseInitTimeout, socket.closeCode)
}
