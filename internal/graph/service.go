package graph

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/graph-gophers/graphql-go"

	"github.com/nfrund/relay/internal/relay"
)

//go:embed schema.graphql
var schemaSDL string

var (
	// ErrEmptyQuery is returned when a request carries no query document.
	ErrEmptyQuery = errors.New("graph: empty query")
	// ErrSubscriptionNotAllowed is returned by Exec for subscription operations.
	ErrSubscriptionNotAllowed = errors.New("graph: subscriptions require a websocket connection")
)

// subscriptionRejected is the error graphql-go's Exec reports for a
// subscription operation.
const subscriptionRejected = "graphql-ws protocol header is missing"

// Request is a GraphQL request as sent over HTTP and inside websocket payloads.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Response is the result of one executed operation.
type Response = graphql.Response

// Service executes GraphQL operations against the relay resolvers.
type Service struct {
	schema *graphql.Schema
	logger *slog.Logger
}

// NewService parses the schema and binds it to the relay components.
func NewService(commands *relay.Commands, channels *relay.Channels, state *relay.State) (*Service, error) {
	resolver := &Resolver{
		commands: commands,
		channels: channels,
		state:    state,
	}

	schema, err := graphql.ParseSchema(schemaSDL, resolver, graphql.UseFieldResolvers())
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	return &Service{
		schema: schema,
		logger: slog.Default().With("component", "graph"),
	}, nil
}

// SDL returns the schema document served by the service.
func (s *Service) SDL() string {
	return schemaSDL
}

// Exec runs a query or mutation and returns its single result. Subscription
// operations fail with ErrSubscriptionNotAllowed.
func (s *Service) Exec(ctx context.Context, req Request) (*Response, error) {
	resp := s.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	if len(resp.Errors) == 1 && resp.Errors[0].Message == subscriptionRejected {
		return nil, ErrSubscriptionNotAllowed
	}
	return resp, nil
}

// Execute runs any operation and streams its results. Queries, mutations and
// documents that fail validation yield one response; subscriptions yield one
// response per event until ctx is done or the underlying subscription ends.
// The channel is always closed.
func (s *Service) Execute(ctx context.Context, req Request) (<-chan *Response, error) {
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}

	events, err := s.schema.Subscribe(ctx, req.Query, req.OperationName, req.Variables)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan *Response)
	go func() {
		defer close(out)
		for ev := range events {
			resp, ok := ev.(*graphql.Response)
			if !ok {
				s.logger.Warn("Unexpected subscription result", "type", fmt.Sprintf("%T", ev))
				continue
			}
			select {
			case out <- resp:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
