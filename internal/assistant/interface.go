package assistant

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrUnknownModel is returned for a model key outside the registry
	ErrUnknownModel = errors.New("unknown model")
	// ErrProviderFailure wraps every transport, status and decoding failure
	// of a completion back-end
	ErrProviderFailure = errors.New("completion provider failure")
)

// Kind enumerates the supported completion back-ends
type Kind string

const (
	KindYandex Kind = "yandex"
	KindGroq   Kind = "groq"
)

// Turn is one message of the conversation sent to a provider
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is a completion request for an ordered list of turns
type Request struct {
	Model       string
	Turns       []Turn
	Temperature float64
	MaxTokens   int
}

// Reply is a successful completion
type Reply struct {
	Text   string
	Tokens int
}

// Provider is a completion back-end
type Provider interface {
	// Kind identifies the back-end
	Kind() Kind

	// Complete sends the turns and returns the reply text. Any failure is
	// reported as an error wrapping ErrProviderFailure.
	Complete(ctx context.Context, req Request) (Reply, error)
}

// Route binds a model key to a provider and the provider's model id
type Route struct {
	Key      string
	Provider Provider
	Model    string
}

// Registry maps model keys to routes. Keys are a closed set fixed at start-up.
type Registry struct {
	routes map[string]Route
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]Route)}
}

// Register binds key to a provider model. A nil provider is ignored so
// unconfigured back-ends simply expose no keys.
func (r *Registry) Register(key string, p Provider, model string) {
	if p == nil {
		return
	}
	r.routes[key] = Route{Key: key, Provider: p, Model: model}
}

// Resolve returns the route for key
func (r *Registry) Resolve(key string) (Route, error) {
	route, ok := r.routes[key]
	if !ok {
		return Route{}, ErrUnknownModel
	}
	return route, nil
}

// Keys returns the registered model keys in sorted order
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.routes))
	for k := range r.routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
