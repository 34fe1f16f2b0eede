package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct{ kind Kind }

func (s stubProvider) Kind() Kind { return s.kind }

func (s stubProvider) Complete(context.Context, Request) (Reply, error) {
	return Reply{Text: string(s.kind)}, nil
}

func TestRegistry_ResolveIsExhaustive(t *testing.T) {
	reg := NewRegistry()
	reg.Register("yandex", stubProvider{KindYandex}, "yandexgpt/latest")
	reg.Register("llama3", stubProvider{KindGroq}, "llama3-8b-8192")
	reg.Register("ignored", nil, "x")

	route, err := reg.Resolve("llama3")
	require.NoError(t, err)
	assert.Equal(t, KindGroq, route.Provider.Kind())
	assert.Equal(t, "llama3-8b-8192", route.Model)

	_, err = reg.Resolve("gpt-5")
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, err = reg.Resolve("ignored")
	assert.ErrorIs(t, err, ErrUnknownModel)

	assert.Equal(t, []string{"llama3", "yandex"}, reg.Keys())
}
