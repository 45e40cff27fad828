package devauth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modhub/modhub-api/internal/ports"
)

func TestNewProvider_RequiresIdentity(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@modhub.io"})
	assert.Error(t, err)

	_, err = NewProvider(Config{UserID: "dev"})
	assert.Error(t, err)
}

func TestBeginAndExchange(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev", Email: "dev@modhub.io", Groups: []string{"modhub-admins"}})
	require.NoError(t, err)

	res, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/auth/callback"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.AuthURL, "/auth/callback?code=dev&state="))
	assert.NotEmpty(t, res.State)
	assert.NotEmpty(t, res.Nonce)
	assert.NotEmpty(t, res.Verifier)

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: res.State, Verifier: res.Verifier})
	require.NoError(t, err)
	assert.Equal(t, "dev", id.UserID)
	assert.Equal(t, "dev@modhub.io", id.Email)
	assert.False(t, id.ExpiresAt.IsZero())
}
