package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLoggedIn(t *testing.T) {
	f := &fakeClient{}
	a, _ := newTestApp(f)
	assert.False(t, a.isLoggedIn())

	f.tokens.RefreshToken = "r1"
	assert.True(t, a.isLoggedIn())
}

func TestRun_ClosesClient(t *testing.T) {
	capturePrintln(t)

	f := &fakeClient{}
	a, _ := newTestApp(f)
	a.reader = bufio.NewReader(strings.NewReader("quit\n"))

	a.Run(context.Background())
	assert.True(t, f.closed)
}

func TestNewApp(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()

	a, err := NewApp(c)
	require.NoError(t, err)
	require.NotNil(t, a.client)
	assert.NoError(t, a.client.Close())
}
