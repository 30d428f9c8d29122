package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/kalah/internal/codec"
	"github.com/freeeve/kalah/internal/config"
	"github.com/freeeve/kalah/internal/kalah"
	"github.com/freeeve/kalah/internal/learn"
	"github.com/freeeve/kalah/internal/store"
)

func TestNewServerWiresQueriesToQueue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KALAH_QUERY_BUDGET", "10")
	t.Setenv("KALAH_LISTEN_ADDR", "127.0.0.1:0")

	cfg, err := config.Load("")
	require.NoError(t, err)

	st, err := store.Open(store.Config{Dir: t.TempDir(), Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer st.Close()

	q := learn.NewStartQueue(4)
	srv := newServer(cfg, zerolog.Nop(), st, q)
	assert.Equal(t, "127.0.0.1:0", srv.Addr)

	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The initial position cannot be decided in 10 nodes.
	resp, err = http.Get(ts.URL + "/v1/position/" + codec.Encode(kalah.Initial()).String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	k, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, codec.Encode(kalah.Initial()), k)
}
