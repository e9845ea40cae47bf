package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open("sqlite", "file:dbtest?mode=memory&cache=shared")
	require.NoError(t, err)

	DB = db
	t.Cleanup(func() { _ = Close() })

	assert.NoError(t, Ping(context.Background()))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	assert.ErrorContains(t, err, `unsupported DB_DRIVER "oracle"`)
}

func TestPingBeforeConnect(t *testing.T) {
	DB = nil
	assert.ErrorIs(t, Ping(context.Background()), ErrNotConnected)
}
