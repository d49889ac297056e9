package database_test

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/scholar-hub-api/internal/database"
)

func TestConnectUsesSQLiteScheme(t *testing.T) {
	dsn := fmt.Sprintf("sqlite://file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := database.Connect(dsn, false)
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	require.Equal(t, 1, one)
}

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := database.Connect("", false)
	require.Error(t, err)

	_, err = database.Connect("sqlite://", false)
	require.Error(t, err)
}

func TestConnectRedisRejectsEmptyURL(t *testing.T) {
	_, err := database.ConnectRedis("")
	require.Error(t, err)
}

func TestConnectRedisPings(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := database.ConnectRedis("redis://" + server.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())
}
