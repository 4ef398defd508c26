package metadata

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRedisRepository_Contract(t *testing.T) {
	url := os.Getenv("PINGATE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PINGATE_TEST_REDIS_URL not set")
	}

	runRepositoryContract(t, func(t *testing.T) Repository {
		client, err := ConnectRedis(url)
		require.NoError(t, err)
		require.NoError(t, client.Ping(context.Background()).Err())

		// a fresh prefix per subtest keeps runs isolated on a shared server
		r := NewRedisRepository(client, "pingate:test:"+uuid.NewString()+":")
		t.Cleanup(func() {
			_ = r.Clear(context.Background())
			_ = r.Close()
		})
		return r
	})
}

func TestConnectRedis_AcceptsURLAndAddress(t *testing.T) {
	c, err := ConnectRedis("redis://localhost:6379/2")
	require.NoError(t, err)
	require.Equal(t, "localhost:6379", c.Options().Addr)
	require.Equal(t, 2, c.Options().DB)
	_ = c.Close()

	c, err = ConnectRedis("cache:6380")
	require.NoError(t, err)
	require.Equal(t, "cache:6380", c.Options().Addr)
	_ = c.Close()
}

func TestConnectRedis_BadURL(t *testing.T) {
	_, err := ConnectRedis("redis://localhost:notaport")
	require.Error(t, err)
}

func TestNewRedisRepository_DefaultPrefix(t *testing.T) {
	r := NewRedisRepository(nil, "")
	require.Equal(t, DefaultRedisPrefix, r.prefix)
}
