package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// memoryHook answers GET, SET and PING from a map without touching the
// network.
type memoryHook struct {
	data map[string]string
	err  error
}

func (h *memoryHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *memoryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *memoryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if h.err != nil {
			cmd.SetErr(h.err)
			return h.err
		}
		args := cmd.Args()
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := h.data[args[1].(string)]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			if cmd.Name() == "set" {
				switch v := args[2].(type) {
				case []byte:
					h.data[args[1].(string)] = string(v)
				case string:
					h.data[args[1].(string)] = v
				}
				c.SetVal("OK")
				return nil
			}
			c.SetVal("PONG")
		}
		return nil
	}
}

func newTestStore(hook *memoryHook) *BlobStore {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(hook)
	return NewBlobStore(client)
}

func TestBlobStore_MissingKey(t *testing.T) {
	s := newTestStore(&memoryHook{data: map[string]string{}})

	data, found, err := s.Get(context.Background(), "custody:accounts")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, data)
}

func TestBlobStore_SetThenGet(t *testing.T) {
	s := newTestStore(&memoryHook{data: map[string]string{}})
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "custody:records", []byte(`[{"id":"PRT-000001"}]`)))
	data, found, err := s.Get(ctx, "custody:records")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `[{"id":"PRT-000001"}]`, string(data))
	require.NoError(t, s.Ping(ctx))
}

func TestBlobStore_BackendError(t *testing.T) {
	boom := errors.New("connection reset")
	s := newTestStore(&memoryHook{data: map[string]string{}, err: boom})
	ctx := context.Background()

	_, found, err := s.Get(ctx, "custody:audit")
	require.ErrorIs(t, err, boom)
	require.False(t, found)
	require.ErrorIs(t, s.Set(ctx, "custody:audit", []byte("[]")), boom)
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(Config{
		Addr:         "redis:6379",
		Password:     "pw",
		DB:           2,
		PoolSize:     20,
		DialTimeout:  time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	require.Equal(t, "redis:6379", opts.Addr)
	require.Equal(t, "pw", opts.Password)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 20, opts.PoolSize)
	require.Equal(t, time.Second, opts.DialTimeout)
	require.Equal(t, 2*time.Second, opts.ReadTimeout)
	require.Equal(t, 3*time.Second, opts.WriteTimeout)
}
