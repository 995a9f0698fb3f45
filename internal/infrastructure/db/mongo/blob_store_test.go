package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestBlobStore_Get(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing key", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + blobCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		data, found, err := NewBlobStore(mt.DB).Get(context.Background(), "custody:accounts")
		require.NoError(mt, err)
		require.False(mt, found)
		require.Nil(mt, data)
	})

	mt.Run("stored blob", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + blobCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "custody:records"},
			{Key: "data", Value: []byte(`[]`)},
			{Key: "updated_at", Value: time.Now().UTC()},
		}))

		data, found, err := NewBlobStore(mt.DB).Get(context.Background(), "custody:records")
		require.NoError(mt, err)
		require.True(mt, found)
		require.Equal(mt, `[]`, string(data))
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11600,
			Name:    "InterruptedAtShutdown",
			Message: "interrupted at shutdown",
		}))

		_, found, err := NewBlobStore(mt.DB).Get(context.Background(), "custody:audit")
		require.Error(mt, err)
		require.False(mt, found)
	})
}

func TestBlobStore_Set(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "custody:audit"}}}},
		))
		require.NoError(mt, NewBlobStore(mt.DB).Set(context.Background(), "custody:audit", []byte(`[]`)))
	})
}

func TestClientOptions(t *testing.T) {
	opts := clientOptions(Config{URI: "mongodb://db:27017", MaxPoolSize: 25}, 3*time.Second)
	require.Equal(t, appName, *opts.AppName)
	require.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	require.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
	require.Equal(t, uint64(25), *opts.MaxPoolSize)

	opts = clientOptions(Config{URI: "mongodb://db:27017"}, time.Second)
	require.Nil(t, opts.MaxPoolSize)
}

func TestConnect_RequiresDatabase(t *testing.T) {
	_, _, err := Connect(context.Background(), Config{URI: "mongodb://db:27017"})
	require.Error(t, err)
}
