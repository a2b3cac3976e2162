package suite

import (
	"context"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	// containers are hard-killed after this many seconds even if cleanup
	// never runs
	containerTTL = 120

	maxWait = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite runs the seen-sentence repository tests against a throwaway redis
// container.
type Suite struct {
	*testing.T

	Storage *redis.Client
}

// New starts a redis container, waits until it accepts connections and hands
// back a flushed client. The container is purged on test cleanup.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	container, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	// never returns an error
	_ = container.Expire(containerTTL)

	addr := container.GetHostPort(redisPort)

	// retry with backoff: redis inside the container may not be accepting
	// connections yet
	pool.MaxWait = maxWait

	var storage *redis.Client
	if err = pool.Retry(func() error {
		storage = redis.NewClient(&redis.Options{Addr: addr})
		return storage.Ping(ctx).Err()
	}); err != nil {
		if err = pool.Purge(container); err != nil {
			t.Fatalf("could not purge redis container: %v", err)
		}

		t.Fatalf("could not connect to redis: %v", err)
	}

	if err = storage.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush redis: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()

		if err = pool.Purge(container); err != nil {
			t.Fatalf("could not purge redis container: %v", err)
		}
	})

	return ctx, &Suite{
		T:       t,
		Storage: storage,
	}
}
