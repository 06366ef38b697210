package server

import (
	"sync"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/collector"
	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/storage"
)

// Server holds the dependencies, configuration, and runtime state required
// to handle HTTP requests and background query processing.
type Server struct {
	// storage provides access to tracked servers and their rosters.
	storage *storage.Repository

	// collector queries a server and persists the snapshot.
	collector *collector.Collector

	// allowedGames is a set of hashed game folders (xxhash) that may be tracked.
	// An empty set allows any game.
	allowedGames map[uint64]struct{}

	// queue passes query jobs from HTTP handlers and the poller to background workers.
	queue chan queryJob

	// queueMu guards sends on queue against its close in StopWorkers.
	queueMu sync.RWMutex

	// queueClosed is set under queueMu once queue is closed.
	queueClosed bool

	// shutdown is closed to stop the poller, the cache cleanup and the rate limiter cleanup.
	shutdown chan struct{}

	// seenCache maps the xxhash of "ip:port" to the time it was last queued.
	// It backs the soft limit on registrations.
	seenCache sync.Map

	// authToken is the secret token required to access administrative API endpoints.
	authToken string

	// a2sOptions holds the query timeout and buffer size.
	a2sOptions config.A2S

	// wg waits for query workers.
	wg sync.WaitGroup

	// pollerWG waits for the poller so the queue is never closed under it.
	pollerWG sync.WaitGroup

	// maxBody is the maximum accepted request body size in bytes.
	maxBody int64

	// workers is the number of background query workers.
	workers int

	// hardLimitCount is the maximum number of requests per IP within hardLimitWin.
	hardLimitCount int

	// hardLimitWin is the time window of the hard rate limiter.
	hardLimitWin time.Duration

	// softLimitDur skips a registration of an endpoint queued within this duration.
	softLimitDur time.Duration

	// pollInterval is the refresh period of tracked servers, 0 disables polling.
	pollInterval time.Duration

	// trustProxy enables CF-Connecting-IP and X-Forwarded-For for the client IP.
	trustProxy bool
}

// queryJob is a unit of work for the background workers.
type queryJob struct {
	IP   string
	Port int

	// refresh marks jobs of the poller.
	refresh bool
}
