// Package server is the attendance web service: camera-triggered face
// matching, the attendance API, reference image serving, and the assistant
// UI message relay.
package server

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirtilabs/kirti/cache"
	"github.com/kirtilabs/kirti/config"
	"github.com/kirtilabs/kirti/facematch"
	"github.com/kirtilabs/kirti/interfaces"
	"github.com/kirtilabs/kirti/ledger"
	"github.com/kirtilabs/kirti/worker"
)

// defaultLatestMessage is shown by the UI before the assistant says
// anything.
const defaultLatestMessage = "Say something..."

// Server wires the attendance components behind a gin router.
type Server struct {
	cfg      *config.ServerConfig
	redisCfg *config.RedisConfig
	queue    *worker.Queue
	ledger   *ledger.Ledger
	refs     *facematch.RefStore
	resolver *facematch.Resolver
	frames   interfaces.FrameSource
	cache    cache.Cache
	clock    ledger.Clock
	hub      *Hub

	startTime time.Time

	matchesAttempted atomic.Uint64
	eventsRecorded   atomic.Uint64
	messagesRelayed  atomic.Uint64

	mu            sync.Mutex
	latestMessage string
}

// New builds a server. cache may be nil, in which case relay state is kept
// in memory only.
func New(cfg *config.ServerConfig, redisCfg *config.RedisConfig, q *worker.Queue, l *ledger.Ledger, refs *facematch.RefStore, resolver *facematch.Resolver, frames interfaces.FrameSource, c cache.Cache, clock ledger.Clock) *Server {
	if clock == nil {
		clock = ledger.SystemClock()
	}
	return &Server{
		cfg:           cfg,
		redisCfg:      redisCfg,
		queue:         q,
		ledger:        l,
		refs:          refs,
		resolver:      resolver,
		frames:        frames,
		cache:         c,
		clock:         clock,
		hub:           NewHub(),
		startTime:     time.Now(),
		latestMessage: defaultLatestMessage,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/start-match", s.handleStartMatch)
	r.GET("/profile/:filename", s.handleProfileImage)

	r.POST("/api/attendance/record", s.handleRecordEvent)
	r.GET("/api/attendance/today/:person_id", s.handleQueryToday)

	r.POST("/speak", s.handleSpeak)
	r.GET("/get-latest", s.handleGetLatest)
	r.GET("/ws/messages", s.handleMessagesWS)

	r.GET("/status", s.handleStatus)
	r.GET("/health", s.handleHealth)

	return r
}

// Run starts the HTTP server on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	return s.Router().Run(addr)
}
