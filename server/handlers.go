package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kirtilabs/kirti/health"
	"github.com/kirtilabs/kirti/interfaces"
	"github.com/kirtilabs/kirti/ledger"
	"github.com/kirtilabs/kirti/system"
	"github.com/kirtilabs/kirti/worker"
)

// captureTimeout bounds a single camera grab plus the face comparisons that
// follow it.
const captureTimeout = 15 * time.Second

type matchResponse struct {
	Matched  bool   `json:"matched"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	CheckIn  string `json:"checkin,omitempty"`
	CheckOut string `json:"checkout,omitempty"`
	Date     string `json:"date,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

func (s *Server) handleStartMatch(c *gin.Context) {
	s.matchesAttempted.Add(1)

	ctx, cancel := context.WithTimeout(c.Request.Context(), captureTimeout)
	defer cancel()

	frame, err := s.frames.Capture(ctx)
	if err != nil {
		log.Printf("[SERVER] camera capture failed: %v", err)
		c.JSON(http.StatusOK, matchResponse{Matched: false})
		return
	}

	match, err := s.resolver.Resolve(ctx, frame)
	if err != nil {
		if !errors.Is(err, interfaces.ErrNoMatch) {
			log.Printf("[SERVER] face resolution failed: %v", err)
		}
		c.JSON(http.StatusOK, matchResponse{Matched: false})
		return
	}

	outcome, err := s.queue.Submit(ctx, match.PersonID, s.clock.Now())
	if err != nil {
		log.Printf("[SERVER] attendance submit failed for %q: %v", match.PersonID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attendance storage unavailable"})
		return
	}
	s.eventsRecorded.Add(1)

	resp := matchResponse{
		Matched:  true,
		Name:     match.PersonID,
		ImageURL: "/profile/" + match.Filename,
		Outcome:  string(outcome),
	}
	if rec, ok := s.ledger.Latest(match.PersonID); ok {
		resp.CheckIn = rec.CheckIn
		resp.CheckOut = rec.CheckOut
		resp.Date = rec.Date
	}

	if s.cache != nil {
		if snapshot, err := json.Marshal(resp); err == nil {
			if err := s.cache.SaveMatchSnapshot(snapshot); err != nil {
				log.Printf("[SERVER] match snapshot not cached: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

type recordEventRequest struct {
	PersonID  string `json:"person_id" binding:"required"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleRecordEvent(c *gin.Context) {
	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "person_id is required"})
		return
	}

	ts := s.clock.Now()
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp must be RFC 3339"})
			return
		}
		ts = parsed
	}

	outcome, err := s.queue.Submit(c.Request.Context(), req.PersonID, ts)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrEmptyPersonID):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, worker.ErrStopped):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service is shutting down"})
		case errors.Is(err, ledger.ErrStorageUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "attendance storage unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	s.eventsRecorded.Add(1)

	c.JSON(http.StatusOK, gin.H{"person_id": req.PersonID, "outcome": string(outcome)})
}

func (s *Server) handleQueryToday(c *gin.Context) {
	personID := c.Param("person_id")
	rec, ok := s.ledger.QueryToday(personID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attendance recorded today"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleProfileImage(c *gin.Context) {
	path, ok := s.refs.Path(c.Param("filename"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}
	c.File(path)
}

type speakRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleSpeak(c *gin.Context) {
	var req speakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	s.mu.Lock()
	s.latestMessage = req.Text
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SetLatestMessage(req.Text); err != nil {
			log.Printf("[SERVER] latest message not cached: %v", err)
		}
	}

	s.hub.Broadcast(req.Text)
	s.messagesRelayed.Add(1)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetLatest(c *gin.Context) {
	if s.cache != nil {
		if text, err := s.cache.GetLatestMessage(); err == nil && text != "" {
			c.JSON(http.StatusOK, gin.H{"text": text})
			return
		}
	}

	s.mu.Lock()
	text := s.latestMessage
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (s *Server) handleStatus(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	cpuUsage, _ := system.GetCPUUsage()
	memUsage, _ := system.GetMemoryUsage()

	c.JSON(http.StatusOK, gin.H{
		"service": "kirti-attend",
		"status":  "operational",
		"uptime":  time.Since(s.startTime).Round(time.Second).String(),
		"metrics": gin.H{
			"matches_attempted": s.matchesAttempted.Load(),
			"events_recorded":   s.eventsRecorded.Load(),
			"messages_relayed":  s.messagesRelayed.Load(),
			"ws_clients":        s.hub.ClientCount(),
			"goroutines":        runtime.NumGoroutine(),
			"heap_alloc_mb":     mem.Alloc / 1024 / 1024,
			"cpu_usage":         cpuUsage,
			"memory_usage":      memUsage,
		},
		"services": gin.H{
			"cache":  health.GetCacheStatus(s.cache, s.redisCfg),
			"camera": health.GetCameraStatus(s.cfg.CameraDevice),
			"store":  health.GetStoreStatus(s.cfg.AttendancePath),
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
