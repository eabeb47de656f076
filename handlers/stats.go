package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/process"

	"github.com/tertulia-im/tertulia/internal/board"
	"github.com/tertulia-im/tertulia/internal/directory"
	"github.com/tertulia-im/tertulia/pkg/logger"
)

// StatsHandler reports room totals and process health.
type StatsHandler struct {
	directory *directory.Service
	board     *board.Service
	started   time.Time
	proc      *process.Process
}

func NewStatsHandler(d *directory.Service, b *board.Service, started time.Time) *StatsHandler {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warnf("process stats unavailable: %v", err)
		p = nil
	}
	return &StatsHandler{directory: d, board: b, started: started, proc: p}
}

// Register mounts the stats route under the given group.
func (h *StatsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Stats)
}

// Stats returns participant and message counts plus process metrics.
func (h *StatsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	participants, err := h.directory.Count(ctx)
	if err != nil {
		logger.Errorf("stats participants: %v", err)
		storeFailed(c)
		return
	}
	messages, err := h.board.Count(ctx)
	if err != nil {
		logger.Errorf("stats messages: %v", err)
		storeFailed(c)
		return
	}

	out := gin.H{
		"participants":   participants,
		"messages":       messages,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"pid":            os.Getpid(),
	}
	if rss, cpu, status, err := selfStats(h.proc); err == nil {
		out["ram_bytes"] = rss
		out["cpu_percent"] = cpu
		out["pid_status"] = status
	}
	c.JSON(http.StatusOK, out)
}

// selfStats retrieves memory, CPU and OS status for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	if p == nil {
		return 0, 0, "", os.ErrInvalid
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}
	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
