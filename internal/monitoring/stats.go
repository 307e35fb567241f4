package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStats is a point-in-time snapshot of the host and the DB pool.
type SystemStats struct {
	DatabaseStatus    string  `json:"database_status"`
	ResponseTime      int64   `json:"response_time_ms"`
	ActiveConnections int     `json:"active_connections"`
	PoolTotal         int32   `json:"pool_total"`
	PoolIdle          int32   `json:"pool_idle"`
	DBSize            string  `json:"db_size"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskPercent       float64 `json:"disk_percent"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`
}

type Collector struct {
	db *pgxpool.Pool
}

func NewCollector(db *pgxpool.Pool) *Collector {
	return &Collector{db: db}
}

func (c *Collector) Collect(ctx context.Context) SystemStats {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := c.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var activeConns int
	c.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	var dbSizeBytes int64
	c.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)

	poolStat := c.db.Stat()

	cpuPercents, _ := cpu.Percent(0, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	return SystemStats{
		DatabaseStatus:    dbStatus,
		ResponseTime:      responseTime,
		ActiveConnections: activeConns,
		PoolTotal:         poolStat.TotalConns(),
		PoolIdle:          poolStat.IdleConns(),
		DBSize:            formatBytes(uint64(dbSizeBytes)),
		CPUPercent:        cpuPercent,
		MemoryPercent:     memStats.UsedPercent,
		MemoryUsed:        formatBytes(memStats.Used),
		MemoryTotal:       formatBytes(memStats.Total),
		DiskPercent:       diskStats.UsedPercent,
		DiskUsed:          formatBytes(diskStats.Used),
		DiskTotal:         formatBytes(diskStats.Total),
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}
