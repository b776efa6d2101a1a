package services

import (
	"fmt"

	"github.com/pellicule/backend/internal/config"
	"github.com/shirou/gopsutil/v4/disk"
)

// StatsService reports disk and library storage usage.
type StatsService struct {
	cfg     *config.Config
	storage *StorageService
}

func NewStatsService(cfg *config.Config, storage *StorageService) *StatsService {
	return &StatsService{cfg: cfg, storage: storage}
}

// ByteSize is a byte count with a human-readable rendering.
type ByteSize struct {
	Bytes     int64  `json:"bytes"`
	Formatted string `json:"formatted"`
}

// DiskUsage describes the volume backing the data directory.
type DiskUsage struct {
	Total       ByteSize `json:"total"`
	Used        ByteSize `json:"used"`
	Free        ByteSize `json:"free"`
	UsedPercent float64  `json:"used_percent"`
}

// StorageStats is the full storage report: volume usage plus the size of
// each library folder.
type StorageStats struct {
	Disk  DiskUsage           `json:"disk"`
	Usage map[string]ByteSize `json:"usage"`
}

func (s *StatsService) GetStats() (*StorageStats, error) {
	usage, err := disk.Usage(s.cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage: %w", err)
	}

	stats := &StorageStats{
		Disk: DiskUsage{
			Total:       newByteSize(int64(usage.Total)),
			Used:        newByteSize(int64(usage.Used)),
			Free:        newByteSize(int64(usage.Free)),
			UsedPercent: usage.UsedPercent,
		},
		Usage: map[string]ByteSize{},
	}

	folders := map[string]string{
		"media":  s.cfg.MediaPath(),
		"thumbs": s.cfg.ThumbsPath(),
		"tmp":    s.cfg.TmpPath(),
	}
	for name, dir := range folders {
		size, err := s.storage.DirSize(dir)
		if err != nil {
			return nil, err
		}
		stats.Usage[name] = newByteSize(size)
	}
	return stats, nil
}

func newByteSize(n int64) ByteSize {
	return ByteSize{Bytes: n, Formatted: FormatBytes(n)}
}

// FormatBytes renders a byte count in the largest fitting binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
