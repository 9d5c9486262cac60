package dirstat

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// Usage describes the filesystem holding a scanned root.
type Usage struct {
	// Fstype is the filesystem type, e.g. ext4.
	Fstype string `json:"fstype"`
	// Total is the capacity in bytes.
	Total uint64 `json:"total"`
	// Used is the number of bytes in use.
	Used uint64 `json:"used"`
	// Free is the number of bytes available.
	Free uint64 `json:"free"`
	// UsedPercent is Used as a percentage of Total.
	UsedPercent float64 `json:"used_percent"`
}

// FilesystemUsage returns capacity information for the filesystem holding path.
func FilesystemUsage(path string) (*Usage, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return nil, fmt.Errorf("filesystem usage of %q: %w", path, err)
	}

	return &Usage{
		Fstype:      usage.Fstype,
		Total:       usage.Total,
		Used:        usage.Used,
		Free:        usage.Free,
		UsedPercent: usage.UsedPercent,
	}, nil
}
