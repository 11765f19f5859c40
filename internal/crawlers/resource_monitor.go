package crawlers

import (
	"fmt"
	"sync"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// ResourceMonitor 系统资源检查
// 只做建议: 资源不足时记录警告,不阻止启动浏览器
type ResourceMonitor struct {
	safetyThreshold uint64 // 字节

	// 缓存的采样结果,1秒内复用
	mu         sync.Mutex
	cached     *models.MemoryStatus
	cachedTime time.Time

	// 便于测试替换
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	cpuPercent    func() float64
}

// NewResourceMonitor 创建资源检查器,thresholdMB 为启动浏览器所需的最低可用内存
func NewResourceMonitor(thresholdMB uint64) *ResourceMonitor {
	return &ResourceMonitor{
		safetyThreshold: thresholdMB * 1024 * 1024,
		virtualMemory:   mem.VirtualMemory,
		cpuPercent:      sampleCPUPercent,
	}
}

// sampleCPUPercent 100毫秒采样所有CPU的平均使用率
func sampleCPUPercent() float64 {
	percentages, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(percentages) == 0 {
		log.Debug().Err(err).Msg("获取CPU使用率失败")
		return 0
	}
	return percentages[0]
}

// Snapshot 当前内存和CPU状态
func (rm *ResourceMonitor) Snapshot() (*models.MemoryStatus, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.cached != nil && time.Since(rm.cachedTime) < time.Second {
		s := *rm.cached
		return &s, nil
	}

	vm, err := rm.virtualMemory()
	if err != nil {
		return nil, fmt.Errorf("获取系统内存失败: %w", err)
	}

	status := &models.MemoryStatus{
		TotalMemory:     vm.Total,
		AvailableMemory: vm.Available,
		CPUPercent:      rm.cpuPercent(),
		MemoryPressure:  memoryPressure(vm.Available),
	}
	rm.cached = status
	rm.cachedTime = time.Now()

	s := *status
	return &s, nil
}

// memoryPressure 按可用内存划分压力等级
func memoryPressure(available uint64) string {
	availableMB := available / (1024 * 1024)
	switch {
	case availableMB < 200:
		return "emergency"
	case availableMB < 300:
		return "critical"
	case availableMB < 500:
		return "warning"
	default:
		return "normal"
	}
}

// CheckBeforeLaunch 启动浏览器前检查可用内存
// 返回 canLaunch 和不足时的原因
func (rm *ResourceMonitor) CheckBeforeLaunch() (canLaunch bool, reason string) {
	status, err := rm.Snapshot()
	if err != nil {
		// 拿不到数据时不阻止启动
		log.Debug().Err(err).Msg("资源检查跳过")
		return true, ""
	}
	if status.AvailableMemory < rm.safetyThreshold {
		return false, fmt.Sprintf("可用内存不足(当前%dMB, 建议至少%dMB)",
			status.AvailableMemory/(1024*1024), rm.safetyThreshold/(1024*1024))
	}
	return true, ""
}
