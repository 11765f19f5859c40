package models

import (
	"encoding/json"
	"time"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"   // 待执行
	TaskStatusRunning   TaskStatus = "running"   // 执行中
	TaskStatusCompleted TaskStatus = "completed" // 已完成
	TaskStatusFailed    TaskStatus = "failed"    // 失败
)

// SearchTask 批量检索中的单个检索任务
type SearchTask struct {
	ID          string     `json:"id" yaml:"id"` // 任务唯一ID (UUID)
	Query       string     `json:"query" yaml:"query"`
	Status      TaskStatus `json:"status" yaml:"status"`
	Records     int        `json:"records" yaml:"records"` // 获取的记录数
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Duration    float64    `json:"duration" yaml:"duration"` // 秒
}

// NewSearchTask 创建新任务
func NewSearchTask(query string) *SearchTask {
	return &SearchTask{
		ID:        NewRequestID(),
		Query:     query,
		Status:    TaskStatusPending,
		CreatedAt: time.Now(),
	}
}

// Finish 根据检索结果结束任务
func (t *SearchTask) Finish(resp SearchResponse) {
	now := time.Now()
	t.CompletedAt = &now
	t.Duration = now.Sub(t.CreatedAt).Seconds()
	if resp.IsError {
		t.Status = TaskStatusFailed
		t.Error = resp.Error
		return
	}
	t.Status = TaskStatusCompleted
	t.Records = resp.TotalRecords
}

// ToJSON 序列化为JSON
func (t *SearchTask) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}
