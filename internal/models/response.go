package models

import "encoding/json"

// SearchResponse 检索操作的返回载荷
// 失败时 IsError=true, Records 为空数组而不是 null
type SearchResponse struct {
	Query         string  `json:"query,omitempty" yaml:"query,omitempty"`
	ResolvedField string  `json:"resolved_field,omitempty" yaml:"resolved_field,omitempty"`
	ResolvedSort  string  `json:"resolved_sort,omitempty" yaml:"resolved_sort,omitempty"`
	Journal       string  `json:"journal,omitempty" yaml:"journal,omitempty"`
	Expression    string  `json:"expression,omitempty" yaml:"expression,omitempty"` // 专业检索表达式
	TotalPages    int     `json:"total_pages" yaml:"total_pages"`
	TotalRecords  int     `json:"total_records" yaml:"total_records"`
	Records       []Paper `json:"records" yaml:"records"`

	IsError bool   `json:"isError,omitempty" yaml:"isError,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewSearchError 构造检索失败载荷
func NewSearchError(err error) SearchResponse {
	return SearchResponse{
		Records: []Paper{},
		IsError: true,
		Error:   err.Error(),
	}
}

// DetailResponse 详情操作的返回载荷
type DetailResponse struct {
	PaperDetail `yaml:",inline"`

	IsError bool   `json:"isError,omitempty" yaml:"isError,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewDetailError 构造详情失败载荷,保留请求的URL
func NewDetailError(url string, err error) DetailResponse {
	return DetailResponse{
		PaperDetail: PaperDetail{URL: url},
		IsError:     true,
		Error:       err.Error(),
	}
}

// MarshalJSON 失败时只输出 {isError, error, url}
func (r DetailResponse) MarshalJSON() ([]byte, error) {
	if r.IsError {
		return json.Marshal(struct {
			IsError bool   `json:"isError"`
			Error   string `json:"error"`
			URL     string `json:"url"`
		}{true, r.Error, r.URL})
	}
	return json.Marshal(r.PaperDetail)
}

// MatchResponse 最佳匹配操作的返回载荷
type MatchResponse struct {
	Query           string          `json:"query,omitempty" yaml:"query,omitempty"`
	BestMatch       *MatchCandidate `json:"best_match" yaml:"best_match"`
	TotalCandidates int             `json:"total_candidates" yaml:"total_candidates"`
	Message         string          `json:"message,omitempty" yaml:"message,omitempty"`

	IsError bool   `json:"isError,omitempty" yaml:"isError,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SearchTypeCatalog 可识别的检索字段词表
type SearchTypeCatalog struct {
	ChineseTypes   []string `json:"chinese_types" yaml:"chinese_types"`
	EnglishAliases []string `json:"english_aliases" yaml:"english_aliases"`
	SortTypes      []string `json:"sort_types" yaml:"sort_types"`
	SortAliases    []string `json:"sort_aliases" yaml:"sort_aliases"`
	Default        string   `json:"default" yaml:"default"`
	DefaultSort    string   `json:"default_sort" yaml:"default_sort"`
}

// ServerStatus 服务状态(只读)
type ServerStatus struct {
	ServerName string        `json:"server_name" yaml:"server_name"`
	Version    string        `json:"version" yaml:"version"`
	Backend    string        `json:"backend" yaml:"backend"`
	Tools      []string      `json:"tools" yaml:"tools"`
	Features   []string      `json:"features" yaml:"features"`
	Pool       PoolStats     `json:"pool" yaml:"pool"`
	Memory     *MemoryStatus `json:"memory,omitempty" yaml:"memory,omitempty"`
}

// PoolStats 会话池状态快照
type PoolStats struct {
	SessionAlive  bool    `json:"session_alive" yaml:"session_alive"`
	IdleSeconds   float64 `json:"idle_seconds" yaml:"idle_seconds"`
	IdleTimeout   float64 `json:"idle_timeout" yaml:"idle_timeout"` // 秒
	ActiveLeases  int     `json:"active_leases" yaml:"active_leases"`
	SessionsBuilt int     `json:"sessions_built" yaml:"sessions_built"` // 累计创建的会话数
	Closed        bool    `json:"closed" yaml:"closed"`
}

// MemoryStatus 系统内存状态
type MemoryStatus struct {
	TotalMemory     uint64  `json:"total_memory" yaml:"total_memory"`         // 系统总内存(字节)
	AvailableMemory uint64  `json:"available_memory" yaml:"available_memory"` // 可用内存(字节)
	CPUPercent      float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPressure  string  `json:"memory_pressure" yaml:"memory_pressure"` // normal/warning/critical
}
