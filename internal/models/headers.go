package models

import (
	"fmt"
	"net/http"
	"strings"
)

// CliHeaders 命令行传递的头部列表,每项格式为 "Name: Value"
type CliHeaders []string

// Parse 将字符串列表解析为 http.Header
func (ch CliHeaders) Parse() (http.Header, error) {
	result := make(http.Header)
	for i, s := range ch {
		name, value, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: 缺少冒号分隔符,应为 'Name: Value'", i+1)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("参数 --header 第%d项格式错误: 头部名称不能为空", i+1)
		}
		result.Set(name, strings.TrimSpace(value))
	}
	return result, nil
}

// HeaderProvider 额外HTTP头部的提供者
type HeaderProvider interface {
	// GetHeaders 返回按优先级合并后的头部(配置 < 命令行)
	GetHeaders() (http.Header, error)
}

// ValidationError 参数或头部校验错误
type ValidationError struct {
	Field  string // 出错的字段
	Value  string // 出错的值
	Reason string // 错误原因
}

// Error 实现error接口
func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("参数校验失败 [%s]: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("参数校验失败 [%s=%s]: %s", e.Field, e.Value, e.Reason)
}

// ConfigError 配置文件错误
type ConfigError struct {
	FilePath string
	Cause    error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
