package core

import (
	"net/http"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/RecoveryAshes/CnkiCrawl/internal/utils"
)

// HeaderManager 合并配置文件与命令行的附加请求头
// 结果同时用于浏览器标签页和静态详情抓取
// 实现 models.HeaderProvider 接口
type HeaderManager struct {
	defaults http.Header
	config   http.Header
	cli      http.Header
}

// NewHeaderManager 创建头部管理器
func NewHeaderManager(configHeaders map[string]string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults: getDefaultHeaders(),
		config:   make(http.Header),
		cli:      make(http.Header),
	}

	for name, value := range configHeaders {
		hm.config.Set(name, value)
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	}

	return hm, nil
}

// getDefaultHeaders 系统默认头部
func getDefaultHeaders() http.Header {
	return http.Header{
		"Accept-Language": []string{"zh-CN,zh;q=0.9,en;q=0.8"},
	}
}

// Validate 验证顺序: 默认 → 配置 → 命令行
func (hm *HeaderManager) Validate() error {
	for _, h := range []http.Header{hm.defaults, hm.config, hm.cli} {
		if err := utils.ValidateHeaders(h); err != nil {
			utils.Errorf("HTTP头部验证失败: %v", err)
			return err
		}
	}
	return nil
}

// GetMergedHeaders 按优先级合并头部 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, h := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range h {
			result[name] = values
		}
	}
	return result
}

// GetHeaders 实现 HeaderProvider 接口
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	merged := hm.GetMergedHeaders()
	utils.Debugf("附加HTTP头部: %s", utils.RedactToString(merged))
	return merged, nil
}
