package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// PortalDomain 目标站点的注册域名
const PortalDomain = "cnki.net"

// ErrForeignURL 详情URL不属于目标站点
var ErrForeignURL = errors.New("URL 必须是 CNKI 链接")

// ValidateDetailURL 验证详情页URL: 必须是 http(s) 且主机属于 cnki.net
func ValidateDetailURL(urlStr string) error {
	if strings.TrimSpace(urlStr) == "" {
		return ErrForeignURL
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: 协议必须是HTTP或HTTPS", ErrForeignURL)
	}
	host := strings.ToLower(parsed.Hostname())
	if host != PortalDomain && !strings.HasSuffix(host, "."+PortalDomain) {
		return fmt.Errorf("%w: %s", ErrForeignURL, host)
	}
	return nil
}

// NewRequestID 生成唯一请求ID,用于日志关联
func NewRequestID() string {
	return uuid.New().String()
}
