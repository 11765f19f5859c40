package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
)

// MaxHeaderValueLength HTTP头部值最大长度 (8KB)
const MaxHeaderValueLength = 8192

// ForbiddenHeaders 由浏览器或HTTP客户端管理的头部,不允许自定义
// User-Agent 由会话池按标签页随机分配
var ForbiddenHeaders = []string{
	"Host", "Content-Length", "Transfer-Encoding", "Connection", "User-Agent",
}

var (
	headerNameRegex  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	headerValueRegex = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// ValidateHeader 按 RFC 7230 验证单个头部
func ValidateHeader(name, value string) error {
	for _, h := range ForbiddenHeaders {
		if strings.EqualFold(h, name) {
			return &models.ValidationError{Field: "header", Value: name, Reason: "此头部由浏览器自动管理,不允许自定义"}
		}
	}
	if name == "" || !headerNameRegex.MatchString(name) {
		return &models.ValidationError{Field: "header", Value: name, Reason: "头部名称非法 (仅允许字母、数字和连字符)"}
	}
	if len(value) > MaxHeaderValueLength {
		return &models.ValidationError{
			Field:  "header",
			Value:  name,
			Reason: fmt.Sprintf("头部值过长: %d 字节 (最大 %d)", len(value), MaxHeaderValueLength),
		}
	}
	if !headerValueRegex.MatchString(value) {
		return &models.ValidationError{Field: "header", Value: name, Reason: "头部值包含非法字符 (仅允许可打印ASCII字符)"}
	}
	return nil
}

// ValidateHeaders 验证所有头部,返回第一个错误
func ValidateHeaders(headers http.Header) error {
	for name, values := range headers {
		for _, value := range values {
			if err := ValidateHeader(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}
