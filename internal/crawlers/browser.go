package crawlers

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPoolClosed 会话池已关闭
	ErrPoolClosed = errors.New("会话池已关闭")
	// ErrElementNotFound 页面中找不到目标元素
	ErrElementNotFound = errors.New("元素不存在")
	// ErrNotInteractive 元素存在但不可交互(禁用或不可见)
	ErrNotInteractive = errors.New("元素不可交互")
	// ErrSubmitUnreachable 检索按钮无法点击
	ErrSubmitUnreachable = errors.New("无法提交检索")
	// ErrResultsTimeout 结果列表在限定时间内未出现
	ErrResultsTimeout = errors.New("等待检索结果超时")
)

// Element 页面元素上的最小操作集合
// 查询类方法找不到元素时返回 ErrElementNotFound,不等待
type Element interface {
	Element(selector string) (Element, error)
	Elements(selector string) ([]Element, error)
	// Next 下一个兄弟元素
	Next() (Element, error)
	Text() (string, error)
	// Attribute 属性不存在时返回 ok=false
	Attribute(name string) (value string, ok bool, err error)
	Enabled() (bool, error)
	Click() error
	// Input 在当前内容后追加文本
	Input(text string) error
	// Clear 清空输入框
	Clear() error
}

// Page 一个标签页(或离线HTML快照)
type Page interface {
	// Navigate 打开URL并等待页面加载
	Navigate(url string) error
	URL() string
	HTML() (string, error)

	Element(selector string) (Element, error)
	Elements(selector string) ([]Element, error)
	// ElementByText 匹配选择器且文本匹配 pattern(正则) 的第一个元素
	ElementByText(selector, pattern string) (Element, error)
	// WaitElement 在 timeout 内等待元素出现,超时返回 ErrElementNotFound
	WaitElement(selector string, timeout time.Duration) (Element, error)

	Close() error
}

// Session 一个长期存活的浏览器实例
type Session interface {
	// NewPage 打开新标签页,使用给定的 User-Agent
	NewPage(ctx context.Context, userAgent string) (Page, error)
	// Alive 浏览器能否在限定时间内响应一次协议往返
	Alive(timeout time.Duration) bool
	Close() error
}

// Engine 浏览器引擎,负责启动浏览器进程
type Engine interface {
	Launch(ctx context.Context) (Session, error)
	// Stop 结束引擎启动的全部进程
	Stop() error
}
