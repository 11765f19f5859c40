package crawlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog/log"
)

// RodOptions 浏览器启动参数
type RodOptions struct {
	Headless  bool
	Bin       string // 为空时由 launcher 自动查找或下载
	NoSandbox bool
	Headers   http.Header // 附加到每个标签页的请求头
}

// RodEngine 基于 go-rod 的浏览器引擎
type RodEngine struct {
	opts RodOptions

	mu        sync.Mutex
	launchers []*launcher.Launcher
}

// NewRodEngine 创建 rod 引擎
func NewRodEngine(opts RodOptions) *RodEngine {
	return &RodEngine{opts: opts}
}

// Launch 启动一个新的浏览器进程并连接
func (e *RodEngine) Launch(ctx context.Context) (Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(e.opts.Headless).
		NoSandbox(e.opts.NoSandbox).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-infobars").
		Set("disable-extensions").
		Set("disable-gpu")
	if e.opts.Bin != "" {
		l = l.Bin(e.opts.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	e.mu.Lock()
	e.launchers = append(e.launchers, l)
	e.mu.Unlock()

	log.Debug().Str("control_url", controlURL).Msg("浏览器已启动")
	return &rodSession{browser: browser, launcher: l, headers: e.opts.Headers}, nil
}

// Stop 结束所有浏览器进程并清理用户数据目录
func (e *RodEngine) Stop() error {
	e.mu.Lock()
	launchers := e.launchers
	e.launchers = nil
	e.mu.Unlock()

	for _, l := range launchers {
		l.Kill()
		l.Cleanup()
	}
	return nil
}

type rodSession struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	headers  http.Header
}

func (s *rodSession) NewPage(ctx context.Context, userAgent string) (Page, error) {
	raw, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("创建标签页失败: %w", err)
	}

	// 反自动化检测脚本,失败不影响使用
	if _, err := raw.EvalOnNewDocument(stealth.JS); err != nil {
		log.Debug().Err(err).Msg("注入反检测脚本失败")
	}

	if err := raw.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("设置User-Agent失败: %w", err)
	}

	if len(s.headers) > 0 {
		dict := make([]string, 0, len(s.headers)*2)
		for name := range s.headers {
			dict = append(dict, name, s.headers.Get(name))
		}
		if _, err := raw.SetExtraHeaders(dict); err != nil {
			log.Debug().Err(err).Msg("设置附加请求头失败")
		}
	}

	return &rodPage{raw: raw, page: raw.Context(ctx)}, nil
}

func (s *rodSession) Alive(timeout time.Duration) bool {
	_, err := s.browser.Timeout(timeout).Version()
	return err == nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	return err
}

// rodPage page 绑定了操作的 context,raw 用于关闭
type rodPage struct {
	raw  *rod.Page
	page *rod.Page
}

func (p *rodPage) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("打开页面失败: %w", err)
	}
	if err := p.page.WaitLoad(); err != nil {
		return fmt.Errorf("等待页面加载失败: %w", err)
	}
	return nil
}

func (p *rodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) Element(selector string) (Element, error) {
	has, el, err := p.page.Has(selector)
	return wrapRodElement(has, el, err)
}

func (p *rodPage) Elements(selector string) ([]Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapRodElements(els), nil
}

func (p *rodPage) ElementByText(selector, pattern string) (Element, error) {
	has, el, err := p.page.HasR(selector, pattern)
	return wrapRodElement(has, el, err)
}

func (p *rodPage) WaitElement(selector string, timeout time.Duration) (Element, error) {
	el, err := p.page.Timeout(timeout).Element(selector)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
		}
		return nil, err
	}
	return &rodElement{el: el.CancelTimeout()}, nil
}

func (p *rodPage) Close() error {
	return p.raw.Close()
}

type rodElement struct {
	el *rod.Element
}

func wrapRodElement(has bool, el *rod.Element, err error) (Element, error) {
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrElementNotFound
	}
	return &rodElement{el: el}, nil
}

func wrapRodElements(els rod.Elements) []Element {
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, &rodElement{el: el})
	}
	return out
}

func (e *rodElement) Element(selector string) (Element, error) {
	has, el, err := e.el.Has(selector)
	return wrapRodElement(has, el, err)
}

func (e *rodElement) Elements(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapRodElements(els), nil
}

func (e *rodElement) Next() (Element, error) {
	el, err := e.el.Sleeper(rod.NotFoundSleeper).Next()
	if err != nil {
		var notFound *rod.ElementNotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrElementNotFound
		}
		return nil, err
	}
	return &rodElement{el: el}, nil
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) Enabled() (bool, error) {
	disabled, err := e.el.Disabled()
	if err != nil {
		return false, err
	}
	if disabled {
		return false, nil
	}
	// 知网分页按钮通过 class 标记禁用
	class, _, err := e.Attribute("class")
	if err != nil {
		return false, err
	}
	return !hasClass(class, "disabled"), nil
}

func (e *rodElement) Click() error {
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("%w: %v", ErrNotInteractive, err)
	}
	return nil
}

func (e *rodElement) Input(text string) error {
	return e.el.Input(text)
}

func (e *rodElement) Clear() error {
	if err := e.el.SelectAllText(); err != nil {
		return err
	}
	return e.el.Input("")
}
