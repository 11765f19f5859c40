package crawlers

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// HTMLPage 基于 goquery 文档的页面实现
// 用于静态详情抓取和离线解析,不执行脚本
type HTMLPage struct {
	mu          sync.Mutex
	url         string
	doc         *goquery.Document
	loader      func(url string) (*goquery.Document, error)
	onClick     func(page *HTMLPage, sel *goquery.Selection) error
	navigations int
	closed      bool
}

// NewHTMLPage 用已解析的文档创建页面
func NewHTMLPage(url string, doc *goquery.Document) *HTMLPage {
	return &HTMLPage{url: url, doc: doc}
}

// ParseHTMLPage 从 HTML 文本创建页面
func ParseHTMLPage(url string, r io.Reader) (*HTMLPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}
	return NewHTMLPage(url, doc), nil
}

// SetLoader 设置 Navigate 时加载文档的函数
func (p *HTMLPage) SetLoader(loader func(url string) (*goquery.Document, error)) {
	p.mu.Lock()
	p.loader = loader
	p.mu.Unlock()
}

// OnClick 设置元素被点击时的回调,可在回调中替换文档模拟页面跳转
func (p *HTMLPage) OnClick(fn func(page *HTMLPage, sel *goquery.Selection) error) {
	p.mu.Lock()
	p.onClick = fn
	p.mu.Unlock()
}

// SetDocument 替换当前文档
func (p *HTMLPage) SetDocument(doc *goquery.Document) {
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
}

// Navigations 累计导航次数
func (p *HTMLPage) Navigations() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.navigations
}

// Closed 页面是否已关闭
func (p *HTMLPage) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *HTMLPage) document() *goquery.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc
}

func (p *HTMLPage) Navigate(url string) error {
	p.mu.Lock()
	p.navigations++
	p.url = url
	loader := p.loader
	p.mu.Unlock()

	if loader == nil {
		return nil
	}
	doc, err := loader(url)
	if err != nil {
		return fmt.Errorf("打开页面失败: %w", err)
	}
	p.SetDocument(doc)
	return nil
}

func (p *HTMLPage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *HTMLPage) HTML() (string, error) {
	doc := p.document()
	if doc == nil {
		return "", nil
	}
	return doc.Html()
}

func (p *HTMLPage) root() *goquery.Selection {
	doc := p.document()
	if doc == nil {
		return &goquery.Selection{}
	}
	return doc.Selection
}

func (p *HTMLPage) Element(selector string) (Element, error) {
	return p.wrapFirst(p.root().Find(selector))
}

func (p *HTMLPage) Elements(selector string) ([]Element, error) {
	return p.wrapAll(p.root().Find(selector)), nil
}

func (p *HTMLPage) ElementByText(selector, pattern string) (Element, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("文本匹配规则无效: %w", err)
	}
	matched := p.root().Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return re.MatchString(strings.TrimSpace(s.Text()))
	})
	return p.wrapFirst(matched)
}

// WaitElement 静态文档不会变化,不等待
func (p *HTMLPage) WaitElement(selector string, _ time.Duration) (Element, error) {
	el, err := p.Element(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return el, nil
}

func (p *HTMLPage) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *HTMLPage) wrapFirst(sel *goquery.Selection) (Element, error) {
	if sel.Length() == 0 {
		return nil, ErrElementNotFound
	}
	return &htmlElement{page: p, sel: sel.First()}, nil
}

func (p *HTMLPage) wrapAll(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, &htmlElement{page: p, sel: s})
	})
	return out
}

type htmlElement struct {
	page *HTMLPage
	sel  *goquery.Selection
}

func (e *htmlElement) Element(selector string) (Element, error) {
	return e.page.wrapFirst(e.sel.Find(selector))
}

func (e *htmlElement) Elements(selector string) ([]Element, error) {
	return e.page.wrapAll(e.sel.Find(selector)), nil
}

func (e *htmlElement) Next() (Element, error) {
	return e.page.wrapFirst(e.sel.Next())
}

func (e *htmlElement) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *htmlElement) Attribute(name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *htmlElement) Enabled() (bool, error) {
	if _, disabled := e.sel.Attr("disabled"); disabled {
		return false, nil
	}
	class, _ := e.sel.Attr("class")
	return !hasClass(class, "disabled"), nil
}

func (e *htmlElement) Click() error {
	e.page.mu.Lock()
	fn := e.page.onClick
	e.page.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(e.page, e.sel)
}

// Input 输入内容记录在 value 属性上
func (e *htmlElement) Input(text string) error {
	old, _ := e.sel.Attr("value")
	e.sel.SetAttr("value", old+text)
	return nil
}

func (e *htmlElement) Clear() error {
	e.sel.SetAttr("value", "")
	return nil
}

func hasClass(classAttr, name string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == name {
			return true
		}
	}
	return false
}
