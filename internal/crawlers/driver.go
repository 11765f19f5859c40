package crawlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/config"
	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/rs/zerolog/log"
)

// 页面选择器
const (
	fieldBoxSelector    = "#DBFieldBox"
	searchInputSelector = "#txt_SearchText"
	searchBtnSelector   = ".search-btn"

	professionalTabSelector = "li.professional-search"
	expressionSelector      = "textarea.professional-input, textarea#ExpertValue, textarea.search-input"
	expressionBtnSelector   = "div.professional-search input.btn-search, input.btn-search"

	matchWaitSelector  = "a.fz14"
	matchLinkSelector  = "#gridTable a.fz14"
	professionalTabTxt = `^\s*专业检索\s*$`
)

// DefaultElementTimeout 等待单个控件的时间
const DefaultElementTimeout = 10 * time.Second

// Driver 在标签页上执行检索流程
type Driver struct {
	pacer          *Pacer
	elementTimeout time.Duration
	resultsTimeout time.Duration
}

// NewDriver 创建页面驱动
func NewDriver(pacer *Pacer, elementTimeout, resultsTimeout time.Duration) *Driver {
	if elementTimeout <= 0 {
		elementTimeout = DefaultElementTimeout
	}
	if resultsTimeout <= 0 {
		resultsTimeout = DefaultResultsTimeout
	}
	return &Driver{pacer: pacer, elementTimeout: elementTimeout, resultsTimeout: resultsTimeout}
}

// BuildExpression 专业检索表达式
// 检索字段不支持专业检索时退化为主题(SU)
func BuildExpression(fieldName, text, journal string) string {
	code, ok := config.ProfessionalSearchFields[fieldName]
	if !ok {
		code = config.SearchTypes[config.DefaultSearchType]
	}
	return fmt.Sprintf("(%s='%s') AND (JN='%s')", code, text, journal)
}

// DirectSearch 首页检索: 选择字段 → 逐字输入 → 提交 → 排序
func (d *Driver) DirectSearch(ctx context.Context, page Page, q models.SearchQuery) error {
	if err := page.Navigate(config.HomeURL); err != nil {
		return fmt.Errorf("打开知网首页失败: %w", err)
	}
	if err := d.pacer.Pause(ctx, time.Second, 2*time.Second); err != nil {
		return err
	}

	if q.FieldName != config.DefaultSearchType {
		if value, ok := config.SearchTypeValues[q.FieldName]; ok {
			if err := d.selectField(ctx, page, value); err != nil {
				return err
			}
		}
	}

	if err := d.typeSlowly(ctx, page, searchInputSelector, q.Text); err != nil {
		return err
	}
	if err := d.submit(ctx, page, searchBtnSelector); err != nil {
		return err
	}

	d.applySort(ctx, page, q.SortName)
	return nil
}

// ProfessionalSearch 高级检索页的专业检索,用于限定期刊,返回实际使用的表达式
func (d *Driver) ProfessionalSearch(ctx context.Context, page Page, q models.SearchQuery) (string, error) {
	expr := BuildExpression(q.FieldName, q.Text, q.Journal)

	if err := page.Navigate(config.AdvSearchURL); err != nil {
		return expr, fmt.Errorf("打开高级检索页失败: %w", err)
	}
	if err := d.pacer.Pause(ctx, time.Second, 2*time.Second); err != nil {
		return expr, err
	}

	if err := d.openProfessionalTab(page); err != nil {
		return expr, err
	}
	if err := d.pacer.Pause(ctx, 500*time.Millisecond, time.Second); err != nil {
		return expr, err
	}

	textarea, err := page.WaitElement(expressionSelector, d.elementTimeout)
	if err != nil {
		return expr, fmt.Errorf("找不到专业检索输入框: %w", err)
	}
	if err := textarea.Clear(); err != nil {
		return expr, fmt.Errorf("清空专业检索输入框失败: %w", err)
	}
	if err := textarea.Input(expr); err != nil {
		return expr, fmt.Errorf("输入检索表达式失败: %w", err)
	}
	if err := d.pacer.Pause(ctx, 300*time.Millisecond, 500*time.Millisecond); err != nil {
		return expr, err
	}

	if err := d.submit(ctx, page, expressionBtnSelector); err != nil {
		return expr, err
	}

	d.applySort(ctx, page, q.SortName)
	return expr, nil
}

// OpenDetail 打开详情页
func (d *Driver) OpenDetail(ctx context.Context, page Page, url string) error {
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("打开详情页失败: %w", err)
	}
	return d.pacer.Pause(ctx, 1500*time.Millisecond, 2500*time.Millisecond)
}

// MatchCandidates 首页按默认字段检索,返回第一页结果的标题和链接
// 结果列表未出现时返回空列表
func (d *Driver) MatchCandidates(ctx context.Context, page Page, text string) ([]models.MatchCandidate, error) {
	if err := page.Navigate(config.HomeURL); err != nil {
		return nil, fmt.Errorf("打开知网首页失败: %w", err)
	}
	if err := d.pacer.Pause(ctx, time.Second, 2*time.Second); err != nil {
		return nil, err
	}
	if err := d.typeSlowly(ctx, page, searchInputSelector, text); err != nil {
		return nil, err
	}
	if err := d.submit(ctx, page, searchBtnSelector); err != nil {
		return nil, err
	}

	candidates := make([]models.MatchCandidate, 0)
	if _, err := page.WaitElement(matchWaitSelector, d.resultsTimeout); err != nil {
		log.Debug().Err(err).Msg("检索结果未出现")
		return candidates, nil
	}

	links, err := page.Elements(matchLinkSelector)
	if err != nil {
		return candidates, nil
	}
	for _, link := range links {
		title, err := link.Text()
		if err != nil {
			continue
		}
		if title = strings.TrimSpace(title); title == "" {
			continue
		}
		href, _, _ := link.Attribute("href")
		candidates = append(candidates, models.MatchCandidate{Title: title, URL: href})
	}
	return candidates, nil
}

// selectField 展开字段下拉框并选择检索字段
func (d *Driver) selectField(ctx context.Context, page Page, value string) error {
	box, err := page.WaitElement(fieldBoxSelector, d.elementTimeout)
	if err != nil {
		return fmt.Errorf("找不到检索字段下拉框: %w", err)
	}
	if err := box.Click(); err != nil {
		return fmt.Errorf("展开检索字段下拉框失败: %w", err)
	}
	if err := d.pacer.Sleep(ctx, 800*time.Millisecond); err != nil {
		return err
	}

	option, err := page.WaitElement(fmt.Sprintf(`#DBFieldList a[value="%s"]`, value), d.elementTimeout)
	if err != nil {
		return fmt.Errorf("找不到检索字段选项 %s: %w", value, err)
	}
	if err := option.Click(); err != nil {
		return fmt.Errorf("选择检索字段失败: %w", err)
	}
	return d.pacer.Sleep(ctx, 500*time.Millisecond)
}

// typeSlowly 清空输入框后逐字输入
func (d *Driver) typeSlowly(ctx context.Context, page Page, selector, text string) error {
	input, err := page.WaitElement(selector, d.elementTimeout)
	if err != nil {
		return fmt.Errorf("找不到检索输入框: %w", err)
	}
	if err := input.Clear(); err != nil {
		return fmt.Errorf("清空检索输入框失败: %w", err)
	}
	for _, r := range text {
		if err := input.Input(string(r)); err != nil {
			return fmt.Errorf("输入检索词失败: %w", err)
		}
		if err := d.pacer.Keystroke(ctx); err != nil {
			return err
		}
	}
	return nil
}

// submit 点击检索按钮,失败是致命错误
func (d *Driver) submit(ctx context.Context, page Page, selector string) error {
	btn, err := page.WaitElement(selector, d.elementTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitUnreachable, err)
	}
	if err := btn.Click(); err != nil {
		return fmt.Errorf("%w: %v", ErrSubmitUnreachable, err)
	}
	return d.pacer.Pause(ctx, 2*time.Second, 3*time.Second)
}

func (d *Driver) openProfessionalTab(page Page) error {
	tab, err := page.WaitElement(professionalTabSelector, 5*time.Second)
	if err == nil {
		if err = tab.Click(); err == nil {
			return nil
		}
	}
	log.Debug().Err(err).Msg("专业检索标签定位失败,按文本查找")

	tab, err = page.ElementByText("li, a, span", professionalTabTxt)
	if err != nil {
		return fmt.Errorf("找不到专业检索标签: %w", err)
	}
	if err := tab.Click(); err != nil {
		return fmt.Errorf("切换到专业检索失败: %w", err)
	}
	return nil
}

// applySort 切换排序方式,失败时保留默认排序
func (d *Driver) applySort(ctx context.Context, page Page, sortName string) {
	if sortName == "" || sortName == config.DefaultSortType {
		return
	}
	code, ok := config.SortTypes[sortName]
	if !ok {
		return
	}

	el, err := page.WaitElement("#"+code, d.elementTimeout)
	if err == nil {
		err = el.Click()
	}
	if err != nil {
		log.Debug().Err(err).Str("sort", sortName).Msg("排序控件不可用,保持默认排序")
		return
	}
	if d.pacer.Pause(ctx, 1500*time.Millisecond, 2500*time.Millisecond) != nil {
		return
	}
	if _, err := page.WaitElement(ResultRowSelector, d.resultsTimeout); err != nil {
		log.Debug().Err(err).Str("sort", sortName).Msg("排序后结果列表未刷新")
	}
}
