package crawlers

import (
	"strings"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/rs/zerolog/log"
)

// 检索结果行选择器
const (
	rowTitleSelector    = "a.fz14"
	rowAuthorSelector   = "td.author a"
	rowSourceSelector   = "td.source a"
	rowDateSelector     = "td.date"
	rowCitedSelector    = "td.quote a"
	rowDownloadSelector = "td.download a"
)

// node Page 和 Element 共有的查询能力
type node interface {
	Element(selector string) (Element, error)
	Elements(selector string) ([]Element, error)
}

// tryField 单个字段提取出错或 panic 时返回默认值,不影响其他字段
func tryField[T any](field string, def T, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("field", field).Interface("panic", r).Msg("字段提取异常")
			out = def
		}
	}()

	v, err := fn()
	if err != nil {
		return def
	}
	return v
}

func textOf(n node, selector string) (string, error) {
	el, err := n.Element(selector)
	if err != nil {
		return "", err
	}
	t, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(t), nil
}

// textOr 元素不存在时返回 def,存在时返回其文本(可能为空)
func textOr(n node, selector, def string) (string, error) {
	el, err := n.Element(selector)
	if err != nil {
		return def, nil
	}
	t, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(t), nil
}

func textsOf(n node, selector string) ([]string, error) {
	els, err := n.Elements(selector)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text()
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

// ExtractResultRow 解析检索结果表格中的一行
// 每个字段独立容错,缺失时为 "" / [] / "0"
func ExtractResultRow(row Element) models.Paper {
	return models.Paper{
		Title: tryField("title", "", func() (string, error) {
			return textOf(row, rowTitleSelector)
		}),
		URL: tryField("url", "", func() (string, error) {
			a, err := row.Element(rowTitleSelector)
			if err != nil {
				return "", err
			}
			href, _, err := a.Attribute("href")
			return href, err
		}),
		Authors: tryField("authors", []string{}, func() ([]string, error) {
			return textsOf(row, rowAuthorSelector)
		}),
		Source: tryField("source", "", func() (string, error) {
			return textOf(row, rowSourceSelector)
		}),
		Date: tryField("date", "", func() (string, error) {
			return textOf(row, rowDateSelector)
		}),
		CitedCount: tryField("cited_count", "0", func() (string, error) {
			return textOr(row, rowCitedSelector, "0")
		}),
		DownloadCount: tryField("download_count", "0", func() (string, error) {
			return textOr(row, rowDownloadSelector, "0")
		}),
	}
}

// ExtractDetail 解析论文详情页
func ExtractDetail(page Page, url string) models.PaperDetail {
	d := models.NewPaperDetail(url)

	d.Title = tryField("title", "", func() (string, error) {
		if t, err := textOf(page, "div.wx-tit h1"); err == nil && t != "" {
			return t, nil
		}
		return textOf(page, "h1")
	})
	d.TitleEN = tryField("title_en", "", func() (string, error) {
		return textOf(page, "div.wx-tit h2")
	})
	d.Authors = tryField("authors", []string{}, func() ([]string, error) {
		return textsOf(page, "h3.author span a")
	})
	d.Institutions = tryField("institutions", []string{}, func() ([]string, error) {
		return textsOf(page, "h3.orgn span a")
	})
	d.Abstract = tryField("abstract", "", func() (string, error) {
		return textOf(page, "#ChDivSummary")
	})
	d.AbstractEN = tryField("abstract_en", "", func() (string, error) {
		return textOf(page, "#EnChDivSummary")
	})
	d.Keywords = tryField("keywords", []string{}, func() ([]string, error) {
		return keywordsOf(page, "p.keywords a")
	})
	d.KeywordsEN = tryField("keywords_en", []string{}, func() ([]string, error) {
		return keywordsOf(page, "p.keywords-en a")
	})
	d.Source = tryField("source", "", func() (string, error) {
		s, err := textOf(page, `div.top-tip a[href*="navi.cnki.net"]`)
		return strings.TrimRight(s, " ."), err
	})

	info := tryField("venue_info", VenueInfo{}, func() (VenueInfo, error) {
		s, err := textOf(page, "div.top-tip span")
		return ParseVenueInfo(s), err
	})
	d.Year, d.Volume, d.Issue, d.Pages = info.Year, info.Volume, info.Issue, info.Pages

	d.DOI = tryField("doi", "", func() (string, error) {
		return labelledText(page, "li.top-space", "DOI", "p")
	})
	d.CitedCount = tryField("cited_count", "0", func() (string, error) {
		if t, err := textOf(page, "#refs a"); err == nil && t != "" {
			return t, nil
		}
		return counterText(page, "被引")
	})
	d.DownloadCount = tryField("download_count", "0", func() (string, error) {
		if t, err := textOf(page, "#DownLoadParts a"); err == nil && t != "" {
			return t, nil
		}
		return counterText(page, "下载")
	})
	// 统计栏存在但数字为空时同样按 "0" 处理
	if d.CitedCount == "" {
		d.CitedCount = "0"
	}
	if d.DownloadCount == "" {
		d.DownloadCount = "0"
	}
	d.Fund = tryField("fund", "", func() (string, error) {
		if t, err := labelledText(page, "li", "基金", "p"); err == nil && t != "" {
			return t, nil
		}
		return textOf(page, "p.funds span")
	})
	d.Classification = tryField("classification", "", func() (string, error) {
		return labelledText(page, "li", "分类号", "p")
	})

	return d
}

// keywordsOf 关键词去掉末尾的分号
func keywordsOf(page Page, selector string) ([]string, error) {
	raw, err := textsOf(page, selector)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		if k = strings.TrimSpace(strings.TrimRight(k, ";；")); k != "" {
			out = append(out, k)
		}
	}
	return out, nil
}

// labelledText 找到第一个文本包含 label 的 container,返回其中 child 的文本
func labelledText(page Page, container, label, child string) (string, error) {
	items, err := page.Elements(container)
	if err != nil {
		return "", err
	}
	for _, item := range items {
		t, err := item.Text()
		if err != nil || !strings.Contains(t, label) {
			continue
		}
		if v, err := textOf(item, child); err == nil {
			return v, nil
		}
	}
	return "", ErrElementNotFound
}

// counterText 统计栏中 "被引"/"下载" 标签后紧跟的数字
func counterText(page Page, label string) (string, error) {
	spans, err := page.Elements("div.total-inform span")
	if err != nil {
		return "", err
	}
	for _, span := range spans {
		t, err := span.Text()
		if err != nil || !strings.Contains(t, label) {
			continue
		}
		next, err := span.Next()
		if err != nil {
			return "", err
		}
		v, err := next.Text()
		return strings.TrimSpace(v), err
	}
	return "", ErrElementNotFound
}

// VenueInfo 期刊卷期信息
type VenueInfo struct {
	Year   string
	Volume string
	Issue  string
	Pages  string
}

var venueReplacer = strings.NewReplacer("，", ",", "（", "(", "）", ")", "：", ":")

// ParseVenueInfo 解析 "年, 卷(期): 页码" 格式,例如 "2023, 45(3): 12-20"
// 不含逗号时全部为空;缺少括号或冒号时对应字段为空
func ParseVenueInfo(s string) VenueInfo {
	s = venueReplacer.Replace(s)
	year, rest, ok := strings.Cut(s, ",")
	if !ok {
		return VenueInfo{}
	}

	info := VenueInfo{Year: strings.TrimSpace(year)}
	// 只取第一个逗号后的一段
	rest, _, _ = strings.Cut(rest, ",")

	if open := strings.Index(rest, "("); open >= 0 && strings.Contains(rest, ")") {
		info.Volume = strings.TrimSpace(rest[:open])
		issue, _, _ := strings.Cut(rest[open+1:], ")")
		info.Issue = strings.TrimSpace(issue)
	}
	if i := strings.LastIndex(rest, ":"); i >= 0 {
		info.Pages = strings.TrimSpace(rest[i+1:])
	}
	return info
}
