package crawlers

import (
	"context"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/rs/zerolog/log"
)

// 结果页选择器
const (
	ResultRowSelector = "table.result-table-list tbody tr"
	NextPageSelector  = "#PageNext"
)

// DefaultResultsTimeout 等待结果列表出现的时间
const DefaultResultsTimeout = 15 * time.Second

// Collector 逐页收集检索结果
type Collector struct {
	pacer       *Pacer
	rowsTimeout time.Duration
}

// NewCollector 创建分页收集器
func NewCollector(pacer *Pacer, rowsTimeout time.Duration) *Collector {
	if rowsTimeout <= 0 {
		rowsTimeout = DefaultResultsTimeout
	}
	return &Collector{pacer: pacer, rowsTimeout: rowsTimeout}
}

// Collect 收集最多 pageCount 页结果,每条记录标注来源页码
// 下一页按钮缺失或禁用时提前结束,单页失败只是该页没有记录
func (c *Collector) Collect(ctx context.Context, page Page, pageCount int) []models.Paper {
	papers := make([]models.Paper, 0)

	for n := 1; n <= pageCount; n++ {
		rows := c.collectPage(page, n)
		papers = append(papers, rows...)
		log.Debug().Int("page", n).Int("rows", len(rows)).Msg("结果页已解析")

		if n == pageCount {
			break
		}
		if ctx.Err() != nil || !c.nextPage(ctx, page) {
			break
		}
	}
	return papers
}

func (c *Collector) collectPage(page Page, n int) (papers []models.Paper) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn().Int("page", n).Interface("panic", r).Msg("结果页解析异常")
			papers = nil
		}
	}()

	rows, err := page.Elements(ResultRowSelector)
	if err != nil || len(rows) == 0 {
		if _, err := page.WaitElement(ResultRowSelector, c.rowsTimeout); err != nil {
			log.Debug().Err(err).Int("page", n).Msg("结果列表未出现")
			return nil
		}
		if rows, err = page.Elements(ResultRowSelector); err != nil {
			return nil
		}
	}

	for _, row := range rows {
		p := ExtractResultRow(row)
		if p.Title == "" {
			continue
		}
		p.Page = n
		papers = append(papers, p)
	}
	return papers
}

// nextPage 点击下一页,返回是否成功翻页
func (c *Collector) nextPage(ctx context.Context, page Page) bool {
	next, err := page.Element(NextPageSelector)
	if err != nil {
		log.Debug().Msg("没有下一页按钮,停止翻页")
		return false
	}
	if enabled, err := next.Enabled(); err != nil || !enabled {
		log.Debug().Msg("下一页按钮已禁用,停止翻页")
		return false
	}
	if err := next.Click(); err != nil {
		log.Debug().Err(err).Msg("点击下一页失败,停止翻页")
		return false
	}
	return c.pacer.Pause(ctx, 1500*time.Millisecond, 2500*time.Millisecond) == nil
}
