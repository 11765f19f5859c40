package core

import (
	"context"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/RecoveryAshes/CnkiCrawl/internal/utils"
	"github.com/schollz/progressbar/v3"
)

// Searcher 执行单次检索
type Searcher interface {
	Search(ctx context.Context, req SearchRequest) models.SearchResponse
}

// BatchSearcher 批量检索器,按顺序逐个执行
type BatchSearcher struct {
	searcher      Searcher
	template      SearchRequest
	batchDelay    time.Duration
	continueOnErr bool
	showProgress  bool
}

// BatchResult 单个检索词的结果
type BatchResult struct {
	Task     *models.SearchTask     `json:"task" yaml:"task"`
	Response models.SearchResponse `json:"response" yaml:"response"`
}

// BatchSummary 批量检索摘要
type BatchSummary struct {
	TotalQueries  int           `json:"total_queries" yaml:"total_queries"`
	SuccessCount  int           `json:"success_count" yaml:"success_count"`
	FailCount     int           `json:"fail_count" yaml:"fail_count"`
	SkippedCount  int           `json:"skipped_count" yaml:"skipped_count"`
	TotalRecords  int           `json:"total_records" yaml:"total_records"`
	TotalDuration float64       `json:"total_duration" yaml:"total_duration"` // 秒
	Results       []BatchResult `json:"results" yaml:"results"`
}

// NewBatchSearcher 创建批量检索器
// template 提供除检索词外的公共参数(字段、期刊、排序、页数)
func NewBatchSearcher(searcher Searcher, template SearchRequest, batchDelay time.Duration, continueOnErr, showProgress bool) *BatchSearcher {
	return &BatchSearcher{
		searcher:      searcher,
		template:      template,
		batchDelay:    batchDelay,
		continueOnErr: continueOnErr,
		showProgress:  showProgress,
	}
}

// SearchBatch 依次检索所有检索词
func (bs *BatchSearcher) SearchBatch(ctx context.Context, queries []string) *BatchSummary {
	utils.Infof("开始批量检索: %d个检索词", len(queries))

	summary := &BatchSummary{
		TotalQueries: len(queries),
		Results:      make([]BatchResult, 0, len(queries)),
	}
	startTime := time.Now()

	var bar *progressbar.ProgressBar
	if bs.showProgress {
		bar = utils.NewProgressBar(len(queries), "批量检索")
	}

	for i, query := range queries {
		if ctx.Err() != nil {
			utils.Warn("批量检索被取消")
			break
		}

		task := models.NewSearchTask(query)
		task.Status = models.TaskStatusRunning

		req := bs.template
		req.Query = query
		resp := bs.searcher.Search(ctx, req)
		task.Finish(resp)

		summary.Results = append(summary.Results, BatchResult{Task: task, Response: resp})
		if bar != nil {
			_ = bar.Add(1)
		}

		if resp.IsError {
			summary.FailCount++
			utils.Errorf("检索失败 [%s]: %s", query, resp.Error)
			if !bs.continueOnErr {
				utils.Warn("批量检索中止 (--continue-on-error=false)")
				break
			}
		} else {
			summary.SuccessCount++
			summary.TotalRecords += resp.TotalRecords
		}

		// 最后一个检索词不需要等待
		if i < len(queries)-1 && bs.batchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(bs.batchDelay):
			}
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	summary.SkippedCount = summary.TotalQueries - len(summary.Results)
	summary.TotalDuration = time.Since(startTime).Seconds()
	bs.logSummary(summary)
	return summary
}

func (bs *BatchSearcher) logSummary(summary *BatchSummary) {
	utils.Infof("批量检索完成: 共%d个, 成功%d, 失败%d, 跳过%d, 记录%d条, 耗时%.2f秒",
		summary.TotalQueries, summary.SuccessCount, summary.FailCount,
		summary.SkippedCount, summary.TotalRecords, summary.TotalDuration)

	for _, r := range summary.Results {
		if r.Task.Status == models.TaskStatusFailed {
			utils.Warnf("  - %s: %s", r.Task.Query, r.Task.Error)
		}
	}
}
