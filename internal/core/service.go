package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/crawlers"
	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// 服务信息
const (
	ServerName = "CNKI 论文检索服务"
	Backend    = "go-rod (Chromium)"
)

// 翻页数范围
const (
	MinPages = 1
	MaxPages = 10
)

var errEmptyQuery = errors.New("检索词不能为空")

// SearchRequest 检索请求,字段均为用户原始输入
type SearchRequest struct {
	Query      string `json:"query" yaml:"query"`
	SearchType string `json:"search_type" yaml:"search_type"`
	Journal    string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Pages      int    `json:"pages" yaml:"pages"`
	Sort       string `json:"sort" yaml:"sort"`
}

// ServiceOptions 服务参数
type ServiceOptions struct {
	Version        string
	Humanize       bool
	ElementTimeout time.Duration
	ResultsTimeout time.Duration
	StaticFetcher  *crawlers.StaticDetailFetcher // 非空时详情走静态抓取
	Monitor        *crawlers.ResourceMonitor
}

// Service 对外提供检索、详情、最佳匹配和状态查询
// 所有操作都返回载荷,错误体现在 IsError 字段中
type Service struct {
	pool      *crawlers.SessionPool
	driver    *crawlers.Driver
	collector *crawlers.Collector
	opts      ServiceOptions
}

// NewService 使用已有会话池创建服务
func NewService(pool *crawlers.SessionPool, opts ServiceOptions) *Service {
	pacer := crawlers.NewPacer(opts.Humanize)
	return &Service{
		pool:      pool,
		driver:    crawlers.NewDriver(pacer, opts.ElementTimeout, opts.ResultsTimeout),
		collector: crawlers.NewCollector(pacer, opts.ResultsTimeout),
		opts:      opts,
	}
}

// NewServiceFromConfig 按配置组装 rod 引擎、会话池和服务
// 附加请求头由 provider 提供,校验失败时返回错误
func NewServiceFromConfig(cfg *Config, provider models.HeaderProvider, version string) (*Service, error) {
	headers, err := provider.GetHeaders()
	if err != nil {
		return nil, fmt.Errorf("附加HTTP头部无效: %w", err)
	}

	monitor := crawlers.NewResourceMonitor(cfg.Resource.SafetyThresholdMB)
	engine := crawlers.NewRodEngine(crawlers.RodOptions{
		Headless:  cfg.Browser.Headless,
		Bin:       cfg.Browser.Bin,
		NoSandbox: cfg.Browser.NoSandbox,
		Headers:   headers,
	})
	pool := crawlers.NewSessionPool(engine, crawlers.SessionPoolConfig{
		IdleTimeout:     cfg.Browser.IdleTimeout,
		LivenessTimeout: cfg.Browser.LivenessTimeout,
		Monitor:         monitor,
	})

	opts := ServiceOptions{
		Version:        version,
		Humanize:       cfg.Search.Humanize,
		ElementTimeout: cfg.Search.ElementTimeout,
		ResultsTimeout: cfg.Search.ResultsTimeout,
		Monitor:        monitor,
	}
	if cfg.StaticDetail() {
		opts.StaticFetcher = crawlers.NewStaticDetailFetcher(cfg.Detail.RequestTimeout, headers)
	}
	return NewService(pool, opts), nil
}

// Shutdown 关闭浏览器,可重复调用
func (s *Service) Shutdown() {
	s.pool.Shutdown()
}

// operationLogger 每次操作一个 request_id,便于关联日志
func operationLogger(op string) zerolog.Logger {
	return log.With().Str("request_id", models.NewRequestID()).Str("op", op).Logger()
}

// recoverAsError 把 panic 转换为错误
func recoverAsError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("内部错误: %v", r)
	}
}

func clampPages(n int) int {
	if n < MinPages {
		return MinPages
	}
	if n > MaxPages {
		return MaxPages
	}
	return n
}

// NewSearchQuery 解析用户输入为检索请求
func NewSearchQuery(req SearchRequest) models.SearchQuery {
	return models.SearchQuery{
		Text:      strings.TrimSpace(req.Query),
		FieldName: ResolveField(req.SearchType),
		Journal:   strings.TrimSpace(req.Journal),
		SortName:  ResolveSort(req.Sort),
		Pages:     clampPages(req.Pages),
	}
}

// Search 检索论文列表;限定期刊时走专业检索
func (s *Service) Search(ctx context.Context, req SearchRequest) models.SearchResponse {
	logger := operationLogger("search")
	q := NewSearchQuery(req)
	logger.Info().Str("query", q.Text).Str("field", q.FieldName).Str("journal", q.Journal).
		Str("sort", q.SortName).Int("pages", q.Pages).Msg("开始检索")

	if q.Text == "" {
		return models.NewSearchError(errEmptyQuery)
	}

	resp, err := s.search(ctx, q)
	if err != nil {
		logger.Error().Err(err).Msg("检索失败")
		return models.NewSearchError(err)
	}
	logger.Info().Int("records", resp.TotalRecords).Msg("检索完成")
	return resp
}

func (s *Service) search(ctx context.Context, q models.SearchQuery) (resp models.SearchResponse, err error) {
	defer recoverAsError(&err)

	lease, err := s.pool.AcquirePage(ctx)
	if err != nil {
		return resp, err
	}
	defer lease.Release()

	var expr string
	if q.HasJournal() {
		expr, err = s.driver.ProfessionalSearch(ctx, lease.Page, q)
	} else {
		err = s.driver.DirectSearch(ctx, lease.Page, q)
	}
	if err != nil {
		return resp, err
	}

	records := s.collector.Collect(ctx, lease.Page, q.Pages)
	return newSearchResponse(q, expr, records), nil
}

func newSearchResponse(q models.SearchQuery, expr string, records []models.Paper) models.SearchResponse {
	if records == nil {
		records = []models.Paper{}
	}
	return models.SearchResponse{
		Query:         q.Text,
		ResolvedField: q.FieldName,
		ResolvedSort:  q.SortName,
		Journal:       q.Journal,
		Expression:    expr,
		TotalPages:    q.Pages,
		TotalRecords:  len(records),
		Records:       records,
	}
}

// GetDetail 获取论文详情,URL 必须属于 cnki.net
func (s *Service) GetDetail(ctx context.Context, url string) models.DetailResponse {
	logger := operationLogger("detail")
	url = strings.TrimSpace(url)

	if err := models.ValidateDetailURL(url); err != nil {
		logger.Warn().Err(err).Str("url", url).Msg("拒绝非知网链接")
		return models.NewDetailError(url, err)
	}

	detail, err := s.detail(ctx, url)
	if err != nil {
		logger.Error().Err(err).Str("url", url).Msg("获取详情失败")
		return models.NewDetailError(url, err)
	}
	logger.Info().Str("title", detail.Title).Msg("获取详情完成")
	return models.DetailResponse{PaperDetail: detail}
}

func (s *Service) detail(ctx context.Context, url string) (d models.PaperDetail, err error) {
	defer recoverAsError(&err)

	if s.opts.StaticFetcher != nil {
		page, err := s.opts.StaticFetcher.Fetch(ctx, url)
		if err != nil {
			return d, err
		}
		return crawlers.ExtractDetail(page, url), nil
	}

	lease, err := s.pool.AcquirePage(ctx)
	if err != nil {
		return d, err
	}
	defer lease.Release()

	if err := s.driver.OpenDetail(ctx, lease.Page, url); err != nil {
		return d, err
	}
	return crawlers.ExtractDetail(lease.Page, url), nil
}

// FindBestMatch 检索标题并返回最相似的一条
func (s *Service) FindBestMatch(ctx context.Context, query string) models.MatchResponse {
	logger := operationLogger("match")
	query = strings.TrimSpace(query)
	if query == "" {
		return models.MatchResponse{IsError: true, Error: errEmptyQuery.Error()}
	}

	candidates, err := s.matchCandidates(ctx, query)
	if err != nil {
		logger.Error().Err(err).Msg("查找匹配失败")
		return models.MatchResponse{IsError: true, Error: err.Error()}
	}

	resp := BuildMatchResponse(query, candidates)
	logger.Info().Int("candidates", resp.TotalCandidates).Msg("查找匹配完成")
	return resp
}

func (s *Service) matchCandidates(ctx context.Context, query string) (c []models.MatchCandidate, err error) {
	defer recoverAsError(&err)

	lease, err := s.pool.AcquirePage(ctx)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	return s.driver.MatchCandidates(ctx, lease.Page, query)
}

// BuildMatchResponse 在候选中选出最佳匹配;没有候选时 best_match 为 null
func BuildMatchResponse(query string, candidates []models.MatchCandidate) models.MatchResponse {
	if len(candidates) == 0 {
		return models.MatchResponse{Query: query, Message: "未找到结果"}
	}

	titles := make([]string, len(candidates))
	for i, c := range candidates {
		titles[i] = c.Title
	}
	best := candidates[BestMatch(query, titles)]
	return models.MatchResponse{
		Query:           query,
		BestMatch:       &best,
		TotalCandidates: len(candidates),
	}
}

// SearchTypes 检索字段词表
func (s *Service) SearchTypes() models.SearchTypeCatalog {
	return SearchTypes()
}

// Status 服务状态,不启动浏览器
func (s *Service) Status() models.ServerStatus {
	features := []string{"journal_filter_via_professional_search", "browser_pool", "idle_timeout"}
	if s.opts.StaticFetcher != nil {
		features = append(features, "static_detail")
	}

	status := models.ServerStatus{
		ServerName: ServerName,
		Version:    s.opts.Version,
		Backend:    Backend,
		Tools:      []string{"search", "detail", "match", "batch"},
		Features:   features,
		Pool:       s.pool.Stats(),
	}
	if s.opts.Monitor != nil {
		if mem, err := s.opts.Monitor.Snapshot(); err == nil {
			status.Memory = mem
		}
	}
	return status
}

// ParseSearchHTML 离线解析保存下来的结果页
func ParseSearchHTML(r io.Reader, req SearchRequest) models.SearchResponse {
	q := NewSearchQuery(req)
	page, err := crawlers.ParseHTMLPage("", r)
	if err != nil {
		return models.NewSearchError(err)
	}
	q.Pages = 1
	records := crawlers.NewCollector(crawlers.NewPacer(false), time.Millisecond).
		Collect(context.Background(), page, 1)
	return newSearchResponse(q, "", records)
}

// ParseDetailHTML 离线解析保存下来的详情页
func ParseDetailHTML(r io.Reader, url string) models.DetailResponse {
	page, err := crawlers.ParseHTMLPage(url, r)
	if err != nil {
		return models.NewDetailError(url, err)
	}
	return models.DetailResponse{PaperDetail: crawlers.ExtractDetail(page, url)}
}
