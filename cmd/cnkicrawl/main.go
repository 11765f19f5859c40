package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RecoveryAshes/CnkiCrawl/internal/core"
	"github.com/RecoveryAshes/CnkiCrawl/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	logLevel   string
	quiet      bool
	format     string
	outputFile string
	headers    []string // 自定义HTTP请求头

	// 检索参数
	query      string
	searchType string
	journal    string
	pages      int
	sortType   string
	htmlFile   string

	// 详情参数
	detailURL    string
	staticDetail bool

	// 批量处理参数
	queryFile       string
	batchDelay      int
	continueOnError bool
)

// 运行期状态,由 PersistentPreRunE 初始化
var (
	appConfig *core.Config
	reporter  *utils.Reporter
)

// errOperationFailed 结果已输出,只需要非零退出码
var errOperationFailed = errors.New("操作失败")

var rootCmd = &cobra.Command{
	Use:   "cnkicrawl",
	Short: "知网论文检索工具",
	Long: `CnkiCrawl - 基于无头浏览器的知网(CNKI)论文检索工具

支持:
  • 按主题/关键词/篇名/作者等字段检索,可限定期刊
  • 多页结果收集与排序
  • 论文详情解析(浏览器或静态HTTP)
  • 标题模糊匹配
  • 批量检索

示例:
  cnkicrawl search -q 石墨烯 -t 主题 -p 2 -s cited
  cnkicrawl search -q 数字经济 -t keyword -j 经济研究
  cnkicrawl detail -u "https://kns.cnki.net/kcms2/article/abstract?v=..."
  cnkicrawl match -q "石墨烯的制备与表征"
  cnkicrawl batch -f queries.txt --delay 5

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		logConfig := config.LogConfig()
		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		logConfig.Quiet = quiet
		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if !cmd.Flags().Changed("format") {
			format = config.Output.Format
		}
		if err := ValidateFormat(format); err != nil {
			return err
		}

		appConfig = config
		reporter = utils.NewReporter(format, os.Stdout)
		return nil
	},
}

// newService 按配置创建服务
// 收到中断信号时取消 ctx,调用方负责 Shutdown
func newService() (*core.Service, context.Context, context.CancelFunc, error) {
	headerManager, err := core.NewHeaderManager(appConfig.Headers, headers)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}
	svc, err := core.NewServiceFromConfig(appConfig, headerManager, Version)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			utils.Warnf("收到中断信号: %v, 正在关闭浏览器...", sig)
			cancel()
			svc.Shutdown()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return svc, ctx, cancel, nil
}

// emit 输出结果到 --output 文件或 stdout
func emit(data interface{}) error {
	if outputFile != "" {
		if err := reporter.SaveFile(outputFile, data); err != nil {
			return err
		}
		utils.Infof("结果已保存: %s", outputFile)
		return nil
	}
	return reporter.Write(data)
}

// emitResult 输出结果,失败载荷同样输出但返回非零退出码
func emitResult(data interface{}, isError bool) error {
	if err := emit(data); err != nil {
		return err
	}
	if isError {
		return errOperationFailed
	}
	return nil
}

func searchRequest(q string) core.SearchRequest {
	return core.SearchRequest{
		Query:      q,
		SearchType: searchType,
		Journal:    journal,
		Pages:      pages,
		Sort:       sortType,
	}
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "检索论文列表",
	Long: `检索论文列表

检索字段支持中文名或英文别名(topic/keyword/title/author...),
限定期刊(-j)时使用高级检索页的专业检索。
排序支持 相关度/发表时间/被引/下载 及英文别名(relevance/date/cited/download)。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateSearchArgs(query, htmlFile, pages); err != nil {
			return err
		}

		if htmlFile != "" {
			f, err := os.Open(htmlFile)
			if err != nil {
				return fmt.Errorf("打开HTML文件失败: %w", err)
			}
			defer f.Close()
			resp := core.ParseSearchHTML(f, searchRequest(query))
			return emitResult(resp, resp.IsError)
		}

		svc, ctx, cancel, err := newService()
		if err != nil {
			return err
		}
		defer cancel()
		defer svc.Shutdown()

		resp := svc.Search(ctx, searchRequest(query))
		return emitResult(resp, resp.IsError)
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail",
	Short: "获取论文详情",
	Long:  `获取论文详情,URL 必须属于 cnki.net。--static 使用HTTP直接抓取,不启动浏览器。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateDetailArgs(detailURL, htmlFile); err != nil {
			return err
		}

		if htmlFile != "" {
			f, err := os.Open(htmlFile)
			if err != nil {
				return fmt.Errorf("打开HTML文件失败: %w", err)
			}
			defer f.Close()
			resp := core.ParseDetailHTML(f, detailURL)
			return emitResult(resp, resp.IsError)
		}

		if staticDetail {
			appConfig.Detail.Mode = "static"
		}
		svc, ctx, cancel, err := newService()
		if err != nil {
			return err
		}
		defer cancel()
		defer svc.Shutdown()

		resp := svc.GetDetail(ctx, detailURL)
		return emitResult(resp, resp.IsError)
	},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "按标题查找最匹配的论文",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ValidateMatchArgs(query); err != nil {
			return err
		}

		svc, ctx, cancel, err := newService()
		if err != nil {
			return err
		}
		defer cancel()
		defer svc.Shutdown()

		resp := svc.FindBestMatch(ctx, query)
		return emitResult(resp, resp.IsError)
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "批量检索",
	Long: `批量检索: 文件中每行一个检索词,以 # 开头的行为注释。
检索字段、期刊、排序、页数对所有检索词生效。
未指定 --output 时结果保存到配置的输出目录。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("delay") {
			batchDelay = int(appConfig.Search.BatchDelay.Seconds())
		}
		if err := ValidateBatchArgs(queryFile, pages, batchDelay); err != nil {
			return err
		}

		queries, err := utils.ReadQueriesFromFile(queryFile)
		if err != nil {
			return fmt.Errorf("读取检索词文件失败: %w", err)
		}

		svc, ctx, cancel, err := newService()
		if err != nil {
			return err
		}
		defer cancel()
		defer svc.Shutdown()

		batch := core.NewBatchSearcher(svc, searchRequest(""), time.Duration(batchDelay)*time.Second, continueOnError, !quiet)
		summary := batch.SearchBatch(ctx, queries)

		if outputFile == "" {
			outputFile = filepath.Join(appConfig.Output.Dir,
				fmt.Sprintf("batch_%s.%s", time.Now().Format("20060102_150405"), reporter.Format()))
		}
		return emitResult(summary, summary.FailCount > 0 && !continueOnError)
	},
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "列出支持的检索字段和排序方式",
	RunE: func(cmd *cobra.Command, args []string) error {
		return emit(core.SearchTypes())
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "显示服务状态",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, cancel, err := newService()
		if err != nil {
			return err
		}
		defer cancel()
		defer svc.Shutdown()

		return emit(svc.Status())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	// 不需要加载配置
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("CnkiCrawl %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Printf("浏览器后端: %s\n", core.Backend)
	},
}

// addSearchFlags search 和 batch 共用的检索参数
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&searchType, "type", "t", "主题", "检索字段 (主题|关键词|篇名|作者|... 或英文别名)")
	cmd.Flags().StringVarP(&journal, "journal", "j", "", "限定期刊名称")
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "翻页数 (1-10)")
	cmd.Flags().StringVarP(&sortType, "sort", "s", "相关度", "排序方式 (相关度|发表时间|被引|下载)")
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "不在控制台输出日志和进度条")
	rootCmd.PersistentFlags().StringVar(&format, "format", "json", "输出格式 (json|yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "结果输出文件,默认输出到stdout")
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")

	// search
	searchCmd.Flags().StringVarP(&query, "query", "q", "", "检索词 (必需)")
	searchCmd.Flags().StringVar(&htmlFile, "html", "", "离线解析保存的结果页,不启动浏览器")
	addSearchFlags(searchCmd)

	// detail
	detailCmd.Flags().StringVarP(&detailURL, "url", "u", "", "论文详情页URL (必需)")
	detailCmd.Flags().BoolVar(&staticDetail, "static", false, "使用HTTP直接抓取详情页")
	detailCmd.Flags().StringVar(&htmlFile, "html", "", "离线解析保存的详情页,不启动浏览器")

	// match
	matchCmd.Flags().StringVarP(&query, "query", "q", "", "论文标题 (必需)")

	// batch
	batchCmd.Flags().StringVarP(&queryFile, "file", "f", "", "检索词文件 (必需)")
	batchCmd.Flags().IntVar(&batchDelay, "delay", 3, "检索词之间的间隔(秒)")
	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "遇到错误继续处理")
	addSearchFlags(batchCmd)

	rootCmd.AddCommand(searchCmd, detailCmd, matchCmd, batchCmd, typesCmd, statusCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errOperationFailed) {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}
