package models

// Paper 检索结果列表中的一条论文记录
// 任何字段都可能为空,缺失不是错误
type Paper struct {
	Title         string   `json:"title" yaml:"title"`                   // 篇名
	URL           string   `json:"url" yaml:"url"`                       // 详情页链接
	Authors       []string `json:"authors" yaml:"authors"`               // 作者(按页面顺序)
	Source        string   `json:"source" yaml:"source"`                 // 来源期刊/会议
	Date          string   `json:"date" yaml:"date"`                     // 发表时间
	CitedCount    string   `json:"cited_count" yaml:"cited_count"`       // 被引次数,缺失为"0"
	DownloadCount string   `json:"download_count" yaml:"download_count"` // 下载次数,缺失为"0"
	Page          int      `json:"page" yaml:"page"`                     // 来源页码(从1开始)
}

// PaperDetail 论文详情页记录
type PaperDetail struct {
	URL            string   `json:"url" yaml:"url"`
	Title          string   `json:"title" yaml:"title"`
	TitleEN        string   `json:"title_en" yaml:"title_en"`
	Authors        []string `json:"authors" yaml:"authors"`
	Institutions   []string `json:"institutions" yaml:"institutions"`
	Abstract       string   `json:"abstract" yaml:"abstract"`
	AbstractEN     string   `json:"abstract_en" yaml:"abstract_en"`
	Keywords       []string `json:"keywords" yaml:"keywords"`
	KeywordsEN     []string `json:"keywords_en" yaml:"keywords_en"`
	Source         string   `json:"source" yaml:"source"`
	Year           string   `json:"year" yaml:"year"`
	Volume         string   `json:"volume" yaml:"volume"`
	Issue          string   `json:"issue" yaml:"issue"`
	Pages          string   `json:"pages" yaml:"pages"` // 页码范围,如 "12-20"
	DOI            string   `json:"doi" yaml:"doi"`
	CitedCount     string   `json:"cited_count" yaml:"cited_count"`
	DownloadCount  string   `json:"download_count" yaml:"download_count"`
	Fund           string   `json:"fund" yaml:"fund"`
	Classification string   `json:"classification" yaml:"classification"` // 中图分类号
}

// NewPaperDetail 返回所有字段均为默认值的详情记录
func NewPaperDetail(url string) PaperDetail {
	return PaperDetail{
		URL:           url,
		Authors:       []string{},
		Institutions:  []string{},
		Keywords:      []string{},
		KeywordsEN:    []string{},
		CitedCount:    "0",
		DownloadCount: "0",
	}
}

// SearchQuery 已解析的检索请求,构造后不再修改
type SearchQuery struct {
	Text      string // 检索词
	FieldName string // 检索字段中文规范名,如 "主题"
	Journal   string // 限定期刊,为空表示不限定
	SortName  string // 排序中文规范名,如 "相关度"
	Pages     int    // 翻页数 1-10
}

// HasJournal 是否限定了期刊(限定时走专业检索)
func (q SearchQuery) HasJournal() bool {
	return q.Journal != ""
}

// MatchCandidate 最佳匹配结果
type MatchCandidate struct {
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}
