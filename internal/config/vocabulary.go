// Package config 保存知网检索使用的静态词表: 检索字段、排序方式、
// 专业检索字段代码以及标签页使用的 User-Agent 池。
package config

// DefaultSearchType 默认检索字段
const DefaultSearchType = "主题"

// DefaultSortType 默认排序方式
const DefaultSortType = "相关度"

// SearchTypes 检索字段中文名 -> 知网字段代码
var SearchTypes = map[string]string{
	"主题": "SU", "篇关摘": "TKA", "关键词": "KY", "篇名": "TI",
	"全文": "FT", "作者": "AU", "第一作者": "FI", "通讯作者": "RP",
	"作者单位": "AF", "基金": "FU", "摘要": "AB", "参考文献": "RF",
	"分类号": "CLC", "文献来源": "LY", "DOI": "DOI",
}

// SearchTypeOrder 检索字段的展示顺序(与首页下拉框一致)
var SearchTypeOrder = []string{
	"主题", "篇关摘", "关键词", "篇名", "全文", "作者", "第一作者", "通讯作者",
	"作者单位", "基金", "摘要", "参考文献", "分类号", "文献来源", "DOI",
}

// SearchTypeValues 首页字段下拉框 #DBFieldList 中各选项的 value 属性
var SearchTypeValues = map[string]string{
	"主题": "SU$%=|", "篇关摘": "TKA$%=|", "关键词": "KY$=|",
	"篇名": "TI$%=|", "全文": "FT$%=|", "作者": "AU$=|",
	"第一作者": "FI$=|", "通讯作者": "RP$%=|", "作者单位": "AF$%",
	"基金": "FU$%|", "摘要": "AB$%=|", "参考文献": "RF$%=|",
	"分类号": "CLC$=|??", "文献来源": "LY$%=|", "DOI": "DOI$=|?",
}

// SearchTypeAliases 英文别名 -> 检索字段中文名
var SearchTypeAliases = map[string]string{
	"subject": "主题", "theme": "主题", "topic": "主题", "keyword": "关键词",
	"keywords": "关键词", "title": "篇名", "author": "作者",
	"first_author": "第一作者", "corresponding_author": "通讯作者",
	"affiliation": "作者单位", "institution": "作者单位",
	"fund": "基金", "abstract": "摘要", "fulltext": "全文",
	"reference": "参考文献", "source": "文献来源", "doi": "DOI",
}

// SortTypes 排序中文名 -> 结果页排序控件的元素ID
var SortTypes = map[string]string{
	"相关度": "FFD", "发表时间": "PT", "被引": "CF",
	"下载": "DFR", "综合": "ZH",
}

// SortTypeOrder 排序方式的展示顺序
var SortTypeOrder = []string{"相关度", "发表时间", "被引", "下载", "综合"}

// SortTypeAliases 英文别名 -> 排序中文名
var SortTypeAliases = map[string]string{
	"relevance": "相关度", "date": "发表时间", "publish_time": "发表时间",
	"time": "发表时间", "cited": "被引", "citation": "被引",
	"citations": "被引", "download": "下载", "downloads": "下载",
	"composite": "综合", "general": "综合",
}

// ProfessionalSearchFields 专业检索表达式可用的字段代码
// 不在表中的检索字段退化为主题(SU)
var ProfessionalSearchFields = map[string]string{
	"主题": "SU", "关键词": "KY", "篇名": "TI", "全文": "FT",
	"作者": "AU", "第一作者": "FI", "通讯作者": "RP",
	"作者单位": "AF", "摘要": "AB", "DOI": "DOI",
}

// UserAgents 标签页随机使用的 User-Agent
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/535.19 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/535.11 (KHTML, like Gecko) Chrome/138.0.0.0 Safari/537.36",
}

// 站点入口
const (
	HomeURL      = "https://www.cnki.net/"
	AdvSearchURL = "https://kns.cnki.net/kns8s/AdvSearch"
)
