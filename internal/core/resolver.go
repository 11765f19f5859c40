package core

import (
	"sort"
	"strings"

	"github.com/RecoveryAshes/CnkiCrawl/internal/config"
	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
)

// ResolveField 把用户输入的检索字段(中文名或英文别名)解析为中文规范名
// 无法识别时返回默认字段"主题",不会失败
func ResolveField(name string) string {
	return resolve(name, config.SearchTypeAliases, config.SearchTypes, config.DefaultSearchType)
}

// ResolveSort 把用户输入的排序方式解析为中文规范名,默认"相关度"
func ResolveSort(name string) string {
	return resolve(name, config.SortTypeAliases, config.SortTypes, config.DefaultSortType)
}

// resolve 先查别名表(忽略大小写),再查规范名表,最后返回默认值
func resolve(name string, aliases, canonical map[string]string, def string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return def
	}
	if v, ok := aliases[strings.ToLower(trimmed)]; ok {
		return v
	}
	if _, ok := canonical[trimmed]; ok {
		return trimmed
	}
	return def
}

// SearchTypes 可识别的检索字段与排序方式
func SearchTypes() models.SearchTypeCatalog {
	return models.SearchTypeCatalog{
		ChineseTypes:   append([]string(nil), config.SearchTypeOrder...),
		EnglishAliases: sortedKeys(config.SearchTypeAliases),
		SortTypes:      append([]string(nil), config.SortTypeOrder...),
		SortAliases:    sortedKeys(config.SortTypeAliases),
		Default:        config.DefaultSearchType,
		DefaultSort:    config.DefaultSortType,
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
