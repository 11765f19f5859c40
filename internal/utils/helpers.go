package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadQueriesFromFile 从文件中读取检索词列表
// 每行一个检索词,跳过空行和 # 开头的注释行
func ReadQueriesFromFile(filepath string) ([]string, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("打开检索词文件失败: %w", err)
	}
	defer file.Close()

	queries := make([]string, 0)
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			Debugf("跳过重复检索词 (行 %d): %s", lineNum, line)
			continue
		}
		seen[line] = true
		queries = append(queries, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取检索词文件失败: %w", err)
	}

	if len(queries) == 0 {
		return nil, fmt.Errorf("检索词文件中没有有效的检索词")
	}

	Infof("从文件加载了 %d 个检索词", len(queries))
	return queries, nil
}
