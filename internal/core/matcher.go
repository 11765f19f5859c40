package core

import "strings"

// BestMatch 返回与 query 最相似的候选标题下标
//
// 相似度为 query 中(按出现次数计)在候选标题里出现过的字符数,
// 只统计是否出现,不考虑位置和次数。相似度严格更高才替换,
// 并列时保留靠前的候选。候选为空或全部为0时返回0。
func BestMatch(query string, candidates []string) int {
	best, bestScore := 0, 0
	for i, c := range candidates {
		score := 0
		for _, r := range query {
			if strings.ContainsRune(c, r) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
