package core

import "testing"

func TestBestMatch(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		candidates []string
		want       int
	}{
		{"完全包含", "abc", []string{"xabcx", "ab", "none"}, 0},
		{"单个候选", "石墨烯", []string{"完全无关"}, 0},
		{"空列表", "abc", nil, 0},
		{"并列取靠前", "ab", []string{"ba", "ab"}, 0},
		{"严格更高才替换", "深度学习", []string{"深度", "深度学习综述", "学习深度"}, 1},
		{"全部为0", "xyz", []string{"abc", "def"}, 0},
		{"按查询字符计数", "aa", []string{"b", "a"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestMatch(tt.query, tt.candidates); got != tt.want {
				t.Errorf("BestMatch(%q, %v) = %d, 期望 %d", tt.query, tt.candidates, got, tt.want)
			}
		})
	}
}
