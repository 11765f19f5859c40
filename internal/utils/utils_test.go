package utils

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadQueriesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	content := "# 注释\ngraphene\n\n  石墨烯  \ngraphene\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	queries, err := ReadQueriesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"graphene", "石墨烯"}, queries)
}

func TestReadQueriesFromFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("# nothing\n\n"), 0644))

	_, err := ReadQueriesFromFile(path)
	assert.Error(t, err)
}

func TestReporter(t *testing.T) {
	payload := map[string]interface{}{"query": "石墨烯", "total_records": 15}

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"默认JSON", "", `"total_records": 15`},
		{"YAML", "yaml", "total_records: 15"},
		{"未知格式按JSON", "xml", `"query": "石墨烯"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewReporter(tt.format, &buf)
			require.NoError(t, r.Write(payload))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestReporter_SaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "result.json")
	r := NewReporter(FormatJSON, nil)
	require.NoError(t, r.SaveFile(path, []string{"a"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "["))
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		value   string
		wantErr bool
	}{
		{"合法头部", "Accept-Language", "zh-CN,zh;q=0.9", false},
		{"禁止的头部", "Host", "cnki.net", true},
		{"浏览器管理的UA", "user-agent", "x", true},
		{"非法名称", "X Bad", "1", true},
		{"非法值", "Referer", "line\nbreak", true},
		{"过长的值", "Cookie", strings.Repeat("a", MaxHeaderValueLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHeader(tt.header, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHeader(%q) err = %v, wantErr %v", tt.header, err, tt.wantErr)
			}
		})
	}
}

func TestRedactHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Cookie", "SID=abcdefghijkl")
	headers.Set("Authorization", "Bearer secret")
	headers.Set("Accept-Language", "zh-CN")

	got := RedactHeaders(headers)
	assert.Equal(t, "SID=***ijkl", got["Cookie"])
	assert.Equal(t, "Bearer ***", got["Authorization"])
	assert.Equal(t, "zh-CN", got["Accept-Language"])

	assert.Equal(t, "Accept-Language: zh-CN, Authorization: Bearer ***, Cookie: SID=***ijkl", RedactToString(headers))
}
