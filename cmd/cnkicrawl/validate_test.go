package main

import (
	"errors"
	"testing"

	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
)

func TestValidateSearchArgs(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		html      string
		pages     int
		wantField string
	}{
		{"正常", "石墨烯", "", 2, ""},
		{"离线解析不需要检索词", "", "page.html", 1, ""},
		{"检索词为空", "  ", "", 1, "query"},
		{"页数过小", "q", "", 0, "pages"},
		{"页数过大", "q", "", 11, "pages"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchArgs(tt.query, tt.html, tt.pages)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("不应报错: %v", err)
				}
				return
			}
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("期望 ValidationError, 得到 %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %s, 期望 %s", ve.Field, tt.wantField)
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"json", "yaml", "JSON"} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("%s 应该有效: %v", f, err)
		}
	}
	if err := ValidateFormat("xml"); err == nil {
		t.Error("xml 应该无效")
	}
}

func TestValidateOtherArgs(t *testing.T) {
	if err := ValidateDetailArgs("", ""); err == nil {
		t.Error("详情缺少URL应该报错")
	}
	if err := ValidateDetailArgs("", "saved.html"); err != nil {
		t.Errorf("离线详情不需要URL: %v", err)
	}
	if err := ValidateMatchArgs(""); err == nil {
		t.Error("匹配缺少标题应该报错")
	}
	if err := ValidateBatchArgs("", 1, 0); err == nil {
		t.Error("批量缺少文件应该报错")
	}
	if err := ValidateBatchArgs("q.txt", 1, -1); err == nil {
		t.Error("负的间隔应该报错")
	}
}
