package main

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/RecoveryAshes/CnkiCrawl/internal/core"
	"github.com/RecoveryAshes/CnkiCrawl/internal/models"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator 错误信息中使用命令行参数名而不是结构体字段名
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("flag"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// searchArgs search/batch 命令的参数
type searchArgs struct {
	Query    string `flag:"query" validate:"required_without=HTMLFile"`
	HTMLFile string `flag:"html"`
	Pages    int    `flag:"pages" validate:"min=1,max=10"`
}

// detailArgs detail 命令的参数
type detailArgs struct {
	URL      string `flag:"url" validate:"required_without=HTMLFile"`
	HTMLFile string `flag:"html"`
}

// matchArgs match 命令的参数
type matchArgs struct {
	Query string `flag:"query" validate:"required"`
}

// batchArgs batch 命令的参数
type batchArgs struct {
	File  string `flag:"file" validate:"required"`
	Pages int    `flag:"pages" validate:"min=1,max=10"`
	Delay int    `flag:"delay" validate:"min=0,max=600"`
}

// outputArgs 全局输出参数
type outputArgs struct {
	Format string `flag:"format" validate:"oneof=json yaml"`
}

// ValidateSearchArgs 验证检索参数
func ValidateSearchArgs(query, htmlFile string, pages int) error {
	return validateStruct(searchArgs{Query: strings.TrimSpace(query), HTMLFile: htmlFile, Pages: pages})
}

// ValidateDetailArgs 验证详情参数,URL 归属在服务层检查
func ValidateDetailArgs(url, htmlFile string) error {
	return validateStruct(detailArgs{URL: strings.TrimSpace(url), HTMLFile: htmlFile})
}

// ValidateMatchArgs 验证最佳匹配参数
func ValidateMatchArgs(query string) error {
	return validateStruct(matchArgs{Query: strings.TrimSpace(query)})
}

// ValidateBatchArgs 验证批量检索参数
func ValidateBatchArgs(file string, pages, delay int) error {
	return validateStruct(batchArgs{File: file, Pages: pages, Delay: delay})
}

// ValidateFormat 验证输出格式
func ValidateFormat(format string) error {
	return validateStruct(outputArgs{Format: strings.ToLower(format)})
}

// validateStruct 只返回第一个校验错误
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	e := fieldErrs[0]
	return &models.ValidationError{
		Field:  e.Field(),
		Value:  fmt.Sprint(e.Value()),
		Reason: formatValidationError(e),
	}
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return "不能为空"
	case "min":
		if e.Field() == "pages" {
			return fmt.Sprintf("翻页数必须在%d-%d之间", core.MinPages, core.MaxPages)
		}
		return fmt.Sprintf("不能小于%s", e.Param())
	case "max":
		if e.Field() == "pages" {
			return fmt.Sprintf("翻页数必须在%d-%d之间", core.MinPages, core.MaxPages)
		}
		return fmt.Sprintf("不能大于%s", e.Param())
	case "oneof":
		return fmt.Sprintf("有效值: %s", strings.ReplaceAll(e.Param(), " ", ", "))
	default:
		return fmt.Sprintf("校验规则 '%s' 未通过", e.Tag())
	}
}
