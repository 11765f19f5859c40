package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// 支持的输出格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Reporter 把命令结果序列化到 stdout 或文件
type Reporter struct {
	format string
	out    io.Writer
}

// NewReporter 创建报告输出器,未知格式按 json 处理
func NewReporter(format string, out io.Writer) *Reporter {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatYAML {
		format = FormatJSON
	}
	if out == nil {
		out = os.Stdout
	}
	return &Reporter{format: format, out: out}
}

// Format 当前输出格式
func (r *Reporter) Format() string {
	return r.format
}

// Marshal 按当前格式序列化
func (r *Reporter) Marshal(data interface{}) ([]byte, error) {
	if r.format == FormatYAML {
		out, err := yaml.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("序列化YAML失败: %w", err)
		}
		return out, nil
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化JSON失败: %w", err)
	}
	return append(out, '\n'), nil
}

// Write 输出结果
func (r *Reporter) Write(data interface{}) error {
	out, err := r.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.out.Write(out)
	return err
}

// SaveFile 保存结果到文件,目录不存在时自动创建
func (r *Reporter) SaveFile(path string, data interface{}) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	out, err := r.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("写入结果文件失败: %w", err)
	}

	Debugf("保存结果: %s", path)
	return nil
}

// NewProgressBar 创建进度条 (输出到 stderr)
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
