// Package document 读取文档文件并拆分为行。
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document 是一次读取得到的文档：按行拆分的文本与其所在目录。
type Document struct {
	Path  string
	Dir   string
	Lines []string
}

// Load 读取 path 指向的文档。Dir 为文档所在目录，作为相对图片路径的默认根目录。
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文档 %s 失败: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &Document{
		Path:  abs,
		Dir:   filepath.Dir(abs),
		Lines: Split(string(data)),
	}, nil
}

// Split 按 "\n" 拆分文本并去掉每行末尾的 "\r"。文件末尾的换行不产生额外的空行。
func Split(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
