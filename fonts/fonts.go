package fonts

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinPrefix 标记内置字体来源，例如 "builtin:regular"。
const BuiltinPrefix = "builtin:"

var builtin = map[string][]byte{
	"regular": goregular.TTF,
	"italic":  goitalic.TTF,
	"bold":    gobold.TTF,
	"mono":    gomono.TTF,
}

// Load 返回字体的字节数据。src 可写为 "builtin:<name>"（regular、italic、bold、mono）或字体文件路径。
func Load(src string) ([]byte, error) {
	if name, ok := strings.CutPrefix(src, BuiltinPrefix); ok {
		data, ok := builtin[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("未知的内置字体 %s，可选: %s", name, strings.Join(Names(), ", "))
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// IsBuiltin 判断 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, BuiltinPrefix)
}

// Names 返回内置字体名称，已排序。
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
