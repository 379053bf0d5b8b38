package logging

// 结构化日志字段名。
const (
	FieldError    = "error"
	FieldPath     = "path"
	FieldOutput   = "output"
	FieldLine     = "line"
	FieldTarget   = "target"
	FieldTheme    = "theme"
	FieldBaseSize = "base_size"
	FieldLines    = "lines"
	FieldChars    = "chars"
	FieldImages   = "images"
	FieldWarnings = "warnings"
	FieldDuration = "duration"
	FieldFormat   = "format"
)
