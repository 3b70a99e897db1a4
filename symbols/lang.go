package symbols

import (
	"path"
	"strings"
)

// InferLang returns a coarse language tag for a file path, or "" when the
// extension is unknown.
//
// Mapping:
//   - ".java" → "java"
//   - ".go"   → "go"
//   - TS/JS family (".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs") → "ts"
//   - ".kt" → "kt", ".cs" → "cs", ".py" → "py"
//   - C/C++ sources and headers → "cpp"
func InferLang(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".java":
		return "java"
	case ".go":
		return "go"
	case ".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs":
		return "ts"
	case ".kt":
		return "kt"
	case ".cs":
		return "cs"
	case ".py":
		return "py"
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h":
		return "cpp"
	default:
		return ""
	}
}
