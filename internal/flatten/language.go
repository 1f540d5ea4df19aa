package flatten

import (
	"path"

	"github.com/alecthomas/chroma/v2/lexers"
)

// DetectLanguage derives a language tag from a file path using the chroma
// lexer registry. Unknown extensions yield an empty tag, which downstream
// renderers treat as plain text. Deterministic: depends only on the path.
func DetectLanguage(filePath string) string {
	lexer := lexers.Match(path.Base(filePath))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
