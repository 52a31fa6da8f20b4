package highlight

import (
	"fmt"
	"path/filepath"

	"github.com/alecthomas/chroma/v2/lexers"
)

// ResolveLanguage picks the lexer name for a source file. An explicit name
// wins and must be known; otherwise the filename is matched, then the content
// is analysed, and plaintext is the last resort.
func ResolveLanguage(name, filename, source string) (string, error) {
	if name != "" {
		lexer := lexerFor(name)
		if lexer == nil {
			return "", fmt.Errorf("%w %q", ErrUnknownLanguage, name)
		}
		return lexer.Config().Name, nil
	}
	if filename != "" {
		if lexer := lexers.Match(filepath.Base(filename)); lexer != nil {
			return lexer.Config().Name, nil
		}
	}
	if lexer := lexers.Analyse(source); lexer != nil {
		return lexer.Config().Name, nil
	}
	return "plaintext", nil
}
