package runner

import (
	"io"
	"strings"
	"unicode"

	"go.trai.ch/soup/internal/core/domain"
)

// discoveredDependencies reads the node's dependency file and returns the
// prerequisites that are not declared inputs, resolved against the working
// directory. A missing or unreadable file yields none.
func (r *Runner) discoveredDependencies(n *domain.BuildStepNode) []string {
	if n.DependencyFile == "" {
		return nil
	}
	path := n.ResolvePath(n.DependencyFile)
	if !r.fs.Exists(path) {
		r.logger.Warn("Dependency file does not exist: " + path)
		return nil
	}
	f, err := r.fs.OpenRead(path)
	if err != nil {
		r.logger.Warn("Cannot read dependency file: " + path)
		return nil
	}
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	if err != nil {
		r.logger.Warn("Cannot read dependency file: " + path)
		return nil
	}

	declared := make(map[string]bool, len(n.InputFiles))
	for _, in := range n.ResolvedInputs() {
		declared[in] = true
	}
	var deps []string
	for _, p := range ParseDependencyFile(string(data)) {
		resolved := n.ResolvePath(p)
		if !declared[resolved] {
			declared[resolved] = true
			deps = append(deps, resolved)
		}
	}
	return deps
}

// ParseDependencyFile returns the prerequisites of every rule in a Make-style
// dependency file, in order of appearance. Backslash-newline continues a line
// and a backslash escapes a space inside a path.
func ParseDependencyFile(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\\\n", " ")

	var deps []string
	for _, line := range strings.Split(content, "\n") {
		tokens := tokenize(line)
		for i, tok := range tokens {
			if strings.HasSuffix(tok, ":") {
				deps = append(deps, tokens[i+1:]...)
				break
			}
		}
	}
	return deps
}

// tokenize splits a rule line at unescaped whitespace.
func tokenize(line string) []string {
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes) && runes[i+1] == ' ':
			cur.WriteRune(' ')
			i++
		case unicode.IsSpace(c):
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()
	return tokens
}
