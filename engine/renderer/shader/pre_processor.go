// pre_processor.go expands #include directives in shader source files so the GLSL and WGSL sprite
// programs can share lighting code. The directive must sit on its own line:
//
//	#include "lighting.glsl"
//
// Paths are resolved relative to the including file. Each file is expanded at most once per stage;
// later includes of the same file expand to nothing, which also breaks include cycles.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// includeDirective is the keyword recognized at the start of a trimmed line.
const includeDirective = "#include"

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// readFile loads a source file. Replaced in tests.
	readFile func(name string) ([]byte, error)

	// files accumulates every file read during a Process call, root first, in expansion order.
	files []string

	// expanded holds the cleaned absolute paths already expanded in the current Process call.
	expanded map[string]bool
}

// PreProcessor reads a shader source file and expands its #include directives.
type PreProcessor interface {
	// Process reads the file at path and returns its source with every #include directive
	// replaced by the expanded content of the named file.
	//
	// Parameters:
	//   - path: the root source file
	//
	// Returns:
	//   - string: the expanded source
	//   - error: wraps ErrIO when a file cannot be read, ErrBuild for a malformed directive
	Process(path string) (string, error)

	// Files returns the files read by the most recent Process call, root first. The watcher
	// watches all of them.
	//
	// Returns:
	//   - []string: absolute file paths
	Files() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor reading from the local file system.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{readFile: os.ReadFile}
}

func (p *preProcessor) Process(path string) (string, error) {
	p.files = p.files[:0]
	p.expanded = make(map[string]bool)

	var out strings.Builder
	if err := p.expand(path, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (p *preProcessor) Files() []string {
	return p.files
}

func (p *preProcessor) expand(path string, out *strings.Builder) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if p.expanded[abs] {
		return nil
	}
	p.expanded[abs] = true

	data, err := p.readFile(abs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	p.files = append(p.files, abs)

	// Lines keep their endings so a file without directives passes through unchanged.
	for n, line := range strings.SplitAfter(string(data), "\n") {
		target, ok, err := parseInclude(strings.TrimRight(line, "\r\n"))
		if err != nil {
			return fmt.Errorf("%w: %s:%d: %w", ErrBuild, path, n+1, err)
		}
		if !ok {
			out.WriteString(line)
			continue
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(abs), target)
		}
		if err := p.expand(target, out); err != nil {
			return err
		}
		if s := out.String(); s != "" && !strings.HasSuffix(s, "\n") {
			out.WriteByte('\n')
		}
	}
	return nil
}

// parseInclude reports whether line is an #include directive and returns its quoted path.
func parseInclude(line string) (string, bool, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), includeDirective)
	if !ok {
		return "", false, nil
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' {
		return "", false, fmt.Errorf("malformed %s directive %q", includeDirective, line)
	}
	end := strings.IndexByte(rest[1:], '"')
	if end <= 0 {
		return "", false, fmt.Errorf("malformed %s directive %q", includeDirective, line)
	}
	if tail := strings.TrimSpace(rest[end+2:]); tail != "" && !strings.HasPrefix(tail, "//") {
		return "", false, fmt.Errorf("unexpected text after %s path: %q", includeDirective, tail)
	}
	return rest[1 : end+1], true, nil
}
