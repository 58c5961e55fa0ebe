package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	varRe    = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)
	ifOpenRe = regexp.MustCompile(`\{\{#if\s+([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)
)

const ifClose = "{{/if}}"

// Vars is a map of variable names to values for template rendering.
type Vars map[string]string

// Render expands a template with the given variables. {{variable}} is
// replaced with its value; missing variables cause an error. {{#if
// variable}}...{{/if}} blocks are kept only if the variable is non-empty.
func Render(tmpl string, vars Vars) (string, error) {
	result, err := expandConditionals(tmpl, vars)
	if err != nil {
		return "", err
	}

	var missing []string
	expanded := varRe.ReplaceAllStringFunc(result, func(match string) string {
		name := varRe.FindStringSubmatch(match)[1]
		if val, ok := vars[name]; ok {
			return val
		}
		missing = append(missing, name)
		return match
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return expanded, nil
}

// expandConditionals resolves {{#if var}}...{{/if}} blocks, innermost
// first so nesting works.
func expandConditionals(tmpl string, vars Vars) (string, error) {
	result := tmpl
	for {
		closeIdx := strings.Index(result, ifClose)
		if closeIdx == -1 {
			break
		}

		opens := ifOpenRe.FindAllStringSubmatchIndex(result[:closeIdx], -1)
		if opens == nil {
			return "", fmt.Errorf("dangling %s without matching {{#if}}", ifClose)
		}
		// The last opening tag before the close is the innermost block.
		open := opens[len(opens)-1]
		name := result[open[2]:open[3]]
		body := result[open[1]:closeIdx]

		var replacement string
		if vars[name] != "" {
			replacement = body
		}
		result = result[:open[0]] + replacement + result[closeIdx+len(ifClose):]
	}
	return result, nil
}

// Load returns the named template. A file of that name in overrideDir
// wins over the builtin; overrideDir may be empty.
func Load(name string, overrideDir string) (string, error) {
	if overrideDir != "" {
		data, err := os.ReadFile(filepath.Join(overrideDir, name))
		if err == nil {
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("read template override %q: %w", name, err)
		}
	}
	tmpl, ok := builtinTemplates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	return tmpl, nil
}
