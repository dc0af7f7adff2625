package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// RenderTemplate expands {{ }} placeholders in text against the provided
// values using text/template. Plain strings without template markers pass
// through untouched.
func RenderTemplate(text string, values map[string]any) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	tmpl, err := template.New("prompt").Option("missingkey=zero").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"join": func(sep string, items []any) string {
			parts := make([]string, len(items))
			for i, item := range items {
				parts[i] = fmt.Sprintf("%v", item)
			}
			return strings.Join(parts, sep)
		},
		"default": func(fallback, val any) any {
			if val == nil || val == "" {
				return fallback
			}
			return val
		},
	}).Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
