package forge

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates
var templatesFS embed.FS

// hookNames lists the generated git hooks in write order; sail-utils is sourced
// by the others.
var hookNames = []string{"sail-utils", "pre-commit", "pre-push", "post-merge"}

// hookData is the template context of the git hooks.
type hookData struct {
	Project       string
	TestProcesses int
}

var hookTemplates = template.Must(
	template.New("hooks").Funcs(sprig.TxtFuncMap()).ParseFS(templatesFS, "templates/hooks/*.tmpl"),
)

// renderHook renders the hook called name.
func renderHook(name string, data hookData) ([]byte, error) {
	var buf bytes.Buffer
	if err := hookTemplates.ExecuteTemplate(&buf, name+".tmpl", data); err != nil {
		return nil, fmt.Errorf("failed to render hook %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// staticAsset returns an embedded file verbatim.
func staticAsset(name string) []byte {
	data, err := templatesFS.ReadFile(path.Join("templates", name))
	if err != nil {
		panic(fmt.Sprintf("missing embedded asset %s: %v", name, err))
	}
	return data
}

// HookNames returns the generated hook file names.
func HookNames() []string {
	return append([]string(nil), hookNames...)
}
