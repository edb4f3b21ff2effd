package artifact

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("artifact").Funcs(template.FuncMap{
	"quote":  quote,
	"offset": offset,
}).ParseFS(templateFS, "templates/*.tmpl"))

func render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// offset renders a placement coordinate as a negated background position.
// Zero stays a bare 0.
func offset(v int) string {
	if v == 0 {
		return "0"
	}
	return "-" + strconv.Itoa(v) + "px"
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)

// quote wraps s in single quotes for SCSS and TypeScript string literals.
func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}
