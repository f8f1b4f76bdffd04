package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"github.com/Usuiensan/xml-markdown/config"
	"github.com/Usuiensan/xml-markdown/lawxml"
)

// Values holds variables we make available for template expansion.
type Values struct {
	Context    string
	Title      string
	LawNum     string
	LawID      string
	Era        string
	Year       string
	LawType    string
	SourceFile string
}

func expandTemplate(law *lawxml.Law, lawID, srcName string, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context:    string(name),
		Title:      law.Title,
		LawNum:     law.LawNum,
		LawID:      lawID,
		Era:        law.Era,
		Year:       law.Year,
		LawType:    law.LawType,
		SourceFile: strings.TrimSuffix(filepath.Base(srcName), filepath.Ext(srcName)),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
