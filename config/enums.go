package config

import (
	"fmt"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// TableMode selects how normalized tables are written out.
type TableMode int

const (
	// TableModeAuto uses Markdown pipe tables when the table has no spans or
	// styling and falls back to an HTML fragment otherwise.
	TableModeAuto TableMode = iota
	// TableModeHTML always writes tables as HTML fragments.
	TableModeHTML
)

const _tableModeNames = "auto,html"

func (m TableMode) String() string {
	switch m {
	case TableModeAuto:
		return "auto"
	case TableModeHTML:
		return "html"
	default:
		// this should never happen
		panic("unsupported table mode")
	}
}

// ParseTableMode converts a string to a TableMode value.
func ParseTableMode(name string) (TableMode, error) {
	switch strings.ToLower(name) {
	case "auto":
		return TableModeAuto, nil
	case "html":
		return TableModeHTML, nil
	default:
		return TableModeAuto, fmt.Errorf("%q is not a valid table mode, try [%s]", name, _tableModeNames)
	}
}

// TableModeNames returns the list of possible string values of TableMode.
func TableModeNames() []string {
	return strings.Split(_tableModeNames, ",")
}

func (m TableMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

func (m *TableMode) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	v, err := ParseTableMode(name)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
