package recipe

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
)

// Builtins are the variables a recipe may reference without defining them.
type Builtins struct {
	PortName            string
	PortVersion         string
	SecondaryArchSuffix string
}

func (b Builtins) vars() map[string]string {
	return map[string]string{
		"portName":            b.PortName,
		"portVersion":         b.PortVersion,
		"portVersionedName":   b.PortName + "-" + b.PortVersion,
		"secondaryArchSuffix": b.SecondaryArchSuffix,
	}
}

// ParseVariables returns the top-level variable assignments of a recipe.
// Values are unquoted and expanded against the builtins and the assignments
// that precede them. Functions and commands are ignored.
func ParseVariables(sourceCode []byte, builtins Builtins) (map[string]string, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(bash.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	defer tree.Close()

	scope := builtins.vars()
	vars := make(map[string]string)

	assign := func(n *sitter.Node) {
		nameNode := n.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "variable_name" {
			return
		}
		name := nameNode.Content(sourceCode)
		value := assignmentValue(n.ChildByFieldName("value"), sourceCode, scope)
		vars[name] = value
		scope[name] = value
	}

	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "variable_assignment":
			assign(child)
		case "declaration_command", "variable_assignments":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if nested := child.NamedChild(j); nested.Type() == "variable_assignment" {
					assign(nested)
				}
			}
		}
	}

	return vars, nil
}

func assignmentValue(n *sitter.Node, sourceCode []byte, scope map[string]string) string {
	if n == nil {
		return ""
	}
	text := n.Content(sourceCode)

	switch n.Type() {
	case "raw_string":
		return strings.Trim(text, "'")
	case "string":
		text = strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)
		text = strings.ReplaceAll(text, `\"`, `"`)
	case "array":
		text = strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")
		text = strings.NewReplacer(`"`, "", "'", "").Replace(text)
	default:
		text = strings.NewReplacer(`"`, "", "'", "").Replace(text)
	}

	return os.Expand(text, func(name string) string {
		return scope[name]
	})
}

// Lines splits a multi-line recipe value into its trimmed, non-empty lines.
func Lines(value string) []string {
	var lines []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
