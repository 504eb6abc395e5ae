package assets

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// CharacterCard is a persona definition the chat UI loads by filename.
// One key per line; the context renders as a block scalar so the
// multi-line persona text stays readable in the emitted file.
type CharacterCard struct {
	Name     string
	Greeting string
	Context  string
}

// Filename is the on-disk name the application looks the card up by.
func (c CharacterCard) Filename() string {
	return strings.ToLower(strings.ReplaceAll(c.Name, " ", "_")) + ".yaml"
}

// Encode renders the card as YAML.
func (c CharacterCard) Encode() ([]byte, error) {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	addScalar(doc, "name", c.Name, 0)
	addScalar(doc, "greeting", c.Greeting, 0)

	style := yaml.Style(0)
	if strings.Contains(c.Context, "\n") {
		style = yaml.LiteralStyle
	}
	addScalar(doc, "context", c.Context, style)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("character %s: %w", c.Name, err)
	}
	return out, nil
}

func addScalar(doc *yaml.Node, key, value string, style yaml.Style) {
	doc.Content = append(doc.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value, Style: style},
	)
}

// BuiltinCharacters is the persona set the playbook ships.
func BuiltinCharacters() []CharacterCard {
	return []CharacterCard{
		{
			Name:     "playbook_assistant",
			Greeting: "Warehouse is linked and the API is up. What are we running today?",
			Context: "You are the playbook assistant for a local text-generation setup.\n" +
				"You know the shared model warehouse layout, the preset names, and\n" +
				"the launch flags. Answer briefly and concretely; when a command is\n" +
				"the answer, give the command.\n",
		},
		{
			Name:     "playbook_editor",
			Greeting: "Paste the draft and tell me the audience.",
			Context: "You are a careful prose editor. Tighten wording, keep the\n" +
				"author's voice, and flag factual claims you cannot verify.\n" +
				"Return the revised text first, then a short list of changes.\n",
		},
	}
}
