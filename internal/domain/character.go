// Package domain contains core domain types for the persona chat service.
package domain

import "strings"

// Character is a persona definition used to build role-play prompts.
// Name is the unique identifier within the character store.
type Character struct {
	Name        string   `json:"name" yaml:"name"`
	Role        string   `json:"role" yaml:"role"`
	Personality string   `json:"personality" yaml:"personality"`
	Background  string   `json:"background" yaml:"background"`
	Knowledge   []string `json:"knowledge" yaml:"knowledge"`
	Secrets     []string `json:"secrets" yaml:"secrets"`
	Goals       []string `json:"goals" yaml:"goals"`
	Connections []string `json:"connections" yaml:"connections"`
}

// Clone returns a deep copy so callers never share list backing arrays.
func (c Character) Clone() Character {
	out := c
	out.Knowledge = cloneList(c.Knowledge)
	out.Secrets = cloneList(c.Secrets)
	out.Goals = cloneList(c.Goals)
	out.Connections = cloneList(c.Connections)
	return out
}

// Preview renders the character the way the console and the status command show it.
// Secrets are intentionally left out of the preview.
func (c Character) Preview() string {
	var b strings.Builder
	b.WriteString("Name: " + c.Name)
	b.WriteString("\nRole: " + c.Role)
	b.WriteString("\nPersonality: " + c.Personality)
	b.WriteString("\nBackground: " + c.Background)
	writeSection(&b, "Knowledge & Expertise:", c.Knowledge)
	writeSection(&b, "Personal Goals:", c.Goals)
	writeSection(&b, "Connections:", c.Connections)
	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title)
	for _, item := range items {
		b.WriteString("\n- " + item)
	}
}

func cloneList(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
