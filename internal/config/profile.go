package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the presentation config the chat widget fetches on load.
type Profile struct {
	Title        string       `yaml:"title" json:"title"`
	Placeholder  string       `yaml:"placeholder" json:"placeholder"`
	QuickReplies []QuickReply `yaml:"quick_replies" json:"quickReplies"`
	Welcome      []string     `yaml:"welcome" json:"-"`
}

type QuickReply struct {
	Icon        string `yaml:"icon" json:"icon,omitempty"`
	Name        string `yaml:"name" json:"name"`
	IsHighlight bool   `yaml:"highlight" json:"isHighlight"`
}

func DefaultProfile() *Profile {
	return &Profile{
		Title:       "Smoky, the Algebra Bot",
		Placeholder: "Ask me anything!",
		QuickReplies: []QuickReply{
			{Icon: "message", Name: "Help", IsHighlight: true},
			{Icon: "compass", Name: "Solve/simplify", IsHighlight: true},
			{Icon: "search", Name: "Recommend", IsHighlight: true},
			{Icon: "smile", Name: "Joke", IsHighlight: true},
		},
		Welcome: []string{
			"Hi! I'm Smoky. Type an equation between $ signs, like $2x+3=7$, and I'll help you solve it.",
		},
	}
}

// LoadProfile reads a YAML profile. Fields left out keep their defaults.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i, qr := range p.QuickReplies {
		if qr.Name == "" {
			return nil, fmt.Errorf("quick reply %d has no name", i)
		}
	}
	return p, nil
}
