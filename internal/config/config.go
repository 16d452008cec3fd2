package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/normalize"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Categories []CategoryConfig `yaml:"categories"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Git        GitConfig        `yaml:"git"`
}

// CategoryConfig declares one spending category plus the keywords that
// suggest it at import time.
type CategoryConfig struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Color    string   `yaml:"color,omitempty"`
	Icon     string   `yaml:"icon,omitempty"`
	Keywords []string `yaml:"keywords,omitempty"`
}

// ClassifierConfig controls the AI classifier.
type ClassifierConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ModelCategories returns the configured categories as model values.
func (c *Config) ModelCategories() []model.Category {
	out := make([]model.Category, 0, len(c.Categories))
	for _, cc := range c.Categories {
		out = append(out, model.Category{ID: cc.ID, Name: cc.Name, Color: cc.Color, Icon: cc.Icon})
	}
	return out
}

// KeywordDict returns the keyword dictionary in config order, skipping
// categories with no keywords.
func (c *Config) KeywordDict() []normalize.CategoryKeywords {
	var out []normalize.CategoryKeywords
	for _, cc := range c.Categories {
		if len(cc.Keywords) == 0 {
			continue
		}
		out = append(out, normalize.CategoryKeywords{CategoryID: cc.ID, Keywords: cc.Keywords})
	}
	return out
}

// Default returns a Config with a starter category set for a new
// project.
func Default() *Config {
	return &Config{
		Categories: []CategoryConfig{
			{ID: "groceries", Name: "Groceries", Color: "#4caf50", Icon: "cart",
				Keywords: []string{"grocery", "supermarket", "walmart", "trader joe", "whole foods"}},
			{ID: "eating-out", Name: "Eating Out", Color: "#ff9800", Icon: "utensils",
				Keywords: []string{"restaurant", "cafe", "coffee", "doordash", "grubhub"}},
			{ID: "transport", Name: "Transport", Color: "#2196f3", Icon: "car",
				Keywords: []string{"uber", "lyft", "gas", "parking", "transit"}},
			{ID: "utilities", Name: "Utilities", Color: "#9c27b0", Icon: "bolt",
				Keywords: []string{"electric", "water", "internet", "comcast", "verizon"}},
			{ID: "entertainment", Name: "Entertainment", Color: "#e91e63", Icon: "film",
				Keywords: []string{"netflix", "spotify", "cinema", "steam"}},
			{ID: "misc", Name: "Miscellaneous", Color: "#607d8b", Icon: "tag"},
		},
		Classifier: ClassifierConfig{
			Enabled: true,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}
