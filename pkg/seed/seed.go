// Package seed provides the sample dataset used to reset a knowledge base.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/knowhub/pkg/core"
)

//go:embed sample.yaml
var sample []byte

// Dataset holds one record set per collection.
type Dataset struct {
	Notices        []core.Notice
	KnowledgeItems []core.KnowledgeItem
	Categories     []core.Category
}

type sampleFile struct {
	Categories []core.Category `yaml:"categories"`

	KnowledgeItems []struct {
		ID             string `yaml:"id"`
		Title          string `yaml:"title"`
		CategoryID     string `yaml:"categoryId"`
		CreatedDaysAgo int    `yaml:"createdDaysAgo"`
		UpdatedDaysAgo int    `yaml:"updatedDaysAgo"`
		Content        string `yaml:"content"`
	} `yaml:"knowledgeItems"`

	Notices []struct {
		ID       string `yaml:"id"`
		Title    string `yaml:"title"`
		Author   string `yaml:"author"`
		Priority string `yaml:"priority"`
		DaysAgo  int    `yaml:"daysAgo"`
		Content  string `yaml:"content"`
	} `yaml:"notices"`
}

// Sample returns the embedded dataset with its dates placed relative to now.
func Sample(now time.Time) (Dataset, error) {
	return Parse(sample, now)
}

// Parse reads a dataset in the embedded sample's format.
func Parse(data []byte, now time.Time) (Dataset, error) {
	var f sampleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Dataset{}, fmt.Errorf("parse sample data: %w", err)
	}

	ago := func(days int) string {
		return core.FormatTimestamp(now.AddDate(0, 0, -days))
	}

	ds := Dataset{Categories: f.Categories}
	for _, k := range f.KnowledgeItems {
		ds.KnowledgeItems = append(ds.KnowledgeItems, core.KnowledgeItem{
			ID:         k.ID,
			Title:      k.Title,
			Content:    k.Content,
			CategoryID: k.CategoryID,
			Created:    ago(k.CreatedDaysAgo),
			Updated:    ago(k.UpdatedDaysAgo),
		})
	}
	for _, n := range f.Notices {
		ds.Notices = append(ds.Notices, core.Notice{
			ID:       n.ID,
			Title:    n.Title,
			Content:  n.Content,
			Author:   n.Author,
			Date:     ago(n.DaysAgo),
			Priority: core.ParsePriority(n.Priority),
		})
	}
	return ds, nil
}
