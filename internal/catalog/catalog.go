package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Topic is one unit of learning content with its own quiz.
type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Section groups an ordered run of topics and carries its own section quiz.
type Section struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Order  int     `json:"order"`
	Topics []Topic `json:"topics"`
}

// Catalog is a read-only lookup table over the learning content: which
// sections exist, which topics belong to them, and how many topics a
// section has. Progress counting matches completed topics to sections by
// ID prefix, so topic IDs must be namespaced "sectionID/topic"; building
// the catalog collects a warning for every violation.
type Catalog struct {
	sections     []Section
	byID         map[string]int
	topicSection map[string]string
	warnings     []string
}

type document struct {
	Sections []Section `json:"sections"`
}

// Parse decodes the catalog document format.
func Parse(data []byte) ([]Section, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return doc.Sections, nil
}

// New builds a catalog from the given sections. Duplicate or empty
// identifiers are errors; topic IDs that do not carry their section's ID
// as a prefix are accepted but reported via Warnings.
func New(sections []Section) (*Catalog, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("catalog has no sections")
	}

	c := &Catalog{
		sections:     make([]Section, len(sections)),
		byID:         make(map[string]int, len(sections)),
		topicSection: make(map[string]string),
	}
	copy(c.sections, sections)
	sort.SliceStable(c.sections, func(i, j int) bool {
		return c.sections[i].Order < c.sections[j].Order
	})

	for i, sec := range c.sections {
		if sec.ID == "" {
			return nil, fmt.Errorf("section %d has an empty id", i)
		}
		if _, dup := c.byID[sec.ID]; dup {
			return nil, fmt.Errorf("duplicate section id %q", sec.ID)
		}
		c.byID[sec.ID] = i

		for _, topic := range sec.Topics {
			if topic.ID == "" {
				return nil, fmt.Errorf("section %q has a topic with an empty id", sec.ID)
			}
			if owner, dup := c.topicSection[topic.ID]; dup {
				return nil, fmt.Errorf("topic id %q appears in sections %q and %q", topic.ID, owner, sec.ID)
			}
			c.topicSection[topic.ID] = sec.ID

			if !strings.HasPrefix(topic.ID, sec.ID+"/") {
				c.warnings = append(c.warnings,
					fmt.Sprintf("topic %q is not namespaced under section %q; progress counting will miss it", topic.ID, sec.ID))
			}
		}
	}

	return c, nil
}

// Sections returns all sections in display order.
func (c *Catalog) Sections() []Section {
	out := make([]Section, len(c.sections))
	copy(out, c.sections)
	return out
}

// Section returns the section with the given ID.
func (c *Catalog) Section(id string) (Section, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Section{}, false
	}
	return c.sections[i], true
}

// TotalTopics returns the topic count of the section, or 0 when unknown.
func (c *Catalog) TotalTopics(sectionID string) int {
	i, ok := c.byID[sectionID]
	if !ok {
		return 0
	}
	return len(c.sections[i].Topics)
}

// SectionOf returns the ID of the section owning the topic.
func (c *Catalog) SectionOf(topicID string) (string, bool) {
	sectionID, ok := c.topicSection[topicID]
	return sectionID, ok
}

// SectionCount returns the number of sections.
func (c *Catalog) SectionCount() int {
	return len(c.sections)
}

// TopicCount returns the number of topics across all sections.
func (c *Catalog) TopicCount() int {
	return len(c.topicSection)
}

// Warnings returns the namespacing violations found while building.
func (c *Catalog) Warnings() []string {
	return c.warnings
}
