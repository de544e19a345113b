package progress

// SectionProgress tracks a user's advancement through one section.
// TotalTopics is supplied externally at each update; the progress model
// itself knows nothing about content structure.
type SectionProgress struct {
	SectionID            string `json:"sectionId"`
	TopicsCompleted      int    `json:"topicsCompleted"`
	TotalTopics          int    `json:"totalTopics"`
	SectionQuizCompleted bool   `json:"sectionQuizCompleted"`
}

// ProgressPercentage returns the completed fraction in [0,1], or 0 when
// the section has no known topics.
func (sp SectionProgress) ProgressPercentage() float64 {
	if sp.TotalTopics == 0 {
		return 0
	}
	return float64(sp.TopicsCompleted) / float64(sp.TotalTopics)
}

// IsComplete reports whether every known topic of the section is done.
// A section with no known topics is never complete.
func (sp SectionProgress) IsComplete() bool {
	return sp.TotalTopics > 0 && sp.TopicsCompleted >= sp.TotalTopics
}

// IsFullyComplete reports whether the section's topics and its own quiz
// are both done.
func (sp SectionProgress) IsFullyComplete() bool {
	return sp.IsComplete() && sp.SectionQuizCompleted
}
