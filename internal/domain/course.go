package domain

// CourseOverview is the cached summary of a course run.
type CourseOverview struct {
	ID          CourseKey `json:"id"`
	DisplayName string    `json:"display_name"`
	// Language is the course's content language; empty when unset.
	Language string `json:"language"`
}

// EffectiveLanguage returns the course language, or def when none is set.
func (c *CourseOverview) EffectiveLanguage(def string) string {
	if c == nil || c.Language == "" {
		return def
	}
	return c.Language
}
