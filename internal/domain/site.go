package domain

// Site is a tenant of the learning platform, identified by its domain.
// Configuration carries per-site overrides (platform name, theme, analytics
// account, ...) stored as a JSON object.
type Site struct {
	ID            int64          `json:"id"`
	Domain        string         `json:"domain"`
	Name          string         `json:"name"`
	Configuration map[string]any `json:"configuration,omitempty"`
}

// ConfigValue returns the site-level override for name, if one is set.
func (s *Site) ConfigValue(name string) (any, bool) {
	if s == nil || s.Configuration == nil {
		return nil, false
	}
	v, ok := s.Configuration[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// ConfigString returns the override for name when it is a non-empty string.
func (s *Site) ConfigString(name string) (string, bool) {
	v, ok := s.ConfigValue(name)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}
