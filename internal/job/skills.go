package job

import "strings"

// Skills is an ordered skill list without exact duplicates.
type Skills []string

// Add appends the trimmed skill when it is non-empty and not already present.
// It reports whether the list changed.
func (s *Skills) Add(skill string) bool {
	skill = strings.TrimSpace(skill)
	if skill == "" || s.Contains(skill) {
		return false
	}
	*s = append(*s, skill)
	return true
}

func (s *Skills) Remove(skill string) {
	out := make(Skills, 0, len(*s))
	for _, v := range *s {
		if v != skill {
			out = append(out, v)
		}
	}
	*s = out
}

func (s Skills) Contains(skill string) bool {
	for _, v := range s {
		if v == skill {
			return true
		}
	}
	return false
}

// FromValues builds a skill list from repeated form values, applying Add rules.
func FromValues(values []string) Skills {
	var s Skills
	for _, v := range values {
		s.Add(v)
	}
	return s
}
