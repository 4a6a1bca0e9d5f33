package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const courseKeyPrefix = "course-v1:"

var courseKeyPart = regexp.MustCompile(`^[\w\-~.:]+$`)

// CourseKey identifies a course run. It is parsed from either the
// "course-v1:ORG+COURSE+RUN" form or the deprecated "ORG/COURSE/RUN" form and
// renders back in the form it was parsed from.
type CourseKey struct {
	Org        string
	Course     string
	Run        string
	Deprecated bool
}

// ParseCourseKey parses a course id string.
func ParseCourseKey(s string) (CourseKey, error) {
	var parts []string
	deprecated := false

	switch {
	case strings.HasPrefix(s, courseKeyPrefix):
		parts = strings.Split(strings.TrimPrefix(s, courseKeyPrefix), "+")
	case strings.Count(s, "/") == 2:
		parts = strings.Split(s, "/")
		deprecated = true
	default:
		return CourseKey{}, fmt.Errorf("%w: %q", ErrInvalidCourseKey, s)
	}

	if len(parts) != 3 {
		return CourseKey{}, fmt.Errorf("%w: %q", ErrInvalidCourseKey, s)
	}
	for _, p := range parts {
		if !courseKeyPart.MatchString(p) {
			return CourseKey{}, fmt.Errorf("%w: %q", ErrInvalidCourseKey, s)
		}
	}

	return CourseKey{
		Org:        parts[0],
		Course:     parts[1],
		Run:        parts[2],
		Deprecated: deprecated,
	}, nil
}

// String renders the key in the form it was parsed from.
func (k CourseKey) String() string {
	if k.Deprecated {
		return k.Org + "/" + k.Course + "/" + k.Run
	}
	return courseKeyPrefix + k.Org + "+" + k.Course + "+" + k.Run
}

// IsZero reports whether the key was never set.
func (k CourseKey) IsZero() bool {
	return k.Org == "" && k.Course == "" && k.Run == ""
}
