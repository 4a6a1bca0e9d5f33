package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCourseKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      string
		want       CourseKey
		wantString string
	}{
		{
			name:       "modern form",
			input:      "course-v1:edX+DemoX+Demo_Course",
			want:       CourseKey{Org: "edX", Course: "DemoX", Run: "Demo_Course"},
			wantString: "course-v1:edX+DemoX+Demo_Course",
		},
		{
			name:       "deprecated form",
			input:      "MITx/6.002x/2012_Fall",
			want:       CourseKey{Org: "MITx", Course: "6.002x", Run: "2012_Fall", Deprecated: true},
			wantString: "MITx/6.002x/2012_Fall",
		},
		{
			name:       "allowed punctuation",
			input:      "course-v1:Org-1+Course~2+Run.3:a",
			want:       CourseKey{Org: "Org-1", Course: "Course~2", Run: "Run.3:a"},
			wantString: "course-v1:Org-1+Course~2+Run.3:a",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCourseKey(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantString, got.String())
			assert.False(t, got.IsZero())
		})
	}
}

func TestParseCourseKey_Invalid(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"not a key",
		"course-v1:edX+DemoX",
		"course-v1:edX+DemoX+Demo+Extra",
		"course-v1:edX++Demo",
		"edX/Demo X/2020",
		"a/b",
	}

	for _, input := range inputs {
		_, err := ParseCourseKey(input)
		assert.True(t, errors.Is(err, ErrInvalidCourseKey), "input %q should be rejected", input)
	}
}

func TestCourseKey_IsZero(t *testing.T) {
	t.Parallel()
	assert.True(t, CourseKey{}.IsZero())
}
