package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupSubjects(t *testing.T) {
	out := DedupSubjects([]string{"Math", " math ", "Physics", "MATH", "", "physics"})
	assert.Equal(t, CSVList{"Math", "Physics"}, out)

	assert.Empty(t, DedupSubjects(nil))
	assert.Empty(t, DedupSubjects([]string{"  ", ""}))
}

func TestTeacherCanTeach(t *testing.T) {
	teacher := Teacher{Subjects: CSVList{"Math", "Physics"}}

	assert.True(t, teacher.CanTeach("math"))
	assert.True(t, teacher.CanTeach("PHYSICS"))
	assert.False(t, teacher.CanTeach("Biology"))
}

func TestTeacherCanBeAssigned(t *testing.T) {
	assert.True(t, Teacher{EmploymentStatus: EmploymentStatusActive}.CanBeAssigned())
	assert.False(t, Teacher{EmploymentStatus: EmploymentStatusOnLeave}.CanBeAssigned())
	assert.False(t, Teacher{EmploymentStatus: EmploymentStatusTerminated}.CanBeAssigned())
}
