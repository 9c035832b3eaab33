package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionExam(t *testing.T) {
	assert.True(t, CanTransitionExam(ExamStatusScheduled, ExamStatusInProgress))
	assert.True(t, CanTransitionExam(ExamStatusScheduled, ExamStatusCancelled))
	assert.True(t, CanTransitionExam(ExamStatusInProgress, ExamStatusCompleted))
	assert.True(t, CanTransitionExam(ExamStatusInProgress, ExamStatusCancelled))

	assert.False(t, CanTransitionExam(ExamStatusScheduled, ExamStatusCompleted))
	assert.False(t, CanTransitionExam(ExamStatusCompleted, ExamStatusInProgress))
	assert.False(t, CanTransitionExam(ExamStatusCancelled, ExamStatusScheduled))
	assert.False(t, CanTransitionExam(ExamStatusCompleted, ExamStatusCancelled))
}

func TestExamAcceptsResults(t *testing.T) {
	assert.False(t, Exam{Status: ExamStatusScheduled}.AcceptsResults())
	assert.True(t, Exam{Status: ExamStatusInProgress}.AcceptsResults())
	assert.True(t, Exam{Status: ExamStatusCompleted}.AcceptsResults())
	assert.False(t, Exam{Status: ExamStatusCancelled}.AcceptsResults())
}
