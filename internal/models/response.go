package models

import "time"

// SurveyResponse is one user's completed submission to one survey. Never updated after creation.
type SurveyResponse struct {
	ID          int64          `json:"id"`
	SurveyID    int64          `json:"surveyId"`
	UserID      int64          `json:"userId"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	Answers     []AnswerRecord `json:"answers"`
}

// AnswerRecord is the answer to one question within a response.
type AnswerRecord struct {
	ID               int64  `json:"-"`
	ResponseID       int64  `json:"-"`
	QuestionID       int64  `json:"questionId"`
	AnswerText       string `json:"answerText"`
	SelectedOptionID *int64 `json:"selectedOptionId"`
}

// ResponseDetail is a response with the respondent and question texts resolved.
type ResponseDetail struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"userId"`
	Username    string         `json:"username"`
	CompletedAt *time.Time     `json:"completedAt"`
	Answers     []AnswerDetail `json:"answers"`
}

// AnswerDetail is an answer with question and option texts.
type AnswerDetail struct {
	QuestionID         int64   `json:"questionId"`
	QuestionText       string  `json:"questionText"`
	AnswerText         string  `json:"answerText"`
	SelectedOptionID   *int64  `json:"selectedOptionId"`
	SelectedOptionText *string `json:"selectedOptionText"`
}
