package sqlitestore

import (
	"time"

	"github.com/google/uuid"
)

type userRow struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"size:10;not null;default:USER"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

type profileRow struct {
	ID         int64    `gorm:"primaryKey"`
	UserID     int64    `gorm:"uniqueIndex;not null"`
	User       *userRow `gorm:"constraint:OnDelete:CASCADE"`
	FullName   string
	Email      string
	Phone      string
	Address    string
	Occupation string
	Education  string
	BirthDate  string
	Gender     string
}

func (profileRow) TableName() string { return "user_profiles" }

type categoryRow struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Description string
}

func (categoryRow) TableName() string { return "survey_categories" }

type surveyRow struct {
	ID              int64        `gorm:"primaryKey"`
	Title           string       `gorm:"size:255;not null"`
	Description     string
	CategoryID      *int64       `gorm:"index"`
	Category        *categoryRow `gorm:"constraint:OnDelete:SET NULL"`
	CreatedBy       *int64
	Creator         *userRow `gorm:"foreignKey:CreatedBy;constraint:OnDelete:SET NULL"`
	DurationMinutes int      `gorm:"not null;default:0"`
	ResponseCount   int      `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (surveyRow) TableName() string { return "surveys" }

type questionRow struct {
	ID           int64      `gorm:"primaryKey"`
	SurveyID     int64      `gorm:"index;not null"`
	Survey       *surveyRow `gorm:"constraint:OnDelete:CASCADE"`
	QuestionText string     `gorm:"not null"`
	QuestionType string     `gorm:"size:30;not null"`
	OrderNumber  int        `gorm:"not null;default:0"`
	Required     bool       `gorm:"not null;default:false"`
}

func (questionRow) TableName() string { return "questions" }

type optionRow struct {
	ID          int64        `gorm:"primaryKey"`
	QuestionID  int64        `gorm:"index;not null"`
	Question    *questionRow `gorm:"constraint:OnDelete:CASCADE"`
	OptionText  string       `gorm:"not null"`
	OrderNumber int          `gorm:"not null;default:0"`
}

func (optionRow) TableName() string { return "question_options" }

type responseRow struct {
	ID          int64      `gorm:"primaryKey"`
	SurveyID    int64      `gorm:"uniqueIndex:idx_survey_responses_user_survey,priority:2;index;not null"`
	Survey      *surveyRow `gorm:"constraint:OnDelete:CASCADE"`
	UserID      int64      `gorm:"uniqueIndex:idx_survey_responses_user_survey,priority:1;not null"`
	User        *userRow   `gorm:"constraint:OnDelete:CASCADE"`
	StartedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time
}

func (responseRow) TableName() string { return "survey_responses" }

type answerRow struct {
	ID               int64        `gorm:"primaryKey"`
	ResponseID       int64        `gorm:"index;not null"`
	Response         *responseRow `gorm:"constraint:OnDelete:CASCADE"`
	QuestionID       int64        `gorm:"not null"`
	Question         *questionRow `gorm:"constraint:OnDelete:CASCADE"`
	AnswerText       string
	SelectedOptionID *int64
	SelectedOption   *optionRow `gorm:"constraint:OnDelete:SET NULL"`
}

func (answerRow) TableName() string { return "answer_records" }

type exportRow struct {
	ID          uuid.UUID  `gorm:"type:text;primaryKey"`
	SurveyID    int64      `gorm:"not null"`
	Survey      *surveyRow `gorm:"constraint:OnDelete:CASCADE"`
	RequestedBy *int64
	Requester   *userRow `gorm:"foreignKey:RequestedBy;constraint:OnDelete:SET NULL"`
	Status      string   `gorm:"size:20;not null"`
	S3Key       string
	RowCount    int `gorm:"not null;default:0"`
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (exportRow) TableName() string { return "response_exports" }
