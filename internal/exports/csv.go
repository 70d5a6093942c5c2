package exports

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/survey-app/backend/internal/models"
)

// WriteCSV renders one row per response: response_id, user_id, username, completed_at,
// then one column per question in presentation order. Several answers to the same
// question are joined with "; ". A selected option is rendered by its text.
func WriteCSV(w io.Writer, survey *models.Survey, details []models.ResponseDetail) error {
	cw := csv.NewWriter(w)
	header := []string{"response_id", "user_id", "username", "completed_at"}
	column := make(map[int64]int, len(survey.Questions))
	for _, q := range survey.Questions {
		header = append(header, q.Text)
		column[q.ID] = len(header) - 1
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, d := range details {
		row := make([]string, len(header))
		row[0] = strconv.FormatInt(d.ID, 10)
		row[1] = strconv.FormatInt(d.UserID, 10)
		row[2] = d.Username
		if d.CompletedAt != nil {
			row[3] = d.CompletedAt.UTC().Format(time.RFC3339)
		}
		cells := make(map[int][]string)
		for _, a := range d.Answers {
			i, ok := column[a.QuestionID]
			if !ok {
				continue
			}
			if v := answerValue(a); v != "" {
				cells[i] = append(cells[i], v)
			}
		}
		for i, vals := range cells {
			row[i] = strings.Join(vals, "; ")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func answerValue(a models.AnswerDetail) string {
	if a.SelectedOptionText != nil {
		return *a.SelectedOptionText
	}
	return a.AnswerText
}
