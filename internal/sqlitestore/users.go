package sqlitestore

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/database"
)

// Users persists users and profiles.
type Users struct {
	db *gorm.DB
}

func (r userRow) model() *models.User {
	return &models.User{
		ID:        r.ID,
		Username:  r.Username,
		Password:  r.PasswordHash,
		Role:      models.Role(r.Role),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (p profileRow) model() *models.UserProfile {
	return &models.UserProfile{
		ID:         p.ID,
		UserID:     p.UserID,
		FullName:   p.FullName,
		Email:      p.Email,
		Phone:      p.Phone,
		Address:    p.Address,
		Occupation: p.Occupation,
		Education:  p.Education,
		BirthDate:  p.BirthDate,
		Gender:     p.Gender,
	}
}

// GetByID returns a user by ID.
func (u *Users) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var row userRow
	if err := u.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, translate(err)
	}
	return row.model(), nil
}

// GetByUsername returns a user by username.
func (u *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var row userRow
	if err := u.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return row.model(), nil
}

// GetProfile returns the profile of a user.
func (u *Users) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	var row profileRow
	if err := u.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return row.model(), nil
}

// Create inserts a user and its profile in one transaction.
func (u *Users) Create(ctx context.Context, user *models.User, p *models.UserProfile) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := userRow{Username: user.Username, PasswordHash: user.Password, Role: string(user.Role)}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		user.ID, user.CreatedAt, user.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
		if p == nil {
			return nil
		}
		pr := profileRow{
			UserID:     row.ID,
			FullName:   p.FullName,
			Email:      p.Email,
			Phone:      p.Phone,
			Address:    p.Address,
			Occupation: p.Occupation,
			Education:  p.Education,
			BirthDate:  p.BirthDate,
			Gender:     p.Gender,
		}
		if err := tx.Create(&pr).Error; err != nil {
			return err
		}
		p.ID, p.UserID = pr.ID, row.ID
		return nil
	})
	return translate(err)
}

// List returns all users ordered by id.
func (u *Users) List(ctx context.Context) ([]models.User, error) {
	var rows []userRow
	if err := u.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r.model())
	}
	return out, nil
}

// Update writes username and role.
func (u *Users) Update(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	res := u.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"username":   user.Username,
		"role":       string(user.Role),
		"updated_at": now,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

// Delete removes a user; profile and responses cascade.
func (u *Users) Delete(ctx context.Context, id int64) error {
	res := u.db.WithContext(ctx).Delete(&userRow{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// ListManagement returns users with their completed survey count.
func (u *Users) ListManagement(ctx context.Context) ([]models.UserManagement, error) {
	var list []models.UserManagement
	err := u.db.WithContext(ctx).Table("users u").
		Select("u.id AS id, u.username AS username, u.role AS role, COUNT(sr.id) AS surveys_completed").
		Joins("LEFT JOIN survey_responses sr ON sr.user_id = u.id").
		Group("u.id, u.username, u.role").
		Order("u.id").
		Scan(&list).Error
	return list, err
}

// ListProfileSummaries returns every profile with response count and the last completion time.
func (u *Users) ListProfileSummaries(ctx context.Context) ([]models.UserProfileSummary, error) {
	db := u.db.WithContext(ctx)
	var profiles []profileRow
	if err := db.Order("user_id").Find(&profiles).Error; err != nil {
		return nil, err
	}
	var users []userRow
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	var responses []responseRow
	if err := db.Select("user_id", "completed_at").Find(&responses).Error; err != nil {
		return nil, err
	}

	byID := make(map[int64]userRow, len(users))
	for _, r := range users {
		byID[r.ID] = r
	}
	type activity struct {
		count int
		last  *time.Time
	}
	acts := make(map[int64]*activity)
	for _, r := range responses {
		a := acts[r.UserID]
		if a == nil {
			a = &activity{}
			acts[r.UserID] = a
		}
		a.count++
		if r.CompletedAt != nil && (a.last == nil || r.CompletedAt.After(*a.last)) {
			t := *r.CompletedAt
			a.last = &t
		}
	}

	out := make([]models.UserProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		usr, ok := byID[p.UserID]
		if !ok {
			continue
		}
		s := models.UserProfileSummary{
			ID:         usr.ID,
			Username:   usr.Username,
			FullName:   p.FullName,
			Email:      p.Email,
			Phone:      p.Phone,
			Address:    p.Address,
			Occupation: p.Occupation,
			Education:  p.Education,
			BirthDate:  p.BirthDate,
			Gender:     p.Gender,
			Role:       models.Role(usr.Role),
		}
		if a := acts[p.UserID]; a != nil {
			s.SurveysCompleted = a.count
			s.LastActive = a.last
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
