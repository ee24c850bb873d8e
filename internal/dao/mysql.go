package dao

import (
	"log"
	"time"

	"github.com/MuhammedFaaik/f66/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("MySQL connect failed: %v", err)
	}
	DB.AutoMigrate(&model.User{}, &model.PlayerStats{}, &model.Match{}, &model.MatchHistory{})
}

func CreateUser(u *model.User) error {
	return DB.Create(u).Error
}

func GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	err := DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	err := DB.Where("username = ?", username).First(&user).Error
	return &user, err
}

func GetUserByID(uid uint) (*model.User, error) {
	var user model.User
	err := DB.First(&user, uid).Error
	return &user, err
}

// CreateMatchRow records a freshly created match in WAITING state.
func CreateMatchRow(matchID string, creator uint) error {
	return DB.Create(&model.Match{
		MatchID:   matchID,
		Player1ID: creator,
		StartTime: time.Now(),
		Status:    "WAITING",
	}).Error
}

func SetMatchPlayer2(matchID string, uid uint) error {
	return DB.Model(&model.Match{}).
		Where("match_id = ? AND player2_id = 0", matchID).
		Update("player2_id", uid).Error
}

func SetMatchStatus(matchID, status string) error {
	return DB.Model(&model.Match{}).
		Where("match_id = ?", matchID).
		Update("status", status).Error
}

// FinishMatchRow completes a match record with the final result.
func FinishMatchRow(matchID string, score [2]int, winner uint) error {
	now := time.Now()
	return DB.Model(&model.Match{}).
		Where("match_id = ?", matchID).
		Updates(map[string]interface{}{
			"end_time":    &now,
			"score_team1": score[0],
			"score_team2": score[1],
			"winner_id":   winner,
			"status":      "FINISHED",
		}).Error
}

func AddHistory(h *model.MatchHistory) error {
	return DB.Create(h).Error
}

func GetHistory(uid uint, page, limit int) ([]model.MatchHistory, error) {
	var history []model.MatchHistory
	offset := (page - 1) * limit
	err := DB.Where("user_id = ?", uid).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&history).Error
	return history, err
}

// ApplyResultToStats folds one finished match into a player's stats row,
// creating it on first use.
func ApplyResultToStats(uid uint, goalsFor, goalsAgainst int, won bool) error {
	var stats model.PlayerStats
	err := DB.Where("user_id = ?", uid).First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		stats = model.PlayerStats{UserID: uid}
	} else if err != nil {
		return err
	}

	stats.MatchesPlayed++
	stats.GoalsScored += goalsFor
	if won {
		stats.Wins++
	} else if goalsFor < goalsAgainst {
		stats.Losses++
	}
	return DB.Save(&stats).Error
}
