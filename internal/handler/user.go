package handler

import (
	"net/http"
	"strconv"

	"github.com/MuhammedFaaik/f66/internal/dao"

	"github.com/gin-gonic/gin"
)

// Get History
func HandleGetHistory(c *gin.Context) {
	uid, _ := c.Get("uid")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	records, err := dao.GetHistory(uint(uid.(int64)), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch history failed"})
		return
	}

	history := make([]gin.H, 0, len(records))
	for _, r := range records {
		history = append(history, gin.H{
			"match_id":      r.MatchID,
			"is_winner":     r.IsWinner,
			"goals_for":     r.GoalsFor,
			"goals_against": r.GoalsAgainst,
			"duration":      r.Duration,
			"timestamp":     r.Timestamp,
		})
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
