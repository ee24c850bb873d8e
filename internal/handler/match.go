package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MuhammedFaaik/f66/internal/core"
	"github.com/MuhammedFaaik/f66/internal/dao"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func matchStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrMatchFull), errors.Is(err, core.ErrAlreadyInRoom),
		errors.Is(err, core.ErrMatchNotPending):
		return http.StatusConflict
	case errors.Is(err, core.ErrMatchEnded):
		return http.StatusGone
	case errors.Is(err, core.ErrNotCreator):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// Create Match
func HandleCreateMatch(m *core.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := c.Get("uid")

		matchID, err := m.CreateMatch(uid.(int64))
		if err != nil {
			c.JSON(matchStatus(err), gin.H{"error": err.Error()})
			return
		}

		ticket := uuid.New().String()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := dao.SaveRoom(ctx, matchID, map[string]interface{}{
			"ticket":          ticket,
			"creator_uid":     uid.(int64),
			"current_players": 1,
			"max_players":     2,
			"status":          "WAITING",
			"created_at":      time.Now().Unix(),
		}); err != nil {
			m.EndMatch(matchID, "directory error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create match failed"})
			return
		}

		if err := dao.CreateMatchRow(matchID, uint(uid.(int64))); err != nil {
			log.Printf("match row for %s: %v", matchID, err)
		}

		c.JSON(http.StatusCreated, gin.H{
			"match_id": matchID,
			"ticket":   ticket,
			"ws_path":  "/ws",
		})
	}
}

// Join Match
func HandleJoinMatch(m *core.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := c.Get("uid")

		var req struct {
			MatchID string `json:"match_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		if err := m.JoinMatch(req.MatchID, uid.(int64)); err != nil {
			c.JSON(matchStatus(err), gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		roomData, err := dao.GetRoom(ctx, req.MatchID)
		if err != nil || len(roomData) == 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "room directory lookup failed"})
			return
		}

		if err := dao.UpdateRoom(ctx, req.MatchID, map[string]interface{}{
			"current_players": 2,
		}); err != nil {
			log.Printf("room update for %s: %v", req.MatchID, err)
		}
		if err := dao.SetMatchPlayer2(req.MatchID, uint(uid.(int64))); err != nil {
			log.Printf("match row for %s: %v", req.MatchID, err)
		}

		c.JSON(http.StatusOK, gin.H{
			"match_id": req.MatchID,
			"ticket":   roomData["ticket"],
			"ws_path":  "/ws",
		})
	}
}

// List Matches
func HandleListMatches(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rooms, err := dao.GetAllRooms(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list matches failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": rooms})
}

// Start Match
func HandleStartMatch(m *core.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := c.Get("uid")

		var req struct {
			MatchID string `json:"match_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
			return
		}

		if err := m.StartMatch(req.MatchID, uid.(int64)); err != nil {
			c.JSON(matchStatus(err), gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := dao.UpdateRoom(ctx, req.MatchID, map[string]interface{}{
			"status": "PLAYING",
		}); err != nil {
			log.Printf("room update for %s: %v", req.MatchID, err)
		}
		if err := dao.SetMatchStatus(req.MatchID, "PLAYING"); err != nil {
			log.Printf("match row for %s: %v", req.MatchID, err)
		}

		c.JSON(http.StatusOK, gin.H{"match_id": req.MatchID, "status": "PLAYING"})
	}
}
