package mq

import (
	"encoding/json"
	"log"

	"github.com/MuhammedFaaik/f66/internal/dao"
	"github.com/MuhammedFaaik/f66/model"
	"github.com/MuhammedFaaik/f66/pkg/config"
)

// MatchResult mirrors core.FinalRecord's wire shape; Players is ordered
// Team1 first.
type MatchResult struct {
	MatchID   string  `json:"match_id"`
	Players   []int64 `json:"players"`
	Score     [2]int  `json:"score"`
	Winner    int64   `json:"winner"`
	Tick      int64   `json:"tick"`
	Duration  float64 `json:"duration"`
	Reason    string  `json:"reason"`
	Timestamp int64   `json:"timestamp"`
}

func StartConsumer() {
	msgs, err := Channel.Consume(
		config.AppConfig.MQ.QueueName,
		"",
		false, // auto-ack
		false, false, false, nil,
	)
	if err != nil {
		log.Fatalf("Failed to register consumer: %v", err)
	}

	log.Printf("MQ Consumer started, waiting for messages on queue: %s", config.AppConfig.MQ.QueueName)

	for msg := range msgs {
		var result MatchResult
		if err := json.Unmarshal(msg.Body, &result); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			msg.Nack(false, false)
			continue
		}

		if err := saveMatchResult(&result); err != nil {
			log.Printf("Failed to save match result: %v", err)
			msg.Nack(false, true) // requeue
			continue
		}

		msg.Ack(false)
		log.Printf("Match result saved: match_id=%s, score=%d-%d", result.MatchID, result.Score[0], result.Score[1])
	}
}

func saveMatchResult(result *MatchResult) error {
	if err := dao.FinishMatchRow(result.MatchID, result.Score, uint(result.Winner)); err != nil {
		return err
	}

	for i, uid := range result.Players {
		goalsFor := result.Score[i%2]
		goalsAgainst := result.Score[(i+1)%2]
		won := uid == result.Winner && result.Winner != 0

		if err := dao.AddHistory(&model.MatchHistory{
			UserID:       uint(uid),
			MatchID:      result.MatchID,
			IsWinner:     won,
			GoalsFor:     goalsFor,
			GoalsAgainst: goalsAgainst,
			Duration:     result.Duration,
			Timestamp:    result.Timestamp,
		}); err != nil {
			return err
		}
		if err := dao.ApplyResultToStats(uint(uid), goalsFor, goalsAgainst, won); err != nil {
			return err
		}
	}
	return nil
}
