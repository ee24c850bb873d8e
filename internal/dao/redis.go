package dao

import (
	"context"
	"log"
	"time"

	"github.com/MuhammedFaaik/f66/pkg/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

const (
	KeyRoomList   = "rooms:available" // Set: match ids with open slots
	KeyRoomPrefix = "room:"           // Hash: room:{id} -> { details }
)

func InitRedis() {
	cfg := config.AppConfig.Redis
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := RDB.Ping(ctx).Result(); err != nil {
		log.Fatalf("Redis connect failed: %v", err)
	}
}

// SaveRoom publishes a new room to the directory.
func SaveRoom(ctx context.Context, matchID string, data map[string]interface{}) error {
	pipe := RDB.Pipeline()

	key := KeyRoomPrefix + matchID
	pipe.HMSet(ctx, key, data)
	pipe.Expire(ctx, key, 24*time.Hour) // guard against dead entries

	pipe.SAdd(ctx, KeyRoomList, matchID)

	_, err := pipe.Exec(ctx)
	return err
}

func GetRoom(ctx context.Context, matchID string) (map[string]string, error) {
	return RDB.HGetAll(ctx, KeyRoomPrefix+matchID).Result()
}

func GetAllRooms(ctx context.Context) ([]map[string]string, error) {
	ids, err := RDB.SMembers(ctx, KeyRoomList).Result()
	if err != nil {
		return nil, err
	}

	var rooms []map[string]string
	for _, id := range ids {
		data, err := RDB.HGetAll(ctx, KeyRoomPrefix+id).Result()
		if err == nil && len(data) > 0 {
			data["match_id"] = id
			rooms = append(rooms, data)
		}
	}
	return rooms, nil
}

func UpdateRoom(ctx context.Context, matchID string, data map[string]interface{}) error {
	return RDB.HMSet(ctx, KeyRoomPrefix+matchID, data).Err()
}

func RemoveRoom(ctx context.Context, matchID string) error {
	pipe := RDB.Pipeline()
	pipe.Del(ctx, KeyRoomPrefix+matchID)
	pipe.SRem(ctx, KeyRoomList, matchID)
	_, err := pipe.Exec(ctx)
	return err
}

// ValidateRoomTicket checks a websocket ticket against the stored one.
func ValidateRoomTicket(ctx context.Context, matchID, ticket string) (bool, error) {
	val, err := RDB.HGet(ctx, KeyRoomPrefix+matchID, "ticket").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == ticket, nil
}
