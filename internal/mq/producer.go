package mq

import (
	"encoding/json"
	"log"

	"github.com/MuhammedFaaik/f66/pkg/config"

	"github.com/streadway/amqp"
)

var (
	Conn    *amqp.Connection
	Channel *amqp.Channel
)

func InitMQ() {
	var err error
	Conn, err = amqp.Dial(config.AppConfig.MQ.Url)
	if err != nil {
		log.Fatalf("MQ connect failed: %v", err)
	}

	Channel, err = Conn.Channel()
	if err != nil {
		log.Fatalf("MQ channel failed: %v", err)
	}

	_, err = Channel.QueueDeclare(
		config.AppConfig.MQ.QueueName,
		true, false, false, false, nil,
	)
	if err != nil {
		log.Fatalf("MQ queue declare failed: %v", err)
	}
}

// PublishMatchResult hands a final match record to the persistence consumer.
func PublishMatchResult(result interface{}) {
	body, err := json.Marshal(result)
	if err != nil {
		log.Printf("Failed to marshal result: %v", err)
		return
	}
	err = Channel.Publish(
		"",
		config.AppConfig.MQ.QueueName,
		false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
	if err != nil {
		log.Printf("Failed to publish result: %v", err)
	}
}
