package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// Publisher публикует события сервиса в exchange уведомлений.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создает новый экземпляр Publisher.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// PublishContactDisclosed публикует событие о раскрытии контакта.
func (p *Publisher) PublishContactDisclosed(_ context.Context, event models.ContactDisclosedEvent) error {
	const op = "rabbitmq.PublishContactDisclosed"
	if err := publishMessage(p.ch, Exchange, RoutingKeyContactDisclosed, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func publishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
}
