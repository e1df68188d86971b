package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/squad-manager/backend/internal/domain"
)

const MailTypeRosterGenerated = "roster_generated"

// Channel 是 *amqp.Channel 中用到的部分
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch    Channel
	queue string
}

func NewPublisher(ch Channel, queue string) *Publisher {
	return &Publisher{
		ch:    ch,
		queue: queue,
	}
}

// PublishRoster 给每个小队的指挥官发送一封邮件，没有填写邮箱的指挥官会被跳过
func (p *Publisher) PublishRoster(ctx context.Context, roster *domain.Roster, commanders []*domain.Player) error {
	byID := make(map[int64]*domain.Player, len(commanders))
	for _, c := range commanders {
		byID[c.ID] = c
	}

	for _, squad := range roster.Squads {
		commander, ok := byID[squad.CommanderID]
		if !ok || commander.Email == "" {
			slog.Warn("指挥官没有邮箱，跳过通知", "commanderID", squad.CommanderID)
			continue
		}

		mailMessage := domain.MailMessage{
			Type: MailTypeRosterGenerated,
			To:   commander.Email,
			Data: domain.RosterGeneratedMailData{
				AccountName: commander.AccountName,
				RosterID:    roster.ID,
				SquadIndex:  squad.Index,
				Members:     squad.Members,
			},
		}

		body, err := json.Marshal(mailMessage)
		if err != nil {
			return err
		}

		if err := p.ch.PublishWithContext(
			ctx,
			"",
			p.queue,
			true,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		); err != nil {
			return err
		}
	}

	return nil
}
