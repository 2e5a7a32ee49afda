// Package sender отправляет покупателю письмо с раскрытой контактной
// карточкой. Сообщения приходят из очереди contact.disclosed.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/classifieds-backend/internal/lib/sl"
	"github.com/magabrotheeeer/classifieds-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/classifieds-backend/internal/models"
)

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendContactCard разбирает событие о раскрытии контакта и отправляет
// покупателю письмо с данными владельца объявления.
func (s *Service) SendContactCard(body []byte) error {
	var event models.ContactDisclosedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{event.CustomerEmail}
	subject := fmt.Sprintf("Контакты по объявлению %s", event.Card.AdNumber)
	lines := []string{
		"Здравствуйте!",
		"",
		fmt.Sprintf("Вы раскрыли контакты по объявлению %s.", event.Card.AdNumber),
		"",
		"Продавец: " + event.Card.OwnerName,
	}
	if event.Card.CompanyName != "" {
		lines = append(lines, "Компания: "+event.Card.CompanyName)
	}
	lines = append(lines, "Телефон: "+event.Card.ContactPhone)
	if event.Card.ContactEmail != "" {
		lines = append(lines, "Почта: "+event.Card.ContactEmail)
	}

	return s.sendEmail(to, subject, strings.Join(lines, "\n"))
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("contact card email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
