package store

import (
	"context"
	"fmt"

	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
)

type mailStore struct {
	*MYSQLStore
}

// Mail returns an object implementing mail interface
func (ms *MYSQLStore) Mail() dependency.Mail {
	return &mailStore{
		MYSQLStore: ms,
	}
}

// AddMail queues an email in the outbox table. The worker picks it up even if
// the immediate send attempt fails.
func (ms *MYSQLStore) AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error) {
	query := `
	INSERT INTO send_email_request (from_email, to_email, html, subject, reply_to, sent)
	VALUES (:from, :to, :html, :subject, :replyTo, :sent)`
	id, err := ExecNamedLastId(ctx, ms.DB(), query, map[string]any{
		"from":    ser.From,
		"to":      ser.To,
		"html":    ser.Html,
		"subject": ser.Subject,
		"replyTo": ser.ReplyTo,
		"sent":    ser.Sent,
	})
	if err != nil {
		return 0, fmt.Errorf("can't add mail request: %w", err)
	}
	return id, nil
}

// GetAllUnsent fetches all unsent email requests, optionally including the
// ones that already failed at least once.
func (ms *MYSQLStore) GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error) {
	query := `
	SELECT id, from_email, to_email, html, subject, reply_to, sent, sent_at, created_at, error_msg
	FROM send_email_request
	WHERE sent = false`
	if !withError {
		query += ` AND error_msg IS NULL`
	}
	requests, err := QueryListNamed[entity.SendEmailRequest](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get unsent email requests: %w", err)
	}
	return requests, nil
}

func (ms *MYSQLStore) UpdateSent(ctx context.Context, id int) error {
	err := ExecNamed(ctx, ms.DB(), `
		UPDATE send_email_request
		SET sent = true, sent_at = CURRENT_TIMESTAMP, error_msg = NULL
		WHERE id = :id`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't update email request as sent: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) AddError(ctx context.Context, id int, errMsg string) error {
	err := ExecNamed(ctx, ms.DB(), `
		UPDATE send_email_request SET error_msg = :errMsg WHERE id = :id`,
		map[string]any{"id": id, "errMsg": errMsg})
	if err != nil {
		return fmt.Errorf("can't add error to email request: %w", err)
	}
	return nil
}
