package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/apperr"
	"github.com/iliyamo/inventory-pos/internal/mailer"
	"github.com/iliyamo/inventory-pos/internal/model"
)

// ContactInput is a message submitted through the public form.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type ContactService struct {
	contacts ContactStore
	mail     mailer.Mailer
	log      *zap.Logger
}

func NewContactService(contacts ContactStore, mail mailer.Mailer, log *zap.Logger) *ContactService {
	return &ContactService{contacts: contacts, mail: mail, log: log}
}

func (s *ContactService) Create(ctx context.Context, in ContactInput) (model.Contact, error) {
	c := model.Contact{Name: in.Name, Email: normalizeEmail(in.Email), Subject: in.Subject, Message: in.Message}
	if err := s.contacts.Create(ctx, &c); err != nil {
		return model.Contact{}, apperr.Store("create contact", err)
	}
	return c, nil
}

func (s *ContactService) Get(ctx context.Context, id uint64) (model.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return model.Contact{}, lookupErr("get contact", err, apperr.ErrContactNotFound)
	}
	return c, nil
}

func (s *ContactService) List(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, apperr.Store("list contacts", err)
	}
	return contacts, nil
}

// Reply stores the response, closes the message and mails the sender. A
// mail failure is logged; the reply is kept.
func (s *ContactService) Reply(ctx context.Context, id uint64, response string) (model.Contact, error) {
	if err := s.contacts.Reply(ctx, id, response); err != nil {
		return model.Contact{}, lookupErr("reply contact", err, apperr.ErrContactNotFound)
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return model.Contact{}, err
	}
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nYour original message:\n%s\n", c.Name, response, c.Message)
	if err := s.mail.Send(ctx, c.Email, "Re: "+c.Subject, body); err != nil {
		s.log.Warn("send contact reply failed", zap.Uint64("contact_id", id), zap.Error(err))
	}
	return c, nil
}

func (s *ContactService) SetStatus(ctx context.Context, id uint64, status string) (model.Contact, error) {
	if !model.ValidContactStatus(status) {
		return model.Contact{}, apperr.ErrInvalidStatus.WithDetails(map[string]any{
			"allowed": []string{model.ContactUnread, model.ContactPending, model.ContactResponded, model.ContactClosed},
		})
	}
	if err := s.contacts.SetStatus(ctx, id, status); err != nil {
		return model.Contact{}, lookupErr("set contact status", err, apperr.ErrContactNotFound)
	}
	return s.Get(ctx, id)
}

func (s *ContactService) Delete(ctx context.Context, id uint64) error {
	if err := s.contacts.Delete(ctx, id); err != nil {
		return lookupErr("delete contact", err, apperr.ErrContactNotFound)
	}
	return nil
}
