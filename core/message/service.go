package message

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/student"
)

var (
	ErrNoRecipients = errors.New("message has no recipients")
	// ErrPaymentType guards the payment message type, which only the
	// payment-registration flow may record.
	ErrPaymentType = errors.New("payment messages are sent by the payment registration flow")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
		QueryAllMessages(ctx context.Context) ([]Message, error)
		// FilterMessages applies AND operation on available QueryFilter fields.
		// Results are ordered by sent time descending.
		FilterMessages(ctx context.Context, filter QueryFilter) ([]Message, error)
	}

	ServiceInterface interface {
		// Send dispatches the message to every resolved parent contact and
		// records it; the returned slice holds the recipients that failed.
		Send(ctx context.Context, sm SendMessage, senderID string) (Message, []Recipient, error)
		// RecordSent stores an already-delivered notification (check-in and
		// payment confirmations).
		RecordSent(ctx context.Context, m Message) (Message, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Message, error)
	}

	service struct {
		repo        Repository
		studentRepo student.Repository
		classRepo   class.Repository
		smsSvc      core.SMSService
		mailSvc     core.EmailService
		logger      core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	studentRepo student.Repository,
	classRepo class.Repository,
	smsSvc core.SMSService,
	mailSvc core.EmailService,
	logger core.Logger,
) *service {
	return &service{
		repo:        repo,
		studentRepo: studentRepo,
		classRepo:   classRepo,
		smsSvc:      smsSvc,
		mailSvc:     mailSvc,
		logger:      logger,
	}
}

func (svc *service) Send(ctx context.Context, sm SendMessage, senderID string) (Message, []Recipient, error) {
	recipients, err := svc.resolveRecipients(ctx, sm)
	if err != nil {
		return Message{}, nil, err
	}
	if len(recipients) == 0 {
		return Message{}, nil, core.NewValidationError(ErrNoRecipients)
	}

	var failed []Recipient
	for _, r := range recipients {
		if err := svc.deliver(ctx, r, sm.Content); err != nil {
			svc.logger.Error(fmt.Sprintf("delivering message to student %s: %v", r.StudentID, err), err)
			failed = append(failed, r)
		}
	}

	status := StatusSent
	if len(failed) > 0 {
		status = StatusFailed
	}
	m := Message{
		SenderID:   senderID,
		Recipients: recipients,
		ClassID:    sm.ClassID,
		Content:    sm.Content,
		SentAt:     time.Now().UTC(),
		Type:       sm.Type,
		Status:     status,
	}
	m, err = svc.repo.CreateMessage(ctx, m)
	return m, failed, err
}

func (svc *service) resolveRecipients(ctx context.Context, sm SendMessage) ([]Recipient, error) {
	switch sm.Type {
	case TypeIndividual:
		if sm.StudentID == "" {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "student_id", Error: "this field is required"})
		}
		st, err := svc.studentRepo.GetStudentByID(ctx, sm.StudentID)
		if err != nil {
			return nil, err
		}
		return []Recipient{recipientOf(st)}, nil

	case TypeClass:
		if sm.ClassID == "" {
			return nil, core.NewValidationError(nil, core.FieldError{Field: "class_id", Error: "this field is required"})
		}
		cls, err := svc.classRepo.GetClassByID(ctx, sm.ClassID)
		if err != nil {
			return nil, err
		}
		recipients := make([]Recipient, 0, len(cls.StudentIDs))
		for _, id := range cls.StudentIDs {
			st, err := svc.studentRepo.GetStudentByID(ctx, id)
			if err != nil {
				continue // enrollment links may lag behind deletions
			}
			recipients = append(recipients, recipientOf(st))
		}
		return recipients, nil

	case TypeGroup:
		recipients := make([]Recipient, 0, len(sm.StudentIDs))
		for _, id := range sm.StudentIDs {
			st, err := svc.studentRepo.GetStudentByID(ctx, id)
			if err != nil {
				continue
			}
			recipients = append(recipients, recipientOf(st))
		}
		return recipients, nil

	case TypePayment:
		return nil, core.NewValidationError(ErrPaymentType)
	}
	return nil, core.NewValidationError(nil, core.FieldError{Field: "type", Error: "invalid message type"})
}

func (svc *service) deliver(ctx context.Context, r Recipient, content string) error {
	var delivered bool
	if r.ParentPhone != "" {
		if err := svc.smsSvc.Send(ctx, r.ParentPhone, content); err != nil {
			return err
		}
		delivered = true
	}
	if r.ParentEmail != "" {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:          []mail.Address{{Address: r.ParentEmail}},
			Subject:     "Message from the center",
			TextContent: content,
		})
		delivered = true
	}
	if !delivered {
		return errors.New("recipient has no parent contact")
	}
	return nil
}

func (svc *service) RecordSent(ctx context.Context, m Message) (Message, error) {
	if m.SentAt.IsZero() {
		m.SentAt = time.Now().UTC()
	}
	if m.Status == "" {
		m.Status = StatusSent
	}
	return svc.repo.CreateMessage(ctx, m)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Message, error) {
	if filter == nil || filter.IsEmpty() {
		return svc.repo.QueryAllMessages(ctx)
	}
	return svc.repo.FilterMessages(ctx, *filter)
}

func recipientOf(st student.Student) Recipient {
	return Recipient{
		StudentID:   st.ID,
		ParentPhone: st.ParentPhone,
		ParentEmail: st.ParentEmail,
	}
}
