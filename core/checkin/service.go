package checkin

import (
	"context"
	"fmt"
	"time"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/attendance"
	"github.com/durusapp/durus/core/card"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/student"
)

// Event types pushed to the realtime feed.
const (
	EventStudentDetected = "student-detected"
	EventUnknownCard     = "unknown-card"
	EventCardError       = "card-error"
)

// slotWindow is how far from a scheduled session start a badge swipe still
// counts as attending that session.
const slotWindow = 30 * time.Minute

type (
	// Event is what a badge swipe produces for the realtime feed.
	Event struct {
		Type         string             `json:"type"`
		UID          string             `json:"uid"`
		Student      *student.Student   `json:"student,omitempty"`
		Card         *card.Card         `json:"card,omitempty"`
		Classes      []class.Class      `json:"classes,omitempty"`
		Payments     []payment.Payment  `json:"payments,omitempty"`
		CurrentClass *class.Class       `json:"current_class,omitempty"`
		Attendance   *attendance.Attendance `json:"attendance,omitempty"`
		At           time.Time          `json:"at"`
	}

	ServiceInterface interface {
		// Process handles one RFID badge read and returns the feed event.
		Process(ctx context.Context, uid string, now time.Time) (Event, error)
	}

	service struct {
		cardRepo       card.Repository
		studentRepo    student.Repository
		classRepo      class.Repository
		attendanceRepo attendance.Repository
		paymentRepo    payment.Repository
		msgSvc         message.ServiceInterface
		smsSvc         core.SMSService
		logger         core.Logger
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	cardRepo card.Repository,
	studentRepo student.Repository,
	classRepo class.Repository,
	attendanceRepo attendance.Repository,
	paymentRepo payment.Repository,
	msgSvc message.ServiceInterface,
	smsSvc core.SMSService,
	logger core.Logger,
) *service {
	return &service{
		cardRepo:       cardRepo,
		studentRepo:    studentRepo,
		classRepo:      classRepo,
		attendanceRepo: attendanceRepo,
		paymentRepo:    paymentRepo,
		msgSvc:         msgSvc,
		smsSvc:         smsSvc,
		logger:         logger,
	}
}

func (svc *service) Process(ctx context.Context, uid string, now time.Time) (Event, error) {
	c, err := svc.cardRepo.GetCardByUID(ctx, uid)
	if err == card.ErrNotFound {
		return Event{Type: EventUnknownCard, UID: uid, At: now}, nil
	} else if err != nil {
		return Event{}, err
	}

	st, err := svc.studentRepo.GetStudentByID(ctx, c.StudentID)
	if err != nil {
		return Event{}, err
	}
	classes, err := svc.classRepo.QueryClassesByStudent(ctx, st.ID)
	if err != nil {
		return Event{}, err
	}
	open, err := svc.paymentRepo.QueryOpenPaymentsByStudent(ctx, st.ID)
	if err != nil {
		return Event{}, err
	}

	event := Event{
		Type:     EventStudentDetected,
		UID:      uid,
		Student:  &st,
		Card:     &c,
		Classes:  classes,
		Payments: open,
		At:       now,
	}

	// Is one of the student's classes in session right now?
	var current *class.Class
	for i := range classes {
		if slot := classes[i].SlotAt(now, slotWindow); slot != nil {
			current = &classes[i]
			break
		}
	}
	if current == nil {
		return event, nil
	}
	event.CurrentClass = current

	att, err := svc.attendanceRepo.CreateAttendance(ctx, attendance.Attendance{
		StudentID: st.ID,
		ClassID:   current.ID,
		Date:      now,
		Status:    attendance.StatusPresent,
	})
	if err != nil {
		return Event{}, err
	}
	event.Attendance = &att

	svc.notifyParent(ctx, st, *current, now)

	return event, nil
}

// notifyParent texts the parent that the student checked in; delivery failure
// never fails the check-in.
func (svc *service) notifyParent(ctx context.Context, st student.Student, cls class.Class, now time.Time) {
	if st.ParentPhone == "" {
		return
	}
	content := fmt.Sprintf("%s checked in to %s at %s", st.Name, cls.Name, now.Format("15:04, Jan 2"))
	if err := svc.smsSvc.Send(ctx, st.ParentPhone, content); err != nil {
		svc.logger.Error(fmt.Sprintf("sending check-in SMS for student %s: %v", st.ID, err), err)
		return
	}
	if _, err := svc.msgSvc.RecordSent(ctx, message.Message{
		Recipients: []message.Recipient{{StudentID: st.ID, ParentPhone: st.ParentPhone}},
		ClassID:    cls.ID,
		Content:    content,
		SentAt:     now,
		Type:       message.TypeIndividual,
		Status:     message.StatusSent,
	}); err != nil {
		svc.logger.Error(fmt.Sprintf("recording check-in message for student %s: %v", st.ID, err), err)
	}
}
