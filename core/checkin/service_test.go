package checkin_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core/attendance"
	"github.com/durusapp/durus/core/card"
	"github.com/durusapp/durus/core/checkin"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/student"
	emailsvc "github.com/durusapp/durus/services/email"
	logsvc "github.com/durusapp/durus/services/logger"
	inmemdb "github.com/durusapp/durus/storage/database/inmem"
)

type fakeSMS struct {
	sent []string
}

func (f *fakeSMS) Send(_ context.Context, phone, _ string) error {
	f.sent = append(f.sent, phone)
	return nil
}

type checkinEnv struct {
	svc     checkin.ServiceInterface
	sms     *fakeSMS
	attRepo attendance.Repository
	msgRepo message.Repository
	payRepo payment.Repository

	st  student.Student
	c   card.Card
	cls class.Class
}

// setup seeds a student with a badge enrolled in a class that meets on
// Saturdays at 09:00.
func setup(t *testing.T) *checkinEnv {
	t.Helper()
	ctx := context.Background()
	db := inmemdb.NewDB()

	cardRepo := inmemdb.NewCardRepository(db)
	stRepo := inmemdb.NewStudentRepository(db)
	clsRepo := inmemdb.NewClassRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)
	payRepo := inmemdb.NewPaymentRepository(db)
	msgRepo := inmemdb.NewMessageRepository(db)

	sms := &fakeSMS{}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	msgSvc := message.NewService(msgRepo, stRepo, clsRepo, sms, emailsvc.NewConsoleServiceMock(), logger)
	svc := checkin.NewService(cardRepo, stRepo, clsRepo, attRepo, payRepo, msgSvc, sms, logger)

	st, err := stRepo.CreateStudent(ctx, student.Student{
		Name:        "Amine",
		Code:        "std001",
		ParentPhone: "+213555000111",
	})
	require.NoError(t, err)

	active := true
	c, err := cardRepo.CreateCard(ctx, card.Card{UID: "04A1B2C3", StudentID: st.ID, IsActive: &active})
	require.NoError(t, err)

	cls, err := clsRepo.CreateClass(ctx, class.Class{
		Name:     "Math 3AS",
		Price:    2500,
		Schedule: []class.ScheduleSlot{{Day: "saturday", Time: "09:00", ClassroomID: "room-1"}},
	})
	require.NoError(t, err)
	require.NoError(t, clsRepo.AddClassStudent(ctx, cls.ID, st.ID))

	return &checkinEnv{
		svc: svc, sms: sms,
		attRepo: attRepo, msgRepo: msgRepo, payRepo: payRepo,
		st: st, c: c, cls: cls,
	}
}

func TestProcessUnknownCard(t *testing.T) {
	env := setup(t)

	evt, err := env.svc.Process(context.Background(), "DEADBEEF", time.Now())
	require.NoError(t, err)
	assert.Equal(t, checkin.EventUnknownCard, evt.Type)
	assert.Equal(t, "DEADBEEF", evt.UID)
	assert.Nil(t, evt.Student)
}

func TestProcessDuringSession(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	// Saturday 09:10, session in progress
	now := time.Date(2025, time.June, 14, 9, 10, 0, 0, time.UTC)

	evt, err := env.svc.Process(ctx, env.c.UID, now)
	require.NoError(t, err)
	assert.Equal(t, checkin.EventStudentDetected, evt.Type)
	require.NotNil(t, evt.Student)
	assert.Equal(t, env.st.ID, evt.Student.ID)
	require.NotNil(t, evt.CurrentClass)
	assert.Equal(t, env.cls.ID, evt.CurrentClass.ID)

	// attendance was recorded without an operator
	require.NotNil(t, evt.Attendance)
	assert.Equal(t, attendance.StatusPresent, evt.Attendance.Status)
	assert.Empty(t, evt.Attendance.RecordedBy)

	entries, err := env.attRepo.QueryAllAttendance(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, env.cls.ID, entries[0].ClassID)

	// the parent got a text and it was recorded
	assert.Equal(t, []string{"+213555000111"}, env.sms.sent)
	messages, err := env.msgRepo.QueryAllMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, message.TypeIndividual, messages[0].Type)
}

func TestProcessOutsideSession(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	// Monday, no session
	now := time.Date(2025, time.June, 16, 9, 10, 0, 0, time.UTC)

	evt, err := env.svc.Process(ctx, env.c.UID, now)
	require.NoError(t, err)
	assert.Equal(t, checkin.EventStudentDetected, evt.Type)
	assert.Nil(t, evt.CurrentClass)
	assert.Nil(t, evt.Attendance)

	entries, err := env.attRepo.QueryAllAttendance(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, env.sms.sent)
}

func TestProcessReportsOpenPayments(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	_, err := env.payRepo.CreatePayment(ctx, payment.Payment{
		StudentID: env.st.ID,
		ClassID:   env.cls.ID,
		Amount:    2500,
		Month:     payment.Month{Year: 2025, Month: time.May},
		Status:    payment.StatusLate,
	})
	require.NoError(t, err)

	evt, err := env.svc.Process(ctx, env.c.UID, time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, evt.Payments, 1)
	assert.Equal(t, payment.StatusLate, evt.Payments[0].Status)
	require.Len(t, evt.Classes, 1)
	assert.Equal(t, env.cls.ID, evt.Classes[0].ID)
}
