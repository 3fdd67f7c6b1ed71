package message_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/student"
	emailsvc "github.com/durusapp/durus/services/email"
	logsvc "github.com/durusapp/durus/services/logger"
	inmemdb "github.com/durusapp/durus/storage/database/inmem"
)

// fakeSMS records sends and fails for phones in failFor.
type fakeSMS struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeSMS) Send(_ context.Context, phone, _ string) error {
	if f.failFor[phone] {
		return errors.New("gateway down")
	}
	f.sent = append(f.sent, phone)
	return nil
}

type msgEnv struct {
	svc     message.ServiceInterface
	sms     *fakeSMS
	stRepo  student.Repository
	clsRepo class.Repository
}

func setup(t *testing.T) *msgEnv {
	t.Helper()
	db := inmemdb.NewDB()
	sms := &fakeSMS{failFor: make(map[string]bool)}
	stRepo := inmemdb.NewStudentRepository(db)
	clsRepo := inmemdb.NewClassRepository(db)
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	svc := message.NewService(
		inmemdb.NewMessageRepository(db),
		stRepo, clsRepo,
		sms, emailsvc.NewConsoleServiceMock(), logger,
	)
	return &msgEnv{svc: svc, sms: sms, stRepo: stRepo, clsRepo: clsRepo}
}

func (env *msgEnv) createStudent(t *testing.T, name, phone, email string) student.Student {
	t.Helper()
	st, err := env.stRepo.CreateStudent(context.Background(), student.Student{
		Name:        name,
		Code:        name,
		ParentPhone: phone,
		ParentEmail: email,
	})
	require.NoError(t, err)
	return st
}

func TestSendIndividual(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	st := env.createStudent(t, "amine", "+213555000111", "")

	m, failed, err := env.svc.Send(ctx, message.SendMessage{
		Type:      message.TypeIndividual,
		StudentID: st.ID,
		Content:   "Exam moved to Saturday",
	}, "sec-1")
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Equal(t, message.StatusSent, m.Status)
	assert.Equal(t, "sec-1", m.SenderID)
	require.Len(t, m.Recipients, 1)
	assert.Equal(t, st.ID, m.Recipients[0].StudentID)
	assert.Equal(t, []string{"+213555000111"}, env.sms.sent)
}

func TestSendIndividualRequiresStudent(t *testing.T) {
	env := setup(t)
	_, _, err := env.svc.Send(context.Background(), message.SendMessage{
		Type:    message.TypeIndividual,
		Content: "hello",
	}, "")
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestSendClass(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	a := env.createStudent(t, "amine", "+213555000111", "")
	b := env.createStudent(t, "billal", "+213555000222", "")

	cls, err := env.clsRepo.CreateClass(ctx, class.Class{Name: "Math 3AS", Price: 2500})
	require.NoError(t, err)
	require.NoError(t, env.clsRepo.AddClassStudent(ctx, cls.ID, a.ID))
	require.NoError(t, env.clsRepo.AddClassStudent(ctx, cls.ID, b.ID))

	m, failed, err := env.svc.Send(ctx, message.SendMessage{
		Type:    message.TypeClass,
		ClassID: cls.ID,
		Content: "No class this Wednesday",
	}, "sec-1")
	require.NoError(t, err)
	assert.Empty(t, failed)
	assert.Len(t, m.Recipients, 2)
	assert.Len(t, env.sms.sent, 2)
}

func TestSendGroupPartialFailure(t *testing.T) {
	ctx := context.Background()
	env := setup(t)
	a := env.createStudent(t, "amine", "+213555000111", "")
	b := env.createStudent(t, "billal", "+213555000222", "")
	env.sms.failFor["+213555000222"] = true

	m, failed, err := env.svc.Send(ctx, message.SendMessage{
		Type:       message.TypeGroup,
		StudentIDs: []string{a.ID, b.ID},
		Content:    "Fees due",
	}, "sec-1")
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, b.ID, failed[0].StudentID)
	assert.Equal(t, message.StatusFailed, m.Status)
}

func TestSendPaymentTypeRejected(t *testing.T) {
	env := setup(t)
	_, _, err := env.svc.Send(context.Background(), message.SendMessage{
		Type:    message.TypePayment,
		Content: "nope",
	}, "")
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestSendNoRecipients(t *testing.T) {
	env := setup(t)
	_, _, err := env.svc.Send(context.Background(), message.SendMessage{
		Type:    message.TypeGroup,
		Content: "anyone there?",
	}, "")
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, err)
}

func TestRecordSentAndQuery(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	m, err := env.svc.RecordSent(ctx, message.Message{
		Recipients: []message.Recipient{{StudentID: "st-1", ParentPhone: "+213555000111"}},
		Content:    "checked in",
		Type:       message.TypeIndividual,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, message.StatusSent, m.Status)
	assert.False(t, m.SentAt.IsZero())

	messages, err := env.svc.Query(ctx, &message.QueryFilter{Type: message.TypeIndividual})
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	messages, err = env.svc.Query(ctx, &message.QueryFilter{Type: message.TypeClass})
	require.NoError(t, err)
	assert.Empty(t, messages)
}
