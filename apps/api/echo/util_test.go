package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core/attendance"
	"github.com/durusapp/durus/core/card"
	"github.com/durusapp/durus/core/checkin"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/classroom"
	"github.com/durusapp/durus/core/ledger"
	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/teacher"
	"github.com/durusapp/durus/core/user"
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

type apiEnv struct {
	server Server
	deps   *Deps
	sms    *fakeSMS
}

func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	db := inmemdb.NewDB()

	usrRepo := inmemdb.NewUserRepository(db)
	stRepo := inmemdb.NewStudentRepository(db)
	tRepo := inmemdb.NewTeacherRepository(db)
	roomRepo := inmemdb.NewClassroomRepository(db)
	clsRepo := inmemdb.NewClassRepository(db)
	cardRepo := inmemdb.NewCardRepository(db)
	attRepo := inmemdb.NewAttendanceRepository(db)
	payRepo := inmemdb.NewPaymentRepository(db)
	ledgerRepo := inmemdb.NewLedgerRepository(db)
	msgRepo := inmemdb.NewMessageRepository(db)

	sms := &fakeSMS{}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := emailsvc.NewConsoleServiceMock()
	msgSvc := message.NewService(msgRepo, stRepo, clsRepo, sms, mailSvc, logger)

	deps := &Deps{
		Logger:         logger,
		UserSvc:        user.NewService(usrRepo),
		StudentSvc:     student.NewService(stRepo),
		TeacherSvc:     teacher.NewService(tRepo),
		ClassroomSvc:   classroom.NewService(roomRepo),
		ClassSvc:       class.NewService(clsRepo),
		CardSvc:        card.NewService(cardRepo),
		AttendanceSvc:  attendance.NewService(attRepo),
		PaymentSvc:     payment.NewService(payRepo, ledgerRepo, stRepo, clsRepo, tRepo),
		LedgerSvc:      ledger.NewService(ledgerRepo),
		MessageSvc:     msgSvc,
		CheckinSvc:     checkin.NewService(cardRepo, stRepo, clsRepo, attRepo, payRepo, msgSvc, sms, logger),
		SMSSvc:         sms,
		Hub:            NewHub(logger),
		DisableReqLogs: true,
	}
	return &apiEnv{server: NewServer(":0", deps), deps: deps, sms: sms}
}

func (env *apiEnv) createUser(t *testing.T, uname, role string) user.User {
	t.Helper()
	usr, err := env.deps.UserSvc.Create(context.Background(), user.NewUser{
		Name:            uname,
		Username:        uname,
		Role:            role,
		Password:        "s3cr3tpwd",
		PasswordConfirm: "s3cr3tpwd",
	})
	require.NoError(t, err)
	return usr
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	require.NoError(t, err)
	return token
}

func newRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echoHeaderContentType, "application/json")
	return req
}

func newAuthRequest(t *testing.T, method, path, token string, body interface{}) *http.Request {
	t.Helper()
	req := newRequest(t, method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

const echoHeaderContentType = "Content-Type"

func (env *apiEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}
