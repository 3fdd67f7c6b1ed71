package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/durusapp/durus/core"
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
)

type (
	// Deps holds the services the API serves.
	Deps struct {
		Logger         core.Logger
		UserSvc        user.ServiceInterface
		StudentSvc     student.ServiceInterface
		TeacherSvc     teacher.ServiceInterface
		ClassroomSvc   classroom.ServiceInterface
		ClassSvc       class.ServiceInterface
		CardSvc        card.ServiceInterface
		AttendanceSvc  attendance.ServiceInterface
		PaymentSvc     payment.ServiceInterface
		LedgerSvc      ledger.ServiceInterface
		MessageSvc     message.ServiceInterface
		CheckinSvc     checkin.ServiceInterface
		SMSSvc         core.SMSService
		Hub            *Hub
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		// SignalShutdown triggers a graceful shutdown from within a handler.
		SignalShutdown()
	}

	server struct {
		addr       string
		app        *echo.Echo
		deps       *Deps
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, deps *Deps) Server {
	s := &server{
		addr:       addr,
		app:        echo.New(),
		deps:       deps,
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc)
	registerStudentAPI(v1, jwt, s.deps)
	registerTeacherAPI(v1, jwt, s.deps)
	registerClassroomAPI(v1, jwt, s.deps.ClassroomSvc)
	registerClassAPI(v1, jwt, s.deps)
	registerCardAPI(v1, jwt, s.deps.CardSvc)
	registerAttendanceAPI(v1, jwt, s.deps.AttendanceSvc)
	registerPaymentAPI(v1, jwt, s.deps)
	registerLedgerAPI(v1, jwt, s.deps.LedgerSvc)
	registerMessageAPI(v1, jwt, s.deps.MessageSvc)
	registerCheckinAPI(v1, s.deps)
}

func (s *server) Start() {
	s.errCh <- s.app.Start(s.addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownCh
}

func (s *server) SignalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Durus API!")
}
