package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	echoapi "github.com/durusapp/durus/apps/api/echo"
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
	emailsvc "github.com/durusapp/durus/services/email"
	logsvc "github.com/durusapp/durus/services/logger"
	rfidsvc "github.com/durusapp/durus/services/rfid"
	smssvc "github.com/durusapp/durus/services/sms"
	"github.com/durusapp/durus/storage/database"
	sqlxrepos "github.com/durusapp/durus/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, core.Conf.AppName+" API : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug || core.Conf.TestMode {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	if err := run(logger); err != nil {
		logger.Fatal("API server failed", err)
	}
}

func run(logger core.Logger) error {
	db, err := setUpDB()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// repositories
	usrRepo := sqlxrepos.NewUserRepository(db)
	stRepo := sqlxrepos.NewStudentRepository(db)
	tRepo := sqlxrepos.NewTeacherRepository(db)
	roomRepo := sqlxrepos.NewClassroomRepository(db)
	clsRepo := sqlxrepos.NewClassRepository(db)
	cardRepo := sqlxrepos.NewCardRepository(db)
	attRepo := sqlxrepos.NewAttendanceRepository(db)
	payRepo := sqlxrepos.NewPaymentRepository(db)
	ledgerRepo := sqlxrepos.NewLedgerRepository(db)
	msgRepo := sqlxrepos.NewMessageRepository(db)

	// side-effect services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	smsSvc, err := smssvc.NewGatewayFromConfig(logger)
	if err != nil {
		return errors.Wrap(err, "setting up SMS gateway")
	}

	// domain services
	usrSvc := user.NewService(usrRepo)
	stSvc := student.NewService(stRepo)
	tSvc := teacher.NewService(tRepo)
	roomSvc := classroom.NewService(roomRepo)
	clsSvc := class.NewService(clsRepo)
	cardSvc := card.NewService(cardRepo)
	attSvc := attendance.NewService(attRepo)
	paySvc := payment.NewService(payRepo, ledgerRepo, stRepo, clsRepo, tRepo)
	ledgerSvc := ledger.NewService(ledgerRepo)
	msgSvc := message.NewService(msgRepo, stRepo, clsRepo, smsSvc, mailSvc, logger)
	checkinSvc := checkin.NewService(cardRepo, stRepo, clsRepo, attRepo, payRepo, msgSvc, smsSvc, logger)

	hub := echoapi.NewHub(logger)
	defer hub.Close()

	// nightly sweep flipping pending payments whose month has passed to late
	sched := cron.New()
	if _, err := sched.AddFunc("15 0 * * *", func() {
		n, err := paySvc.ReclassifyOverdue(context.Background(), time.Now())
		if err != nil {
			logger.Error("overdue payment sweep failed", err)
			return
		}
		if n > 0 {
			logger.Info("overdue payment sweep", map[string]interface{}{"reclassified": n})
		}
	}); err != nil {
		return errors.Wrap(err, "scheduling overdue sweep")
	}
	sched.Start()
	defer sched.Stop()

	app := echoapi.NewServer(core.Conf.Server.Address(), &echoapi.Deps{
		Logger:        logger,
		UserSvc:       usrSvc,
		StudentSvc:    stSvc,
		TeacherSvc:    tSvc,
		ClassroomSvc:  roomSvc,
		ClassSvc:      clsSvc,
		CardSvc:       cardSvc,
		AttendanceSvc: attSvc,
		PaymentSvc:    paySvc,
		LedgerSvc:     ledgerSvc,
		MessageSvc:    msgSvc,
		CheckinSvc:    checkinSvc,
		SMSSvc:        smsSvc,
		Hub:           hub,
	})

	// badge reader feeding the check-in pipeline and the live feed
	readerCtx, cancelReader := context.WithCancel(context.Background())
	defer cancelReader()
	if core.Conf.RFID.Enabled {
		reader := rfidsvc.NewReader(func(uid string) {
			evt, err := checkinSvc.Process(readerCtx, uid, time.Now())
			if err != nil {
				logger.Error("processing badge read "+uid, err)
				hub.Broadcast(checkin.Event{Type: checkin.EventCardError, UID: uid, At: time.Now()})
				return
			}
			hub.Broadcast(evt)
		}, logger)
		go func() {
			if err := reader.Run(readerCtx); err != nil && readerCtx.Err() == nil {
				logger.Error("RFID reader stopped", err)
			}
		}()
	}

	logger.Info("API server listening on " + core.Conf.Server.Address())
	go app.Start()

	select {
	case err := <-app.Errors():
		return errors.Wrap(err, "server error")
	case sig := <-app.ShutdownSignal():
		logger.Info("shutting down on " + sig.String())
		cancelReader()

		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(ctx); err != nil {
			_ = app.Close()
			return errors.Wrap(err, "graceful shutdown failed")
		}
	}
	return nil
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err := database.Migrate(db); err != nil {
		return nil, errors.Wrap(err, "migrating database")
	}
	return db, nil
}
