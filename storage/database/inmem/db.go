package inmemdb

import (
	"sync"

	"github.com/durusapp/durus/core/attendance"
	"github.com/durusapp/durus/core/card"
	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/classroom"
	"github.com/durusapp/durus/core/ledger"
	"github.com/durusapp/durus/core/message"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/teacher"
	"github.com/durusapp/durus/core/user"
)

// DB is an in-memory store with the same behavior as the SQL storage layer;
// used by tests and local experiments.
type DB struct {
	mu sync.RWMutex

	users        map[string]*user.User
	students     map[string]*student.Student
	teachers     map[string]*teacher.Teacher
	classrooms   map[string]*classroom.Classroom
	classes      map[string]*class.Class
	enrollments  map[[2]string]bool // (studentID, classID)
	cards        map[string]*card.Card
	attendance   map[string]*attendance.Attendance
	payments     map[string]*payment.Payment
	transactions map[string]*ledger.Transaction
	messages     map[string]*message.Message
}

func NewDB() *DB {
	return &DB{
		users:        make(map[string]*user.User),
		students:     make(map[string]*student.Student),
		teachers:     make(map[string]*teacher.Teacher),
		classrooms:   make(map[string]*classroom.Classroom),
		classes:      make(map[string]*class.Class),
		enrollments:  make(map[[2]string]bool),
		cards:        make(map[string]*card.Card),
		attendance:   make(map[string]*attendance.Attendance),
		payments:     make(map[string]*payment.Payment),
		transactions: make(map[string]*ledger.Transaction),
		messages:     make(map[string]*message.Message),
	}
}
