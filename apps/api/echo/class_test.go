package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/durusapp/durus/core/class"
	"github.com/durusapp/durus/core/payment"
	"github.com/durusapp/durus/core/student"
	"github.com/durusapp/durus/core/user"
)

func (env *apiEnv) createStudent(t *testing.T, code string, registration time.Time) student.Student {
	t.Helper()
	st, err := env.deps.StudentSvc.Create(context.Background(), student.NewStudent{
		Name:             "Student " + code,
		Code:             code,
		ParentPhone:      "+213555000111",
		RegistrationDate: registration,
	})
	require.NoError(t, err)
	return st
}

func (env *apiEnv) createClass(t *testing.T, name string, price float64) class.Class {
	t.Helper()
	cls, err := env.deps.ClassSvc.Create(context.Background(), class.NewClass{Name: name, Price: price})
	require.NoError(t, err)
	return cls
}

func TestEnrollmentFlow(t *testing.T) {
	env := setupAPI(t)
	secretary := getToken(t, env.createUser(t, "nana", user.RoleSecretary))
	accountant := getToken(t, env.createUser(t, "momo", user.RoleAccountant))

	regMonth := payment.MonthOf(time.Now()).AddMonths(-2)
	st := env.createStudent(t, "std001", time.Date(regMonth.Year, regMonth.Month, 15, 0, 0, 0, 0, time.UTC))
	cls := env.createClass(t, "Math 3AS", 2500)

	// enroll bills from the registration month through the horizon
	enrollPath := fmt.Sprintf("/v1/classes/%s/students/%s", cls.ID, st.ID)
	rec := env.do(newAuthRequest(t, http.MethodPost, enrollPath, secretary, nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	var payments []payment.Payment
	decode(t, rec, &payments)
	require.NotEmpty(t, payments)
	assert.Len(t, payments, 2+12+1) // two months back, current, twelve ahead

	// re-enrolling is a no-op
	rec = env.do(newAuthRequest(t, http.MethodPost, enrollPath, secretary, nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	var again []payment.Payment
	decode(t, rec, &again)
	assert.Len(t, again, len(payments))

	// register one month as paid; the parent is texted
	payPath := fmt.Sprintf("/v1/payments/%s/pay", payments[0].ID)
	rec = env.do(newAuthRequest(t, http.MethodPost, payPath, accountant, map[string]string{"method": "cash"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var paid payment.Payment
	decode(t, rec, &paid)
	assert.Equal(t, payment.StatusPaid, paid.Status)
	assert.NotEmpty(t, paid.InvoiceNumber)
	assert.Contains(t, env.sms.sent, "+213555000111")

	// paying again conflicts
	rec = env.do(newAuthRequest(t, http.MethodPost, payPath, accountant, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// unenroll drops open payments but keeps the paid one
	rec = env.do(newAuthRequest(t, http.MethodDelete, enrollPath, secretary, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(newAuthRequest(t, http.MethodGet, "/v1/payments?student="+st.ID, secretary, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var remaining []payment.Payment
	decode(t, rec, &remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, paid.ID, remaining[0].ID)
}

func TestEnrollUnknownClass(t *testing.T) {
	env := setupAPI(t)
	secretary := getToken(t, env.createUser(t, "nana", user.RoleSecretary))
	st := env.createStudent(t, "std001", time.Now())

	rec := env.do(newAuthRequest(t, http.MethodPost, "/v1/classes/nope/students/"+st.ID, secretary, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteStudentCascades(t *testing.T) {
	env := setupAPI(t)
	secretary := getToken(t, env.createUser(t, "nana", user.RoleSecretary))

	st := env.createStudent(t, "std001", time.Now().AddDate(0, -1, 0))
	cls := env.createClass(t, "Math 3AS", 2500)

	enrollPath := fmt.Sprintf("/v1/classes/%s/students/%s", cls.ID, st.ID)
	rec := env.do(newAuthRequest(t, http.MethodPost, enrollPath, secretary, nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(newAuthRequest(t, http.MethodDelete, "/v1/students/"+st.ID, secretary, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(newAuthRequest(t, http.MethodGet, "/v1/students/"+st.ID, secretary, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(newAuthRequest(t, http.MethodGet, "/v1/payments?student="+st.ID, secretary, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var payments []payment.Payment
	decode(t, rec, &payments)
	assert.Empty(t, payments)
}

func TestManualCheckin(t *testing.T) {
	env := setupAPI(t)
	secretary := getToken(t, env.createUser(t, "nana", user.RoleSecretary))
	tchr := getToken(t, env.createUser(t, "karim", user.RoleTeacher))

	// unknown badge is reported, not an error
	rec := env.do(newAuthRequest(t, http.MethodPost, "/v1/checkins", secretary, map[string]string{"uid": "DEADBEEF"}))
	require.Equal(t, http.StatusOK, rec.Code)
	var evt map[string]interface{}
	decode(t, rec, &evt)
	assert.Equal(t, "unknown-card", evt["type"])

	// teachers cannot submit swipes
	rec = env.do(newAuthRequest(t, http.MethodPost, "/v1/checkins", tchr, map[string]string{"uid": "DEADBEEF"}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
