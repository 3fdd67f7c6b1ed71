package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// classIDs must be called with the lock held.
func (repo *studentRepository) classIDs(studentID string) []string {
	var ids []string
	for key := range repo.db.enrollments {
		if key[0] == studentID {
			ids = append(ids, key[1])
		}
	}
	sort.Strings(ids)
	return ids
}

func (repo *studentRepository) get(st student.Student) student.Student {
	st.ClassIDs = repo.classIDs(st.ID)
	return st
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, st := range repo.db.students {
		students = append(students, repo.get(*st))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].CreatedAt.Before(students[j].CreatedAt) })
	return students
}

func (repo *studentRepository) CheckCodeUniqueness(_ context.Context, code string, excluded ...student.Student) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excludedIDs := make(map[string]bool, len(excluded))
	for _, st := range excluded {
		excludedIDs[st.ID] = true
	}
	for _, st := range repo.db.students {
		if st.Code == code && !excludedIDs[st.ID] {
			return student.ErrCodeExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	st.ID = uuid.New().String()
	repo.db.students[st.ID] = &st
	return repo.get(st), nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if st, ok := repo.db.students[id]; ok {
		return repo.get(*st), nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByCode(_ context.Context, code string) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, st := range repo.db.students {
		if st.Code == code {
			return repo.get(*st), nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var students []student.Student
	search := strings.ToLower(filter.Search)
	for _, st := range repo.query() {
		if search != "" &&
			!strings.Contains(strings.ToLower(st.Name), search) &&
			!strings.Contains(strings.ToLower(st.Code), search) {
			continue
		}
		if filter.AcademicYear != "" && st.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.IsActive != nil && st.Active() != *filter.IsActive {
			continue
		}
		students = append(students, st)
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student, isActive *bool) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.students[st.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if st.Name != "" {
		orig.Name = st.Name
	}
	if !st.BirthDate.IsZero() {
		orig.BirthDate = st.BirthDate
	}
	orig.ParentName = st.ParentName
	orig.ParentPhone = st.ParentPhone
	orig.ParentEmail = st.ParentEmail
	orig.Address = st.Address
	orig.AcademicYear = st.AcademicYear
	if isActive != nil {
		orig.IsActive = isActive
	}
	orig.UpdatedAt = st.UpdatedAt
	return repo.get(*orig), nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.students, id)
		for key := range repo.db.enrollments {
			if key[0] == id {
				delete(repo.db.enrollments, key)
			}
		}
	}
	return nil
}

func (repo *studentRepository) AddStudentClass(_ context.Context, studentID, classID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.enrollments[[2]string{studentID, classID}] = true
	return nil
}

func (repo *studentRepository) RemoveStudentClass(_ context.Context, studentID, classID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.enrollments, [2]string{studentID, classID})
	return nil
}
