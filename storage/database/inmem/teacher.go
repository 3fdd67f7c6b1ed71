package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	t.ID = uuid.New().String()
	repo.db.teachers[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers(_ context.Context) ([]teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].CreatedAt.Before(teachers[j].CreatedAt) })
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id string) (teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher, isActive *bool) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.teachers[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if t.Name != "" {
		orig.Name = t.Name
	}
	if t.Subjects != nil {
		orig.Subjects = t.Subjects
	}
	orig.Phone = t.Phone
	orig.Email = t.Email
	if !t.HireDate.IsZero() {
		orig.HireDate = t.HireDate
	}
	if isActive != nil {
		orig.IsActive = isActive
	}
	orig.SalaryShare = t.SalaryShare
	orig.UpdatedAt = t.UpdatedAt
	return *orig, nil
}

func (repo *teacherRepository) DeleteTeachersByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.teachers, id)
	}
	return nil
}
