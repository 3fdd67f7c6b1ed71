package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

// studentIDs must be called with the lock held.
func (repo *classRepository) studentIDs(classID string) []string {
	var ids []string
	for key := range repo.db.enrollments {
		if key[1] == classID {
			ids = append(ids, key[0])
		}
	}
	sort.Strings(ids)
	return ids
}

func (repo *classRepository) get(c class.Class) class.Class {
	c.StudentIDs = repo.studentIDs(c.ID)
	return c
}

func (repo *classRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		classes = append(classes, repo.get(*c))
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].CreatedAt.Before(classes[j].CreatedAt) })
	return classes
}

func (repo *classRepository) CreateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = uuid.New().String()
	repo.db.classes[c.ID] = &c
	return repo.get(c), nil
}

func (repo *classRepository) QueryAllClasses(_ context.Context) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id string) (class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return repo.get(*c), nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) FilterClasses(_ context.Context, filter class.QueryFilter) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var classes []class.Class
	for _, c := range repo.query() {
		if filter.AcademicYear != "" && c.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Subject != "" && c.Subject != filter.Subject {
			continue
		}
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func (repo *classRepository) QueryClassesByStudent(_ context.Context, studentID string) ([]class.Class, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var classes []class.Class
	for _, c := range repo.query() {
		if c.HasStudent(studentID) {
			classes = append(classes, c)
		}
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, c class.Class) (class.Class, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.classes[c.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	if c.Name != "" {
		orig.Name = c.Name
	}
	orig.Subject = c.Subject
	orig.Description = c.Description
	if c.Schedule != nil {
		orig.Schedule = c.Schedule
	}
	orig.AcademicYear = c.AcademicYear
	orig.TeacherID = c.TeacherID
	if c.Price > 0 {
		orig.Price = c.Price
	}
	orig.UpdatedAt = c.UpdatedAt
	return repo.get(*orig), nil
}

func (repo *classRepository) DeleteClassesByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.classes, id)
		for key := range repo.db.enrollments {
			if key[1] == id {
				delete(repo.db.enrollments, key)
			}
		}
	}
	return nil
}

func (repo *classRepository) AddClassStudent(_ context.Context, classID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.enrollments[[2]string{studentID, classID}] = true
	return nil
}

func (repo *classRepository) RemoveClassStudent(_ context.Context, classID, studentID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.enrollments, [2]string{studentID, classID})
	return nil
}

func (repo *classRepository) UnsetClassTeacher(_ context.Context, teacherID string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, c := range repo.db.classes {
		if c.TeacherID == teacherID {
			c.TeacherID = ""
		}
	}
	return nil
}
