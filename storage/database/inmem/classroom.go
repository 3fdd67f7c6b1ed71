package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/durusapp/durus/core/classroom"
)

type classroomRepository struct {
	db *DB
}

var _ classroom.Repository = (*classroomRepository)(nil)

func NewClassroomRepository(db *DB) *classroomRepository {
	return &classroomRepository{db: db}
}

func (repo *classroomRepository) CreateClassroom(_ context.Context, c classroom.Classroom) (classroom.Classroom, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = uuid.New().String()
	repo.db.classrooms[c.ID] = &c
	return c, nil
}

func (repo *classroomRepository) QueryAllClassrooms(_ context.Context) ([]classroom.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rooms := make([]classroom.Classroom, 0, len(repo.db.classrooms))
	for _, c := range repo.db.classrooms {
		rooms = append(rooms, *c)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].CreatedAt.Before(rooms[j].CreatedAt) })
	return rooms, nil
}

func (repo *classroomRepository) GetClassroomByID(_ context.Context, id string) (classroom.Classroom, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.classrooms[id]; ok {
		return *c, nil
	}
	return classroom.Classroom{}, classroom.ErrNotFound
}
