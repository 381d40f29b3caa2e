package service

import (
	"context"
	"errors"

	"taxfiling/internal/domain"
)

type fakeUserRepo struct {
	users map[string]*domain.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.Email]; ok {
		return domain.ErrConflict
	}
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeBusinessRepo struct {
	byUser  map[string]*domain.Business
	nextID  int
	deleted []int
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{byUser: map[string]*domain.Business{}, nextID: 1}
}

func (f *fakeBusinessRepo) Create(_ context.Context, business *domain.Business) (*domain.Business, error) {
	b := *business
	b.ID = f.nextID
	f.nextID++
	f.byUser[b.UserID] = &b
	return &b, nil
}

func (f *fakeBusinessRepo) FindByUser(_ context.Context, userID string) (*domain.Business, error) {
	if b, ok := f.byUser[userID]; ok {
		return b, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeBusinessRepo) Delete(_ context.Context, id int) error {
	for userID, b := range f.byUser {
		if b.ID == id {
			delete(f.byUser, userID)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errors.New("no such business")
}

type fakeQuarterRepo struct {
	quarters   map[string]*domain.QuarterlyUpdate
	insertErr  error
	replaceErr error
}

func newFakeQuarterRepo() *fakeQuarterRepo {
	return &fakeQuarterRepo{quarters: map[string]*domain.QuarterlyUpdate{}}
}

func (f *fakeQuarterRepo) InsertMany(_ context.Context, quarters []domain.QuarterlyUpdate) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	for i := range quarters {
		q := quarters[i]
		f.quarters[q.ID] = &q
	}
	return nil
}

func (f *fakeQuarterRepo) FindByBusiness(_ context.Context, businessID int) ([]domain.QuarterlyUpdate, error) {
	var items []domain.QuarterlyUpdate
	for _, q := range f.quarters {
		if q.BusinessID == businessID {
			items = append(items, *q)
		}
	}
	return items, nil
}

func (f *fakeQuarterRepo) FindOne(_ context.Context, id string, businessID int) (*domain.QuarterlyUpdate, error) {
	if q, ok := f.quarters[id]; ok && q.BusinessID == businessID {
		cp := *q
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeQuarterRepo) Replace(_ context.Context, quarter *domain.QuarterlyUpdate) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	stored, ok := f.quarters[quarter.ID]
	if !ok || stored.BusinessID != quarter.BusinessID || stored.Version != quarter.Version {
		return domain.ErrConflict
	}
	quarter.Version++
	cp := *quarter
	f.quarters[quarter.ID] = &cp
	return nil
}
