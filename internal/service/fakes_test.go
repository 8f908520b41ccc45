package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/limiter"
	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/repository"
)

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User

	registerErr error
	getErr      error
	updateErr   error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers(us ...model.User) *fakeUsers {
	f := &fakeUsers{byID: map[int64]*model.User{}}
	for _, u := range us {
		c := u
		f.byID[u.ID] = &c
		if u.ID > f.nextID {
			f.nextID = u.ID
		}
	}
	return f
}

func (f *fakeUsers) insert(u model.User) (*model.User, error) {
	for _, x := range f.byID {
		if x.Username == u.Username || x.Email == u.Email {
			return nil, errs.ErrAlreadyExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	f.byID[u.ID] = &u
	c := u
	return &c, nil
}

func (f *fakeUsers) Register(_ context.Context, username, email, pwdHash string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	role := model.RoleAdmin
	for _, x := range f.byID {
		if x.Role == model.RoleAdmin {
			role = model.RoleUser
		}
	}
	return f.insert(model.User{Username: username, Email: email, PwdHash: pwdHash, Role: role})
}

func (f *fakeUsers) Create(_ context.Context, u model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(u)
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUsers) List(context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, p model.UserPatch) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PwdHash != nil {
		u.PwdHash = *p.PwdHash
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	c := *u
	return &c, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) UsernameTaken(_ context.Context, username string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type fakeLimiter struct {
	allowOK  bool
	allowErr error

	failBlocked bool
	failErr     error

	successErr error

	allowCalls   int
	failureCalls int
	successCalls int
}

var _ limiter.Limiter = (*fakeLimiter)(nil)

func (l *fakeLimiter) Allow(context.Context, string, []byte) (bool, time.Duration, error) {
	l.allowCalls++
	return l.allowOK, 0, l.allowErr
}
func (l *fakeLimiter) Success(context.Context, string, []byte) error {
	l.successCalls++
	return l.successErr
}
func (l *fakeLimiter) Failure(context.Context, string, []byte) (bool, time.Duration, error) {
	l.failureCalls++
	return l.failBlocked, 0, l.failErr
}

type fakeProjects struct {
	items     []model.Project
	createErr error
}

var _ repository.ProjectRepository = (*fakeProjects)(nil)

func (f *fakeProjects) List(context.Context) ([]model.Project, error) {
	return append([]model.Project(nil), f.items...), nil
}

func (f *fakeProjects) Create(_ context.Context, name string, description *string) (*model.Project, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p := model.Project{ID: int64(len(f.items) + 1), Name: name, Description: description, CreatedAt: time.Now()}
	f.items = append(f.items, p)
	return &p, nil
}

type fakeFiles struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.File

	createErr error
	deleteErr error
}

var _ repository.FileRepository = (*fakeFiles)(nil)

func newFakeFiles(fs ...model.File) *fakeFiles {
	f := &fakeFiles{byID: map[int64]*model.File{}}
	for _, x := range fs {
		c := x
		f.byID[x.ID] = &c
		if x.ID > f.nextID {
			f.nextID = x.ID
		}
	}
	return f
}

func (f *fakeFiles) Create(_ context.Context, file model.File) (*model.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	file.ID = f.nextID
	file.UploadTime = time.Now()
	f.byID[file.ID] = &file
	c := file
	return &c, nil
}

func (f *fakeFiles) List(context.Context) ([]model.FileView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.FileView, 0, len(f.byID))
	for _, x := range f.byID {
		out = append(out, model.FileView{File: *x})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeFiles) Get(_ context.Context, id int64) (*model.FileView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	x, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &model.FileView{File: *x}, nil
}

func (f *fakeFiles) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeFiles) has(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byID[id]
	return ok
}
