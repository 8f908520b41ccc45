package httpserver

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/and161185/pocketfile/internal/errs"
	"github.com/and161185/pocketfile/internal/model"
	"github.com/and161185/pocketfile/internal/service"
)

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

var (
	adminP = model.Principal{UserID: 1, Role: model.RoleAdmin}
	userP  = model.Principal{UserID: 2, Role: model.RoleUser}
)

var created = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

type fakeAuth struct {
	registerErr error
	loginErr    error
	lastIP      string
}

var _ service.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Register(_ context.Context, username, email, _ string) (model.Session, error) {
	if f.registerErr != nil {
		return model.Session{}, f.registerErr
	}
	return model.Session{
		Token:     adminToken,
		ExpiresAt: created.Add(24 * time.Hour),
		User:      model.User{ID: 1, Username: username, Email: email, PwdHash: "secret-hash", Role: model.RoleAdmin, CreatedAt: created},
	}, nil
}

func (f *fakeAuth) Login(_ context.Context, username, _, ip string) (model.Session, error) {
	f.lastIP = ip
	if f.loginErr != nil {
		return model.Session{}, f.loginErr
	}
	return model.Session{Token: userToken, User: model.User{ID: 2, Username: username, Role: model.RoleUser}}, nil
}

func (f *fakeAuth) Authenticate(_ context.Context, token string) (model.Principal, error) {
	switch token {
	case adminToken:
		return adminP, nil
	case userToken:
		return userP, nil
	}
	return model.Principal{}, errs.ErrUnauthorized
}

func (f *fakeAuth) Me(_ context.Context, p model.Principal) (*model.User, error) {
	return &model.User{ID: p.UserID, Username: "me", Role: p.Role, CreatedAt: created}, nil
}

type fakeProjects struct{ lastName, lastDesc string }

var _ service.ProjectService = (*fakeProjects)(nil)

func (f *fakeProjects) List(context.Context) ([]model.Project, error) {
	return []model.Project{{ID: 1, Name: "Alpha", CreatedAt: created}}, nil
}

func (f *fakeProjects) Create(_ context.Context, name, description string) (*model.Project, error) {
	f.lastName, f.lastDesc = name, description
	if strings.TrimSpace(name) == "" {
		return nil, invalidErr("project name is required")
	}
	return &model.Project{ID: 2, Name: name, CreatedAt: created}, nil
}

type fakeFiles struct {
	uploaded  service.Upload
	content   string
	uploadErr error
	deleteErr error
	panicList bool
	objects   map[string]string
}

var _ service.FileService = (*fakeFiles)(nil)

func (f *fakeFiles) List(context.Context) ([]model.FileView, error) {
	if f.panicList {
		panic("boom")
	}
	pn := "Alpha"
	return []model.FileView{
		{File: model.File{ID: 2, Filename: "2-b.txt", FilePath: "/uploads/2-b.txt", Version: "2"}, ProjectName: &pn},
		{File: model.File{ID: 1, Filename: "1-a.txt", FilePath: "/uploads/1-a.txt", Version: "1"}},
	}, nil
}

func (f *fakeFiles) Get(_ context.Context, id int64) (*model.FileView, error) {
	if id != 1 {
		return nil, errs.ErrNotFound
	}
	return &model.FileView{File: model.File{ID: 1, Filename: "1-a.txt", FilePath: "/uploads/1-a.txt"}}, nil
}

func (f *fakeFiles) Delete(_ context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if id != 1 {
		return errs.ErrNotFound
	}
	return nil
}

func (f *fakeFiles) Upload(_ context.Context, in service.Upload) (*model.File, error) {
	f.uploaded = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.content = string(b)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	uid := in.UploaderID
	return &model.File{
		ID:               9,
		Filename:         "9-x.txt",
		OriginalFilename: in.OriginalName,
		FilePath:         "/uploads/9-x.txt",
		FileSize:         int64(len(b)),
		ProjectID:        in.ProjectID,
		Version:          in.Version,
		UploadedBy:       &uid,
		UploadTime:       created,
	}, nil
}

func (f *fakeFiles) Open(_ context.Context, name string) (io.ReadCloser, error) {
	body, ok := f.objects[name]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

type fakeShare struct{ lastBase string }

var _ service.ShareService = (*fakeShare)(nil)

func (f *fakeShare) Link(_ context.Context, id int64, baseURL string) (model.ShareLink, error) {
	f.lastBase = baseURL
	if id != 1 {
		return model.ShareLink{}, errs.ErrNotFound
	}
	return model.ShareLink{DownloadURL: baseURL + "/uploads/1-a.txt", QRCode: "data:image/png;base64,AAAA"}, nil
}

type fakeUsers struct {
	lastActor  model.Principal
	lastUpdate service.UserUpdate
	listErr    error
}

var _ service.UserService = (*fakeUsers)(nil)

func (f *fakeUsers) List(_ context.Context, actor model.Principal) ([]model.User, error) {
	f.lastActor = actor
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []model.User{{ID: 2, Username: "bob", PwdHash: "secret-hash", Role: model.RoleUser, CreatedAt: created}}, nil
}

func (f *fakeUsers) Get(_ context.Context, actor model.Principal, id int64) (*model.User, error) {
	f.lastActor = actor
	if id != 2 {
		return nil, errs.ErrNotFound
	}
	return &model.User{ID: 2, Username: "bob", Role: model.RoleUser, CreatedAt: created}, nil
}

func (f *fakeUsers) Create(_ context.Context, actor model.Principal, in service.NewUser) (*model.User, error) {
	f.lastActor = actor
	if in.Username == "bob" {
		return nil, conflictErr("username already exists")
	}
	return &model.User{ID: 3, Username: in.Username, Email: in.Email, Role: model.Role(in.Role), CreatedAt: created}, nil
}

func (f *fakeUsers) Update(_ context.Context, actor model.Principal, id int64, in service.UserUpdate) (*model.User, error) {
	f.lastActor, f.lastUpdate = actor, in
	if in.Username == nil && in.Email == nil && in.Password == nil && in.Role == nil {
		return nil, invalidErr("no fields to update")
	}
	return &model.User{ID: id, Username: "bob", Role: model.RoleAdmin, CreatedAt: created}, nil
}

func (f *fakeUsers) Delete(_ context.Context, actor model.Principal, id int64) error {
	f.lastActor = actor
	if id == actor.UserID {
		return invalidErr("cannot delete your own account")
	}
	if id != 2 {
		return errs.ErrNotFound
	}
	return nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
