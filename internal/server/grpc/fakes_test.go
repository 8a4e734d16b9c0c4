package grpc

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
)

// ---- fakes ----

type fakeAuth map[string]string

func (f fakeAuth) Lookup(_ context.Context, token string) (string, error) {
	userID, ok := f[token]
	if !ok {
		return "", common.ErrorUnauthorized
	}
	return userID, nil
}

type fakeUploader struct {
	got  services.UploadRequest
	resp *services.UploadResult
	err  error
}

func (f *fakeUploader) Upload(_ context.Context, req services.UploadRequest) (*services.UploadResult, error) {
	f.got = req
	return f.resp, f.err
}

type fakeCatalog struct {
	file    *models.File
	getErr  error
	list    []*models.File
	listErr error

	gotRequester string
	gotOwner     string
	gotParent    string
	gotPage      int
	gotPageSize  int
}

func (f *fakeCatalog) GetByID(_ context.Context, id, requesterID string) (*models.File, error) {
	f.gotRequester = requesterID
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.file == nil || f.file.ID != id || !f.file.VisibleTo(requesterID) {
		return nil, common.ErrorNotFound
	}
	return f.file, nil
}

func (f *fakeCatalog) List(_ context.Context, ownerID, parentID string, page, pageSize int) ([]*models.File, error) {
	f.gotOwner, f.gotParent, f.gotPage, f.gotPageSize = ownerID, parentID, page, pageSize
	return f.list, f.listErr
}

func (f *fakeCatalog) PageSize() int { return 20 }

// fakeQueue.ListDead filters by owner before applying the limit, like the
// SQL query does. dead is ordered newest first.
type fakeQueue struct {
	jobs.Repository
	dead     []*models.Job
	err      error
	gotOwner string
	gotLimit int
}

func (f *fakeQueue) ListDead(_ context.Context, ownerID string, limit int) ([]*models.Job, error) {
	f.gotOwner, f.gotLimit = ownerID, limit
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Job
	for _, j := range f.dead {
		if j.Payload.OwnerID == ownerID && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeUsers struct {
	accounts map[string]string // email -> password
	err      error
}

func (f *fakeUsers) Register(_ context.Context, email, password string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if email == "" {
		return nil, common.ErrMissingEmail
	}
	if password == "" {
		return nil, common.ErrMissingPassword
	}
	if f.accounts == nil {
		f.accounts = map[string]string{}
	}
	if _, ok := f.accounts[email]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.accounts[email] = password
	return &models.User{ID: "id-" + email, Email: email}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if pw, ok := f.accounts[email]; !ok || pw != password {
		return "", common.ErrorUnauthorized
	}
	return "tok", nil
}
