package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tempo/internal/worklog"
	"tempo/internal/worklog/handler/mocks"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/worklog-mocks.go -package=mocks Service
type WorklogHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *WorklogHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestWorklogHandlerSuite(t *testing.T) {
	suite.Run(t, new(WorklogHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := log.New(io.Discard, "", 0)

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func (s *WorklogHandlerSuite) TestHandleCreate() {
	router, mockService := newTestRouter(s.T())
	tenantID := uuid.NewString()
	memberID := uuid.NewString()
	entryID := id.EntryID(uuid.New())

	mockService.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in worklog.CreateEntryInput) (id.EntryID, int64, error) {
			assert.Equal(s.T(), tenantID, in.TenantID.String())
			assert.Equal(s.T(), memberID, in.MemberID.String())
			assert.Equal(s.T(), "atlas", in.Project)
			assert.Equal(s.T(), "2026-03-02", in.Date)
			assert.Equal(s.T(), 7.5, in.Hours)
			return entryID, 1, nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/worklog/entries", map[string]any{
		"project": "atlas",
		"date":    "2026-03-02",
		"hours":   7.5,
		"note":    "sprint work",
	})
	req = testutil.WithIdentity(req, tenantID, memberID)

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "entry_id", entryID.String())
	testutil.AssertJSONContains(s.T(), rr, "version", float64(1))
}

func (s *WorklogHandlerSuite) TestHandleCreate_MalformedBody() {
	router, _ := newTestRouter(s.T())

	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/worklog/entries", `{"project": "atlas",`)
	req = testutil.WithIdentity(req, uuid.NewString(), uuid.NewString())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *WorklogHandlerSuite) TestHandleCreate_ServiceError() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(id.EntryID{}, int64(0), dErrors.New(dErrors.CodeBadRequest, "hours must be positive"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/worklog/entries", map[string]any{
		"project": "atlas",
		"date":    "2026-03-02",
		"hours":   -1,
	})
	req = testutil.WithIdentity(req, uuid.NewString(), uuid.NewString())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *WorklogHandlerSuite) TestHandleEdit() {
	router, mockService := newTestRouter(s.T())
	entryID := id.EntryID(uuid.New())

	mockService.EXPECT().Edit(gomock.Any(), entryID, worklog.EditEntryInput{
		Project: "atlas",
		Date:    "2026-03-03",
		Hours:   6,
	}).Return(int64(2), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/worklog/entries/"+entryID.String(), map[string]any{
		"project": "atlas",
		"date":    "2026-03-03",
		"hours":   6,
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(2))
}

func (s *WorklogHandlerSuite) TestHandleEdit_InvalidID() {
	router, _ := newTestRouter(s.T())

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/worklog/entries/not-a-uuid", map[string]any{
		"project": "atlas",
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *WorklogHandlerSuite) TestHandleDelete() {
	router, mockService := newTestRouter(s.T())
	entryID := id.EntryID(uuid.New())

	mockService.EXPECT().Delete(gomock.Any(), entryID).Return(int64(3), nil)

	req := testutil.NewRequest(s.T(), http.MethodDelete, "/worklog/entries/"+entryID.String())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *WorklogHandlerSuite) TestHandleGet() {
	router, mockService := newTestRouter(s.T())
	entryID := id.EntryID(uuid.New())
	entry := &worklog.Entry{ID: entryID, Project: "atlas", Date: "2026-03-02", Hours: 7.5}

	mockService.EXPECT().Get(gomock.Any(), entryID).Return(entry, int64(4), nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/worklog/entries/"+entryID.String())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	require.Contains(s.T(), *resp, "entry")
	assert.Equal(s.T(), float64(4), (*resp)["version"])
}

func (s *WorklogHandlerSuite) TestHandleGet_NotFound() {
	router, mockService := newTestRouter(s.T())
	entryID := id.EntryID(uuid.New())

	mockService.EXPECT().Get(gomock.Any(), entryID).
		Return(nil, int64(0), dErrors.New(dErrors.CodeNotFound, "entry not found"))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/worklog/entries/"+entryID.String())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}
