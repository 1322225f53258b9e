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

	"tempo/internal/approval"
	"tempo/internal/approval/handler/mocks"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/approval-mocks.go -package=mocks Service
type ApprovalHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *ApprovalHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestApprovalHandlerSuite(t *testing.T) {
	suite.Run(t, new(ApprovalHandlerSuite))
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

func (s *ApprovalHandlerSuite) TestHandleSubmit() {
	router, mockService := newTestRouter(s.T())
	tenantID := uuid.NewString()
	memberID, err := id.ParseMemberID(uuid.NewString())
	require.NoError(s.T(), err)
	month, err := id.ParseMonth("2026-03")
	require.NoError(s.T(), err)
	entryID := id.EntryID(uuid.New())

	mockService.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in approval.SubmitMonthInput) (int64, error) {
			assert.Equal(s.T(), tenantID, in.TenantID.String())
			assert.Equal(s.T(), memberID, in.MemberID)
			assert.Equal(s.T(), month, in.Month)
			assert.Equal(s.T(), []id.EntryID{entryID}, in.EntryIDs)
			assert.Empty(s.T(), in.AbsenceIDs)
			return 1, nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/approvals/submit", map[string]any{
		"month":     "2026-03",
		"entry_ids": []string{entryID.String()},
	})
	req = testutil.WithIdentity(req, tenantID, memberID.String())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "approval_id", approval.ApprovalIDFor(memberID, month).String())
	testutil.AssertJSONContains(s.T(), rr, "version", float64(1))
}

func (s *ApprovalHandlerSuite) TestHandleSubmit_InvalidMonth() {
	router, _ := newTestRouter(s.T())

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/approvals/submit", map[string]any{
		"month": "March 2026",
	})
	req = testutil.WithIdentity(req, uuid.NewString(), uuid.NewString())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *ApprovalHandlerSuite) TestHandleSubmit_TaintedMonth() {
	router, mockService := newTestRouter(s.T())

	mockService.EXPECT().Submit(gomock.Any(), gomock.Any()).
		Return(int64(0), dErrors.New(dErrors.CodeConflict, "month contains non-draft items"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/approvals/submit", map[string]any{
		"month": "2026-03",
	})
	req = testutil.WithIdentity(req, uuid.NewString(), uuid.NewString())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
}

func (s *ApprovalHandlerSuite) TestHandleApprove() {
	router, mockService := newTestRouter(s.T())
	approvalID := id.ApprovalID(uuid.New())
	reviewerID, err := id.ParseMemberID(uuid.NewString())
	require.NoError(s.T(), err)

	mockService.EXPECT().Approve(gomock.Any(), approvalID, reviewerID).Return(int64(2), nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/approvals/"+approvalID.String()+"/approve")
	req = testutil.WithActor(req, reviewerID.String())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(2))
}

func (s *ApprovalHandlerSuite) TestHandleReject() {
	router, mockService := newTestRouter(s.T())
	approvalID := id.ApprovalID(uuid.New())
	reviewerID, err := id.ParseMemberID(uuid.NewString())
	require.NoError(s.T(), err)

	mockService.EXPECT().Reject(gomock.Any(), approvalID, reviewerID).Return(int64(3), nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/approvals/"+approvalID.String()+"/reject")
	req = testutil.WithActor(req, reviewerID.String())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(3))
}

func (s *ApprovalHandlerSuite) TestHandleApprove_Terminal() {
	router, mockService := newTestRouter(s.T())
	approvalID := id.ApprovalID(uuid.New())

	mockService.EXPECT().Approve(gomock.Any(), approvalID, gomock.Any()).
		Return(int64(0), dErrors.New(dErrors.CodeConflict, "approval already decided"))

	req := testutil.NewRequest(s.T(), http.MethodPost, "/approvals/"+approvalID.String()+"/approve")
	req = testutil.WithActor(req, uuid.NewString())

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, string(dErrors.CodeConflict))
}

func (s *ApprovalHandlerSuite) TestHandleGet_NotFound() {
	router, mockService := newTestRouter(s.T())
	approvalID := id.ApprovalID(uuid.New())

	mockService.EXPECT().Get(gomock.Any(), approvalID).
		Return(nil, int64(0), dErrors.New(dErrors.CodeNotFound, "approval not found"))

	req := testutil.NewRequest(s.T(), http.MethodGet, "/approvals/"+approvalID.String())
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}
