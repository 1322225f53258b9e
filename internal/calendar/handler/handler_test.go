package handler

import (
	"context"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"tempo/internal/calendar/handler/mocks"
	id "tempo/pkg/domain"
	dErrors "tempo/pkg/domain-errors"
	"tempo/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/calendar-mocks.go -package=mocks Service
type CalendarHandlerSuite struct {
	suite.Suite
	ctx context.Context
}

func (s *CalendarHandlerSuite) SetupSuite() {
	s.ctx = context.Background()
}

func TestCalendarHandlerSuite(t *testing.T) {
	suite.Run(t, new(CalendarHandlerSuite))
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

func (s *CalendarHandlerSuite) TestHandleDefineFiscalYear() {
	router, mockService := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())

	mockService.EXPECT().DefineFiscalYear(gomock.Any(), tenantID, 4).Return(int64(1), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/tenants/"+tenantID.String()+"/calendar/fiscal-year", map[string]any{
		"start_month": 4,
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(1))
}

func (s *CalendarHandlerSuite) TestHandleDefineFiscalYear_BadMonth() {
	router, mockService := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())

	mockService.EXPECT().DefineFiscalYear(gomock.Any(), tenantID, 13).
		Return(int64(0), dErrors.New(dErrors.CodeBadRequest, "start month must be 1-12"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/tenants/"+tenantID.String()+"/calendar/fiscal-year", map[string]any{
		"start_month": 13,
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *CalendarHandlerSuite) TestHandleDefinePeriod() {
	router, mockService := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())

	mockService.EXPECT().DefineMonthlyPeriod(gomock.Any(), tenantID, 25).Return(int64(1), nil)

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/tenants/"+tenantID.String()+"/calendar/period", map[string]any{
		"closing_day": 25,
	})
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(1))
}

func (s *CalendarHandlerSuite) TestHandlePeriodDeactivate() {
	router, mockService := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())

	mockService.EXPECT().DeactivateMonthlyPeriod(gomock.Any(), tenantID).Return(int64(2), nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/tenants/"+tenantID.String()+"/calendar/period/deactivate")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(2))
}

func (s *CalendarHandlerSuite) TestHandlePeriodReactivate() {
	router, mockService := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())

	mockService.EXPECT().ReactivateMonthlyPeriod(gomock.Any(), tenantID).Return(int64(3), nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/tenants/"+tenantID.String()+"/calendar/period/reactivate")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "version", float64(3))
}

func (s *CalendarHandlerSuite) TestHandleResolve() {
	router, mockService := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())
	date := time.Date(2026, time.March, 28, 0, 0, 0, 0, time.UTC)
	month := id.Month{Year: 2026, Month: time.April}

	mockService.EXPECT().ResolvePeriod(gomock.Any(), tenantID, date).Return(month, nil)
	mockService.EXPECT().FiscalYearOf(gomock.Any(), tenantID, month).Return(2026, nil)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/tenants/"+tenantID.String()+"/calendar/resolve?date=2026-03-28")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "month", "2026-04")
	testutil.AssertJSONContains(s.T(), rr, "fiscal_year", float64(2026))
}

func (s *CalendarHandlerSuite) TestHandleResolve_BadDate() {
	router, _ := newTestRouter(s.T())
	tenantID := id.TenantID(uuid.New())

	req := testutil.NewRequest(s.T(), http.MethodGet, "/tenants/"+tenantID.String()+"/calendar/resolve?date=28.03.2026")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}
