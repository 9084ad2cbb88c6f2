package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/orrn/printq/internal/api/handlers/mocks"
	"github.com/orrn/printq/internal/api/middleware"
	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/db"
)

var (
	testUser  = core.Caller{Kind: core.CallerUser, UserID: 7, Status: core.UserStatusApproved}
	testAdmin = core.Caller{Kind: core.CallerAdmin, UserID: 1, Status: core.UserStatusApproved}
)

// withCaller stands in for the auth middleware.
func withCaller(caller core.Caller) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetCaller(c, caller)
		c.Next()
	}
}

func newJobRouter(t *testing.T, caller core.Caller) (*gin.Engine, *mocks.MockJobService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockJobService(ctrl)

	r := gin.New()
	g := r.Group("/api", withCaller(caller))
	NewJobHandler(svc).RegisterRoutes(g, g, g)
	return r, svc
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJobHandler_CreateJob(t *testing.T) {
	t.Run("invalid json", func(t *testing.T) {
		r, _ := newJobRouter(t, testUser)
		w := doJSON(r, http.MethodPost, "/api/jobs", "{")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing duration", func(t *testing.T) {
		r, _ := newJobRouter(t, testUser)
		w := doJSON(r, http.MethodPost, "/api/jobs", `{"name":"gear","artifact_link":"x","printer_id":1}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("low stock needs acknowledgement", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().CheckStock(gomock.Any(), testUser, int64(3), 60.0).Return([]core.Warning{
			{Code: core.WarningLowStock, FilamentID: 3, AvailableGrams: 50, RequestedGrams: 60},
		}, nil)

		w := doJSON(r, http.MethodPost, "/api/jobs",
			`{"name":"gear","artifact_link":"x","duration_minutes":30,"printer_id":1,"filament_id":3,"estimated_usage_grams":60}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var resp LowStockResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error != "low_stock_unacknowledged" || len(resp.Warnings) != 1 {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("acknowledged low stock", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().Create(gomock.Any(), testUser, gomock.Any()).DoAndReturn(
			func(_ any, _ core.Caller, in core.JobInput) (*core.CreateJobResult, error) {
				if in.FilamentID == nil || *in.FilamentID != 3 || *in.EstimatedUsageGrams != 60 {
					return nil, fmt.Errorf("unexpected input %+v", in)
				}
				return &core.CreateJobResult{
					Job:      &core.JobView{PrintJob: db.PrintJob{ID: 9, Status: "pending"}},
					Warnings: []core.Warning{{Code: core.WarningLowStock}},
				}, nil
			})

		w := doJSON(r, http.MethodPost, "/api/jobs",
			`{"name":"gear","artifact_link":"x","duration_minutes":30,"printer_id":1,"filament_id":3,"estimated_usage_grams":60,"acknowledge_low_stock":true}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("sufficient stock", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		gomock.InOrder(
			svc.EXPECT().CheckStock(gomock.Any(), testUser, int64(3), 10.0).Return(nil, nil),
			svc.EXPECT().Create(gomock.Any(), testUser, gomock.Any()).Return(&core.CreateJobResult{
				Job:      &core.JobView{PrintJob: db.PrintJob{ID: 10}},
				Warnings: []core.Warning{},
			}, nil),
		)

		w := doJSON(r, http.MethodPost, "/api/jobs",
			`{"name":"gear","artifact_link":"x","duration_minutes":30,"printer_id":1,"filament_id":3,"estimated_usage_grams":10}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", w.Code)
		}
	})

	t.Run("pending account", func(t *testing.T) {
		pending := core.Caller{Kind: core.CallerUser, UserID: 8, Status: core.UserStatusPending}
		r, svc := newJobRouter(t, pending)
		svc.EXPECT().Create(gomock.Any(), pending, gomock.Any()).Return(nil, core.ErrForbidden)

		w := doJSON(r, http.MethodPost, "/api/jobs", `{"name":"gear","artifact_link":"x","duration_minutes":30,"printer_id":1}`)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}

func TestJobHandler_Transitions(t *testing.T) {
	t.Run("start conflict", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().Start(gomock.Any(), testUser, int64(4)).Return(nil, fmt.Errorf("%w: printer 1 is busy", core.ErrConflict))

		w := doJSON(r, http.MethodPost, "/api/jobs/4/start", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Error != "conflict" {
			t.Fatalf("expected conflict code, got %q", resp.Error)
		}
	})

	t.Run("stop with usage", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().Stop(gomock.Any(), testUser, int64(4), gomock.Any()).DoAndReturn(
			func(_ any, _ core.Caller, _ int64, actual *float64) (*core.TransitionResult, error) {
				if actual == nil || *actual != 55 {
					return nil, fmt.Errorf("unexpected usage %v", actual)
				}
				return &core.TransitionResult{
					Job:        &core.JobView{PrintJob: db.PrintJob{ID: 4, Status: "failed"}},
					Adjustment: &core.WeightAdjustment{FilamentID: 3, NewGrams: 0, Clamped: true},
				}, nil
			})

		w := doJSON(r, http.MethodPost, "/api/jobs/4/stop", `{"actual_usage_grams":55}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("stop without body", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().Stop(gomock.Any(), testUser, int64(4), (*float64)(nil)).Return(&core.TransitionResult{
			Job: &core.JobView{PrintJob: db.PrintJob{ID: 4, Status: "failed"}},
		}, nil)

		w := doJSON(r, http.MethodPost, "/api/jobs/4/stop", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("mark failed by stranger", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().MarkFailed(gomock.Any(), testUser, int64(5), gomock.Any()).Return(nil, core.ErrForbidden)

		w := doJSON(r, http.MethodPost, "/api/jobs/5/mark-failed", `{}`)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("restart", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().Restart(gomock.Any(), testUser, int64(5)).Return(&core.TransitionResult{
			Job: &core.JobView{PrintJob: db.PrintJob{ID: 5, Status: "pending"}},
		}, nil)

		w := doJSON(r, http.MethodPost, "/api/jobs/5/restart", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		r, _ := newJobRouter(t, testUser)
		w := doJSON(r, http.MethodPost, "/api/jobs/abc/start", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r, svc := newJobRouter(t, testAdmin)
		svc.EXPECT().Delete(gomock.Any(), testAdmin, int64(5)).Return(nil)

		w := doJSON(r, http.MethodDelete, "/api/jobs/5", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestJobHandler_Reads(t *testing.T) {
	t.Run("list passes filters", func(t *testing.T) {
		r, svc := newJobRouter(t, core.Anonymous(""))
		svc.EXPECT().List(gomock.Any(), core.JobQuery{Status: "printing", PrinterID: 2, Limit: 20}).Return([]*core.JobView{
			{PrintJob: db.PrintJob{ID: 1, Status: "printing"}, PrinterName: "Prusa"},
		}, nil)

		w := doJSON(r, http.MethodGet, "/api/jobs?status=printing&printer_id=2&limit=20", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp struct {
			Jobs  []core.JobView `json:"jobs"`
			Count int            `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Count != 1 || resp.Jobs[0].PrinterName != "Prusa" {
			t.Fatalf("unexpected response %+v", resp)
		}
	})

	t.Run("list rejects bad status", func(t *testing.T) {
		r, svc := newJobRouter(t, core.Anonymous(""))
		svc.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: unknown job status", core.ErrValidation))

		w := doJSON(r, http.MethodGet, "/api/jobs?status=bogus", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("get not found", func(t *testing.T) {
		r, svc := newJobRouter(t, core.Anonymous(""))
		svc.EXPECT().Get(gomock.Any(), int64(99)).Return(nil, core.ErrNotFound)

		w := doJSON(r, http.MethodGet, "/api/jobs/99", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("stats", func(t *testing.T) {
		r, svc := newJobRouter(t, core.Anonymous(""))
		svc.EXPECT().Stats(gomock.Any()).Return(&core.QueueStats{Pending: 2, Total: 2}, nil)

		w := doJSON(r, http.MethodGet, "/api/jobs/stats", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("storage failure is hidden", func(t *testing.T) {
		r, svc := newJobRouter(t, core.Anonymous(""))
		svc.EXPECT().Stats(gomock.Any()).Return(nil, fmt.Errorf("%w: disk I/O error", core.ErrStorage))

		w := doJSON(r, http.MethodGet, "/api/jobs/stats", "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if bytes.Contains(w.Body.Bytes(), []byte("disk")) {
			t.Fatalf("internal detail leaked: %s", w.Body.String())
		}
	})

	t.Run("stock check", func(t *testing.T) {
		r, svc := newJobRouter(t, testUser)
		svc.EXPECT().CheckStock(gomock.Any(), testUser, int64(3), 20.0).Return([]core.Warning{}, nil)

		w := doJSON(r, http.MethodPost, "/api/jobs/stock-check", `{"filament_id":3,"estimated_usage_grams":20}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(`"low_stock":false`)) {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})
}
