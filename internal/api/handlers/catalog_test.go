package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"

	"github.com/orrn/printq/internal/api/handlers/mocks"
	"github.com/orrn/printq/internal/core"
	"github.com/orrn/printq/internal/db"
)

func newPrinterRouter(t *testing.T, caller core.Caller) (*gin.Engine, *mocks.MockPrinterService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := mocks.NewMockPrinterService(gomock.NewController(t))

	r := gin.New()
	g := r.Group("/api", withCaller(caller))
	NewPrinterHandler(svc).RegisterRoutes(g, g)
	return r, svc
}

func newFilamentRouter(t *testing.T, caller core.Caller) (*gin.Engine, *mocks.MockFilamentService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := mocks.NewMockFilamentService(gomock.NewController(t))

	r := gin.New()
	g := r.Group("/api", withCaller(caller))
	NewFilamentHandler(svc).RegisterRoutes(g, g)
	return r, svc
}

func TestPrinterHandler(t *testing.T) {
	t.Run("create requires diameters", func(t *testing.T) {
		r, _ := newPrinterRouter(t, testAdmin)
		w := doJSON(r, http.MethodPost, "/api/printers", `{"name":"Prusa","nozzle_size_mm":0.4}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		r, svc := newPrinterRouter(t, testAdmin)
		svc.EXPECT().Create(gomock.Any(), testAdmin, gomock.Any()).DoAndReturn(
			func(_ any, _ core.Caller, in core.PrinterInput) (*db.Printer, error) {
				if in.NozzleSizeMM == nil || *in.NozzleSizeMM != 0.6 || len(in.SupportedDiameters) != 2 {
					return nil, fmt.Errorf("unexpected input %+v", in)
				}
				return &db.Printer{ID: 1, Name: in.Name, NozzleSizeMM: 0.6, SupportedDiameters: in.SupportedDiameters, CompatibleFilamentIDs: []int64{}}, nil
			})

		w := doJSON(r, http.MethodPost, "/api/printers", `{"name":"Prusa","nozzle_size_mm":0.6,"supported_diameters":[1.75,2.85]}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("create by user", func(t *testing.T) {
		r, svc := newPrinterRouter(t, testUser)
		svc.EXPECT().Create(gomock.Any(), testUser, gomock.Any()).Return(nil, core.ErrForbidden)

		w := doJSON(r, http.MethodPost, "/api/printers", `{"name":"Prusa","nozzle_size_mm":0.4,"supported_diameters":[1.75]}`)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		r, svc := newPrinterRouter(t, testAdmin)
		svc.EXPECT().Update(gomock.Any(), testAdmin, int64(1), gomock.Any()).DoAndReturn(
			func(_ any, _ core.Caller, _ int64, upd core.PrinterUpdate) (*db.Printer, error) {
				if upd.Name != nil || upd.SupportedDiameters == nil || len(*upd.SupportedDiameters) != 1 {
					return nil, fmt.Errorf("unexpected update %+v", upd)
				}
				return &db.Printer{ID: 1}, nil
			})

		w := doJSON(r, http.MethodPatch, "/api/printers/1", `{"supported_diameters":[2.85]}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("delete with active jobs", func(t *testing.T) {
		r, svc := newPrinterRouter(t, testAdmin)
		svc.EXPECT().Delete(gomock.Any(), testAdmin, int64(1)).Return(fmt.Errorf("%w: printer 1 has 1 pending or printing jobs", core.ErrConflict))

		w := doJSON(r, http.MethodDelete, "/api/printers/1", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("compatible filaments", func(t *testing.T) {
		r, svc := newPrinterRouter(t, core.Anonymous(""))
		svc.EXPECT().CompatibleFilaments(gomock.Any(), int64(1)).Return([]*db.Filament{{ID: 3, DiameterMM: 1.75}}, nil)

		w := doJSON(r, http.MethodGet, "/api/printers/1/filaments", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var out []db.Filament
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(out) != 1 || out[0].ID != 3 {
			t.Fatalf("unexpected filaments %+v", out)
		}
	})

	t.Run("list", func(t *testing.T) {
		r, svc := newPrinterRouter(t, core.Anonymous(""))
		svc.EXPECT().List(gomock.Any()).Return([]*db.Printer{}, nil)

		w := doJSON(r, http.MethodGet, "/api/printers", "")
		if w.Code != http.StatusOK || w.Body.String() != "[]" {
			t.Fatalf("expected empty list, got %d %s", w.Code, w.Body.String())
		}
	})
}

func TestFilamentHandler(t *testing.T) {
	t.Run("create rejects missing weight", func(t *testing.T) {
		r, _ := newFilamentRouter(t, testAdmin)
		w := doJSON(r, http.MethodPost, "/api/filaments", `{"brand":"Acme","material":"PLA","color":"red","diameter_mm":1.75}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("create accepts empty spool", func(t *testing.T) {
		r, svc := newFilamentRouter(t, testAdmin)
		svc.EXPECT().Create(gomock.Any(), testAdmin, gomock.Any()).DoAndReturn(
			func(_ any, _ core.Caller, in core.FilamentInput) (*db.Filament, error) {
				if in.WeightGrams == nil || *in.WeightGrams != 0 {
					return nil, fmt.Errorf("unexpected input %+v", in)
				}
				return &db.Filament{ID: 2}, nil
			})

		w := doJSON(r, http.MethodPost, "/api/filaments", `{"brand":"Acme","material":"PLA","color":"red","diameter_mm":1.75,"weight_grams":0}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("adjust", func(t *testing.T) {
		r, svc := newFilamentRouter(t, testAdmin)
		svc.EXPECT().AdjustWeight(gomock.Any(), testAdmin, int64(2), 250.0).Return(&core.WeightAdjustment{
			FilamentID: 2, PreviousGrams: 0, NewGrams: 250, AppliedGrams: 250,
		}, nil)

		w := doJSON(r, http.MethodPost, "/api/filaments/2/adjust", `{"delta_grams":250}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var adj core.WeightAdjustment
		if err := json.Unmarshal(w.Body.Bytes(), &adj); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if adj.NewGrams != 250 {
			t.Fatalf("unexpected adjustment %+v", adj)
		}
	})

	t.Run("adjust requires delta", func(t *testing.T) {
		r, _ := newFilamentRouter(t, testAdmin)
		w := doJSON(r, http.MethodPost, "/api/filaments/2/adjust", `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("usage paging", func(t *testing.T) {
		r, svc := newFilamentRouter(t, testAdmin)
		svc.EXPECT().Usage(gomock.Any(), testAdmin, int64(2), 10, 5).Return([]*db.FilamentUsage{{ID: 1, FilamentID: 2, Reason: core.UsageReasonStop}}, nil)

		w := doJSON(r, http.MethodGet, "/api/filaments/2/usage?limit=10&offset=5", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("delete while printing", func(t *testing.T) {
		r, svc := newFilamentRouter(t, testAdmin)
		svc.EXPECT().Delete(gomock.Any(), testAdmin, int64(2)).Return(fmt.Errorf("%w: filament 2 is loaded in a printing job", core.ErrConflict))

		w := doJSON(r, http.MethodDelete, "/api/filaments/2", "")
		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		r, svc := newFilamentRouter(t, core.Anonymous(""))
		svc.EXPECT().Get(gomock.Any(), int64(8)).Return(nil, fmt.Errorf("%w: filament 8", core.ErrNotFound))

		w := doJSON(r, http.MethodGet, "/api/filaments/8", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}
