package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBatchService struct {
	mock.Mock
}

func (m *mockBatchService) ProcessBatch(ctx context.Context, req *ProcessRequest) (*BatchResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*BatchResult)
	return result, args.Error(1)
}

func (m *mockBatchService) GetBatch(ctx context.Context, batchID uuid.UUID) (*Batch, error) {
	args := m.Called(ctx, batchID)
	batch, _ := args.Get(0).(*Batch)
	return batch, args.Error(1)
}

func (m *mockBatchService) ListBatches(ctx context.Context, vendorName string, limit, offset int) ([]*Batch, int64, error) {
	args := m.Called(ctx, vendorName, limit, offset)
	batches, _ := args.Get(0).([]*Batch)
	return batches, int64(args.Int(1)), args.Error(2)
}

func (m *mockBatchService) GetBatchLeads(ctx context.Context, batchID uuid.UUID, fraudulentOnly bool, limit, offset int) ([]*LeadRecord, int64, error) {
	args := m.Called(ctx, batchID, fraudulentOnly, limit, offset)
	records, _ := args.Get(0).([]*LeadRecord)
	return records, int64(args.Int(1)), args.Error(2)
}

func (m *mockBatchService) GetBatchIndicators(ctx context.Context, batchID uuid.UUID) ([]*FraudIndicator, error) {
	args := m.Called(ctx, batchID)
	indicators, _ := args.Get(0).([]*FraudIndicator)
	return indicators, args.Error(1)
}

func (m *mockBatchService) SearchLeads(ctx context.Context, email, phone string, limit int) ([]*LeadMatch, error) {
	args := m.Called(ctx, email, phone, limit)
	matches, _ := args.Get(0).([]*LeadMatch)
	return matches, args.Error(1)
}

func (m *mockBatchService) TopIndicators(ctx context.Context, limit int) ([]*IndicatorFrequency, error) {
	args := m.Called(ctx, limit)
	top, _ := args.Get(0).([]*IndicatorFrequency)
	return top, args.Error(1)
}

func setupRouter(svc BatchService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	return response
}

func scoredResult(persisted bool) *BatchResult {
	leads := []scoring.Lead{{Name: "Jane Smith", Email: "jane@example.com", Phone: "5551234567"}}
	results := []scoring.ScoreResult{{Classification: scoring.ClassificationValid, Reasons: []string{}}}
	refund, _ := scoring.AggregateBatch(results)
	stats, _ := scoring.Summarize(results)
	return &BatchResult{
		VendorName:      "Acme",
		BatchIdentifier: "b-1",
		Refund:          refund,
		Stats:           stats,
		Leads:           leads,
		Results:         results,
		Persisted:       persisted,
	}
}

func TestHandler_SubmitBatch(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setup      func(*mockBatchService)
		wantStatus int
	}{
		{
			name: "persisted batch",
			body: `{"vendor_name":"Acme","batch_identifier":"b-1","leads":[{"name":"Jane Smith","email":"jane@example.com","phone":"5551234567"}]}`,
			setup: func(m *mockBatchService) {
				m.On("ProcessBatch", mock.Anything, mock.MatchedBy(func(r *ProcessRequest) bool {
					return r.VendorName == "Acme" && r.Persist && len(r.Leads) == 1
				})).Return(scoredResult(true), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "scored but not persisted",
			body: `{"vendor_name":"Acme","leads":[{"name":"Jane Smith"}]}`,
			setup: func(m *mockBatchService) {
				m.On("ProcessBatch", mock.Anything, mock.Anything).Return(scoredResult(false), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing vendor",
			body:       `{"leads":[{"name":"Jane"}]}`,
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no leads",
			body:       `{"vendor_name":"Acme","leads":[]}`,
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative cost",
			body:       `{"vendor_name":"Acme","cost_per_lead":-1,"leads":[{"name":"Jane"}]}`,
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "service error",
			body: `{"vendor_name":"Acme","leads":[{"name":"Jane"}]}`,
			setup: func(m *mockBatchService) {
				m.On("ProcessBatch", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockBatchService)
			tt.setup(svc)
			router := setupRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_SubmitBatch_ResponseShape(t *testing.T) {
	svc := new(mockBatchService)
	svc.On("ProcessBatch", mock.Anything, mock.Anything).Return(scoredResult(true), nil)
	router := setupRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches",
		bytes.NewBufferString(`{"vendor_name":"Acme","leads":[{"name":"Jane Smith"}]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	response := parseResponse(w)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Acme", data["vendor_name"])
	assert.Equal(t, "NONE", data["refund"].(map[string]interface{})["refund_tier"])

	leads := data["leads"].([]interface{})
	require.Len(t, leads, 1)
	first := leads[0].(map[string]interface{})
	assert.Equal(t, "Jane Smith", first["name"])
	assert.Equal(t, "VALID", first["classification"])
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestHandler_UploadBatch(t *testing.T) {
	csvContent := "Name,Email,Phone\nJane Smith,jane@example.com,5551234567\nBob Jones,bob@example.com,5559876543\n"

	tests := []struct {
		name       string
		fields     map[string]string
		filename   string
		content    string
		setup      func(*mockBatchService)
		wantStatus int
	}{
		{
			name:     "valid upload",
			fields:   map[string]string{"vendor_name": "Acme", "cost_per_lead": "2.50", "batch_identifier": "march"},
			filename: "leads.csv",
			content:  csvContent,
			setup: func(m *mockBatchService) {
				m.On("ProcessBatch", mock.Anything, mock.MatchedBy(func(r *ProcessRequest) bool {
					return r.InputFilename == "leads.csv" && r.CostPerLead == 2.5 && r.BatchIdentifier == "march" && len(r.Leads) == 2
				})).Return(scoredResult(true), nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing vendor",
			fields:     map[string]string{},
			filename:   "leads.csv",
			content:    csvContent,
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad cost",
			fields:     map[string]string{"vendor_name": "Acme", "cost_per_lead": "abc"},
			filename:   "leads.csv",
			content:    csvContent,
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing file",
			fields:     map[string]string{"vendor_name": "Acme"},
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "file without lead columns",
			fields:     map[string]string{"vendor_name": "Acme"},
			filename:   "leads.csv",
			content:    "foo,bar\n1,2\n",
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "empty batch rejected by service",
			fields:   map[string]string{"vendor_name": "Acme"},
			filename: "leads.csv",
			content:  "name,email,phone\n",
			setup: func(m *mockBatchService) {
				m.On("ProcessBatch", mock.Anything, mock.Anything).
					Return(nil, common.NewBadRequestError("batch contains no leads", scoring.ErrEmptyBatch))
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockBatchService)
			tt.setup(svc)
			router := setupRouter(svc)

			body, contentType := multipartBody(t, tt.fields, tt.filename, tt.content)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/batches/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_GetBatch(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		path       string
		setup      func(*mockBatchService)
		wantStatus int
	}{
		{
			name: "found",
			path: "/api/v1/batches/" + id.String(),
			setup: func(m *mockBatchService) {
				m.On("GetBatch", mock.Anything, id).Return(&Batch{ID: id, VendorName: "Acme"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid id",
			path:       "/api/v1/batches/not-a-uuid",
			setup:      func(*mockBatchService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "not found",
			path: "/api/v1/batches/" + id.String(),
			setup: func(m *mockBatchService) {
				m.On("GetBatch", mock.Anything, id).Return(nil, common.NewNotFoundError("batch not found", nil))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockBatchService)
			tt.setup(svc)
			router := setupRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ListBatches(t *testing.T) {
	svc := new(mockBatchService)
	svc.On("ListBatches", mock.Anything, "Acme", 10, 20).Return([]*Batch{{ID: uuid.New()}}, 21, nil)
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches?vendor=Acme&limit=10&offset=20", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	response := parseResponse(w)
	meta := response["meta"].(map[string]interface{})
	assert.Equal(t, float64(21), meta["total"])
	assert.Equal(t, false, meta["has_more"])
	svc.AssertExpectations(t)
}

func TestHandler_GetBatchLeads(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		query          string
		setupMock      func(*mockBatchService)
		expectedStatus int
	}{
		{
			name:  "all leads",
			query: "",
			setupMock: func(svc *mockBatchService) {
				svc.On("GetBatchLeads", mock.Anything, id, false, 20, 0).Return([]*LeadRecord{{ID: uuid.New(), BatchID: id}}, 1, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "fraudulent only",
			query: "?fraudulent=true&limit=5",
			setupMock: func(svc *mockBatchService) {
				svc.On("GetBatchLeads", mock.Anything, id, true, 5, 0).Return([]*LeadRecord{{ID: uuid.New(), BatchID: id, IsFraudulent: true}}, 1, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid fraudulent flag",
			query:          "?fraudulent=maybe",
			setupMock:      func(svc *mockBatchService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockBatchService)
			tt.setupMock(svc)
			router := setupRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches/"+id.String()+"/leads"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.NotNil(t, parseResponse(w)["meta"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_SearchLeads(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*mockBatchService)
		expectedStatus int
	}{
		{
			name:  "by email",
			query: "?email=dup@example.com",
			setupMock: func(svc *mockBatchService) {
				svc.On("SearchLeads", mock.Anything, "dup@example.com", "", 0).
					Return([]*LeadMatch{{BatchIdentifier: "b-7", VendorName: "Acme"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "by email and phone with limit",
			query: "?email=dup@example.com&phone=5559999999&limit=10",
			setupMock: func(svc *mockBatchService) {
				svc.On("SearchLeads", mock.Anything, "dup@example.com", "5559999999", 10).Return([]*LeadMatch{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:  "missing criteria",
			query: "",
			setupMock: func(svc *mockBatchService) {
				svc.On("SearchLeads", mock.Anything, "", "", 0).
					Return(nil, common.NewBadRequestError("email or phone is required", nil))
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad limit",
			query:          "?email=a@b.com&limit=-1",
			setupMock:      func(svc *mockBatchService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockBatchService)
			tt.setupMock(svc)
			router := setupRouter(svc)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leads/search"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_SearchLeads_ResponseShape(t *testing.T) {
	svc := new(mockBatchService)
	svc.On("SearchLeads", mock.Anything, "dup@example.com", "", 0).
		Return([]*LeadMatch{{BatchIdentifier: "b-7", VendorName: "Acme"}}, nil)
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leads/search?email=dup@example.com", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(w)["data"].([]interface{})
	require.Len(t, data, 1)
	match := data[0].(map[string]interface{})
	assert.Equal(t, "b-7", match["batch_identifier"])
	assert.Equal(t, "Acme", match["vendor_name"])
}

func TestHandler_TopIndicators(t *testing.T) {
	svc := new(mockBatchService)
	svc.On("TopIndicators", mock.Anything, 5).Return([]*IndicatorFrequency{
		{Name: scoring.ReasonMissingPhone, Category: scoring.CategoryContact, BatchCount: 7, AffectedLeads: 40},
	}, nil)
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/indicators/top?limit=5", nil))

	require.Equal(t, http.StatusOK, w.Code)
	data := parseResponse(w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, float64(7), data[0].(map[string]interface{})["count"])
	svc.AssertExpectations(t)
}

func TestHandler_GetBatchIndicators(t *testing.T) {
	id := uuid.New()
	svc := new(mockBatchService)
	svc.On("GetBatchIndicators", mock.Anything, id).Return(nil, errors.New("db down"))
	router := setupRouter(svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches/"+id.String()+"/indicators", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, parseResponse(w)["success"].(bool))
}
