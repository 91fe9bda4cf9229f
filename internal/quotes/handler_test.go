package quotes

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, nil, &stubScheduler{})
	svc.now = func() time.Time { return testNow }

	handler := NewHandler(slog.New(slog.DiscardHandler), svc)
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		handler.MountRoutes(r)
		r.Route("/public", handler.MountPublicRoutes)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc, repo
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/quotations", createRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	q := decodeBody[Quotation](t, resp)
	require.Equal(t, StatusDraft, q.Status)
	require.InDelta(t, 61.70, q.TotalAmount, 1e-9)
}

func TestCreateValidation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := createRequest()
	req.Items = nil
	resp := postJSON(t, srv.URL+"/api/v1/quotations", req)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = createRequest()
	req.Items[0].Quantity = 0
	resp = postJSON(t, srv.URL+"/api/v1/quotations", req)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = createRequest()
	req.CustomerEmail = "not-an-email"
	resp = postJSON(t, srv.URL+"/api/v1/quotations", req)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/quotations/preview", PreviewRequest{
		DiscountPercent: 10,
		TaxPercent:      5,
		ShippingAmount:  5.00,
		Items: []QuotationItemRequest{
			{ProductID: "p-1", ProductName: "A", ProductSKU: "A", Quantity: 2, UnitPrice: 25.00},
			{ProductID: "p-2", ProductName: "B", ProductSKU: "B", Quantity: 1, UnitPrice: 10.00},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	preview := decodeBody[PreviewResponse](t, resp)
	require.InDelta(t, 60.00, preview.Subtotal, 1e-9)
	require.InDelta(t, 61.70, preview.TotalAmount, 1e-9)
}

func TestLifecycleEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(t)

	created := decodeBody[Quotation](t, postJSON(t, srv.URL+"/api/v1/quotations", createRequest()))
	base := srv.URL + "/api/v1/quotations/1"

	// Approving a draft is a guard failure, not a server error.
	resp := postJSON(t, base+"/approve", struct{}{})
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, base+"/send", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sent := decodeBody[Quotation](t, resp)
	require.Equal(t, StatusSent, sent.Status)
	require.Equal(t, created.ID, sent.ID)

	resp = postJSON(t, base+"/approve", struct{}{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	approved := decodeBody[Quotation](t, resp)
	require.Equal(t, StatusApproved, approved.Status)

	resp = postJSON(t, base+"/convert", ConvertRequest{OrderID: "ORD-77"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	converted := decodeBody[Quotation](t, resp)
	require.Equal(t, StatusConverted, converted.Status)

	resp = postJSON(t, base+"/convert", ConvertRequest{OrderID: "ORD-78"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestActionsEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	_ = decodeBody[Quotation](t, postJSON(t, srv.URL+"/api/v1/quotations", createRequest()))

	resp, err := http.Get(srv.URL + "/api/v1/quotations/1/actions")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody[map[string][]Action](t, resp)
	require.Equal(t, []Action{ActionSend}, body["allowed_actions"])
}

func TestGetUnknownQuotation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/quotations/99")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEndpointFilters(t *testing.T) {
	srv, svc, _ := newTestServer(t)

	q1, err := svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), q1.ID)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/v1/quotations?status=sent")
	require.NoError(t, err)
	list := decodeBody[ListQuotationsResponse](t, resp)
	require.Equal(t, 1, list.Total)
	require.Equal(t, q1.ID, list.Quotations[0].ID)

	resp, err = http.Get(srv.URL + "/api/v1/quotations?status=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListDateRangeCoversWholeDays(t *testing.T) {
	srv, svc, repo := newTestServer(t)

	_, err := svc.Create(context.Background(), createRequest(), 7)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/v1/quotations?date_from=2026-08-01&date_to=2026-08-30")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NotNil(t, repo.lastList.DateFrom)
	require.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *repo.lastList.DateFrom)

	// date_to is inclusive of the named day, so the repository must see the
	// next midnight as its exclusive upper bound.
	require.NotNil(t, repo.lastList.DateTo)
	require.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), *repo.lastList.DateTo)
}

func TestPublicEndpointHidesInternalFields(t *testing.T) {
	srv, svc, _ := newTestServer(t)

	req := createRequest()
	internal := "margin is thin on this one"
	req.InternalNotes = &internal
	q, err := svc.Create(context.Background(), req, 7)
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/v1/public/quotations/" + q.PublicToken)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	require.NotContains(t, raw, "internal_notes")
	require.NotContains(t, raw, "created_by")
	require.Equal(t, q.Number, raw["number"])
	require.NotEmpty(t, raw["total_formatted"])
}

func TestPublicEndpointUnknownToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/public/quotations/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
