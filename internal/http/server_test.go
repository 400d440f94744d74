package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"receber/internal/core"
	"receber/internal/idgen"
	"receber/internal/services"
	"receber/internal/store/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.Ledger) {
	t.Helper()
	st := memory.New()
	now := func() time.Time {
		return time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	ledger, err := services.NewLedger(context.Background(), st,
		&idgen.Sequence{Prefix: "id"}, services.Options{Now: now})
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	srv := httptest.NewServer(NewServer(":0", ledger, st, 6).Handler)
	t.Cleanup(srv.Close)
	return srv, ledger
}

func doJSON(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d", path, resp.StatusCode)
		}
	}
}

func TestPeopleEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/people", `{"name":"Ana"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeBody[core.Person](t, resp)
	if created.Name != "Ana" || created.ID == "" {
		t.Errorf("created = %+v", created)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/people", `{"name":"  "}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("blank name status = %d, want 422", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/people/"+created.ID, `{"name":"Ana Maria"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("rename status = %d", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/people")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	people := decodeBody[[]core.Person](t, resp)
	if len(people) != 1 || people[0].Name != "Ana Maria" {
		t.Errorf("people = %+v", people)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/people/"+created.ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/people/ghost", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete unknown status = %d, want 404", resp.StatusCode)
	}
}

func createPerson(t *testing.T, srv *httptest.Server, name string) core.Person {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/people", `{"name":"`+name+`"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create person status = %d", resp.StatusCode)
	}
	return decodeBody[core.Person](t, resp)
}

func TestCreateInstallmentCharge(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`",
		"description": "Notebook",
		"amount": 200,
		"type": "installment",
		"dueYm": "2024-01",
		"currentInstallment": 1,
		"totalInstallments": 3
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeBody[[]core.Transaction](t, resp)
	if len(created) != 3 {
		t.Fatalf("created = %d records, want 3", len(created))
	}
	for i, tx := range created {
		if tx.Installment == nil || tx.Installment.Number != i+1 {
			t.Errorf("record %d = %+v", i, tx)
		}
		if want := core.YM(2024, 1).Add(i); tx.DueYM != want {
			t.Errorf("record %d due = %s, want %s", i, tx.DueYM, want)
		}
	}

	// Unknown person is rejected before any expansion happens.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "ghost", "type": "one-shot", "dueYm": "2024-01"
	}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown person status = %d, want 422", resp.StatusCode)
	}
}

func TestCreateChargeWithoutAutoGenerate(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`",
		"description": "Sofá",
		"amount": 100,
		"type": "installment",
		"dueYm": "2024-02",
		"currentInstallment": 2,
		"totalInstallments": 6,
		"autoGenerateFuture": false
	}`)
	created := decodeBody[[]core.Transaction](t, resp)
	if len(created) != 1 {
		t.Fatalf("created = %d records, want 1", len(created))
	}
	if created[0].Installment.Number != 2 || created[0].Installment.Total != 6 {
		t.Errorf("position = %d/%d", created[0].Installment.Number, created[0].Installment.Total)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")

	doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "description": "Notebook", "amount": 200,
		"type": "installment", "dueYm": "2024-01",
		"currentInstallment": 1, "totalInstallments": 3
	}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/transactions?month=2024-02")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	txs := decodeBody[[]core.Transaction](t, resp)
	if len(txs) != 1 || txs[0].DueYM != core.YM(2024, 2) {
		t.Errorf("filtered = %+v", txs)
	}

	resp, err = http.Get(srv.URL + "/api/transactions?month=banana")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad month status = %d, want 400", resp.StatusCode)
	}
}

func TestCascadeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "description": "Notebook", "amount": 200,
		"type": "installment", "dueYm": "2024-01",
		"currentInstallment": 1, "totalInstallments": 3
	}`)
	created := decodeBody[[]core.Transaction](t, resp)

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/transactions/"+created[0].ID,
		`{"totalInstallments": 5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cascade status = %d", resp.StatusCode)
	}
	all := decodeBody[[]core.Transaction](t, resp)
	if len(all) != 5 {
		t.Errorf("after cascade = %d records, want 5", len(all))
	}

	resp = doJSON(t, http.MethodPatch, srv.URL+"/api/transactions/ghost", `{"amount": 1}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusToggleEndpoint(t *testing.T) {
	srv, ledger := newTestServer(t)
	p := createPerson(t, srv, "Ana")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "description": "Conserto", "amount": 50,
		"type": "one-shot", "dueYm": "2024-03"
	}`)
	created := decodeBody[[]core.Transaction](t, resp)

	resp = doJSON(t, http.MethodPost,
		srv.URL+"/api/transactions/"+created[0].ID+"/status", `{"status":"paid"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}
	if got := ledger.Snapshot().Transactions[0].Status; got != core.StatusPaid {
		t.Errorf("status = %s, want paid", got)
	}

	resp = doJSON(t, http.MethodPost,
		srv.URL+"/api/transactions/"+created[0].ID+"/status", `{"status":"weird"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("invalid status = %d, want 422", resp.StatusCode)
	}
}

func TestDeleteTransactionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "type": "one-shot", "dueYm": "2024-03"
	}`)
	created := decodeBody[[]core.Transaction](t, resp)

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/transactions/"+created[0].ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/transactions/"+created[0].ID, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("double delete status = %d, want 404", resp.StatusCode)
	}
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	createPerson(t, srv, "Ana")

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	state := decodeBody[struct {
		People       []core.Person      `json:"people"`
		Transactions []core.Transaction `json:"transactions"`
		Revision     int64              `json:"revision"`
	}](t, resp)
	if len(state.People) != 1 || state.Revision != 1 {
		t.Errorf("state = %+v", state)
	}
	if state.Transactions == nil {
		t.Error("transactions should serialize as an empty array")
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")
	doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "description": "Conserto", "amount": 150,
		"type": "one-shot", "dueYm": "2024-06"
	}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/summary?month=2024-06")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	summary := decodeBody[core.MonthSummary](t, resp)
	if summary.Open.Cents != 15000 {
		t.Errorf("open = %d, want 15000", summary.Open.Cents)
	}

	// Cached result stays consistent on a repeated read.
	resp, err = http.Get(srv.URL + "/api/summary?month=2024-06")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	again := decodeBody[core.MonthSummary](t, resp)
	if again.Open.Cents != summary.Open.Cents {
		t.Errorf("cached open = %d, want %d", again.Open.Cents, summary.Open.Cents)
	}
}

func TestProjectionEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")
	doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "description": "Notebook", "amount": 100,
		"type": "installment", "dueYm": "2024-06",
		"currentInstallment": 1, "totalInstallments": 3
	}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/projection?month=2024-06&months=3")
	if err != nil {
		t.Fatalf("projection: %v", err)
	}
	bars := decodeBody[[]core.MonthTotals](t, resp)
	if len(bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(bars))
	}
	for i, bar := range bars {
		if bar.Open.Cents != 10000 {
			t.Errorf("bar %d open = %d, want 10000", i, bar.Open.Cents)
		}
	}

	resp, err = http.Get(srv.URL + "/api/projection?months=99")
	if err != nil {
		t.Fatalf("projection: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-range months status = %d, want 400", resp.StatusCode)
	}
}

func TestExportCSVEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	p := createPerson(t, srv, "Ana")
	doJSON(t, http.MethodPost, srv.URL+"/api/transactions", `{
		"personId": "`+p.ID+`", "description": "Conserto", "amount": 1234.56,
		"type": "one-shot", "dueYm": "2024-06", "date": "2024-06-10"
	}`).Body.Close()

	resp, err := http.Get(srv.URL + "/api/export.csv?month=2024-06")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "contas-2024-06.csv") {
		t.Errorf("content disposition = %s", cd)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	body := buf.String()
	if !strings.Contains(body, "Data,Pessoa,Descrição,Parcela,Valor,Status") {
		t.Errorf("missing header row: %q", body)
	}
	if !strings.Contains(body, "À vista") || !strings.Contains(body, `"R$ 1.234,56"`) {
		t.Errorf("missing formatted row: %q", body)
	}
}

func TestThemeEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/theme", `{"dark":true}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put theme status = %d", resp.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/theme")
	if err != nil {
		t.Fatalf("get theme: %v", err)
	}
	theme := decodeBody[themeResponse](t, resp)
	if !theme.Dark {
		t.Error("dark theme was not persisted")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/people", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
	if allow := resp.Header.Get("Allow"); allow != "GET, POST" {
		t.Errorf("Allow = %q", allow)
	}
}

func TestInvalidBodyRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/people", `{not json`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
