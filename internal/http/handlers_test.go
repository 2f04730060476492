package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecomapi/internal/repository"
	"ecomapi/internal/service"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	store := repository.NewMemoryStore()
	users := repository.NewMemoryUsers(store)
	orders := repository.NewMemoryOrders(store)
	tx := repository.NewMemoryTx(store)
	usersSvc := service.NewUserService(users, orders, tx)
	productsSvc := service.NewProductService(store, orders, tx)
	ordersSvc := service.NewOrderService(users, store, orders, tx)
	statsSvc := service.NewStatsService(users, store, orders)
	return NewServer(usersSvc, productsSvc, ordersSvc, statsSvc)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return m
}

func TestUserFlow(t *testing.T) {
	s := setupServer(t)
	// create
	w := doJSON(t, s, http.MethodPost, "/users", map[string]any{
		"name": "Alice", "email": "a@x.com", "address": "Main st. 1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v: %v", w.Code, w.Body.String())
	}
	// duplicate email
	w = doJSON(t, s, http.MethodPost, "/users", map[string]any{
		"name": "Clone", "email": "a@x.com",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", w.Code)
	}
	if decode(t, w)["error"] != "A user with this email already exists" {
		t.Fatalf("wrong conflict body: %v", w.Body.String())
	}
	// get
	w = doJSON(t, s, http.MethodGet, "/users/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get code %v", w.Code)
	}
	// partial update
	w = doJSON(t, s, http.MethodPut, "/users/1", map[string]any{"phone": "555-0101"})
	if w.Code != http.StatusOK {
		t.Fatalf("update code %v: %v", w.Code, w.Body.String())
	}
	got := decode(t, w)
	if got["phone"] != "555-0101" || got["name"] != "Alice" {
		t.Fatalf("partial update broke fields: %v", got)
	}
	// list
	w = doJSON(t, s, http.MethodGet, "/users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list code %v", w.Code)
	}
	// delete
	w = doJSON(t, s, http.MethodDelete, "/users/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete code %v", w.Code)
	}
	if decode(t, w)["message"] != "Successfully deleted user 1" {
		t.Fatalf("wrong delete body: %v", w.Body.String())
	}
}

func TestValidationErrorBody(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodPost, "/users", map[string]any{"name": "Bob", "email": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	body := decode(t, w)
	errsField, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected errors map, got %v", w.Body.String())
	}
	msgs, ok := errsField["email"].([]any)
	if !ok || len(msgs) == 0 || msgs[0] != "Please enter a valid email address" {
		t.Fatalf("wrong email violation: %v", errsField)
	}
}

// Полный жизненный цикл заказа: добавление, дубликат, удаление,
// инварианты суммы и остатка на каждом шаге
func TestOrderLifecycle(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/users", map[string]any{"name": "A", "email": "a@x.com"})
	if w.Code != http.StatusCreated {
		t.Fatalf("user: %v", w.Body.String())
	}
	w = doJSON(t, s, http.MethodPost, "/products", map[string]any{
		"product_name": "Widget", "price": 10.00, "stock_quantity": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("product: %v", w.Body.String())
	}

	// create empty order
	w = doJSON(t, s, http.MethodPost, "/orders", map[string]any{"user_id": 1})
	if w.Code != http.StatusCreated {
		t.Fatalf("order: %v", w.Body.String())
	}
	o := decode(t, w)
	if o["status"] != "pending" || o["total_amount"] != 0.0 {
		t.Fatalf("fresh order wrong: %v", o)
	}

	// add product: total 10, stock 1
	w = doJSON(t, s, http.MethodPut, "/orders/1/add_product/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("add: %v %v", w.Code, w.Body.String())
	}
	if decode(t, w)["total_amount"] != 10.0 {
		t.Fatalf("total expected 10: %v", w.Body.String())
	}
	w = doJSON(t, s, http.MethodGet, "/products/1", nil)
	if decode(t, w)["stock_quantity"] != 1.0 {
		t.Fatalf("stock expected 1: %v", w.Body.String())
	}

	// duplicate add is a conflict, stock unchanged
	w = doJSON(t, s, http.MethodPut, "/orders/1/add_product/1", nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/products/1", nil)
	if decode(t, w)["stock_quantity"] != 1.0 {
		t.Fatalf("stock must stay 1: %v", w.Body.String())
	}

	// order products listing carries the total
	w = doJSON(t, s, http.MethodGet, "/orders/1/products", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("products of order: %v", w.Code)
	}
	body := decode(t, w)
	if body["order_total"] != 10.0 {
		t.Fatalf("order_total expected 10: %v", body)
	}

	// remove: total 0, stock 2
	w = doJSON(t, s, http.MethodDelete, "/orders/1/remove_product/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("remove: %v %v", w.Code, w.Body.String())
	}
	if decode(t, w)["total_amount"] != 0.0 {
		t.Fatalf("total expected 0: %v", w.Body.String())
	}
	w = doJSON(t, s, http.MethodGet, "/products/1", nil)
	if decode(t, w)["stock_quantity"] != 2.0 {
		t.Fatalf("stock expected 2: %v", w.Body.String())
	}

	// removing again is 404
	w = doJSON(t, s, http.MethodDelete, "/orders/1/remove_product/1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}

	// status update
	w = doJSON(t, s, http.MethodPut, "/orders/1/status", map[string]any{"status": "confirmed"})
	if w.Code != http.StatusOK {
		t.Fatalf("status: %v %v", w.Code, w.Body.String())
	}
	w = doJSON(t, s, http.MethodPut, "/orders/1/status", map[string]any{"status": "lost"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad status, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPut, "/orders/1/status", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing status, got %v", w.Code)
	}
}

func TestProductFilters(t *testing.T) {
	s := setupServer(t)
	mk := func(name, cat string, price float64) {
		w := doJSON(t, s, http.MethodPost, "/products", map[string]any{
			"product_name": name, "price": price, "category": cat, "stock_quantity": 1,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("seed %s: %v", name, w.Body.String())
		}
	}
	mk("TV", "Electronics", 500)
	mk("Radio", "Electronics", 80)
	mk("Chair", "Furniture", 120)

	w := doJSON(t, s, http.MethodGet, "/products?min_price=50&max_price=200&category=Electronics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %v", w.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0]["product_name"] != "Radio" {
		t.Fatalf("expected only Radio, got %v", list)
	}
}

func TestUserCascadeDelete(t *testing.T) {
	s := setupServer(t)
	doJSON(t, s, http.MethodPost, "/users", map[string]any{"name": "A", "email": "a@x.com"})
	doJSON(t, s, http.MethodPost, "/products", map[string]any{"product_name": "W", "price": 5, "stock_quantity": 3})
	doJSON(t, s, http.MethodPost, "/orders", map[string]any{"user_id": 1})
	doJSON(t, s, http.MethodPost, "/orders", map[string]any{"user_id": 1})
	doJSON(t, s, http.MethodPut, "/orders/1/add_product/1", nil)

	w := doJSON(t, s, http.MethodDelete, "/users/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/orders/user/1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after cascade, got %v", w.Code)
	}
}

func TestStatsAndHome(t *testing.T) {
	s := setupServer(t)
	doJSON(t, s, http.MethodPost, "/users", map[string]any{"name": "A", "email": "a@x.com"})

	w := doJSON(t, s, http.MethodGet, "/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: %v", w.Code)
	}
	stats, ok := decode(t, w)["system_stats"].(map[string]any)
	if !ok {
		t.Fatalf("no system_stats: %v", w.Body.String())
	}
	if stats["total_users"] != 1.0 {
		t.Fatalf("total_users expected 1: %v", stats)
	}

	w = doJSON(t, s, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("home: %v", w.Code)
	}
	if decode(t, w)["message"] != "Welcome to E-Commerce API" {
		t.Fatalf("wrong home body: %v", w.Body.String())
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	// invalid id
	w := doJSON(t, s, http.MethodGet, "/users/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	// missing user for order
	w = doJSON(t, s, http.MethodPost, "/orders", map[string]any{"user_id": 5})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
	// missing user_id field
	w = doJSON(t, s, http.MethodPost, "/orders", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	// malformed price filter
	w = doJSON(t, s, http.MethodGet, "/products?min_price=cheap", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad min_price, got %v", w.Code)
	}
	if decode(t, w)["error"] != "invalid price filter" {
		t.Fatalf("wrong filter error body: %v", w.Body.String())
	}
	w = doJSON(t, s, http.MethodGet, "/products?max_price=1e", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad max_price, got %v", w.Code)
	}
}
