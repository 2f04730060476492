package repository

import (
	"context"
	"testing"
	"time"

	"ecomapi/internal/domain"
)

func TestMemoryStore_ProductCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{ProductName: "Widget", Price: 10, StockQuantity: 5, Category: "Tools"}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("no id")
	}
	if p.CreatedAt.IsZero() {
		t.Fatalf("no created_at")
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get: %v", err)
	}

	p.Price = 12
	if err := store.Update(ctx, &p); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestMemoryStore_AdjustStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	p := domain.Product{ProductName: "Widget", Price: 10, StockQuantity: 1}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}

	if err := store.AdjustStock(ctx, p.ID, -1); err != nil {
		t.Fatalf("first decrement: %v", err)
	}
	if err := store.AdjustStock(ctx, p.ID, -1); err != ErrInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if err := store.AdjustStock(ctx, p.ID, +1); err != nil {
		t.Fatalf("increment: %v", err)
	}
	got, _ := store.GetByID(ctx, p.ID)
	if got.StockQuantity != 1 {
		t.Fatalf("stock expected 1, got %v", got.StockQuantity)
	}

	if err := store.AdjustStock(ctx, 999, -1); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryUsers_CRUDAndEmailLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	users := NewMemoryUsers(store)

	u := domain.User{Name: "Alice", Email: "a@x.com"}
	if err := users.Create(ctx, &u); err != nil {
		t.Fatalf("create: %v", err)
	}

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("get by email: %v", err)
	}
	if _, err := users.GetByEmail(ctx, "nobody@x.com"); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	// email уникален, как в реальной схеме
	dup := domain.User{Name: "Clone", Email: "a@x.com"}
	if err := users.Create(ctx, &dup); err != ErrDuplicateKey {
		t.Fatalf("expected duplicate key, got %v", err)
	}
	other := domain.User{Name: "Bob", Email: "b@x.com"}
	if err := users.Create(ctx, &other); err != nil {
		t.Fatal(err)
	}
	other.Email = "a@x.com"
	if err := users.Update(ctx, &other); err != ErrDuplicateKey {
		t.Fatalf("expected duplicate key on update, got %v", err)
	}

	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := users.GetByID(ctx, u.ID); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestMemoryOrders_Associations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	p1 := domain.Product{ProductName: "A", Price: 10, StockQuantity: 5}
	p2 := domain.Product{ProductName: "B", Price: 20, StockQuantity: 5}
	if err := store.Create(ctx, &p1); err != nil {
		t.Fatal(err)
	}
	if err := store.Create(ctx, &p2); err != nil {
		t.Fatal(err)
	}

	o := domain.Order{UserID: 1, Status: domain.OrderStatusPending}
	if err := orders.Create(ctx, &o); err != nil {
		t.Fatal(err)
	}

	if err := orders.AttachProduct(ctx, o.ID, p1.ID); err != nil {
		t.Fatal(err)
	}
	if err := orders.AttachProduct(ctx, o.ID, p2.ID); err != nil {
		t.Fatal(err)
	}

	has, _ := orders.HasProduct(ctx, o.ID, p1.ID)
	if !has {
		t.Fatalf("expected association")
	}

	sum, _ := orders.SumProductPrices(ctx, o.ID)
	if sum != 30 {
		t.Fatalf("sum expected 30, got %v", sum)
	}

	list, _ := orders.ProductsOf(ctx, o.ID)
	if len(list) != 2 {
		t.Fatalf("expected 2 products, got %d", len(list))
	}

	if err := orders.DetachProduct(ctx, o.ID, p1.ID); err != nil {
		t.Fatalf("detach: %v", err)
	}
	if err := orders.DetachProduct(ctx, o.ID, p1.ID); err != ErrNotFound {
		t.Fatalf("expected not found on second detach, got %v", err)
	}

	n, _ := orders.CountByProduct(ctx, p2.ID)
	if n != 1 {
		t.Fatalf("count by product expected 1, got %d", n)
	}

	// delete order removes its association rows
	if err := orders.Delete(ctx, o.ID); err != nil {
		t.Fatal(err)
	}
	n, _ = orders.CountByProduct(ctx, p2.ID)
	if n != 0 {
		t.Fatalf("association rows must die with the order, got %d", n)
	}
}

func TestMemoryOrders_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	orders := NewMemoryOrders(store)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		o := domain.Order{UserID: 7, Status: domain.OrderStatusPending, OrderDate: base.Add(time.Duration(i) * time.Minute)}
		if err := orders.Create(ctx, &o); err != nil {
			t.Fatal(err)
		}
	}
	other := domain.Order{UserID: 8, Status: domain.OrderStatusPending, OrderDate: base}
	if err := orders.Create(ctx, &other); err != nil {
		t.Fatal(err)
	}

	list, err := orders.ListByUser(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].OrderDate.After(list[i-1].OrderDate) {
			t.Fatalf("orders not sorted newest first")
		}
	}
}

func TestMemoryTx_TransactionalUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	tx := NewMemoryTx(store)
	orders := NewMemoryOrders(store)

	p := domain.Product{ProductName: "A", Price: 10, StockQuantity: 5}
	if err := store.Create(ctx, &p); err != nil {
		t.Fatal(err)
	}
	o := domain.Order{UserID: 1, Status: domain.OrderStatusPending}
	if err := orders.Create(ctx, &o); err != nil {
		t.Fatal(err)
	}

	// emulate atomic add-product with stock decrease and total recompute
	err := tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := store.AdjustStock(ctx, p.ID, -1); err != nil {
			return err
		}
		if err := orders.AttachProduct(ctx, o.ID, p.ID); err != nil {
			return err
		}
		total, err := orders.SumProductPrices(ctx, o.ID)
		if err != nil {
			return err
		}
		o.TotalAmount = total
		return orders.Update(ctx, &o)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	pp, _ := store.GetByID(context.Background(), p.ID)
	if pp.StockQuantity != 4 {
		t.Fatalf("stock expected 4, got %v", pp.StockQuantity)
	}
	oo, _ := orders.GetByID(context.Background(), o.ID)
	if oo.TotalAmount != 10 {
		t.Fatalf("total expected 10, got %v", oo.TotalAmount)
	}
}

func TestList_Filtering(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	add := func(n, cat string, price float64) {
		p := domain.Product{ProductName: n, Category: cat, Price: price, StockQuantity: 1}
		if err := store.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}
	add("Laptop", "Electronics", 900)
	add("Phone", "Electronics", 150)
	add("Mug", "Kitchen", 12)

	// category exact match
	list, _ := store.List(ctx, ProductFilter{Category: "Electronics"})
	if len(list) != 2 {
		t.Fatalf("category filter expected 2, got %d", len(list))
	}

	// min
	min := 100.0
	list, _ = store.List(ctx, ProductFilter{MinPrice: &min})
	for _, p := range list {
		if p.Price < min {
			t.Fatalf("min filter fail")
		}
	}

	// max
	max := 100.0
	list, _ = store.List(ctx, ProductFilter{MaxPrice: &max})
	for _, p := range list {
		if p.Price > max {
			t.Fatalf("max filter fail")
		}
	}

	// combined
	minE, maxE := 50.0, 200.0
	list, _ = store.List(ctx, ProductFilter{Category: "Electronics", MinPrice: &minE, MaxPrice: &maxE})
	if len(list) != 1 || list[0].ProductName != "Phone" {
		t.Fatalf("combined filter expected only Phone, got %v", list)
	}
}
