package domain

import "time"

// User представляет покупателя
type User struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Address   string    `json:"address" gorm:"size:255"`
	Phone     string    `json:"phone" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
}

// Product представляет товар каталога
type Product struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	ProductName   string    `json:"product_name" gorm:"size:100;not null"`
	Price         float64   `json:"price" gorm:"not null"`
	Description   string    `json:"description" gorm:"size:500"`
	StockQuantity int64     `json:"stock_quantity" gorm:"not null;default:0"`
	Category      string    `json:"category" gorm:"size:50;index"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// OrderStatuses все допустимые статусы в порядке жизненного цикла
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
}

// Valid проверяет, входит ли статус в допустимый набор
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Order сущность заказа. TotalAmount — производное поле,
// пересчитывается при каждом изменении состава заказа.
type Order struct {
	ID          int64       `json:"id" gorm:"primaryKey"`
	OrderDate   time.Time   `json:"order_date" gorm:"index"`
	UserID      int64       `json:"user_id" gorm:"index;not null"`
	Status      OrderStatus `json:"status" gorm:"size:20;not null;default:pending"`
	TotalAmount float64     `json:"total_amount" gorm:"not null;default:0"`
}

// OrderProduct строка ассоциации заказ-товар.
// Пара (order_id, product_id) уникальна: один товар входит в заказ не более одного раза.
type OrderProduct struct {
	OrderID   int64 `json:"order_id" gorm:"primaryKey;autoIncrement:false"`
	ProductID int64 `json:"product_id" gorm:"primaryKey;autoIncrement:false"`
}

// TableName имя таблицы ассоциации в единственном числе, как в исходной схеме
func (OrderProduct) TableName() string { return "order_product" }
