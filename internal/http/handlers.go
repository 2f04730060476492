package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"ecomapi/internal/repository"
	"ecomapi/internal/service"
	"ecomapi/internal/validation"
)

type Server struct {
	engine   *gin.Engine
	users    *service.UserService
	products *service.ProductService
	orders   *service.OrderService
	stats    *service.StatsService
}

func NewServer(users *service.UserService, products *service.ProductService, orders *service.OrderService, stats *service.StatsService) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{engine: r, users: users, products: products, orders: orders, stats: stats}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.engine.GET("/", s.home)
	s.engine.GET("/stats", s.getStats)

	users := s.engine.Group("/users")
	users.POST("", s.createUser)
	users.GET("", s.listUsers)
	users.GET(":id", s.getUser)
	users.PUT(":id", s.updateUser)
	users.DELETE(":id", s.deleteUser)

	products := s.engine.Group("/products")
	products.POST("", s.createProduct)
	products.GET("", s.listProducts)
	products.GET(":id", s.getProduct)
	products.PUT(":id", s.updateProduct)
	products.DELETE(":id", s.deleteProduct)

	orders := s.engine.Group("/orders")
	orders.POST("", s.createOrder)
	orders.GET("user/:user_id", s.listUserOrders)
	orders.GET(":order_id/products", s.getOrderProducts)
	orders.PUT(":order_id/add_product/:product_id", s.addProductToOrder)
	orders.DELETE(":order_id/remove_product/:product_id", s.removeProductFromOrder)
	orders.PUT(":order_id/status", s.updateOrderStatus)
}

// @Summary API information
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func (s *Server) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to E-Commerce API",
		"version": "1.0.0",
		"status":  "running",
		"available_endpoints": gin.H{
			"users": gin.H{
				"GET /users":         "Get all users",
				"POST /users":        "Create new user",
				"GET /users/{id}":    "Get user by ID",
				"PUT /users/{id}":    "Update user",
				"DELETE /users/{id}": "Delete user",
			},
			"products": gin.H{
				"GET /products":         "Get all products",
				"POST /products":        "Create new product",
				"GET /products/{id}":    "Get product by ID",
				"PUT /products/{id}":    "Update product",
				"DELETE /products/{id}": "Delete product",
			},
			"orders": gin.H{
				"POST /orders":                       "Create new order",
				"GET /orders/user/{user_id}":         "Get user orders",
				"GET /orders/{order_id}/products":    "Get order products",
				"PUT /orders/{order_id}/add_product/{product_id}":       "Add product to order",
				"DELETE /orders/{order_id}/remove_product/{product_id}": "Remove product from order",
			},
			"extras": gin.H{
				"PUT /orders/{order_id}/status": "Update order status",
				"GET /stats":                    "Get system statistics",
			},
		},
	})
}

// User handlers
type userReq struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

func (r userReq) input() validation.UserInput {
	return validation.UserInput{Name: r.Name, Email: r.Email, Address: r.Address, Phone: r.Phone}
}

// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param input body userReq true "User"
// @Success 201 {object} domain.User
// @Failure 400 {object} map[string]any
// @Failure 409 {object} map[string]string
// @Router /users [post]
func (s *Server) createUser(c *gin.Context) {
	var req userReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.users.Create(c, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} domain.User
// @Router /users [get]
func (s *Server) listUsers(c *gin.Context) {
	list, err := s.users.List(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [get]
func (s *Server) getUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	u, err := s.users.GetByID(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Update user (partial)
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param input body userReq true "Fields to update"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /users/{id} [put]
func (s *Server) updateUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req userReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	u, err := s.users.Update(c, id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// @Summary Delete user with cascade to orders
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /users/{id} [delete]
func (s *Server) deleteUser(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.users.Delete(c, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully deleted user %d", id)})
}

// Product handlers
type productReq struct {
	ProductName   *string  `json:"product_name"`
	Price         *float64 `json:"price"`
	Description   *string  `json:"description"`
	StockQuantity *int64   `json:"stock_quantity"`
	Category      *string  `json:"category"`
}

func (r productReq) input() validation.ProductInput {
	return validation.ProductInput{
		ProductName:   r.ProductName,
		Price:         r.Price,
		Description:   r.Description,
		StockQuantity: r.StockQuantity,
		Category:      r.Category,
	}
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]any
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Create(c, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param category query string false "Exact category match"
// @Param min_price query number false "Min price (inclusive)"
// @Param max_price query number false "Max price (inclusive)"
// @Success 200 {array} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	f.Category = c.Query("category")
	if v := c.Query("min_price"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price filter"})
			return
		}
		f.MinPrice = &x
	}
	if v := c.Query("max_price"); v != "" {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price filter"})
			return
		}
		f.MaxPrice = &x
	}
	list, err := s.products.List(c, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.products.GetByID(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product (partial)
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body productReq true "Fields to update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.products.Update(c, id, req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.products.Delete(c, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Successfully deleted product %d", id)})
}

// Order handlers
type createOrderReq struct {
	UserID *int64  `json:"user_id"`
	Status *string `json:"status"`
}

// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param input body createOrderReq true "Order"
// @Success 201 {object} domain.Order
// @Failure 400 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	o, err := s.orders.Create(c, service.CreateOrderInput{UserID: req.UserID, Status: req.Status})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// @Summary Add product to order
// @Tags orders
// @Produce json
// @Param order_id path int true "Order ID"
// @Param product_id path int true "Product ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{order_id}/add_product/{product_id} [put]
func (s *Server) addProductToOrder(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	productID, err := parseID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.AddProduct(c, orderID, productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary Remove product from order
// @Tags orders
// @Produce json
// @Param order_id path int true "Order ID"
// @Param product_id path int true "Product ID"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{order_id}/remove_product/{product_id} [delete]
func (s *Server) removeProductFromOrder(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	productID, err := parseID(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, err := s.orders.RemoveProduct(c, orderID, productID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary List orders of user, newest first
// @Tags orders
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {array} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/user/{user_id} [get]
func (s *Server) listUserOrders(c *gin.Context) {
	userID, err := parseID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	list, err := s.orders.ListByUser(c, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get products of order with order total
// @Tags orders
// @Produce json
// @Param order_id path int true "Order ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{order_id}/products [get]
func (s *Server) getOrderProducts(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	o, products, err := s.orders.ProductsOf(c, orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":    products,
		"order_total": o.TotalAmount,
	})
}

type updateStatusReq struct {
	Status *string `json:"status"`
}

// @Summary Update order status
// @Tags orders
// @Accept json
// @Produce json
// @Param order_id path int true "Order ID"
// @Param input body updateStatusReq true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{order_id}/status [put]
func (s *Server) updateOrderStatus(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}
	o, err := s.orders.UpdateStatus(c, orderID, *req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// @Summary System statistics
// @Produce json
// @Success 200 {object} map[string]any
// @Router /stats [get]
func (s *Server) getStats(c *gin.Context) {
	stats, err := s.stats.Collect(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"system_stats": stats})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// writeError переводит класс ошибки в HTTP-статус и фиксированную форму тела:
// {"errors": {field: [msgs]}} для валидации, {"error": msg} для остального
func writeError(c *gin.Context, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verrs})
		return
	}
	var serr *service.Error
	if errors.As(err, &serr) {
		c.JSON(statusOf(serr.Kind), gin.H{"error": serr.Message})
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	zap.L().Error("internal error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
