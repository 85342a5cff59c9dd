package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"astra/internal/order"
)

type OrderRequest struct {
	Date     *string `json:"date"`
	Customer *string `json:"customer"`
	Phone    *string `json:"phone"`
	Products *string `json:"products"`
	Sum      *string `json:"sum"`
	Status   *string `json:"status"`
	Payment  *string `json:"payment"`
	Delivery *string `json:"delivery"`
	Track    *string `json:"track"`
}

func (r *OrderRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	set := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	set("date", r.Date)
	set("customer", r.Customer)
	set("phone", r.Phone)
	set("products", r.Products)
	set("sum", r.Sum)
	set("status", r.Status)
	set("payment", r.Payment)
	set("delivery", r.Delivery)
	set("track", r.Track)
	return fields
}

func orderPayload(o *order.Order) gin.H {
	return gin.H{
		"id":       o.ID,
		"date":     o.Date,
		"customer": o.Customer,
		"phone":    o.Phone,
		"products": o.Products,
		"sum":      o.Sum,
		"status":   o.Status,
		"payment":  o.Payment,
		"delivery": o.Delivery,
		"track":    o.Track,
	}
}

// POST /order
func CreateOrderHandler(orders *order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		o := order.Order{}
		deref := func(v *string) string {
			if v == nil {
				return ""
			}
			return *v
		}
		o.Date = deref(req.Date)
		o.Customer = deref(req.Customer)
		o.Phone = deref(req.Phone)
		o.Products = deref(req.Products)
		o.Sum = deref(req.Sum)
		o.Status = deref(req.Status)
		o.Payment = deref(req.Payment)
		o.Delivery = deref(req.Delivery)
		o.Track = deref(req.Track)
		if err := orders.Create(c.Request.Context(), &o); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Create error"}})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": o.ID})
	}
}

// GET /order
func ListOrdersHandler(orders *order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		all, err := orders.List(c.Request.Context(), offset, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "List error"}})
			return
		}
		result := make([]gin.H, 0, len(all))
		for i := range all {
			result = append(result, orderPayload(&all[i]))
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /order/:id
func GetOrderHandler(orders *order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		o, err := orders.Get(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Order not found"}})
			return
		}
		c.JSON(http.StatusOK, orderPayload(o))
	}
}

// PUT /order/:id
func UpdateOrderHandler(orders *order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		var req OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		fields := req.fields()
		if len(fields) == 0 {
			o, err := orders.Get(c.Request.Context(), id)
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Order not found"}})
				return
			}
			c.JSON(http.StatusOK, orderPayload(o))
			return
		}
		o, err := orders.Update(c.Request.Context(), id, fields)
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Order not found"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Update error"}})
			return
		}
		c.JSON(http.StatusOK, orderPayload(o))
	}
}

// DELETE /order/:id
func DeleteOrderHandler(orders *order.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c, "id")
		if !ok {
			return
		}
		if err := orders.Delete(c.Request.Context(), id); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Order not found"}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Delete error"}})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
