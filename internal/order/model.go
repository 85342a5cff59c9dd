package order

// StatusCancelled marks orders that must never reach the assistant's
// order summary.
const StatusCancelled = "отменен"

// Order mirrors the shop's order sheet: everything except the ID is
// free-form text, filled by operators or by the assistant's SQL updates.
type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Date     string `json:"date"`
	Customer string `json:"customer"`
	Phone    string `json:"phone"`
	Products string `gorm:"type:text" json:"products"`
	Sum      string `json:"sum"`
	Status   string `json:"status"`
	Payment  string `json:"payment"`
	Delivery string `json:"delivery"`
	Track    string `json:"track"`
}

func (Order) TableName() string { return "orders" }
