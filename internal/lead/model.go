package lead

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Lead is one row of the leads table. The table serves two roles, as in
// the CRM this backend fronts: rows with a Login are API users who can
// authenticate, rows without one are dialog clients whose profile and
// conversation history the assistant maintains.
type Lead struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      *string   `json:"name"`
	Contact   *string   `json:"contact"`
	Log       string    `gorm:"type:text" json:"log"`
	Login     *string   `gorm:"uniqueIndex" json:"login,omitempty"`
	Password  string    `gorm:"size:128" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (Lead) TableName() string { return "leads" }

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
