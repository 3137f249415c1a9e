package domain

import "time"

type ClientType string

const (
	ClientClinic       ClientType = "clinic"
	ClientProfessional ClientType = "professional"
)

func (t ClientType) Valid() bool {
	switch t {
	case ClientClinic, ClientProfessional:
		return true
	}
	return false
}

// Client is a clinic or an independent professional ordering work from the lab
type Client struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"size:200;index;not null" json:"name"`
	Type      ClientType `gorm:"size:20" json:"type"`
	Address   string     `gorm:"size:500" json:"address"`
	Phone     string     `gorm:"size:50" json:"phone"`
	Email     string     `gorm:"size:200" json:"email"`
	Notes     string     `gorm:"type:text" json:"notes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Client) TableName() string {
	return "client"
}

// Professional is a dentist, optionally attached to a client clinic
type Professional struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:200;index;not null" json:"name"`
	ClientID  *int64    `gorm:"index" json:"client_id"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Email     string    `gorm:"size:200" json:"email"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Professional) TableName() string {
	return "professional"
}
