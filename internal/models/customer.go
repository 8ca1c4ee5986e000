package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Customer struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Email         string             `json:"email" bson:"email"`
	Phone         string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Company       string             `json:"company,omitempty" bson:"company,omitempty"`
	Status        string             `json:"status" bson:"status"` // "Active" or "Inactive"
	TotalSpent    float64            `json:"totalSpent" bson:"totalSpent"`
	LastOrderDate time.Time          `json:"lastOrderDate" bson:"lastOrderDate"`
	AssignedTo    primitive.ObjectID `json:"assignedTo" bson:"assignedTo"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}

type CreateCustomerRequest struct {
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Phone      string  `json:"phone"`
	Company    string  `json:"company"`
	Status     string  `json:"status"`
	TotalSpent float64 `json:"totalSpent"`
}

type UpdateCustomerRequest struct {
	Name       *string  `json:"name"`
	Email      *string  `json:"email"`
	Phone      *string  `json:"phone"`
	Company    *string  `json:"company"`
	Status     *string  `json:"status"`
	TotalSpent *float64 `json:"totalSpent"`
}
