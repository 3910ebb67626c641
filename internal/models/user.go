package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const PlanFree = "free"

type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	GoogleID       string             `bson:"googleId,omitempty" json:"-"`
	ProfilePicture string             `bson:"profilePicture,omitempty" json:"profilePicture,omitempty"`
	IsVerified     bool               `bson:"isVerified" json:"isVerified"`

	Credits             int        `bson:"credits" json:"credits"`
	SubscriptionPlan    string     `bson:"subscriptionPlan" json:"subscriptionPlan"`
	SubscriptionActive  bool       `bson:"subscriptionActive" json:"subscriptionActive"`
	SubscriptionEndDate *time.Time `bson:"subscriptionEndDate,omitempty" json:"subscriptionEndDate,omitempty"`
	TotalInterviews     int        `bson:"totalInterviews" json:"totalInterviews"`
	CreditedOrders      []string   `bson:"creditedOrders,omitempty" json:"-"`

	LastLogin *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// Subscription is the set of fields a verified payment updates on an account.
type Subscription struct {
	OrderID string
	Plan    string
	Credits int
	EndDate time.Time
}
