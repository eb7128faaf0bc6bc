package models

import "strconv"

type UserRole string

const (
	UserRoleCustomer     UserRole = "Customer"
	UserRoleSiteAdmin    UserRole = "SiteAdmin"
	UserRoleSiteSecurity UserRole = "SiteSecurity"
)

// User is the podcore account record. Podcore owns every field; podgate only
// reads it and submits partial updates for the mutable subset (name, email,
// flat number, address). Phone and the locker access codes never change from
// this side.
type User struct {
	ID          int64    `json:"id"`
	Name        string   `json:"user_name"`
	Phone       string   `json:"user_phone"`
	Email       string   `json:"user_email"`
	Address     string   `json:"user_address"`
	FlatNo      string   `json:"user_flatno"`
	Role        UserRole `json:"user_type"`
	DropCode    string   `json:"user_dropcode"`
	PickupCode  string   `json:"user_pickupcode"`
	CreditLimit string   `json:"user_credit_limit"`
	CreditUsed  string   `json:"user_credit_used"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// AvailableCredit returns credit limit minus credit used. Podcore serializes
// both as decimal strings; unparseable values count as zero.
func (u User) AvailableCredit() float64 {
	limit, _ := strconv.ParseFloat(u.CreditLimit, 64)
	used, _ := strconv.ParseFloat(u.CreditUsed, 64)
	return limit - used
}

// NewUser is the registration payload a site admin submits for their
// location. Podcore assigns the id and the locker access codes.
type NewUser struct {
	Name       string   `json:"user_name"`
	Email      string   `json:"user_email"`
	Phone      string   `json:"user_phone"`
	Address    string   `json:"user_address"`
	FlatNo     string   `json:"user_flatno"`
	Role       UserRole `json:"user_type"`
	LocationID string   `json:"location_id,omitempty"`
}

// UserPatch carries the client-mutable profile fields. Nil means "leave as is".
type UserPatch struct {
	Name    *string `json:"user_name,omitempty"`
	Email   *string `json:"user_email,omitempty"`
	Address *string `json:"user_address,omitempty"`
	FlatNo  *string `json:"user_flatno,omitempty"`
}

func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Address == nil && p.FlatNo == nil
}
