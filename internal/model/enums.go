package model

import (
	"fmt"
	"strings"
)

// Role identifies which dashboard a user may open.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus is the employment status of a user. Fired users keep their
// account but are denied every authenticated view.
type UserStatus string

const (
	UserStatusActive UserStatus = "active"
	UserStatusFired  UserStatus = "fired"
)

// Valid reports whether s is a known user status.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusFired
}

// ShopStatus is the operating status of a shop.
type ShopStatus string

const (
	ShopStatusActive ShopStatus = "active"
	ShopStatusClosed ShopStatus = "closed"
)

// Valid reports whether s is a known shop status.
func (s ShopStatus) Valid() bool {
	return s == ShopStatusActive || s == ShopStatusClosed
}

// Activity tags the business line a revenue record came from.
type Activity string

const (
	ActivityWiFiHotspot     Activity = "WiFi Hotspot"
	ActivityCyberCafe       Activity = "Cyber Cafe Services"
	ActivityMPesaCommission Activity = "M-Pesa Commission"
	ActivitySIMRegistration Activity = "SIM Registration & Replacement"
	ActivityStationery      Activity = "Stationery"
)

// Activities lists every revenue activity in display order.
var Activities = []Activity{
	ActivityWiFiHotspot,
	ActivityCyberCafe,
	ActivityMPesaCommission,
	ActivitySIMRegistration,
	ActivityStationery,
}

// Valid reports whether a is one of Activities.
func (a Activity) Valid() bool {
	for _, known := range Activities {
		if a == known {
			return true
		}
	}
	return false
}

// ParseActivity returns the activity named s. Matching is exact apart from
// surrounding whitespace so that typos never create new activities.
func ParseActivity(s string) (Activity, error) {
	a := Activity(strings.TrimSpace(s))
	if !a.Valid() {
		return "", fmt.Errorf("unknown activity %q", s)
	}
	return a, nil
}

// Category tags what an expense was spent on.
type Category string

const (
	CategorySupplies  Category = "Supplies"
	CategoryLogistics Category = "Logistics"

	CategoryRent      Category = "Rent"
	CategoryInternet  Category = "Internet Subscription"
	CategoryUtilities Category = "Utilities"
)

// CategoryFamily groups the categories available to one role.
type CategoryFamily []Category

var (
	// UserCategories are the categories shop attendants record day to day.
	UserCategories = CategoryFamily{CategorySupplies, CategoryLogistics}
	// AdminCategories are the overheads only an admin records.
	AdminCategories = CategoryFamily{CategoryRent, CategoryInternet, CategoryUtilities}
)

// Contains reports whether c belongs to the family.
func (f CategoryFamily) Contains(c Category) bool {
	for _, known := range f {
		if c == known {
			return true
		}
	}
	return false
}

// Parse returns the category named s if it belongs to the family.
func (f CategoryFamily) Parse(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !f.Contains(c) {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// CategoriesFor returns the category family a role records expenses with.
func CategoriesFor(role Role) CategoryFamily {
	if role == RoleAdmin {
		return AdminCategories
	}
	return UserCategories
}

// Valid reports whether c belongs to any family.
func (c Category) Valid() bool {
	return UserCategories.Contains(c) || AdminCategories.Contains(c)
}

// ParseCategory returns the category named s from either family.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
