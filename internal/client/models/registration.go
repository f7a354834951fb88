package models

// Service ids a business can sign up for.
const (
	ServicePresence  = "presence"
	ServiceQR        = "qr"
	ServiceItinerary = "itinerary"
	ServiceMessaging = "messaging"
)

// KnownServices lists the valid service ids in display order.
var KnownServices = []string{ServicePresence, ServiceQR, ServiceItinerary, ServiceMessaging}

// Registration is the sign-up form sent to the register endpoint.
type Registration struct {
	Username        string   `json:"username"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	Password2       string   `json:"password2"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	BusinessName    string   `json:"business_name"`
	BusinessType    string   `json:"business_type"`
	BusinessAddress string   `json:"business_address"`
	PhoneNumber     string   `json:"phone_number"`
	ServiceTypes    []string `json:"service_types"`
}

// Credentials is the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
