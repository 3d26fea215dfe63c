package transport

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	UserName string `json:"user_name"`
}

// TokenRequest follows the OAuth2 password form: the username is the email.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoadRequest struct {
	Origin       string  `json:"origin"`
	Destination  string  `json:"destination"`
	MaterialType string  `json:"material_type"`
	Weight       float64 `json:"weight"`
	Description  string  `json:"order_description"`
}
