package model

// User is the profile returned by the login endpoint.
// ID doubles as the medical profile id used in every notes path.
type User struct {
	ID             string `json:"_id" yaml:"id"`
	RoleID         string `json:"roleId" yaml:"role_id"`
	ProfileImageID string `json:"profileImageId" yaml:"profile_image_id"`
	FullName       string `json:"fullName" yaml:"full_name"`
	Email          string `json:"email" yaml:"email"`
	FirstName      string `json:"firstName" yaml:"first_name"`
	LastName       string `json:"lastName" yaml:"last_name"`
	RoleName       string `json:"roleName" yaml:"role_name"`
}

// LoginRequest is the body of the authenticate-by-signup-code-or-email call.
// Exactly one of Email or SignUpCode is set; Password carries the 4-digit PIN.
type LoginRequest struct {
	Email      *string `json:"email,omitempty"`
	Password   string  `json:"password"`
	SignUpCode *string `json:"signUpCode,omitempty"`
}

// EmailLogin builds a login request for the email + PIN flow.
func EmailLogin(email, pin string) LoginRequest {
	return LoginRequest{Email: &email, Password: pin}
}

// CodeLogin builds a login request for the signup code + PIN flow.
func CodeLogin(code, pin string) LoginRequest {
	return LoginRequest{SignUpCode: &code, Password: pin}
}

// LoginData is the data payload of a successful login.
type LoginData struct {
	Authorization string `json:"authorization"`
	User          User   `json:"user"`
}
