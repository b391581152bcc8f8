package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the privilege level of an identity.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var roleRank = map[Role]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// Identity is the public view of an account, shared by the API, the
// session core and the leaderboard.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"fullname"`
	Role        Role   `json:"role"`
	Mobile      string `json:"mobile,omitempty"`
}

// WellFormed reports whether the identity carries the fields every
// consumer relies on.
func (i *Identity) WellFormed() bool {
	return i != nil && i.ID != "" && i.Email != "" && i.Role.Valid()
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// User represents a registered account in the users collection
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	FullName     string             `bson:"fullname" json:"fullname"`
	Mobile       string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Role         Role               `bson:"role" json:"role"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ToIdentity returns the public identity for u.
func (u *User) ToIdentity() Identity {
	return Identity{
		ID:          u.ID.Hex(),
		Email:       u.Email,
		DisplayName: u.FullName,
		Role:        u.Role,
		Mobile:      u.Mobile,
	}
}

// RegisterRequest represents the payload for creating an account
type RegisterRequest struct {
	FullName        string `json:"fullname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Mobile          string `json:"mobile,omitempty"`
	Role            Role   `json:"role,omitempty"`
}

// LoginRequest represents the payload for password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after a successful login
type AuthResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// RegisterResponse represents the response after a successful registration
type RegisterResponse struct {
	User Identity `json:"user"`
}
