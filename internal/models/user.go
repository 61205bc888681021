package models

// User represents a row in the users table.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name" validate:"required,max=64,personname"`
	LastName  string `json:"last_name"  validate:"required,max=64,personname"`
	Email     string `json:"email"      validate:"required,emailshape"`
	Password  string `json:"-"          validate:"required"` // bcrypt hash once stored
}

// UserPatch is the JSON body for POST /users and PUT /users/{id}.
// Nil fields are left untouched on update.
type UserPatch struct {
	FirstName *string `json:"first_name" validate:"required"`
	LastName  *string `json:"last_name"  validate:"required"`
	Email     *string `json:"email"      validate:"required"`
	Password  *string `json:"password"   validate:"required"`
}

func (p UserPatch) Apply(u *User) error {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	return nil
}
