package user

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // never expose hash in JSON
}

// Public is the shape of a user that is safe to hand back to clients.
type Public struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Public() Public {
	return Public{
		Username: u.Username,
		Email:    u.Email,
	}
}
