package auth

import "time"

// User is the durable account record. RefreshToken is the single active
// session slot: at most one refresh token is valid per account at a time.
type User struct {
	ID                    string
	FullName              string
	Username              string
	Email                 string
	PasswordHash          string
	RefreshToken          string
	RefreshTokenExpiresAt *time.Time
	AvatarURL             string
	CoverImageURL         string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Profile is the sanitized projection returned to callers. It never carries
// the password hash or the stored refresh token.
type Profile struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullName"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	AvatarURL     string    `json:"avatarUrl"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		FullName:      u.FullName,
		Username:      u.Username,
		Email:         u.Email,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

// TokenPair is an access/refresh pair minted together on login or rotation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
