package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"p9e.in/towerpro/config"
	"p9e.in/towerpro/middleware"
	"p9e.in/towerpro/models"
)

type loginReq struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
	Role  string    `json:"role"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if config.DB == nil {
		http.Error(w, "sign-in unavailable", http.StatusServiceUnavailable)
		return
	}
	var u models.User
	if err := config.DB.WithContext(r.Context()).Where("phone = ? AND is_active = ?", req.Phone, true).First(&u).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := middleware.GenerateToken(u.ID.String(), u.Role, u.Name, u.Phone)
	if err != nil {
		http.Error(w, "couldn't create token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{
		Token: token,
		User: userPayload{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Phone: u.Phone,
			Role:  u.Role,
		},
	})
}
