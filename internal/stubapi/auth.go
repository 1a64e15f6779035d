package stubapi

import (
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	ID            string
	FirstName     string
	LastName      string
	Phone         string
	Email         string
	PasswordHash  []byte
	PhoneVerified bool
}

var phonePattern = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone_number"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Заполните все обязательные поля")
		return
	}
	if !phonePattern.MatchString(req.Phone) {
		writeError(w, http.StatusBadRequest, "Некорректный номер телефона")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Пароль должен содержать не менее 8 символов")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Не удалось сохранить пароль")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[req.Phone]; exists {
		writeError(w, http.StatusConflict, "Пользователь с таким номером уже существует")
		return
	}
	u := &user{
		ID:           uuid.New().String(),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: hash,
	}
	s.users[u.Phone] = u
	s.codeSentAt[u.Phone] = s.now()
	s.record("Регистрация пользователя", u.FirstName+" "+u.LastName)

	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":      u.ID,
		"phone_number": u.Phone,
	})
}

// CheckPassword reports whether password matches the stored hash for phone.
func (s *Server) CheckPassword(phone, password string) bool {
	s.mu.Lock()
	u, ok := s.users[phone]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)) == nil
}

type phoneRequest struct {
	Phone string `json:"phone_number"`
	Code  string `json:"verification_code"`
}

func (s *Server) handleSendCode(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decode(r, &req); err != nil || !phonePattern.MatchString(req.Phone) {
		writeError(w, http.StatusBadRequest, "Некорректный номер телефона")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.codeSentAt[req.Phone]; ok {
		if wait := ResendInterval - s.now().Sub(last); wait > 0 {
			secs := int(math.Ceil(wait.Seconds()))
			writeError(w, http.StatusTooManyRequests, fmt.Sprintf("Повторная отправка возможна через %d с", secs))
			return
		}
	}
	s.codeSentAt[req.Phone] = s.now()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Код отправлен"})
}

func (s *Server) handleVerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if req.Code != DevCode {
		writeError(w, http.StatusBadRequest, "Неверный код")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[req.Phone]; ok {
		u.PhoneVerified = true
	}
	writeJSON(w, http.StatusOK, map[string]any{"verified": true})
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}
	if at := strings.Index(req.Email, "@"); at <= 0 || at == len(req.Email)-1 {
		writeError(w, http.StatusBadRequest, "Некорректный email")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Письмо отправлено"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Некорректный запрос")
		return
	}

	s.mu.Lock()
	_, ok := s.users[req.Phone]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Пользователь с таким номером не найден")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Инструкции отправлены"})
}
