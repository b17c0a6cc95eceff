// Package auth serves back office authentication: login, user management and
// the middleware gating the admin API.
package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/aurelab/aurelab-manager/internal/apisrv/httputil"
	"github.com/aurelab/aurelab-manager/internal/auth/jwt"
	"github.com/aurelab/aurelab-manager/internal/auth/pwhash"
	"github.com/aurelab/aurelab-manager/internal/dependency"
	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/go-chi/render"
)

type ctxKey int

const (
	usernameKey ctxKey = iota
	roleKey
)

// Config contains the configuration for the auth server.
type Config struct {
	JWTSecret                string `mapstructure:"jwt_secret"`
	MasterPassword           string `mapstructure:"master_password"`
	PasswordHasherSaltSize   int    `mapstructure:"password_hasher_salt_size"`
	PasswordHasherIterations int    `mapstructure:"password_hasher_iterations"`
	JWTTTL                   string `mapstructure:"jwt_ttl"`
}

// Server implements the auth endpoints and middleware.
type Server struct {
	adminRepository dependency.Admin
	pwhash          *pwhash.PasswordHasher
	jwtAuth         *jwtauth.JWTAuth
	jwtTTL          time.Duration
	c               *Config
	masterHash      string
}

// New creates a new auth server.
func New(c *Config, ar dependency.Admin) (*Server, error) {
	ph, err := pwhash.New(c.PasswordHasherSaltSize, c.PasswordHasherIterations)
	if err != nil {
		return nil, err
	}
	hash, err := ph.HashPassword(c.MasterPassword)
	if err != nil {
		return nil, err
	}
	if err := ph.Validate(c.MasterPassword, hash); err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(c.JWTTTL)
	if err != nil {
		return nil, err
	}

	return &Server{
		adminRepository: ar,
		pwhash:          ph,
		jwtAuth:         jwtauth.New("HS256", []byte(c.JWTSecret), nil),
		jwtTTL:          ttl,
		c:               c,
		masterHash:      hash,
	}, nil
}

// EnsureRootUser upserts the bootstrap superadmin so a fresh deployment can
// log in with the configured master password.
func (s *Server) EnsureRootUser(ctx context.Context) error {
	return s.adminRepository.AddUser(ctx, "root", "", s.masterHash, entity.RoleSuperAdmin)
}

// Routes mounts the auth endpoints. User management is superadmin only.
func (s *Server) Routes(r chi.Router) {
	r.Post("/login", s.login)
	r.Group(func(r chi.Router) {
		r.Use(s.WithAuth)
		r.Post("/change-password", s.changePassword)
		r.Group(func(r chi.Router) {
			r.Use(s.WithRole(entity.RoleSuperAdmin))
			r.Get("/users", s.listUsers)
			r.Post("/users", s.createUser)
			r.Delete("/users/{username}", s.deleteUser)
			r.Post("/users/{username}/role", s.changeRole)
		})
	})
}

type loginRequest struct {
	Username string `json:"username" valid:"required"`
	Password string `json:"password" valid:"required"`
}

func (lr *loginRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(lr)
	return err
}

type tokenResponse struct {
	AuthToken string `json:"authToken"`
}

func (tr *tokenResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// login issues a JWT carrying the user's role verified against the database.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req := &loginRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	username := strings.ToLower(req.Username)

	user, err := s.adminRepository.GetUserByUsername(r.Context(), username)
	if err != nil {
		render.Render(w, r, httputil.ErrUnauthorized)
		return
	}

	if err := s.pwhash.Validate(req.Password, user.PasswordHash); err != nil {
		render.Render(w, r, httputil.ErrUnauthorized)
		return
	}

	token, err := jwt.NewTokenWithRole(s.jwtAuth, s.jwtTTL, username, string(user.Role))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.Render(w, r, &tokenResponse{AuthToken: token})
}

type createUserRequest struct {
	Username string `json:"username" valid:"required"`
	Email    string `json:"email" valid:"email,optional"`
	Password string `json:"password" valid:"required"`
	Role     string `json:"role" valid:"required"`
}

func (cur *createUserRequest) Bind(r *http.Request) error {
	if _, err := govalidator.ValidateStruct(cur); err != nil {
		return err
	}
	if !entity.ValidUserRoles[entity.UserRole(cur.Role)] {
		return gerr.ErrInvalidRole(cur.Role)
	}
	return nil
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	req := &createUserRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	username := strings.ToLower(req.Username)

	pwHash, err := s.pwhash.HashPassword(req.Password)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	err = s.adminRepository.AddUser(r.Context(), username, req.Email, pwHash, entity.UserRole(req.Role))
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]string{"username": username})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	username := strings.ToLower(chi.URLParam(r, "username"))
	if username == UsernameFromContext(r.Context()) {
		render.Render(w, r, httputil.ErrInvalidRequest(gerr.ErrSelfDelete))
		return
	}
	if err := s.adminRepository.DeleteUser(r.Context(), username); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type changePasswordRequest struct {
	Username        string `json:"username" valid:"required"`
	CurrentPassword string `json:"currentPassword" valid:"required"`
	NewPassword     string `json:"newPassword" valid:"required"`
}

func (cpr *changePasswordRequest) Bind(r *http.Request) error {
	_, err := govalidator.ValidateStruct(cpr)
	return err
}

// changePassword changes the password of the user. Non-superadmins can only
// change their own, and the master password is accepted in place of the
// current one.
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	req := &changePasswordRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	username := strings.ToLower(req.Username)

	caller := UsernameFromContext(r.Context())
	role := RoleFromContext(r.Context())
	if role != entity.RoleSuperAdmin && caller != username {
		render.Render(w, r, httputil.ErrForbidden)
		return
	}

	currentHash, err := s.adminRepository.PasswordHashByUsername(r.Context(), username)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}

	if err := s.pwhash.Validate(req.CurrentPassword, s.masterHash); err != nil {
		if err := s.pwhash.Validate(req.CurrentPassword, currentHash); err != nil {
			render.Render(w, r, httputil.ErrUnauthorized)
			return
		}
	}

	newHash, err := s.pwhash.HashPassword(req.NewPassword)
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	if err := s.adminRepository.ChangePassword(r.Context(), username, newHash); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type changeRoleRequest struct {
	Role string `json:"role" valid:"required"`
}

func (crr *changeRoleRequest) Bind(r *http.Request) error {
	if _, err := govalidator.ValidateStruct(crr); err != nil {
		return err
	}
	if !entity.ValidUserRoles[entity.UserRole(crr.Role)] {
		return gerr.ErrInvalidRole(crr.Role)
	}
	return nil
}

func (s *Server) changeRole(w http.ResponseWriter, r *http.Request) {
	req := &changeRoleRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, httputil.ErrInvalidRequest(err))
		return
	}
	username := strings.ToLower(chi.URLParam(r, "username"))
	if err := s.adminRepository.ChangeRole(r.Context(), username, entity.UserRole(req.Role)); err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	render.NoContent(w, r)
}

type userResponse struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ur *userResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.adminRepository.ListUsers(r.Context())
	if err != nil {
		httputil.RenderErr(w, r, err)
		return
	}
	list := []render.Renderer{}
	for _, u := range users {
		list = append(list, &userResponse{
			Username:  u.Username,
			Email:     u.Email,
			Role:      string(u.Role),
			CreatedAt: u.CreatedAt,
		})
	}
	render.RenderList(w, r, list)
}

// WithAuth verifies the bearer token and stores the verified subject and role
// in the request context.
func (s *Server) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		subject, role, err := jwt.VerifyToken(s.jwtAuth, token)
		if err != nil {
			render.Render(w, r, httputil.ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, subject)
		ctx = context.WithValue(ctx, roleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithRole allows the request only when the verified token role is one of the
// given roles.
func (s *Server) WithRole(roles ...entity.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[entity.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[RoleFromContext(r.Context())] {
				render.Render(w, r, httputil.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UsernameFromContext returns the verified token subject, empty if absent.
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(usernameKey).(string)
	return username
}

// RoleFromContext returns the verified token role, empty if absent.
func RoleFromContext(ctx context.Context) entity.UserRole {
	role, _ := ctx.Value(roleKey).(string)
	return entity.UserRole(role)
}
