package rest

import (
	"net/http"

	"github.com/dmitrijs2005/clinicdesk/internal/common"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/dmitrijs2005/clinicdesk/internal/server/services"
	"github.com/gin-gonic/gin"
)

type handler struct {
	users     UserService
	patients  PatientService
	dashboard DashboardService
	db        Pinger
	logger    logging.Logger
}

type signupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	FullName string `json:"fullName" validate:"required_without=Email"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

// patientRequest has no owner field; a client-sent doctorId is dropped.
type patientRequest struct {
	FullName string  `json:"fullName" validate:"required"`
	Phone    string  `json:"phone" validate:"required"`
	Age      flexInt `json:"age"`
	Gender   string  `json:"gender" validate:"required"`
	Address  *string `json:"address"`
}

type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

func newUserResponse(r *services.AuthResult) userResponse {
	return userResponse{ID: r.User.ID, FullName: r.User.FullName, Email: r.User.Email, Token: r.Token}
}

func (h *handler) signup(c *gin.Context) {
	var req signupRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	res, err := h.users.Signup(c.Request.Context(), services.SignupInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	requestLog(c).Info(c.Request.Context(), "user registered", "user_id", res.User.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": newUserResponse(res)})
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	res, err := h.users.Login(c.Request.Context(), services.LoginInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": newUserResponse(res)})
}

func (h *handler) listPatients(c *gin.Context) {
	id, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		writeError(c, common.ErrUnauthenticated)
		return
	}

	list, err := h.patients.List(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []*models.Patient{}
	}

	c.JSON(http.StatusOK, gin.H{"patients": list})
}

func (h *handler) createPatient(c *gin.Context) {
	id, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		writeError(c, common.ErrUnauthenticated)
		return
	}

	var req patientRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	p, err := h.patients.Create(c.Request.Context(), id, services.PatientInput{
		FullName: req.FullName,
		Phone:    req.Phone,
		Age:      req.Age.Ptr(),
		Gender:   req.Gender,
		Address:  req.Address,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"patient": p})
}

func (h *handler) dashboardSummary(c *gin.Context) {
	id, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		writeError(c, common.ErrUnauthenticated)
		return
	}

	s, err := h.dashboard.Summary(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}

func (h *handler) healthz(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		requestLog(c).Warn(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
