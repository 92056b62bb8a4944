package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/dmitrijs2005/clinicdesk/internal/server/services"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
}

type PatientService interface {
	List(ctx context.Context, id auth.Identity) ([]*models.Patient, error)
	Create(ctx context.Context, id auth.Identity, in services.PatientInput) (*models.Patient, error)
}

type DashboardService interface {
	Summary(ctx context.Context, id auth.Identity) (*models.DashboardSummary, error)
}

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Pinger reports storage reachability; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Users     UserService
	Patients  PatientService
	Dashboard DashboardService
	Tokens    TokenVerifier
	DB        Pinger
	Logger    logging.Logger
	// DBTimeout bounds each API request's storage work; zero disables it.
	DBTimeout   time.Duration
	CORSOrigins []string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger.With("module", "rest")
	h := &handler{
		users:     d.Users,
		patients:  d.Patients,
		dashboard: d.Dashboard,
		db:        d.DB,
		logger:    logger,
	}

	r := gin.New()
	r.Use(recovery(logger), requestID(), requestLogger(logger), cors(d.CORSOrigins))

	r.GET("/healthz", h.healthz)

	api := r.Group("/api", dbTimeout(d.DBTimeout))

	users := api.Group("/users")
	users.POST("/signup", h.signup)
	users.POST("/login", h.login)

	protected := api.Group("", authGate(d.Tokens))
	protected.GET("/patients", h.listPatients)
	protected.POST("/patients", h.createPatient)
	protected.GET("/dashboard", h.dashboardSummary)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
