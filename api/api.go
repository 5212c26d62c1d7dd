package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/blnkfinance/teller"
	"github.com/blnkfinance/teller/api/middleware"
	"github.com/blnkfinance/teller/config"
	"github.com/blnkfinance/teller/internal/apierror"
	"github.com/blnkfinance/teller/internal/notification"
)

type Api struct {
	teller   *teller.Teller
	router   *gin.Engine
	currency string
}

func (a Api) Router() *gin.Engine {
	router := a.router
	router.POST("/accounts", a.CreateAccount)

	router.POST("/sessions", a.Login)
	router.DELETE("/sessions", a.Logout)
	router.GET("/sessions", a.GetSession)

	router.GET("/balance", a.GetBalance)
	router.POST("/deposits", a.Deposit)
	router.POST("/withdrawals", a.Withdraw)
	router.GET("/transactions", a.GetTransactions)
	return a.router
}

func NewAPI(t *teller.Teller) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.Default()
	if conf.Telemetry.Enabled {
		r.Use(otelgin.Middleware(conf.ProjectName))
	}
	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware(conf.Server.SecretKey))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, "server running...")
	})

	return &Api{teller: t, router: r, currency: conf.Currency.Symbol}
}

// respondError writes err with the status its code maps to. Store failures
// are also reported to the configured notifier.
func respondError(c *gin.Context, err error) {
	status := apierror.MapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		notification.NotifyError(err)
	}

	body := gin.H{"error": apierror.Message(err)}
	if apiErr, ok := apierror.As(err); ok {
		body["code"] = apiErr.Code
	}
	c.JSON(status, body)
}
