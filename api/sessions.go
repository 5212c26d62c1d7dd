package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/teller"
	model2 "github.com/blnkfinance/teller/api/model"
)

func (a Api) Login(c *gin.Context) {
	var credentials model2.Login
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := credentials.ValidateLogin(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	session, err := a.teller.Authenticate(c.Request.Context(), credentials.AccountNumber, credentials.Pin)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a Api) GetSession(c *gin.Context) {
	session, ok := a.teller.Session()
	if !ok {
		respondError(c, teller.ErrNoSession)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (a Api) Logout(c *gin.Context) {
	a.teller.Logout()
	c.JSON(http.StatusOK, gin.H{"message": teller.LoggedOutMessage})
}
