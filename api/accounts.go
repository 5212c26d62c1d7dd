package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/teller"
	model2 "github.com/blnkfinance/teller/api/model"
)

func (a Api) CreateAccount(c *gin.Context) {
	var newAccount model2.CreateAccount
	if err := c.ShouldBindJSON(&newAccount); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := newAccount.ValidateCreateAccount()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	if err := a.teller.Register(c.Request.Context(), newAccount.AccountNumber, newAccount.Pin); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"account_number": newAccount.AccountNumber,
		"message":        teller.RegisteredMessage,
	})
}
