package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/teller"
)

func (a Api) GetBalance(c *gin.Context) {
	balance, err := a.teller.CurrentBalance()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"display": teller.BalanceMessage(a.currency, balance),
	})
}
