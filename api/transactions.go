package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/teller"
	model2 "github.com/blnkfinance/teller/api/model"
)

func (a Api) Deposit(c *gin.Context) {
	a.moveFunds(c, a.teller.Deposit, teller.DepositedMessage)
}

func (a Api) Withdraw(c *gin.Context) {
	a.moveFunds(c, a.teller.Withdraw, teller.WithdrawnMessage)
}

func (a Api) moveFunds(c *gin.Context, apply func(context.Context, int64) (int64, error), message func(string, int64) string) {
	if _, ok := a.teller.Session(); !ok {
		respondError(c, teller.ErrNoSession)
		return
	}

	var req model2.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := req.ValidateAmountRequest(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": err.Error()})
		return
	}

	amount, err := teller.AmountFromDecimal(*req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	balance, err := apply(c.Request.Context(), amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"message": message(a.currency, amount),
	})
}

func (a Api) GetTransactions(c *gin.Context) {
	history, err := a.teller.TransactionHistory()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"transactions": history,
		"message":      teller.HistoryMessage(history),
	})
}
