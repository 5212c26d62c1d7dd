/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"github.com/shopspring/decimal"
)

// MaxAccountNumberLength matches the accounts.account_number column.
const MaxAccountNumberLength = 64

type CreateAccount struct {
	AccountNumber string `json:"account_number"`
	Pin           string `json:"pin"`
}

type Login struct {
	AccountNumber string `json:"account_number"`
	Pin           string `json:"pin"`
}

// AmountRequest carries a deposit or withdrawal. Amount accepts JSON
// numbers and numeric strings.
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}
