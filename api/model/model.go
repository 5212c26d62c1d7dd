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
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ValidateCreateAccount only bounds the account number. Emptiness,
// duplicates and PIN format are decided by the teller so that its messages
// reach the caller unchanged.
func (a *CreateAccount) ValidateCreateAccount() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.AccountNumber, validation.RuneLength(0, MaxAccountNumberLength)),
	)
}

func (l *Login) ValidateLogin() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.AccountNumber, validation.Required),
		validation.Field(&l.Pin, validation.Required),
	)
}

// ValidateAmountRequest checks presence only. The amount must not be
// rendered here: validation.Required goes through driver.Valuer, which
// expands the exponent.
func (r *AmountRequest) ValidateAmountRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Amount, validation.By(amountPresent)),
	)
}

func amountPresent(value interface{}) error {
	if d, _ := value.(*decimal.Decimal); d == nil {
		return validation.ErrRequired
	}
	return nil
}
