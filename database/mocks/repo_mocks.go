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

package mocks

import (
	"context"

	"github.com/blnkfinance/teller/model"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) Initialize(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDataSource) Load(ctx context.Context) (model.Ledger, error) {
	args := m.Called(ctx)
	ledger, _ := args.Get(0).(model.Ledger)
	return ledger, args.Error(1)
}

func (m *MockDataSource) Save(ctx context.Context, ledger model.Ledger) error {
	args := m.Called(ctx, ledger)
	return args.Error(0)
}

func (m *MockDataSource) Close() error {
	args := m.Called()
	return args.Error(0)
}
