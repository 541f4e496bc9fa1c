// Package mocks provides test doubles for the analysis service.
package mocks

import (
	"context"

	places "github.com/sells-group/visibility-cli/internal/places"
	mock "github.com/stretchr/testify/mock"
)

// MockLooker is a mock type for the Looker interface.
type MockLooker struct {
	mock.Mock
}

// Lookup provides a mock function with given fields: ctx, name, city
func (_m *MockLooker) Lookup(ctx context.Context, name string, city string) (*places.Result, error) {
	ret := _m.Called(ctx, name, city)

	if len(ret) == 0 {
		panic("no return value specified for Lookup")
	}

	var r0 *places.Result
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (*places.Result, error)); ok {
		return rf(ctx, name, city)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *places.Result); ok {
		r0 = rf(ctx, name, city)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*places.Result)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, name, city)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockLooker creates a new instance of MockLooker. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockLooker(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLooker {
	mock := &MockLooker{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
