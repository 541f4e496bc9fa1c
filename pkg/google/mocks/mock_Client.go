// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	google "github.com/sells-group/visibility-cli/pkg/google"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// TextSearch provides a mock function with given fields: ctx, query
func (_m *MockClient) TextSearch(ctx context.Context, query string) (*google.SearchResponse, error) {
	ret := _m.Called(ctx, query)

	if len(ret) == 0 {
		panic("no return value specified for TextSearch")
	}

	var r0 *google.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*google.SearchResponse, error)); ok {
		return rf(ctx, query)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *google.SearchResponse); ok {
		r0 = rf(ctx, query)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.SearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, query)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Details provides a mock function with given fields: ctx, placeID
func (_m *MockClient) Details(ctx context.Context, placeID string) (*google.PlaceDetails, error) {
	ret := _m.Called(ctx, placeID)

	if len(ret) == 0 {
		panic("no return value specified for Details")
	}

	var r0 *google.PlaceDetails
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*google.PlaceDetails, error)); ok {
		return rf(ctx, placeID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *google.PlaceDetails); ok {
		r0 = rf(ctx, placeID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.PlaceDetails)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, placeID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NearbySearch provides a mock function with given fields: ctx, req
func (_m *MockClient) NearbySearch(ctx context.Context, req google.NearbyRequest) (*google.SearchResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for NearbySearch")
	}

	var r0 *google.SearchResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, google.NearbyRequest) (*google.SearchResponse, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, google.NearbyRequest) *google.SearchResponse); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*google.SearchResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, google.NearbyRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
