// Package mocks provides test doubles for the amap client.
package mocks

import (
	"context"

	amap "github.com/sells-group/rescue-router/pkg/amap"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// Geocode provides a mock function with given fields: ctx, address, city
func (_m *MockClient) Geocode(ctx context.Context, address string, city string) (*amap.LngLat, error) {
	ret := _m.Called(ctx, address, city)

	if len(ret) == 0 {
		panic("no return value specified for Geocode")
	}

	var r0 *amap.LngLat
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *amap.LngLat); ok {
		r0 = rf(ctx, address, city)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*amap.LngLat)
	}

	return r0, ret.Error(1)
}

// AddressDetail provides a mock function with given fields: ctx, address, city
func (_m *MockClient) AddressDetail(ctx context.Context, address string, city string) ([]amap.Geocode, error) {
	ret := _m.Called(ctx, address, city)

	if len(ret) == 0 {
		panic("no return value specified for AddressDetail")
	}

	var r0 []amap.Geocode
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]amap.Geocode)
	}

	return r0, ret.Error(1)
}

// PlaceAround provides a mock function with given fields: ctx, req
func (_m *MockClient) PlaceAround(ctx context.Context, req amap.PlaceAroundRequest) (*amap.PlaceAroundResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for PlaceAround")
	}

	var r0 *amap.PlaceAroundResponse
	if rf, ok := ret.Get(0).(func(context.Context, amap.PlaceAroundRequest) *amap.PlaceAroundResponse); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*amap.PlaceAroundResponse)
	}

	return r0, ret.Error(1)
}

// Distance provides a mock function with given fields: ctx, origins, destination
func (_m *MockClient) Distance(ctx context.Context, origins []amap.LngLat, destination amap.LngLat) ([]amap.DistanceResult, error) {
	ret := _m.Called(ctx, origins, destination)

	if len(ret) == 0 {
		panic("no return value specified for Distance")
	}

	var r0 []amap.DistanceResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]amap.DistanceResult)
	}

	return r0, ret.Error(1)
}

// Driving provides a mock function with given fields: ctx, req
func (_m *MockClient) Driving(ctx context.Context, req amap.DrivingRequest) (*amap.DrivingResponse, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for Driving")
	}

	var r0 *amap.DrivingResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*amap.DrivingResponse)
	}

	return r0, ret.Error(1)
}

// NewMockClient creates a new instance of MockClient and registers cleanup.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ amap.Client = (*MockClient)(nil)
