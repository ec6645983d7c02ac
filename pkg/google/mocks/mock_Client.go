// Package mocks provides test doubles for the google client.
package mocks

import (
	"context"

	google "github.com/sells-group/directory-enrich/pkg/google"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// TextSearch provides a mock function with given fields: ctx, query
func (_m *MockClient) TextSearch(ctx context.Context, query string) (*google.TextSearchResponse, error) {
	ret := _m.Called(ctx, query)

	if len(ret) == 0 {
		panic("no return value specified for TextSearch")
	}

	var r0 *google.TextSearchResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*google.TextSearchResponse)
	}
	return r0, ret.Error(1)
}

// PhotoMedia provides a mock function with given fields: ctx, photoName, maxWidthPx
func (_m *MockClient) PhotoMedia(ctx context.Context, photoName string, maxWidthPx int) (*google.PhotoMediaResponse, error) {
	ret := _m.Called(ctx, photoName, maxWidthPx)

	if len(ret) == 0 {
		panic("no return value specified for PhotoMedia")
	}

	var r0 *google.PhotoMediaResponse
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*google.PhotoMediaResponse)
	}
	return r0, ret.Error(1)
}

// PhotoReferenceURL provides a mock function with given fields: photoName, maxWidthPx
func (_m *MockClient) PhotoReferenceURL(photoName string, maxWidthPx int) string {
	ret := _m.Called(photoName, maxWidthPx)

	if len(ret) == 0 {
		panic("no return value specified for PhotoReferenceURL")
	}
	return ret.String(0)
}

// NewMockClient creates a new instance of MockClient and registers cleanup
// that asserts expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
