// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package mocks provides testify mocks for the article package ports.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/clipmark/clipmark/internal/article"
)

// MockArticleRepository is a testify mock for article.ArticleRepository.
type MockArticleRepository struct {
	mock.Mock
}

// NewMockArticleRepository creates a mock bound to the test's lifecycle.
func NewMockArticleRepository(t *testing.T) *MockArticleRepository {
	m := &MockArticleRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id ulid.ULID) (*article.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*article.Article), args.Error(1)
}

func (m *MockArticleRepository) FindByURL(ctx context.Context, url article.URL) (*article.Article, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*article.Article), args.Error(1)
}

func (m *MockArticleRepository) Save(ctx context.Context, a *article.Article) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleRepository) List(ctx context.Context, params article.ListParams) (*article.ListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*article.ListResult), args.Error(1)
}

// MockTagRepository is a testify mock for article.TagRepository.
type MockTagRepository struct {
	mock.Mock
}

// NewMockTagRepository creates a mock bound to the test's lifecycle.
func NewMockTagRepository(t *testing.T) *MockTagRepository {
	m := &MockTagRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTagRepository) FindByName(ctx context.Context, name article.TagName) (*article.Tag, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*article.Tag), args.Error(1)
}

func (m *MockTagRepository) Save(ctx context.Context, tag *article.Tag) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockTagRepository) List(ctx context.Context) ([]article.TagWithCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]article.TagWithCount), args.Error(1)
}

func (m *MockTagRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMetadataFetcher is a testify mock for article.MetadataFetcher.
type MockMetadataFetcher struct {
	mock.Mock
}

// NewMockMetadataFetcher creates a mock bound to the test's lifecycle.
func NewMockMetadataFetcher(t *testing.T) *MockMetadataFetcher {
	m := &MockMetadataFetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMetadataFetcher) Fetch(ctx context.Context, url article.URL) (*article.Metadata, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*article.Metadata), args.Error(1)
}

var (
	_ article.ArticleRepository = (*MockArticleRepository)(nil)
	_ article.TagRepository     = (*MockTagRepository)(nil)
	_ article.MetadataFetcher   = (*MockMetadataFetcher)(nil)
)
