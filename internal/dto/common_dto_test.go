package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageQueryDefaults(t *testing.T) {
	tests := []struct {
		name       string
		query      PageQuery
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"零值走默认", PageQuery{}, 1, 10, 0},
		{"负数走默认", PageQuery{Page: -1, Limit: -5}, 1, 10, 0},
		{"正常取值", PageQuery{Page: 3, Limit: 20}, 3, 20, 40},
		{"limit封顶100", PageQuery{Page: 1, Limit: 1000}, 1, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPage, tt.query.GetPage())
			assert.Equal(t, tt.wantLimit, tt.query.GetLimit())
			assert.Equal(t, tt.wantOffset, tt.query.GetOffset())
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(25, 2, 10)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, int64(25), p.Total)
	assert.Equal(t, 3, p.TotalPages)

	// 整除不补页
	p = NewPagination(30, 1, 10)
	assert.Equal(t, 3, p.TotalPages)

	// 空结果
	p = NewPagination(0, 1, 10)
	assert.Equal(t, 0, p.TotalPages)
}
