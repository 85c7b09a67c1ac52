package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMeta(t *testing.T) {
	meta := CalculateMeta(45, 2, 20)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.Limit)
	assert.Equal(t, int64(45), meta.TotalCount)
	assert.Equal(t, 3, meta.TotalPages)

	// limit=0 is the export path: everything on one page.
	meta = CalculateMeta(45, 1, 0)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, 1, meta.TotalPages)
	assert.Equal(t, 45, meta.Limit)
}

func TestPaginationOffset(t *testing.T) {
	p := GetPaginationParams(3, 25)
	assert.Equal(t, 50, p.CalculateOffset())

	p = GetPaginationParams(0, -5)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Limit)
	assert.Equal(t, 0, p.CalculateOffset())
}
