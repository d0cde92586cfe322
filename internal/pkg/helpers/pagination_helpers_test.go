package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ginContextWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParsePagination(t *testing.T) {
	page, pageSize := ParsePagination(ginContextWithQuery("page=3&pageSize=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	page, pageSize = ParsePagination(ginContextWithQuery(""))
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, pageSize)

	page, pageSize = ParsePagination(ginContextWithQuery("page=-2&pageSize=9999"))
	assert.Equal(t, DefaultPage, page)
	assert.Equal(t, DefaultPageSize, pageSize)
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(1, 20)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, 20, limit)

	offset, limit = CalculateOffsetLimit(4, 25)
	assert.Equal(t, uint64(75), offset)
	assert.Equal(t, 25, limit)

	offset, limit = CalculateOffsetLimit(0, 0)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}
