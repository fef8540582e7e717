package pagination_test

import (
	"net/http/httptest"
	"testing"

	"woms/pkg/pagination"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ginContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	params := pagination.Parse(ginContext(""), 7)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 7, params.Limit)
	assert.Equal(t, 0, params.Offset)
}

func TestParseOffsets(t *testing.T) {
	params := pagination.Parse(ginContext("page=3&page_size=10"), 7)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, 20, params.Offset)
}

func TestParseClampsBadInput(t *testing.T) {
	params := pagination.Parse(ginContext("page=-2&page_size=0"), 7)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 7, params.Limit)

	params = pagination.Parse(ginContext("page=1&page_size=9999"), 7)
	assert.Equal(t, pagination.MaxLimit, params.Limit)

	params = pagination.Parse(ginContext("page=abc&page_size=xyz"), 10)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
}
