package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteEventName(t *testing.T) {
	assert.Equal(t, "post_loans_return", routeEventName("POST", "/api/v1/loans/:borrowID/return"))
	assert.Equal(t, "get_books", routeEventName("GET", "/api/v1/books"))
	assert.Equal(t, "", routeEventName("GET", ""))
	assert.True(t, untracked("/swagger/index.html"))
	assert.False(t, untracked("/api/v1/books"))
}
