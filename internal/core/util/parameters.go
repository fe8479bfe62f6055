package util

import "github.com/gin-gonic/gin"

// QueryToStruct binds the query string into T through its form tags.
// Unknown parameters are ignored; malformed values fail the bind.
func QueryToStruct[T any](c *gin.Context) (T, error) {
	var params T

	err := c.ShouldBindQuery(&params)

	return params, err
}
