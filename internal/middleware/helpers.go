// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetPartnerID gets the authenticated partner id from context.
func GetPartnerID(c *gin.Context) (string, bool) {
	v, exists := c.Get("partner_id")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetPartnerEmail gets the authenticated partner email from context.
func GetPartnerEmail(c *gin.Context) (string, bool) {
	v, exists := c.Get("partner_email")
	if !exists {
		return "", false
	}
	email, ok := v.(string)
	return email, ok && email != ""
}
