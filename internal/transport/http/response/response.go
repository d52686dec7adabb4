package response

import "github.com/gin-gonic/gin"

// ErrorBody is the shape of every non-2xx JSON response.
type ErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func Message(c *gin.Context, status int, message string) {
	c.JSON(status, MessageBody{Message: message})
}

// Error writes a client-facing message. The detail of err is included only
// when expose is true, which is every mode but production.
func Error(c *gin.Context, status int, message string, err error, expose bool) {
	body := ErrorBody{Message: message}
	if expose && err != nil {
		body.Error = err.Error()
	}
	c.JSON(status, body)
}

func Abort(c *gin.Context, status int, message string, err error, expose bool) {
	Error(c, status, message, err, expose)
	c.Abort()
}
