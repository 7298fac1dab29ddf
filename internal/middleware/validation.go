package middleware

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/devcamper/internal/pkg/validation"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the custom validation rules on gin's validator engine.
// Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		registerErr = validation.RegisterRules(v)
	})
	return registerErr
}

// BindJSON binds and validates the request body into obj. On failure the
// error is recorded for ErrorHandler and false is returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleAPIError(c, err)
		return false
	}
	return true
}
