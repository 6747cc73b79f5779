package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode switches gin to release mode for production so route debug
// output stays out of the service logs. Other environments keep gin's default.
func SetGinMode(appEnv string) {
	if appEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}
