// cmd/main.go
package main

import (
	"go-taskhub-api/app"
)

// @title           TaskHub API
// @version         1.0
// @description     Multi-tenant project and task management API.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
