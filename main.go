package main

import (
	"exusiai.dev/gateway-admin/cmd/app"
)

func main() {
	app.Run()
}
