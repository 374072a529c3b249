package main

import (
	"countryrates/internal/app"

	"github.com/sirupsen/logrus"
)

// @title Country Currency & Exchange API
// @version 1.0
// @description Country records enriched with USD exchange rates and an estimated GDP.
// @BasePath /
func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Fatal("application stopped")
	}
}
