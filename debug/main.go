package main

import (
	"github.com/emrgen/programtree/internal/config"
	"github.com/emrgen/programtree/internal/server"
	"github.com/sirupsen/logrus"
)

func main() {
	err := server.Start(config.LoadConfig())
	if err != nil {
		logrus.Fatal(err)
	}
}
