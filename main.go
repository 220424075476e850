package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chesster/internal/chesster/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})

	level, err := cmd.LogLevel()
	if err != nil {
		logrus.Fatal(err)
	}

	logrus.SetLevel(level)
	if err := chesster(); err != nil {
		logrus.Fatal(err)
	}
}

func chesster() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.Execute()
}
