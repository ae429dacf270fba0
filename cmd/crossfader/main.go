package main

import (
	"context"
	"os"

	"github.com/crossfader-relay/crossfader/internal/cli"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	err := cli.Execute(context.Background())
	gomidi.CloseDriver()
	if err != nil {
		os.Exit(1)
	}
}
