package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ide-mentor/mentor-api/cmd/mentorctl/cmds"
)

func main() {
	if err := cmds.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}
