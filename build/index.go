package build

import (
	"github.com/outofforest/build"
	"github.com/outofforest/buildgo"
)

// Commands is a definition of commands available in build system
var Commands = map[string]build.Command{
	"tests": {Fn: goTests, Description: "Runs unit tests"},
}

func init() {
	buildgo.AddCommands(Commands)
}
