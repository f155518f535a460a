package app

import (
	"io"

	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/modules/env_vars"
	"github.com/vk/nodegridgo/modules/frame"
	"github.com/vk/nodegridgo/modules/math"
	"github.com/vk/nodegridgo/modules/print"
	"github.com/vk/nodegridgo/modules/reroute"
	"github.com/vk/nodegridgo/modules/value"
)

// coreModules is the definitive list of node kinds compiled into the
// binary. print nodes write to out.
func coreModules(out io.Writer) []registry.Module {
	return []registry.Module{
		&value.Module{},
		&frame.Module{},
		&math.Module{},
		&env_vars.Module{},
		&print.Module{Out: out},
		&reroute.Module{},
	}
}
