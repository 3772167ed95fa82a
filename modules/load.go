package modules

import (
	"github.com/connectedplaces/directory/modules/core"
	"github.com/connectedplaces/directory/modules/directory"
	"github.com/connectedplaces/directory/modules/moderation"
	"github.com/connectedplaces/directory/pkg/application"
)

// BuiltInModules lists every module in registration order. Core goes first so
// its schema exists before the modules that reference it.
var BuiltInModules = []application.Module{
	core.NewModule(),
	directory.NewModule(),
	moderation.NewModule(),
}

func Load(app application.Application, mods ...application.Module) error {
	for _, module := range mods {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
